/*
Copyright © 2026 the GeoReactor authors.
This file is part of GeoReactor.

GeoReactor is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GeoReactor is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GeoReactor.  If not, see <http://www.gnu.org/licenses/>.
*/

package georeactorutil

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	georeactor "github.com/mattemangia/GeoscientistToolkit-sub019"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Run assembles and runs a simulation from the resolved configuration.
// Solver steps execute in a fixed order within each time step: heat
// conduction, then fluid flow, then nucleation and growth. Progress is
// logged to the command output and to cfg.LogFile.
func Run(cmd *cobra.Command, cfg *Config) error {
	startTime := time.Now()

	logfile, err := os.Create(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("georeactor: problem creating log file: %v", err)
	}
	defer logfile.Close()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(io.MultiWriter(cmd.OutOrStdout(), logfile))

	sim := &georeactor.Simulation{
		State: cfg.NewState(),
		Δt:    cfg.Δt,
	}

	if cfg.HeatEnabled {
		sim.RunFuncs = append(sim.RunFuncs,
			georeactor.HeatTransfer(georeactor.NewHeatSolver(cfg.Heat), cfg.BoundaryConditions))
	}
	if cfg.FlowEnabled {
		sim.RunFuncs = append(sim.RunFuncs,
			georeactor.FluidFlow(georeactor.NewFlowSolver(cfg.Flow), cfg.BoundaryConditions))
	}
	if cfg.NucleationEnabled {
		if len(cfg.Sites) == 0 {
			return fmt.Errorf("georeactor: nucleation is enabled but no sites are configured")
		}
		rng := rand.New(rand.NewSource(cfg.NucleationSeed))
		sim.RunFuncs = append(sim.RunFuncs,
			georeactor.MineralNucleation(georeactor.NewNucleationSolver(cfg.Nucleation, rng), cfg.Sites))
	}
	if len(sim.RunFuncs) == 0 {
		return fmt.Errorf("georeactor: no solvers are enabled")
	}
	sim.RunFuncs = append(sim.RunFuncs,
		georeactor.Log(log.Writer()),
		georeactor.SteadyStateConvergenceCheck(cfg.NumIterations, log.Writer()),
	)

	o, err := georeactor.NewOutputter(cfg.OutputFile, cfg.OutputLayer, cfg.OutputVariables, nil)
	if err != nil {
		return err
	}
	sim.CleanupFuncs = append(sim.CleanupFuncs, o.Output())
	if cfg.SnapshotFile != "" {
		snapfile, err := os.Create(cfg.SnapshotFile)
		if err != nil {
			return fmt.Errorf("georeactor: problem creating snapshot file: %v", err)
		}
		defer snapfile.Close()
		sim.CleanupFuncs = append(sim.CleanupFuncs, georeactor.SaveSnapshot(snapfile))
	}

	log.WithFields(logrus.Fields{
		"grid":       fmt.Sprintf("%d×%d×%d", cfg.Nx, cfg.Ny, cfg.Nz),
		"Δt":         cfg.Δt,
		"heat":       cfg.HeatEnabled,
		"flow":       cfg.FlowEnabled,
		"nucleation": cfg.NucleationEnabled,
	}).Info("Starting simulation")

	if err := sim.Init(); err != nil {
		return err
	}
	if err := sim.Run(); err != nil {
		return err
	}
	if err := sim.Cleanup(); err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"walltime": time.Since(startTime),
		"simtime":  sim.Time,
		"nuclei":   len(sim.State.Nuclei),
		"output":   cfg.OutputFile,
	}).Info("Simulation completed")
	return nil
}
