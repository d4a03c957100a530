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

package georeactor

import (
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"gonum.org/v1/gonum/floats"
)

// DomainManipulator is a function that operates on the whole simulation
// domain once per time step.
type DomainManipulator func(s *Simulation) error

// Simulation sequences solver calls against one GridState. The three
// solvers read and write overlapping fields, so RunFuncs execute strictly
// in order within each step; parallelism lives inside the solvers.
type Simulation struct {
	State *GridState
	Δt    float64 // master time step [s]
	Time  float64 // current simulation time [s]
	Done  bool

	// InitFuncs run once before the first step, RunFuncs once per step in
	// order until Done is set, and CleanupFuncs after the last step.
	InitFuncs    []DomainManipulator
	RunFuncs     []DomainManipulator
	CleanupFuncs []DomainManipulator
}

// Init runs the initialization functions.
func (s *Simulation) Init() error {
	for _, f := range s.InitFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("georeactor: initializing: %v", err)
		}
	}
	return nil
}

// Run steps the simulation until a RunFunc sets Done, advancing the clock
// by Δt after each step.
func (s *Simulation) Run() error {
	for !s.Done {
		for _, f := range s.RunFuncs {
			if err := f(s); err != nil {
				return fmt.Errorf("georeactor: running: %v", err)
			}
		}
		s.Time += s.Δt
	}
	return nil
}

// Cleanup runs the cleanup functions.
func (s *Simulation) Cleanup() error {
	for _, f := range s.CleanupFuncs {
		if err := f(s); err != nil {
			return fmt.Errorf("georeactor: cleaning up: %v", err)
		}
	}
	return nil
}

// HeatTransfer returns a function that advances the temperature field.
func HeatTransfer(solver *HeatSolver, bcs []*BoundaryCondition) DomainManipulator {
	return func(s *Simulation) error {
		solver.SolveHeat(s.State, s.Δt, s.Time, bcs)
		return nil
	}
}

// FluidFlow returns a function that advances the velocity and saturation
// fields.
func FluidFlow(solver *FlowSolver, bcs []*BoundaryCondition) DomainManipulator {
	return func(s *Simulation) error {
		solver.SolveFlow(s.State, s.Δt, s.Time, bcs)
		return nil
	}
}

// MineralNucleation returns a function that runs nucleation and crystal
// growth against the given sites.
func MineralNucleation(solver *NucleationSolver, sites []*NucleationSite) DomainManipulator {
	return func(s *Simulation) error {
		solver.UpdateNucleation(s.State, sites, s.Δt, s.Time)
		return nil
	}
}

// Log writes per-step status to w: iteration count, wall time, and running
// temperature statistics.
func Log(w io.Writer) DomainManipulator {
	startTime := time.Now()
	stepTime := time.Now()
	iteration := 0

	return func(s *Simulation) error {
		iteration++
		var st stats.Stats
		for _, v := range s.State.Temperature.Elements {
			st.Update(v)
		}
		fmt.Fprintf(w, "Iteration %-4d  walltime=%6.3gh  Δwalltime=%4.2gs  "+
			"timestep=%2.0fs  t=%.4gs  T=[%.4g %.4g %.4g]K  nuclei=%d\n",
			iteration, time.Since(startTime).Hours(),
			time.Since(stepTime).Seconds(), s.Δt, s.Time,
			st.Min(), st.Mean(), st.Max(), len(s.State.Nuclei))
		stepTime = time.Now()
		return nil
	}
}

// SteadyStateConvergenceCheck sets Done when the simulation has finished:
// after numIterations steps if numIterations > 0, otherwise when the domain
// temperature sum has changed by less than 0.5% since the last periodic
// check. Progress is written to w when it is non-nil.
func SteadyStateConvergenceCheck(numIterations int, w io.Writer) DomainManipulator {
	const tolerance = 0.005
	const checkPeriod = 3600. // [s] between convergence checks

	var oldSum float64
	timeSinceLastCheck := 0.
	iteration := 0

	return func(s *Simulation) error {
		timeSinceLastCheck += s.Δt
		iteration++

		if numIterations > 0 {
			if iteration >= numIterations {
				s.Done = true
			}
		} else if timeSinceLastCheck >= checkPeriod {
			timeSinceLastCheck = 0
			sum := floats.Sum(s.State.Temperature.Elements)
			bias := (sum - oldSum) / oldSum
			if w != nil {
				fmt.Fprintf(w, "Temperature sum difference = %3.2g%% from last check.\n", bias*100)
			}
			if !math.IsInf(bias, 0) && math.Abs(bias) <= tolerance {
				s.Done = true
			}
			oldSum = sum
		}
		return nil
	}
}

// parallelSweep runs f concurrently for every index in [start, end),
// striping indices across GOMAXPROCS workers. Solvers use it over the
// outermost spatial loop: per-voxel updates read only the previous step's
// fields and write only their own output cell, so disjoint outer index
// ranges have no write dependency.
func parallelSweep(start, end int, f func(i int)) {
	nprocs := runtime.GOMAXPROCS(0)
	var wg sync.WaitGroup
	wg.Add(nprocs)
	for pp := 0; pp < nprocs; pp++ {
		go func(pp int) {
			for i := start + pp; i < end; i += nprocs {
				f(i)
			}
			wg.Done()
		}(pp)
	}
	wg.Wait()
}
