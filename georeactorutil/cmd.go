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

// Package georeactorutil provides configuration and command-line handling
// for the GeoReactor coupled transport model.
package georeactorutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	georeactor "github.com/mattemangia/GeoscientistToolkit-sub019"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to GeoReactor.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "Grid.Nx",
			usage: `
              Grid.Nx is the number of voxels in the x direction.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Ny",
			usage: `
              Grid.Ny is the number of voxels in the y direction.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Nz",
			usage: `
              Grid.Nz is the number of voxels in the z direction.`,
			defaultVal: 50,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx is the voxel edge length in the x direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dy",
			usage: `
              Grid.Dy is the voxel edge length in the y direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Grid.Dz",
			usage: `
              Grid.Dz is the voxel edge length in the z direction [m].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.Temperature",
			usage: `
              InitialConditions.Temperature is the uniform initial
              temperature [K].`,
			defaultVal: 293.15,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.Pressure",
			usage: `
              InitialConditions.Pressure is the uniform initial pore
              pressure [Pa].`,
			defaultVal: 101325.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.Porosity",
			usage: `
              InitialConditions.Porosity is the uniform initial porosity
              [volume fraction].`,
			defaultVal: 0.3,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.Permeability",
			usage: `
              InitialConditions.Permeability is the uniform initial intrinsic
              permeability [m²].`,
			defaultVal: 1e-15,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.GasSaturation",
			usage: `
              InitialConditions.GasSaturation is the uniform initial gas
              saturation [fraction]; liquid saturation starts at its
              complement.`,
			defaultVal: 0.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "InitialConditions.Species",
			usage: `
              InitialConditions.Species maps chemical species names to their
              uniform initial concentrations [mol/L], for example
              {"CO3": "2.5"}. Species are tracked in alphabetical order.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Heat.Enabled",
			usage: `
              Heat.Enabled specifies whether the heat conduction solver runs.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Heat.Conductivity",
			usage: `
              Heat.Conductivity is the default thermal conductivity of the
              medium [W/(m·K)], applied wherever no heterogeneous field is
              loaded.`,
			defaultVal: 2.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Heat.Density",
			usage: `
              Heat.Density is the bulk density of the medium [kg/m³].`,
			defaultVal: 2500.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Heat.SpecificHeat",
			usage: `
              Heat.SpecificHeat is the bulk specific heat capacity of the
              medium [J/(kg·K)].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.Enabled",
			usage: `
              Flow.Enabled specifies whether the multiphase Darcy flow solver
              runs.`,
			defaultVal: true,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.WaterDensity",
			usage: `
              Flow.WaterDensity is the liquid water density [kg/m³].`,
			defaultVal: 1000.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.GasDensity",
			usage: `
              Flow.GasDensity is the gas phase density [kg/m³].`,
			defaultVal: 1.2,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.WaterViscosity",
			usage: `
              Flow.WaterViscosity is the liquid water dynamic viscosity
              [Pa·s].`,
			defaultVal: 1e-3,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.GasViscosity",
			usage: `
              Flow.GasViscosity is the gas phase dynamic viscosity [Pa·s].`,
			defaultVal: 1.8e-5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.ResidualLiquid",
			usage: `
              Flow.ResidualLiquid is the residual liquid saturation of the
              van Genuchten relative permeability model [fraction].`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.ResidualGas",
			usage: `
              Flow.ResidualGas is the residual gas saturation of the
              van Genuchten relative permeability model [fraction].`,
			defaultVal: 0.05,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.VanGenuchtenM",
			usage: `
              Flow.VanGenuchtenM is the van Genuchten shape parameter m.`,
			defaultVal: 0.5,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.VanGenuchtenAlpha",
			usage: `
              Flow.VanGenuchtenAlpha is the van Genuchten capillary pressure
              parameter α [1/Pa].`,
			defaultVal: 1e-4,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.CompressibilityFactor",
			usage: `
              Flow.CompressibilityFactor scales the pressure relaxation
              caused by gas presence [dimensionless].`,
			defaultVal: 0.01,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Flow.Gravity",
			usage: `
              Flow.Gravity is the gravitational acceleration [m/s²].`,
			defaultVal: 9.81,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.Enabled",
			usage: `
              Nucleation.Enabled specifies whether the mineral nucleation and
              crystal growth solver runs.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.Seed",
			usage: `
              Nucleation.Seed seeds the random number stream used for
              stochastic nucleation, making runs reproducible.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.EquilibriumConcentration",
			usage: `
              Nucleation.EquilibriumConcentration is the species
              concentration at chemical equilibrium [mol/L], against which
              supersaturation is measured.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.RateConstant",
			usage: `
              Nucleation.RateConstant is the Arrhenius pre-exponential rate
              constant of the nucleation rate law [1/s].`,
			defaultVal: 1e-3,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.GrowthRate",
			usage: `
              Nucleation.GrowthRate is the radial crystal growth rate [m/s].`,
			defaultVal: 1e-9,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Nucleation.SitesFile",
			usage: `
              Nucleation.SitesFile is the path to a TOML file listing the
              candidate nucleation sites.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "BoundaryConditionsFile",
			usage: `
              BoundaryConditionsFile is the path to a TOML file listing the
              boundary conditions applied to the domain faces.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "Dt",
			usage: `
              Dt is the master simulation time step [s]. The heat solver may
              internally subcycle a shorter stable step.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "NumIterations",
			usage: `
              NumIterations is the number of time steps to calculate. If < 1,
              the simulation instead runs until the temperature field reaches
              steady state.`,
			defaultVal: 100,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path of the CSV file the results are written
              to.`,
			defaultVal: "output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputLayer",
			usage: `
              OutputLayer is the z-layer index written to the output file.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables maps output column names to expressions over
              the field names, for example
              {"TempC": "Temperature - 273.15"}.`,
			defaultVal: map[string]string{"Temperature": "Temperature"},
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the simulation log file. If not
              specified, the log is written next to OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
		{
			name: "SnapshotFile",
			usage: `
              SnapshotFile is the path the final grid state is saved to in
              gob format. If empty, no snapshot is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("GEOREACTOR")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("georeactor: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "georeactor",
	Short: "A coupled thermal, multiphase flow, and mineral growth model.",
	Long: `GeoReactor simulates coupled heat conduction, multiphase Darcy flow,
and stochastic mineral nucleation on a regular voxel grid.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'GEOREACTOR_var'
where 'var' is the name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of GeoReactor.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("GeoReactor v%s\n", georeactor.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the model.",
	Long: `run runs a GeoReactor simulation with the solvers enabled in the
configuration and writes the result to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := SimulationConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(cmd, cfg)
	},
	DisableAutoGenTag: true,
}
