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
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	georeactor "github.com/mattemangia/GeoscientistToolkit-sub019"
	"github.com/spf13/cast"
)

// Config holds the fully resolved inputs of one simulation run.
type Config struct {
	Nx, Ny, Nz int
	Dx, Dy, Dz float64

	InitialTemperature   float64
	InitialPressure      float64
	InitialPorosity      float64
	InitialPermeability  float64
	InitialGasSaturation float64
	InitialSpecies       map[string]float64

	HeatEnabled bool
	Heat        georeactor.HeatParams

	FlowEnabled bool
	Flow        georeactor.FlowParams

	NucleationEnabled bool
	NucleationSeed    int64
	Nucleation        georeactor.NucleationParams
	Sites             []*georeactor.NucleationSite

	BoundaryConditions []*georeactor.BoundaryCondition

	Δt            float64
	NumIterations int

	OutputFile      string
	OutputLayer     int
	OutputVariables map[string]string
	LogFile         string
	SnapshotFile    string
}

// SimulationConfig resolves a viper configuration into a Config, loading the
// nucleation site and boundary condition files it references.
func SimulationConfig(cfg *viper.Viper) (*Config, error) {
	c := &Config{
		Nx: cfg.GetInt("Grid.Nx"),
		Ny: cfg.GetInt("Grid.Ny"),
		Nz: cfg.GetInt("Grid.Nz"),
		Dx: cfg.GetFloat64("Grid.Dx"),
		Dy: cfg.GetFloat64("Grid.Dy"),
		Dz: cfg.GetFloat64("Grid.Dz"),

		InitialTemperature:   cfg.GetFloat64("InitialConditions.Temperature"),
		InitialPressure:      cfg.GetFloat64("InitialConditions.Pressure"),
		InitialPorosity:      cfg.GetFloat64("InitialConditions.Porosity"),
		InitialPermeability:  cfg.GetFloat64("InitialConditions.Permeability"),
		InitialGasSaturation: cfg.GetFloat64("InitialConditions.GasSaturation"),

		HeatEnabled: cfg.GetBool("Heat.Enabled"),
		Heat: georeactor.HeatParams{
			Conductivity: georeactor.ConductivityField{Default: cfg.GetFloat64("Heat.Conductivity")},
			Density:      cfg.GetFloat64("Heat.Density"),
			SpecificHeat: cfg.GetFloat64("Heat.SpecificHeat"),
		},

		FlowEnabled: cfg.GetBool("Flow.Enabled"),
		Flow: georeactor.FlowParams{
			WaterDensity:            cfg.GetFloat64("Flow.WaterDensity"),
			GasDensity:              cfg.GetFloat64("Flow.GasDensity"),
			WaterViscosity:          cfg.GetFloat64("Flow.WaterViscosity"),
			GasViscosity:            cfg.GetFloat64("Flow.GasViscosity"),
			ResidualWaterSaturation: cfg.GetFloat64("Flow.ResidualLiquid"),
			ResidualGasSaturation:   cfg.GetFloat64("Flow.ResidualGas"),
			VanGenuchtenM:           cfg.GetFloat64("Flow.VanGenuchtenM"),
			VanGenuchtenAlpha:       cfg.GetFloat64("Flow.VanGenuchtenAlpha"),
			CompressibilityFactor:   cfg.GetFloat64("Flow.CompressibilityFactor"),
			Gravity:                 cfg.GetFloat64("Flow.Gravity"),
		},

		NucleationEnabled: cfg.GetBool("Nucleation.Enabled"),
		NucleationSeed:    cfg.GetInt64("Nucleation.Seed"),
		Nucleation: georeactor.NucleationParams{
			EquilibriumConcentration: cfg.GetFloat64("Nucleation.EquilibriumConcentration"),
			RateConstant:             cfg.GetFloat64("Nucleation.RateConstant"),
			GrowthRate:               cfg.GetFloat64("Nucleation.GrowthRate"),
		},

		Δt:            cfg.GetFloat64("Dt"),
		NumIterations: cfg.GetInt("NumIterations"),
		OutputLayer:   cfg.GetInt("OutputLayer"),
		SnapshotFile:  os.ExpandEnv(cfg.GetString("SnapshotFile")),
	}

	// The solvers keep a one-voxel halo on every face, so each axis needs a
	// face layer on both sides plus at least one interior voxel.
	if c.Nx < 3 || c.Ny < 3 || c.Nz < 3 {
		return nil, fmt.Errorf("georeactor: grid dimensions (%d,%d,%d) are too small; each axis needs at least 3 voxels", c.Nx, c.Ny, c.Nz)
	}
	if c.Dx <= 0 || c.Dy <= 0 || c.Dz <= 0 {
		return nil, fmt.Errorf("georeactor: invalid grid spacing (%g,%g,%g)", c.Dx, c.Dy, c.Dz)
	}
	if c.Δt <= 0 {
		return nil, fmt.Errorf("georeactor: Dt must be positive but is %g", c.Δt)
	}

	var err error
	c.InitialSpecies, err = speciesConcentrations(GetStringMapString("InitialConditions.Species", cfg))
	if err != nil {
		return nil, err
	}

	c.OutputFile, err = checkOutputFile(cfg.GetString("OutputFile"))
	if err != nil {
		return nil, err
	}
	c.OutputVariables, err = checkOutputVars(GetStringMapString("OutputVariables", cfg))
	if err != nil {
		return nil, err
	}
	c.LogFile = checkLogFile(cfg.GetString("LogFile"), c.OutputFile)

	if f := os.ExpandEnv(cfg.GetString("Nucleation.SitesFile")); f != "" {
		c.Sites, err = LoadNucleationSites(f)
		if err != nil {
			return nil, err
		}
	}
	if f := os.ExpandEnv(cfg.GetString("BoundaryConditionsFile")); f != "" {
		c.BoundaryConditions, err = LoadBoundaryConditions(f)
		if err != nil {
			return nil, err
		}
	}
	return c, nil
}

// NewState allocates the initial grid state described by the configuration.
// Species are inserted in alphabetical order so that the first tracked
// species does not depend on map iteration order.
func (c *Config) NewState() *georeactor.GridState {
	d := georeactor.NewGridState(c.Nx, c.Ny, c.Nz, c.Dx, c.Dy, c.Dz)
	for n := range d.Temperature.Elements {
		d.Temperature.Elements[n] = c.InitialTemperature
		d.Pressure.Elements[n] = c.InitialPressure
		d.Porosity.Elements[n] = c.InitialPorosity
		d.Permeability.Elements[n] = c.InitialPermeability
		d.GasSaturation.Elements[n] = c.InitialGasSaturation
		d.LiquidSaturation.Elements[n] = 1 - c.InitialGasSaturation
	}
	names := make([]string, 0, len(c.InitialSpecies))
	for name := range c.InitialSpecies {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := d.AddSpecies(name)
		v := c.InitialSpecies[name]
		for n := range f.Elements {
			f.Elements[n] = v
		}
	}
	return d
}

// tomlSites is the layout of a nucleation site file:
//
//	[[site]]
//	X = 0.25
//	Y = 0.25
//	Z = 0.05
//	Mineral = "Calcite"
//	InitialRadius = 1e-6
//	ActivationEnergy = 50000.0
//	CriticalSupersaturation = 1.5
//	Active = true
type tomlSites struct {
	Site []struct {
		X, Y, Z                 float64
		Mineral                 string
		InitialRadius           float64
		ActivationEnergy        float64
		CriticalSupersaturation float64
		Active                  bool
	}
}

// LoadNucleationSites reads candidate nucleation sites from a TOML file.
func LoadNucleationSites(file string) ([]*georeactor.NucleationSite, error) {
	var t tomlSites
	if _, err := toml.DecodeFile(file, &t); err != nil {
		return nil, fmt.Errorf("georeactor: reading nucleation sites from %s: %v", file, err)
	}
	if len(t.Site) == 0 {
		return nil, fmt.Errorf("georeactor: no nucleation sites in %s", file)
	}
	sites := make([]*georeactor.NucleationSite, len(t.Site))
	for i, s := range t.Site {
		if s.Mineral == "" {
			return nil, fmt.Errorf("georeactor: nucleation site %d in %s has no mineral", i, file)
		}
		sites[i] = &georeactor.NucleationSite{
			X: s.X, Y: s.Y, Z: s.Z,
			Mineral:                 s.Mineral,
			InitialRadius:           s.InitialRadius,
			ActivationEnergy:        s.ActivationEnergy,
			CriticalSupersaturation: s.CriticalSupersaturation,
			Active:                  s.Active,
		}
	}
	return sites, nil
}

// tomlBoundaries is the layout of a boundary condition file:
//
//	[[boundary]]
//	Location = "ZMin"
//	Variable = "Temperature"
//	Kind = "FixedValue"
//	Value = 400.0
//	Expression = "350 + 50 * exp(-t / 3600)"  # optional, overrides Value
//	Species = ""                              # for Concentration conditions
//	Active = true
type tomlBoundaries struct {
	Boundary []struct {
		Location   string
		Variable   string
		Kind       string
		Value      float64
		Flux       float64
		Expression string
		Species    string
		Active     bool
	}
}

// LoadBoundaryConditions reads an ordered boundary condition list from a
// TOML file. List order is preserved: a later entry for the same face
// overrides an earlier one.
func LoadBoundaryConditions(file string) ([]*georeactor.BoundaryCondition, error) {
	var t tomlBoundaries
	if _, err := toml.DecodeFile(file, &t); err != nil {
		return nil, fmt.Errorf("georeactor: reading boundary conditions from %s: %v", file, err)
	}
	bcs := make([]*georeactor.BoundaryCondition, len(t.Boundary))
	for i, b := range t.Boundary {
		loc, err := georeactor.ParseBCLocation(b.Location)
		if err != nil {
			return nil, err
		}
		v, err := georeactor.ParseBCVariable(b.Variable)
		if err != nil {
			return nil, err
		}
		kind := georeactor.FixedValue
		switch b.Kind {
		case "", "FixedValue":
		case "FixedFlux":
			kind = georeactor.FixedFlux
		default:
			return nil, fmt.Errorf("georeactor: unknown boundary kind %q", b.Kind)
		}
		bc := &georeactor.BoundaryCondition{
			Location: loc,
			Variable: v,
			Kind:     kind,
			Value:    b.Value,
			Flux:     b.Flux,
			Species:  b.Species,
			Active:   b.Active,
		}
		if b.Expression != "" {
			if err := bc.SetExpression(b.Expression); err != nil {
				return nil, err
			}
		}
		bcs[i] = bc
	}
	return bcs, nil
}

// speciesConcentrations converts the string-valued species map from the
// configuration into concentrations.
func speciesConcentrations(m map[string]string) (map[string]float64, error) {
	o := make(map[string]float64, len(m))
	for name, s := range m {
		v, err := cast.ToFloat64E(s)
		if err != nil {
			return nil, fmt.Errorf("georeactor: invalid concentration %q for species %s: %v", s, name, err)
		}
		o[name] = v
	}
	return o, nil
}

// checkOutputVars removes end lines and expands environment variables in the
// output variables.
func checkOutputVars(vars map[string]string) (map[string]string, error) {
	if len(vars) == 0 {
		return nil, fmt.Errorf("there are no variables specified for output. Please fill in " +
			"the OutputVariables configuration and try again.")
	}
	for k, v := range vars {
		v = strings.Replace(v, "\r\n", " ", -1)
		v = strings.Replace(v, "\n", " ", -1)
		vars[os.ExpandEnv(k)] = os.ExpandEnv(v)
	}
	return vars, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expands any environment variables.
func checkOutputFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output file configuration variable (for example: OutputFile="output.csv")`)
	}
	f = os.ExpandEnv(f)
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("georeactor: the OutputFile directory doesn't exist: %v", err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) map[string]string {
	i := cfg.Get(varName)
	switch i.(type) {
	case nil:
		return make(map[string]string)
	case map[string]string:
		return i.(map[string]string)
	case map[string]interface{}:
		return cast.ToStringMapString(i)
	case string:
		b := bytes.NewBuffer(([]byte)(i.(string)))
		d := json.NewDecoder(b)
		o := make(map[string]string)
		if err := d.Decode(&o); err != nil {
			panic(err)
		}
		return o
	default:
		panic(fmt.Errorf("invalid type for getStringMapString variable %s: %#v", varName, i))
	}
}
