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
	"os"
	"path/filepath"
	"testing"

	georeactor "github.com/mattemangia/GeoscientistToolkit-sub019"
)

func TestSimulationConfigDefaults(t *testing.T) {
	cfg, err := SimulationConfig(Cfg)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Nx != 50 || cfg.Ny != 50 || cfg.Nz != 50 {
		t.Errorf("grid = (%d,%d,%d), want (50,50,50)", cfg.Nx, cfg.Ny, cfg.Nz)
	}
	if cfg.Heat.Density != 2500 {
		t.Errorf("density = %g, want 2500", cfg.Heat.Density)
	}
	if want := georeactor.DefaultFlowParams(); cfg.Flow != want {
		t.Errorf("flow parameter defaults = %+v, want %+v", cfg.Flow, want)
	}
	if !cfg.HeatEnabled || !cfg.FlowEnabled || cfg.NucleationEnabled {
		t.Errorf("solver flags = (%v,%v,%v)", cfg.HeatEnabled, cfg.FlowEnabled, cfg.NucleationEnabled)
	}
	if cfg.OutputVariables["Temperature"] != "Temperature" {
		t.Errorf("output variables = %v", cfg.OutputVariables)
	}
	if cfg.LogFile != "output.log" {
		t.Errorf("log file = %q, want output.log", cfg.LogFile)
	}
}

// The solvers index a one-voxel halo on every face, so axes with fewer than
// 3 voxels must be rejected here rather than panic inside a sweep.
func TestSimulationConfigGridTooSmall(t *testing.T) {
	for _, axis := range []string{"Grid.Nx", "Grid.Ny", "Grid.Nz"} {
		for _, n := range []int{1, 2} {
			Cfg.Set(axis, n)
			_, err := SimulationConfig(Cfg)
			Cfg.Set(axis, 50)
			if err == nil {
				t.Errorf("expected error for %s = %d", axis, n)
			}
		}
	}
	if _, err := SimulationConfig(Cfg); err != nil {
		t.Errorf("default dimensions rejected: %v", err)
	}
}

func TestConfigNewState(t *testing.T) {
	cfg := &Config{
		Nx: 2, Ny: 2, Nz: 2,
		Dx: 0.1, Dy: 0.1, Dz: 0.1,
		InitialTemperature:   350,
		InitialPressure:      2e5,
		InitialPorosity:      0.25,
		InitialPermeability:  1e-14,
		InitialGasSaturation: 0.2,
		InitialSpecies:       map[string]float64{"SiO2": 4, "CO3": 2},
	}
	d := cfg.NewState()
	if v := d.Temperature.Get(1, 1, 1); v != 350 {
		t.Errorf("temperature = %g, want 350", v)
	}
	if v := d.LiquidSaturation.Get(0, 0, 0); v != 0.8 {
		t.Errorf("liquid saturation = %g, want 0.8", v)
	}
	if v := d.GasSaturation.Get(0, 0, 0); v != 0.2 {
		t.Errorf("gas saturation = %g, want 0.2", v)
	}
	// Species insert alphabetically for a deterministic first species.
	if len(d.SpeciesOrder) != 2 || d.SpeciesOrder[0] != "CO3" {
		t.Errorf("species order = %v, want [CO3 SiO2]", d.SpeciesOrder)
	}
	if v := d.Species["SiO2"].Get(1, 0, 1); v != 4 {
		t.Errorf("SiO2 concentration = %g, want 4", v)
	}
}

func TestLoadNucleationSites(t *testing.T) {
	file := filepath.Join(t.TempDir(), "sites.toml")
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, `
[[site]]
X = 0.25
Y = 0.25
Z = 0.05
Mineral = "Calcite"
InitialRadius = 1e-6
ActivationEnergy = 50000.0
CriticalSupersaturation = 1.5
Active = true

[[site]]
X = 0.1
Y = 0.1
Z = 0.1
Mineral = "Quartz"
Active = false
`)
	f.Close()

	sites, err := LoadNucleationSites(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	s := sites[0]
	if s.Mineral != "Calcite" || s.X != 0.25 || s.ActivationEnergy != 50000 ||
		s.CriticalSupersaturation != 1.5 || !s.Active {
		t.Errorf("first site = %+v", s)
	}
	if sites[1].Active {
		t.Error("second site should be inactive")
	}

	if _, err := LoadNucleationSites(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadBoundaryConditions(t *testing.T) {
	file := filepath.Join(t.TempDir(), "boundaries.toml")
	f, err := os.Create(file)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, `
[[boundary]]
Location = "ZMin"
Variable = "Temperature"
Value = 400.0
Active = true

[[boundary]]
Location = "ZMax"
Variable = "Concentration"
Species = "Methane"
Expression = "2 + t / 100"
Active = true
`)
	f.Close()

	bcs, err := LoadBoundaryConditions(file)
	if err != nil {
		t.Fatal(err)
	}
	if len(bcs) != 2 {
		t.Fatalf("got %d conditions, want 2", len(bcs))
	}
	b := bcs[0]
	if b.Location != georeactor.ZMin || b.Variable != georeactor.BCTemperature ||
		b.Kind != georeactor.FixedValue || b.Value != 400 || !b.Active {
		t.Errorf("first condition = %+v", b)
	}
	if bcs[1].Species != "Methane" {
		t.Errorf("species = %q, want Methane", bcs[1].Species)
	}
	if v := bcs[1].ValueAt(100); v != 3 {
		t.Errorf("expression value at t=100 is %g, want 3", v)
	}
}

func TestLoadBoundaryConditionsErrors(t *testing.T) {
	write := func(content string) string {
		file := filepath.Join(t.TempDir(), "bad.toml")
		if err := os.WriteFile(file, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		return file
	}
	cases := []string{
		"[[boundary]]\nLocation = \"Bottom\"\nVariable = \"Temperature\"\n",
		"[[boundary]]\nLocation = \"ZMin\"\nVariable = \"Heat\"\n",
		"[[boundary]]\nLocation = \"ZMin\"\nVariable = \"Temperature\"\nKind = \"Periodic\"\n",
		"[[boundary]]\nLocation = \"ZMin\"\nVariable = \"Temperature\"\nExpression = \"1 +\"\n",
	}
	for _, c := range cases {
		if _, err := LoadBoundaryConditions(write(c)); err == nil {
			t.Errorf("expected error for %q", c)
		}
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("expected error for empty output file")
	}
	if _, err := checkOutputFile("/no/such/directory/out.csv"); err == nil {
		t.Error("expected error for missing directory")
	}
	f := filepath.Join(t.TempDir(), "out.csv")
	got, err := checkOutputFile(f)
	if err != nil {
		t.Fatal(err)
	}
	if got != f {
		t.Errorf("output file = %q, want %q", got, f)
	}
}

func TestCheckLogFile(t *testing.T) {
	if got := checkLogFile("", "results/run.csv"); got != "results/run.log" {
		t.Errorf("default log file = %q", got)
	}
	if got := checkLogFile("my.log", "results/run.csv"); got != "my.log" {
		t.Errorf("explicit log file = %q", got)
	}
}
