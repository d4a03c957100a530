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
	"testing"

	"github.com/ctessum/sparse"
)

func TestGridStateDefaults(t *testing.T) {
	d := NewGridState(3, 4, 5, 0.1, 0.2, 0.3)
	if d.Nx != 3 || d.Ny != 4 || d.Nz != 5 {
		t.Fatalf("dimensions = (%d,%d,%d)", d.Nx, d.Ny, d.Nz)
	}
	if got, want := len(d.Temperature.Elements), 3*4*5; got != want {
		t.Fatalf("temperature elements = %d, want %d", got, want)
	}
	if v := d.Temperature.Get(1, 2, 3); v != 293.15 {
		t.Errorf("initial temperature = %g, want 293.15", v)
	}
	if v := d.LiquidSaturation.Get(1, 2, 3); v != 1 {
		t.Errorf("initial liquid saturation = %g, want 1", v)
	}
}

func TestCloneIsDeep(t *testing.T) {
	d := NewGridState(3, 3, 3, 0.1, 0.1, 0.1)
	d.AddSpecies("CO3")
	d.AddSpecies("SiO2")
	d.AddMineral("Quartz")
	d.Nuclei = append(d.Nuclei, &Nucleus{ID: 1, Radius: 1e-6, Mineral: "Quartz"})

	c := d.Clone()

	d.Temperature.Set(999, 1, 1, 1)
	d.Species["CO3"].Set(5, 0, 0, 0)
	d.Minerals["Quartz"].Set(0.2, 2, 2, 2)
	d.Nuclei[0].Radius = 1e-3

	if v := c.Temperature.Get(1, 1, 1); v != 293.15 {
		t.Errorf("clone temperature mutated: %g", v)
	}
	if v := c.Species["CO3"].Get(0, 0, 0); v != 0 {
		t.Errorf("clone species field mutated: %g", v)
	}
	if v := c.Minerals["Quartz"].Get(2, 2, 2); v != 0 {
		t.Errorf("clone mineral field mutated: %g", v)
	}
	if r := c.Nuclei[0].Radius; r != 1e-6 {
		t.Errorf("clone nucleus mutated: %g", r)
	}
	if len(c.SpeciesOrder) != 2 || c.SpeciesOrder[0] != "CO3" {
		t.Errorf("clone species order = %v", c.SpeciesOrder)
	}
}

func TestFirstSpecies(t *testing.T) {
	d := NewGridState(2, 2, 2, 1, 1, 1)
	if f := d.FirstSpecies(); f != nil {
		t.Error("empty state should have no first species")
	}
	d.AddSpecies("B")
	d.AddSpecies("A")
	d.AddSpecies("B") // duplicates are not re-added
	if len(d.SpeciesOrder) != 2 {
		t.Fatalf("species order = %v", d.SpeciesOrder)
	}
	if f := d.FirstSpecies(); f != d.Species["B"] {
		t.Error("first species should be the first inserted, not map order")
	}
}

func TestConductivityField(t *testing.T) {
	f := ConductivityField{Default: 2.5}
	if v := f.At(4, 4, 4); v != 2.5 {
		t.Errorf("absent field conductivity = %g, want the default", v)
	}
	vals := sparse.ZerosDense(2, 2, 2)
	vals.Set(7, 1, 0, 1)
	f = ConductivityField{Values: vals, Default: 2.5}
	if v := f.At(1, 0, 1); v != 7 {
		t.Errorf("present field conductivity = %g, want 7", v)
	}
}

func TestVoxelIndexClamping(t *testing.T) {
	d := NewGridState(4, 4, 4, 0.1, 0.1, 0.1)
	i, j, k := d.voxelIndex(0.25, -3, 17)
	if i != 2 || j != 0 || k != 3 {
		t.Errorf("voxel index = (%d,%d,%d), want (2,0,3)", i, j, k)
	}
}
