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
	"math"
	"testing"
)

// FlowTestData returns a uniform porous block with default fluid
// parameters: porosity 0.3, permeability 1e-12 m², water-saturated.
func FlowTestData(nx, ny, nz int) (*GridState, FlowParams) {
	d := NewGridState(nx, ny, nz, 0.1, 0.1, 0.1)
	for n := range d.Porosity.Elements {
		d.Porosity.Elements[n] = 0.3
		d.Permeability.Elements[n] = 1e-12
		d.Pressure.Elements[n] = 1e5
	}
	return d, DefaultFlowParams()
}

// setGas puts gas saturation sg everywhere, taking it from the liquid phase.
func setGas(d *GridState, sg float64) {
	for n := range d.GasSaturation.Elements {
		d.GasSaturation.Elements[n] = sg
		d.LiquidSaturation.Elements[n] = 1 - sg
	}
}

func TestWaterRelPermEndpoints(t *testing.T) {
	const slr, m = 0.1, 0.5

	if v := WaterRelPerm(slr, slr, m); v != 0 {
		t.Errorf("kr_w at residual saturation = %g, want 0", v)
	}
	if v := WaterRelPerm(0.05, slr, m); v != 0 {
		t.Errorf("kr_w below residual saturation = %g, want 0", v)
	}
	if v := WaterRelPerm(1, slr, m); v != 1 {
		t.Errorf("kr_w at full saturation = %g, want 1", v)
	}
	prev := 0.
	for sw := slr; sw <= 1.0001; sw += 0.01 {
		v := WaterRelPerm(sw, slr, m)
		if v < prev {
			t.Fatalf("kr_w not monotone at S_w=%g: %g < %g", sw, v, prev)
		}
		if v < 0 || v > 1 {
			t.Fatalf("kr_w out of range at S_w=%g: %g", sw, v)
		}
		prev = v
	}
}

func TestGasRelPermEndpoints(t *testing.T) {
	const sgr, m = 0.05, 0.5

	if v := GasRelPerm(sgr, sgr, m); v != 0 {
		t.Errorf("kr_g at residual saturation = %g, want 0", v)
	}
	if v := GasRelPerm(1, sgr, m); v != 1 {
		t.Errorf("kr_g at full saturation = %g, want 1", v)
	}
	prev := 0.
	for sg := sgr; sg <= 1.0001; sg += 0.01 {
		v := GasRelPerm(sg, sgr, m)
		if v < prev {
			t.Fatalf("kr_g not monotone at S_g=%g: %g < %g", sg, v, prev)
		}
		prev = v
	}
}

func TestCapillaryPressure(t *testing.T) {
	const slr, m, α = 0.1, 0.5, 1e-4

	if v := CapillaryPressure(0, slr, m, α); v != 1e8 {
		t.Errorf("dry capillary pressure = %g, want the 1e8 sentinel", v)
	}
	if v := CapillaryPressure(-0.1, slr, m, α); v != 1e8 {
		t.Errorf("negative-saturation capillary pressure = %g, want the 1e8 sentinel", v)
	}
	// Wetter means lower capillary pressure.
	if lo, hi := CapillaryPressure(0.9, slr, m, α), CapillaryPressure(0.3, slr, m, α); lo >= hi {
		t.Errorf("Pc(0.9)=%g should be below Pc(0.3)=%g", lo, hi)
	}
	if v := CapillaryPressure(0.5, slr, m, α); math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		t.Errorf("Pc(0.5) = %g, want finite and non-negative", v)
	}
}

// Without any gas phase, the cheap Darcy path runs: velocities follow the
// pressure gradient and saturations stay untouched.
func TestSinglePhaseDarcy(t *testing.T) {
	const testTolerance = 1.e-12

	d, p := FlowTestData(5, 5, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			for k := 0; k < 5; k++ {
				d.Pressure.Set(2e5-1e6*float64(i)*d.Dx, i, j, k)
			}
		}
	}
	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, nil)

	// v_x = -(k/μ)·∂P/∂x = -(1e-12/1e-3)·(-1e6) = 1e-3 m/s.
	if v := d.VelocityX.Get(2, 2, 2); absDifferent(v, 1e-3, testTolerance) {
		t.Errorf("v_x = %g, want 1e-3", v)
	}
	if v := d.VelocityY.Get(2, 2, 2); absDifferent(v, 0, testTolerance) {
		t.Errorf("v_y = %g, want 0", v)
	}
	// Gravity drives the vertical component downward with no pressure
	// support: v_z = -(k/μ)·ρ·g.
	if v := d.VelocityZ.Get(2, 2, 2); absDifferent(v, -1e-9*1000*9.81, 1e-12) {
		t.Errorf("v_z = %g, want %g", v, -1e-9*1000*9.81)
	}
	for n, v := range d.LiquidSaturation.Elements {
		if v != 1 {
			t.Fatalf("element %d: liquid saturation changed on the single-phase path: %g", n, v)
		}
	}
}

// After any flow call the three phase saturations sum to one everywhere.
func TestSaturationClosure(t *testing.T) {
	const testTolerance = 1.e-6

	d, p := FlowTestData(5, 5, 5)
	// Deliberately unphysical inputs: oversaturated and undersaturated cells.
	for n := range d.LiquidSaturation.Elements {
		d.LiquidSaturation.Elements[n] = 0.5
		d.GasSaturation.Elements[n] = 0.4
		d.VaporSaturation.Elements[n] = 0.3
	}
	d.GasSaturation.Elements[0] = 0.1
	d.VaporSaturation.Elements[0] = 0

	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, nil)

	for n := range d.LiquidSaturation.Elements {
		sum := d.LiquidSaturation.Elements[n] + d.GasSaturation.Elements[n] + d.VaporSaturation.Elements[n]
		if absDifferent(sum, 1, testTolerance) {
			t.Fatalf("element %d: saturation sum = %g, want 1", n, sum)
		}
	}
}

// With water denser than gas and no pressure gradient, gas-bearing cells
// move upward: buoyancy is the only driver.
func TestGasBuoyancy(t *testing.T) {
	d, p := FlowTestData(3, 3, 3)
	setGas(d, 0.3)

	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, nil)

	if v := d.VelocityZ.Get(1, 1, 1); v <= 0 {
		t.Errorf("gas-bearing cell vertical velocity = %g, want strictly positive (upward)", v)
	}
}

// Gas escapes freely at the domain top.
func TestGasTopSink(t *testing.T) {
	d, p := FlowTestData(4, 4, 4)
	setGas(d, 0.3)

	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, nil)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := d.GasSaturation.Get(i, j, 3); v != 0 {
				t.Errorf("top-face voxel (%d,%d,3): S_gas = %g, want 0", i, j, v)
			}
			if v := d.LiquidSaturation.Get(i, j, 3); absDifferent(v, 1, 1e-9) {
				t.Errorf("top-face voxel (%d,%d,3): S_liquid = %g, want 1", i, j, v)
			}
		}
	}
}

// An active gas concentration condition overrides the ZMin face.
func TestGasBoundaryOverride(t *testing.T) {
	d, p := FlowTestData(4, 4, 4)
	setGas(d, 0.2)
	bcs := []*BoundaryCondition{{
		Location: ZMin,
		Variable: BCConcentration,
		Kind:     FixedValue,
		Value:    0,
		Species:  "Methane",
		Active:   true,
	}}

	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, bcs)

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if v := d.GasSaturation.Get(i, j, 0); v != 0 {
				t.Errorf("ZMin voxel (%d,%d,0): S_gas = %g, want 0 from the boundary override", i, j, v)
			}
		}
	}
	if v := d.GasSaturation.Get(1, 1, 1); v <= 0 {
		t.Errorf("interior S_gas = %g, want > 0", v)
	}
}

// Impermeable cells are skipped: velocities stay zero where porosity is
// below the flow cutoff.
func TestLowPorositySkipped(t *testing.T) {
	d, p := FlowTestData(5, 5, 5)
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			for k := 0; k < 5; k++ {
				d.Pressure.Set(2e5-1e6*float64(i)*d.Dx, i, j, k)
			}
		}
	}
	d.Porosity.Set(0.001, 2, 2, 2)

	solver := NewFlowSolver(p)
	solver.SolveFlow(d, 1, 0, nil)

	if v := d.VelocityX.Get(2, 2, 2); v != 0 {
		t.Errorf("low-porosity voxel v_x = %g, want 0", v)
	}
	if v := d.VelocityX.Get(1, 2, 2); v == 0 {
		t.Error("neighboring permeable voxel v_x = 0, want nonzero")
	}
}
