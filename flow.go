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
	"github.com/ctessum/atmos/advect"
	"github.com/ctessum/sparse"
)

const (
	// gasPhaseThreshold is the saturation above which a voxel counts as
	// containing a gas-like phase during mode selection.
	gasPhaseThreshold = 1e-10

	// minFlowPorosity is the porosity below which a voxel is treated as
	// impermeable and skipped.
	minFlowPorosity = 0.01

	// minMobileSaturation is the total mobile saturation below which the
	// bulk velocity is left unchanged.
	minMobileSaturation = 0.01
)

// FlowParams is the multiphase flow parameter bundle.
type FlowParams struct {
	WaterDensity float64 `desc:"Liquid water density" units:"kg/m³"`
	GasDensity   float64 `desc:"Gas density" units:"kg/m³"`

	WaterViscosity float64 `desc:"Liquid water dynamic viscosity" units:"Pa·s"`
	GasViscosity   float64 `desc:"Gas dynamic viscosity" units:"Pa·s"`

	ResidualWaterSaturation float64 `desc:"Residual (immobile) water saturation" units:"fraction"`
	ResidualGasSaturation   float64 `desc:"Residual (trapped) gas saturation" units:"fraction"`

	VanGenuchtenM     float64 `desc:"van Genuchten shape parameter m" units:"dimensionless"`
	VanGenuchtenAlpha float64 `desc:"van Genuchten entry parameter α" units:"1/Pa"`

	// CompressibilityFactor scales the local isothermal pressure feedback
	// in gas-rich cells. This is a heuristic adjustment, not a coupled
	// pressure solve.
	CompressibilityFactor float64

	Gravity float64 `desc:"Gravitational acceleration" units:"m/s²"`
}

// DefaultFlowParams returns parameters for water and a methane-like gas at
// reservoir conditions.
func DefaultFlowParams() FlowParams {
	return FlowParams{
		WaterDensity:            1000,
		GasDensity:              1.2,
		WaterViscosity:          1e-3,
		GasViscosity:            1.8e-5,
		ResidualWaterSaturation: 0.1,
		ResidualGasSaturation:   0.05,
		VanGenuchtenM:           0.5,
		VanGenuchtenAlpha:       1e-4,
		CompressibilityFactor:   0.01,
		Gravity:                 9.81,
	}
}

// FlowSolver advances the velocity and phase-saturation fields. It holds
// per-grid scratch storage for the transported gas saturation and the
// gas-phase face fluxes, reused across calls.
type FlowSolver struct {
	params FlowParams

	gasScratch          *sparse.DenseArray
	fluxX, fluxY, fluxZ *sparse.DenseArray // gas-phase Darcy flux [m/s]
}

// NewFlowSolver creates a multiphase flow solver.
func NewFlowSolver(p FlowParams) *FlowSolver {
	return &FlowSolver{params: p}
}

// SolveFlow advances the velocity, saturation, and (indirectly) pressure
// fields in place over Δt seconds at simulation time t. If no voxel holds a
// gas-like phase, a cheaper single-phase Darcy pass runs instead of the full
// multiphase transport; most of a domain is single-phase liquid most of the
// time.
func (fs *FlowSolver) SolveFlow(state *GridState, Δt, t float64, bcs []*BoundaryCondition) {
	if fs.params.WaterViscosity <= 0 || fs.params.GasViscosity <= 0 {
		return
	}
	if !fs.hasGasPhase(state) {
		fs.solveSinglePhase(state)
		return
	}
	fs.ensureScratch(state)
	fs.solvePhaseVelocities(state)
	fs.transportGas(state, Δt, t, bcs)
	fs.closeSaturations(state)
	fs.adjustPressure(state, Δt)
}

// hasGasPhase reports whether any voxel holds gas or vapor above the mode
// selection threshold.
func (fs *FlowSolver) hasGasPhase(state *GridState) bool {
	for i, sg := range state.GasSaturation.Elements {
		if sg > gasPhaseThreshold || state.VaporSaturation.Elements[i] > gasPhaseThreshold {
			return true
		}
	}
	return false
}

func (fs *FlowSolver) ensureScratch(state *GridState) {
	n := len(state.GasSaturation.Elements)
	if fs.gasScratch == nil || len(fs.gasScratch.Elements) != n {
		fs.gasScratch = sparse.ZerosDense(state.Nx, state.Ny, state.Nz)
		fs.fluxX = sparse.ZerosDense(state.Nx, state.Ny, state.Nz)
		fs.fluxY = sparse.ZerosDense(state.Nx, state.Ny, state.Nz)
		fs.fluxZ = sparse.ZerosDense(state.Nx, state.Ny, state.Nz)
	}
}

// solveSinglePhase applies Darcy's law to the liquid phase, writing the bulk
// velocity fields directly. No saturation update occurs on this path.
func (fs *FlowSolver) solveSinglePhase(state *GridState) {
	p := fs.params
	parallelSweep(1, state.Nx-1, func(i int) {
		for j := 1; j < state.Ny-1; j++ {
			for k := 1; k < state.Nz-1; k++ {
				if state.Porosity.Get(i, j, k) < minFlowPorosity {
					continue
				}
				mob := state.Permeability.Get(i, j, k) / p.WaterViscosity
				dpdx := (state.Pressure.Get(i+1, j, k) - state.Pressure.Get(i-1, j, k)) / (2 * state.Dx)
				dpdy := (state.Pressure.Get(i, j+1, k) - state.Pressure.Get(i, j-1, k)) / (2 * state.Dy)
				dpdz := (state.Pressure.Get(i, j, k+1) - state.Pressure.Get(i, j, k-1)) / (2 * state.Dz)

				state.VelocityX.Set(-mob*(dpdx-state.ForceX.Get(i, j, k)), i, j, k)
				state.VelocityY.Set(-mob*(dpdy-state.ForceY.Get(i, j, k)), i, j, k)
				state.VelocityZ.Set(-mob*(dpdz-state.ForceZ.Get(i, j, k)+p.WaterDensity*p.Gravity), i, j, k)
			}
		}
	})
}

// gasPressure returns the gas-phase pressure at a voxel: the liquid pressure
// plus the capillary pressure at the local water saturation.
func (fs *FlowSolver) gasPressure(state *GridState, i, j, k int) float64 {
	p := fs.params
	return state.Pressure.Get(i, j, k) +
		CapillaryPressure(state.LiquidSaturation.Get(i, j, k),
			p.ResidualWaterSaturation, p.VanGenuchtenM, p.VanGenuchtenAlpha)
}

// solvePhaseVelocities computes per-phase Darcy velocities with van
// Genuchten–Mualem mobilities, stores the gas-phase flux for the transport
// step, and writes the saturation-weighted bulk velocity.
func (fs *FlowSolver) solvePhaseVelocities(state *GridState) {
	p := fs.params
	parallelSweep(1, state.Nx-1, func(i int) {
		for j := 1; j < state.Ny-1; j++ {
			for k := 1; k < state.Nz-1; k++ {
				if state.Porosity.Get(i, j, k) < minFlowPorosity {
					continue
				}
				sw := state.LiquidSaturation.Get(i, j, k)
				sg := state.GasSaturation.Get(i, j, k) + state.VaporSaturation.Get(i, j, k)
				perm := state.Permeability.Get(i, j, k)

				λw := perm * WaterRelPerm(sw, p.ResidualWaterSaturation, p.VanGenuchtenM) / p.WaterViscosity
				λg := perm * GasRelPerm(sg, p.ResidualGasSaturation, p.VanGenuchtenM) / p.GasViscosity

				dpdx := (state.Pressure.Get(i+1, j, k) - state.Pressure.Get(i-1, j, k)) / (2 * state.Dx)
				dpdy := (state.Pressure.Get(i, j+1, k) - state.Pressure.Get(i, j-1, k)) / (2 * state.Dy)
				dpdz := (state.Pressure.Get(i, j, k+1) - state.Pressure.Get(i, j, k-1)) / (2 * state.Dz)

				dpgdx := (fs.gasPressure(state, i+1, j, k) - fs.gasPressure(state, i-1, j, k)) / (2 * state.Dx)
				dpgdy := (fs.gasPressure(state, i, j+1, k) - fs.gasPressure(state, i, j-1, k)) / (2 * state.Dy)
				dpgdz := (fs.gasPressure(state, i, j, k+1) - fs.gasPressure(state, i, j, k-1)) / (2 * state.Dz)

				fx := state.ForceX.Get(i, j, k)
				fy := state.ForceY.Get(i, j, k)
				fz := state.ForceZ.Get(i, j, k)

				vwx := -λw * (dpdx - fx)
				vwy := -λw * (dpdy - fy)
				vwz := -λw * (dpdz - fz + p.WaterDensity*p.Gravity)

				// Water is denser than gas, so the gas phase carries an
				// explicit upward buoyancy term on top of the
				// capillary-adjusted pressure gradient. Without it gas
				// never rises.
				vgx := -λg * (dpgdx - fx)
				vgy := -λg * (dpgdy - fy)
				vgz := -λg*(dpgdz-fz) + λg*(p.WaterDensity-p.GasDensity)*p.Gravity

				fs.fluxX.Set(vgx, i, j, k)
				fs.fluxY.Set(vgy, i, j, k)
				fs.fluxZ.Set(vgz, i, j, k)

				if stot := sw + sg; stot > minMobileSaturation {
					state.VelocityX.Set((sw*vwx+sg*vgx)/stot, i, j, k)
					state.VelocityY.Set((sw*vwy+sg*vgy)/stot, i, j, k)
					state.VelocityZ.Set((sw*vwz+sg*vgz)/stot, i, j, k)
				}
			}
		}
	})
}

// transportGas moves gas saturation by explicit upwind finite-volume fluxes.
// Lateral and bottom domain faces are reflective (no flux); the top face is
// a hard sink, so gas escapes freely at the domain top. Active Concentration
// conditions for a gas-like species override the ZMin/ZMax face directly.
func (fs *FlowSolver) transportGas(state *GridState, Δt, t float64, bcs []*BoundaryCondition) {
	S := state.GasSaturation
	copy(fs.gasScratch.Elements, S.Elements)

	parallelSweep(1, state.Nx-1, func(i int) {
		for j := 1; j < state.Ny-1; j++ {
			for k := 1; k < state.Nz-1; k++ {
				φ := state.Porosity.Get(i, j, k)
				if φ < minFlowPorosity {
					continue
				}
				sc := S.Get(i, j, k)
				fxc := fs.fluxX.Get(i, j, k)
				fyc := fs.fluxY.Get(i, j, k)
				fzc := fs.fluxZ.Get(i, j, k)

				// Face flux takes the upstream cell's saturation; faces on
				// the lateral and bottom domain boundaries carry no flux.
				var ΔS float64
				if i > 1 {
					u := 0.5 * (fs.fluxX.Get(i-1, j, k) + fxc)
					ΔS += advect.UpwindFlux(u, S.Get(i-1, j, k), sc, state.Dx) * Δt
				}
				if i < state.Nx-2 {
					u := 0.5 * (fxc + fs.fluxX.Get(i+1, j, k))
					ΔS -= advect.UpwindFlux(u, sc, S.Get(i+1, j, k), state.Dx) * Δt
				}
				if j > 1 {
					u := 0.5 * (fs.fluxY.Get(i, j-1, k) + fyc)
					ΔS += advect.UpwindFlux(u, S.Get(i, j-1, k), sc, state.Dy) * Δt
				}
				if j < state.Ny-2 {
					u := 0.5 * (fyc + fs.fluxY.Get(i, j+1, k))
					ΔS -= advect.UpwindFlux(u, sc, S.Get(i, j+1, k), state.Dy) * Δt
				}
				if k > 1 {
					u := 0.5 * (fs.fluxZ.Get(i, j, k-1) + fzc)
					ΔS += advect.UpwindFlux(u, S.Get(i, j, k-1), sc, state.Dz) * Δt
				}
				// The top neighbor may be the sink layer; the outflux is
				// kept so that rising gas leaves the domain.
				u := 0.5 * (fzc + fs.fluxZ.Get(i, j, k+1))
				ΔS -= advect.UpwindFlux(u, sc, S.Get(i, j, k+1), state.Dz) * Δt

				fs.gasScratch.Set(clamp(sc+ΔS/φ, 0, 1), i, j, k)
			}
		}
	})

	copy(S.Elements, fs.gasScratch.Elements)
	setFace(S, ZMax, state.Nx, state.Ny, state.Nz, 0) // hard sink at the top

	for _, bc := range bcs {
		if !bc.Active || bc.Variable != BCConcentration {
			continue
		}
		switch bc.Species {
		case "Gas", "NCG", "Methane":
		default:
			continue
		}
		if bc.Location == ZMin || bc.Location == ZMax {
			setFace(S, bc.Location, state.Nx, state.Ny, state.Nz, clamp(bc.ValueAt(t), 0, 1))
		}
	}
}

// closeSaturations enforces S_liquid + S_gas + S_vapor == 1 in every voxel:
// an excess is rescaled proportionally across all three phases, a deficit is
// assigned entirely to liquid. Only the sum invariant is guaranteed; no
// single phase conserves mass exactly under pathological inputs.
func (fs *FlowSolver) closeSaturations(state *GridState) {
	sl := state.LiquidSaturation.Elements
	sg := state.GasSaturation.Elements
	sv := state.VaporSaturation.Elements
	for n := range sl {
		sum := sl[n] + sg[n] + sv[n]
		if sum > 1 {
			sl[n] /= sum
			sg[n] /= sum
			sv[n] /= sum
		} else {
			sl[n] += 1 - sum
		}
	}
}

// adjustPressure nudges pressure down in gas-rich cells with a simplified
// isothermal compressibility term. This is an approximation, not a coupled
// pressure solve.
func (fs *FlowSolver) adjustPressure(state *GridState, Δt float64) {
	P := state.Pressure.Elements
	for n, sg := range state.GasSaturation.Elements {
		P[n] -= sg * 1000 * Δt * fs.params.CompressibilityFactor
	}
}
