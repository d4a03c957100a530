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
	"github.com/ctessum/sparse"
)

// HeatParams is the heat transfer parameter bundle.
type HeatParams struct {
	// Conductivity is the thermal conductivity input: a heterogeneous field
	// when present, otherwise the scalar default applies uniformly.
	Conductivity ConductivityField

	Density      float64 // rock density [kg/m³]
	SpecificHeat float64 // specific heat capacity [J/(kg·K)]

	// Source is an optional volumetric heat source [W/m³] as a function of
	// grid index and simulation time.
	Source func(i, j, k int, t float64) float64
}

// HeatSolver advances the temperature field by explicit conduction,
// convection, and source terms. It owns a scratch buffer sized to the grid
// so that each sweep reads only the previous step's field (double buffer);
// the authoritative state is committed only after the full sweep completes.
type HeatSolver struct {
	params  HeatParams
	scratch *sparse.DenseArray
}

// NewHeatSolver creates a heat transfer solver.
func NewHeatSolver(p HeatParams) *HeatSolver {
	return &HeatSolver{params: p}
}

// SolveHeat advances state.Temperature in place over one step of at most Δt
// seconds, at simulation time t. The step is internally clamped to the
// explicit-diffusion stability limit 1/(2α·(1/dx²+1/dy²+1/dz²)), so the
// solver never diverges for an oversized caller step; it silently sub-steps
// once per call, and callers needing exact time accounting must call
// repeatedly.
func (hs *HeatSolver) SolveHeat(state *GridState, Δt, t float64, bcs []*BoundaryCondition) {
	p := hs.params
	ρCp := p.Density * p.SpecificHeat
	if ρCp <= 0 {
		return
	}

	dt := Δt
	if α := p.Conductivity.Default / ρCp; α > 0 {
		// All three spacings enter the limit; on an anisotropic grid the
		// finest axis dominates.
		inv := 1/(state.Dx*state.Dx) + 1/(state.Dy*state.Dy) + 1/(state.Dz*state.Dz)
		if stable := 1 / (2 * α * inv); stable < dt {
			dt = stable
		}
	}

	// Boundary handling happens before the sweep so that a face condition
	// influences adjacent interior voxels within the same call: default
	// zero-gradient copy into the halo on all six faces, then active
	// temperature conditions overwrite their face in list order. A
	// FixedValue condition pins the face; a FixedFlux condition sets the
	// halo so that conduction carries the prescribed flux into the domain.
	zeroGradientHalo(state.Temperature, state.Nx, state.Ny, state.Nz)
	for _, bc := range bcs {
		if !bc.Active || bc.Variable != BCTemperature {
			continue
		}
		switch bc.Kind {
		case FixedValue:
			setFace(state.Temperature, bc.Location, state.Nx, state.Ny, state.Nz, bc.ValueAt(t))
		case FixedFlux:
			hs.setFluxFace(state, bc.Location, bc.Flux)
		}
	}

	if hs.scratch == nil || len(hs.scratch.Elements) != len(state.Temperature.Elements) {
		hs.scratch = sparse.ZerosDense(state.Nx, state.Ny, state.Nz)
	}
	copy(hs.scratch.Elements, state.Temperature.Elements)

	T := state.Temperature
	dx2 := state.Dx * state.Dx
	dy2 := state.Dy * state.Dy
	dz2 := state.Dz * state.Dz

	parallelSweep(1, state.Nx-1, func(i int) {
		for j := 1; j < state.Ny-1; j++ {
			for k := 1; k < state.Nz-1; k++ {
				tc := T.Get(i, j, k)
				tw, te := T.Get(i-1, j, k), T.Get(i+1, j, k)
				ts, tn := T.Get(i, j-1, k), T.Get(i, j+1, k)
				tb, ta := T.Get(i, j, k-1), T.Get(i, j, k+1)

				kc := p.Conductivity.At(i, j, k)
				kw := HarmonicMean(kc, p.Conductivity.At(i-1, j, k))
				ke := HarmonicMean(kc, p.Conductivity.At(i+1, j, k))
				ks := HarmonicMean(kc, p.Conductivity.At(i, j-1, k))
				kn := HarmonicMean(kc, p.Conductivity.At(i, j+1, k))
				kb := HarmonicMean(kc, p.Conductivity.At(i, j, k-1))
				ka := HarmonicMean(kc, p.Conductivity.At(i, j, k+1))

				conduction := ((ke*(te-tc)-kw*(tc-tw))/dx2 +
					(kn*(tn-tc)-ks*(tc-ts))/dy2 +
					(ka*(ta-tc)-kb*(tc-tb))/dz2) / ρCp

				// First-order upwind differencing per axis keeps the
				// advective term stable.
				vx := state.VelocityX.Get(i, j, k)
				vy := state.VelocityY.Get(i, j, k)
				vz := state.VelocityZ.Get(i, j, k)
				var dTdx, dTdy, dTdz float64
				if vx > 0 {
					dTdx = (tc - tw) / state.Dx
				} else {
					dTdx = (te - tc) / state.Dx
				}
				if vy > 0 {
					dTdy = (tc - ts) / state.Dy
				} else {
					dTdy = (tn - tc) / state.Dy
				}
				if vz > 0 {
					dTdz = (tc - tb) / state.Dz
				} else {
					dTdz = (ta - tc) / state.Dz
				}
				convection := -(vx*dTdx + vy*dTdy + vz*dTdz)

				var source float64
				if p.Source != nil {
					source = p.Source(i, j, k, t) / ρCp
				}

				hs.scratch.Set(tc+dt*(conduction+convection+source), i, j, k)
			}
		}
	})

	copy(state.Temperature.Elements, hs.scratch.Elements)
}

// setFluxFace overwrites one halo face so that conduction across it carries
// the prescribed flux q [W/m²] into the domain: T_halo = T_in + q·h/κ, with
// h the spacing along the face normal and κ the conductivity of the interior
// neighbor. Face cells backed by a non-conducting voxel keep their
// zero-gradient value, matching the blocked interior flux.
func (hs *HeatSolver) setFluxFace(state *GridState, loc BCLocation, q float64) {
	T := state.Temperature
	switch loc {
	case XMin, XMax:
		i, in := 0, 1
		if loc == XMax {
			i, in = state.Nx-1, state.Nx-2
		}
		for j := 0; j < state.Ny; j++ {
			for k := 0; k < state.Nz; k++ {
				if κ := hs.params.Conductivity.At(in, j, k); κ > 0 {
					T.Set(T.Get(in, j, k)+q*state.Dx/κ, i, j, k)
				}
			}
		}
	case YMin, YMax:
		j, jn := 0, 1
		if loc == YMax {
			j, jn = state.Ny-1, state.Ny-2
		}
		for i := 0; i < state.Nx; i++ {
			for k := 0; k < state.Nz; k++ {
				if κ := hs.params.Conductivity.At(i, jn, k); κ > 0 {
					T.Set(T.Get(i, jn, k)+q*state.Dy/κ, i, j, k)
				}
			}
		}
	case ZMin, ZMax:
		k, kn := 0, 1
		if loc == ZMax {
			k, kn = state.Nz-1, state.Nz-2
		}
		for i := 0; i < state.Nx; i++ {
			for j := 0; j < state.Ny; j++ {
				if κ := hs.params.Conductivity.At(i, j, kn); κ > 0 {
					T.Set(T.Get(i, j, kn)+q*state.Dz/κ, i, j, k)
				}
			}
		}
	}
}

// zeroGradientHalo copies the first interior layer into the halo on all six
// faces (Neumann extrapolation).
func zeroGradientHalo(arr *sparse.DenseArray, nx, ny, nz int) {
	for j := 0; j < ny; j++ {
		for k := 0; k < nz; k++ {
			arr.Set(arr.Get(1, j, k), 0, j, k)
			arr.Set(arr.Get(nx-2, j, k), nx-1, j, k)
		}
	}
	for i := 0; i < nx; i++ {
		for k := 0; k < nz; k++ {
			arr.Set(arr.Get(i, 1, k), i, 0, k)
			arr.Set(arr.Get(i, ny-2, k), i, ny-1, k)
		}
	}
	for i := 0; i < nx; i++ {
		for j := 0; j < ny; j++ {
			arr.Set(arr.Get(i, j, 1), i, j, 0)
			arr.Set(arr.Get(i, j, nz-2), i, j, nz-1)
		}
	}
}

// setFace overwrites one whole domain face of arr with v. It writes
// through Elements because sparse.DenseArray.Set silently drops zero
// values, and v may legitimately be zero.
func setFace(arr *sparse.DenseArray, loc BCLocation, nx, ny, nz int, v float64) {
	switch loc {
	case XMin, XMax:
		i := 0
		if loc == XMax {
			i = nx - 1
		}
		for j := 0; j < ny; j++ {
			for k := 0; k < nz; k++ {
				arr.Elements[arr.Index1d(i, j, k)] = v
			}
		}
	case YMin, YMax:
		j := 0
		if loc == YMax {
			j = ny - 1
		}
		for i := 0; i < nx; i++ {
			for k := 0; k < nz; k++ {
				arr.Elements[arr.Index1d(i, j, k)] = v
			}
		}
	case ZMin, ZMax:
		k := 0
		if loc == ZMax {
			k = nz - 1
		}
		for i := 0; i < nx; i++ {
			for j := 0; j < ny; j++ {
				arr.Elements[arr.Index1d(i, j, k)] = v
			}
		}
	}
}
