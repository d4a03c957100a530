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

// GridState holds every field of one simulation time snapshot on a shared
// structured voxel grid. All arrays have shape (Nx, Ny, Nz). The state is
// constructed once per run at a fixed grid size and advanced in place by
// repeated solver calls; Clone takes a deep copy when a history snapshot
// is needed.
type GridState struct {
	Nx, Ny, Nz int     // grid dimensions [voxels]
	Dx, Dy, Dz float64 // grid spacing [m]

	Temperature  *sparse.DenseArray `desc:"Temperature" units:"K"`
	Pressure     *sparse.DenseArray `desc:"Pore pressure" units:"Pa"`
	Porosity     *sparse.DenseArray `desc:"Porosity" units:"volume fraction"`
	Permeability *sparse.DenseArray `desc:"Intrinsic permeability" units:"m²"`

	VelocityX *sparse.DenseArray `desc:"East-West fluid velocity" units:"m/s"`
	VelocityY *sparse.DenseArray `desc:"North-South fluid velocity" units:"m/s"`
	VelocityZ *sparse.DenseArray `desc:"Vertical fluid velocity" units:"m/s"`

	ForceX *sparse.DenseArray `desc:"East-West body force" units:"N/m³"`
	ForceY *sparse.DenseArray `desc:"North-South body force" units:"N/m³"`
	ForceZ *sparse.DenseArray `desc:"Vertical body force" units:"N/m³"`

	LiquidSaturation *sparse.DenseArray `desc:"Liquid water saturation" units:"fraction"`
	GasSaturation    *sparse.DenseArray `desc:"Gas saturation" units:"fraction"`
	VaporSaturation  *sparse.DenseArray `desc:"Water vapor saturation" units:"fraction"`

	// Species holds one concentration field [mol/L] per tracked chemical
	// species. SpeciesOrder records insertion order so that "the first
	// tracked species" is well defined; map iteration order is not.
	Species      map[string]*sparse.DenseArray
	SpeciesOrder []string

	// Minerals holds one volume-fraction field per tracked mineral.
	Minerals map[string]*sparse.DenseArray

	// Nuclei are the active mineral nuclei. They are created by the
	// nucleation solver and mutated in place; dissolution is out of scope,
	// so nuclei are never removed.
	Nuclei []*Nucleus
}

// NewGridState allocates a state with the given dimensions [voxels] and
// spacing [m]. Temperature initializes to 293.15 K and liquid saturation
// to 1 (single-phase water); everything else starts at zero.
func NewGridState(nx, ny, nz int, dx, dy, dz float64) *GridState {
	s := &GridState{
		Nx: nx, Ny: ny, Nz: nz,
		Dx: dx, Dy: dy, Dz: dz,

		Temperature:  sparse.ZerosDense(nx, ny, nz),
		Pressure:     sparse.ZerosDense(nx, ny, nz),
		Porosity:     sparse.ZerosDense(nx, ny, nz),
		Permeability: sparse.ZerosDense(nx, ny, nz),

		VelocityX: sparse.ZerosDense(nx, ny, nz),
		VelocityY: sparse.ZerosDense(nx, ny, nz),
		VelocityZ: sparse.ZerosDense(nx, ny, nz),

		ForceX: sparse.ZerosDense(nx, ny, nz),
		ForceY: sparse.ZerosDense(nx, ny, nz),
		ForceZ: sparse.ZerosDense(nx, ny, nz),

		LiquidSaturation: sparse.ZerosDense(nx, ny, nz),
		GasSaturation:    sparse.ZerosDense(nx, ny, nz),
		VaporSaturation:  sparse.ZerosDense(nx, ny, nz),

		Species:  make(map[string]*sparse.DenseArray),
		Minerals: make(map[string]*sparse.DenseArray),
	}
	for i := range s.Temperature.Elements {
		s.Temperature.Elements[i] = 293.15
		s.LiquidSaturation.Elements[i] = 1
	}
	return s
}

// AddSpecies allocates a concentration field for the named species if one
// does not already exist, and returns it.
func (s *GridState) AddSpecies(name string) *sparse.DenseArray {
	if f, ok := s.Species[name]; ok {
		return f
	}
	f := sparse.ZerosDense(s.Nx, s.Ny, s.Nz)
	s.Species[name] = f
	s.SpeciesOrder = append(s.SpeciesOrder, name)
	return f
}

// AddMineral allocates a volume-fraction field for the named mineral if one
// does not already exist, and returns it.
func (s *GridState) AddMineral(name string) *sparse.DenseArray {
	if f, ok := s.Minerals[name]; ok {
		return f
	}
	f := sparse.ZerosDense(s.Nx, s.Ny, s.Nz)
	s.Minerals[name] = f
	return f
}

// FirstSpecies returns the concentration field of the first tracked species,
// or nil if no species are tracked.
func (s *GridState) FirstSpecies() *sparse.DenseArray {
	if len(s.SpeciesOrder) == 0 {
		return nil
	}
	return s.Species[s.SpeciesOrder[0]]
}

// Clone returns a deep copy of the state, including the per-species and
// per-mineral fields and the nucleus list.
func (s *GridState) Clone() *GridState {
	c := &GridState{
		Nx: s.Nx, Ny: s.Ny, Nz: s.Nz,
		Dx: s.Dx, Dy: s.Dy, Dz: s.Dz,

		Temperature:  s.Temperature.Copy(),
		Pressure:     s.Pressure.Copy(),
		Porosity:     s.Porosity.Copy(),
		Permeability: s.Permeability.Copy(),

		VelocityX: s.VelocityX.Copy(),
		VelocityY: s.VelocityY.Copy(),
		VelocityZ: s.VelocityZ.Copy(),

		ForceX: s.ForceX.Copy(),
		ForceY: s.ForceY.Copy(),
		ForceZ: s.ForceZ.Copy(),

		LiquidSaturation: s.LiquidSaturation.Copy(),
		GasSaturation:    s.GasSaturation.Copy(),
		VaporSaturation:  s.VaporSaturation.Copy(),

		Species:      make(map[string]*sparse.DenseArray, len(s.Species)),
		SpeciesOrder: append([]string{}, s.SpeciesOrder...),
		Minerals:     make(map[string]*sparse.DenseArray, len(s.Minerals)),
	}
	for name, f := range s.Species {
		c.Species[name] = f.Copy()
	}
	for name, f := range s.Minerals {
		c.Minerals[name] = f.Copy()
	}
	if len(s.Nuclei) > 0 {
		c.Nuclei = make([]*Nucleus, len(s.Nuclei))
		for i, n := range s.Nuclei {
			nn := *n
			c.Nuclei[i] = &nn
		}
	}
	return c
}

// voxelIndex maps a continuous position [m] to the nearest voxel by scaled
// truncation, clamping out-of-grid coordinates into range.
func (s *GridState) voxelIndex(x, y, z float64) (i, j, k int) {
	i = clampInt(int(x/s.Dx), 0, s.Nx-1)
	j = clampInt(int(y/s.Dy), 0, s.Ny-1)
	k = clampInt(int(z/s.Dz), 0, s.Nz-1)
	return
}

// ConductivityField is the heterogeneous thermal conductivity input of the
// heat solver [W/(m·K)]. Values may be absent (nil), in which case the
// scalar Default applies uniformly; At hides the branch from call sites.
type ConductivityField struct {
	Values  *sparse.DenseArray
	Default float64
}

// At returns the conductivity at a voxel.
func (f ConductivityField) At(i, j, k int) float64 {
	if f.Values == nil {
		return f.Default
	}
	return f.Values.Get(i, j, k)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
