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
	"math/rand"
)

// gasConstant is the molar gas constant [J/(mol·K)].
const gasConstant = 8.314462618

// minPorosity is the floor applied when crystal growth consumes pore space,
// so a cell never seals completely.
const minPorosity = 0.01

// Nucleus is one growing mineral crystal. Nuclei are owned by the grid
// state's nucleus list, created here, mutated in place each step, and never
// removed; dissolution is out of scope.
type Nucleus struct {
	ID         int
	X, Y, Z    float64 // position [m]
	Radius     float64 // m
	Mineral    string
	GrowthRate float64 // m/s
	BirthTime  float64 // s
}

// NucleationSite is a static candidate location for mineral nucleation,
// supplied by the domain-setup layer and read-only to the solver.
type NucleationSite struct {
	X, Y, Z                 float64 // position [m]
	Mineral                 string
	InitialRadius           float64 // m
	ActivationEnergy        float64 // J/mol
	CriticalSupersaturation float64
	Active                  bool
}

// NucleationParams is the nucleation parameter bundle.
type NucleationParams struct {
	// EquilibriumConcentration [mol/L] is the solubility proxy dividing the
	// local concentration of the first tracked species to obtain
	// supersaturation. A richer activity-product model is a future
	// extension.
	EquilibriumConcentration float64

	// RateConstant [1/s] scales the Arrhenius nucleation rate law.
	RateConstant float64

	// GrowthRate [m/s] is the linear radius growth rate assigned to newly
	// spawned nuclei.
	GrowthRate float64
}

// NucleationSolver evaluates supersaturation at discrete sites,
// stochastically spawns mineral nuclei, and grows existing nuclei, feeding
// the volume change back into porosity. The random source is owned by the
// caller so nucleation sequences are reproducible under a fixed seed.
type NucleationSolver struct {
	params NucleationParams
	rng    *rand.Rand
	nextID int
}

// NewNucleationSolver creates a nucleation solver drawing from rng.
func NewNucleationSolver(p NucleationParams, rng *rand.Rand) *NucleationSolver {
	return &NucleationSolver{params: p, rng: rng}
}

// UpdateNucleation runs one nucleation and growth step of Δt seconds at
// simulation time t. It may append to state.Nuclei and mutates existing
// nuclei, the mineral volume-fraction fields, and porosity. Growth and
// nucleation both run every call.
func (ns *NucleationSolver) UpdateNucleation(state *GridState, sites []*NucleationSite, Δt, t float64) {
	for _, site := range sites {
		if !site.Active {
			continue
		}
		i, j, k := state.voxelIndex(site.X, site.Y, site.Z)
		rate := ns.nucleationRate(state, site, i, j, k)
		if rate <= 0 {
			continue
		}
		// Poisson-process approximation for small rate·Δt.
		if ns.rng.Float64() < rate*Δt {
			ns.nextID++
			state.Nuclei = append(state.Nuclei, &Nucleus{
				ID:         ns.nextID,
				X:          site.X,
				Y:          site.Y,
				Z:          site.Z,
				Radius:     site.InitialRadius,
				Mineral:    site.Mineral,
				GrowthRate: ns.params.GrowthRate,
				BirthTime:  t,
			})
		}
	}

	ns.growNuclei(state, Δt)
}

// supersaturation returns the ratio of the first tracked species
// concentration to the equilibrium concentration at a voxel. With no
// tracked species it defaults to 1: no growth or nucleation bias.
func (ns *NucleationSolver) supersaturation(state *GridState, i, j, k int) float64 {
	conc := state.FirstSpecies()
	if conc == nil || ns.params.EquilibriumConcentration <= 0 {
		return 1
	}
	return conc.Get(i, j, k) / ns.params.EquilibriumConcentration
}

// nucleationRate evaluates the site-specific Arrhenius rate law [1/s].
func (ns *NucleationSolver) nucleationRate(state *GridState, site *NucleationSite, i, j, k int) float64 {
	s := ns.supersaturation(state, i, j, k)
	if s <= site.CriticalSupersaturation {
		return 0
	}
	T := state.Temperature.Get(i, j, k)
	if T <= 0 {
		return 0
	}
	return ns.params.RateConstant *
		math.Exp(-site.ActivationEnergy/(gasConstant*T)) *
		(s - site.CriticalSupersaturation)
}

// growNuclei advances every nucleus radius linearly and converts the added
// crystal volume into a porosity decrement in the host voxel, floored at
// minPorosity. The decrement actually applied is credited to the nucleus's
// mineral volume-fraction field.
func (ns *NucleationSolver) growNuclei(state *GridState, Δt float64) {
	cellVolume := state.Dx * state.Dy * state.Dz
	for _, n := range state.Nuclei {
		dr := n.GrowthRate * Δt
		if dr <= 0 {
			continue
		}
		// Sphere volume derivative: dV = 4πr²·dr.
		dV := 4 * math.Pi * n.Radius * n.Radius * dr
		n.Radius += dr

		i, j, k := state.voxelIndex(n.X, n.Y, n.Z)
		φ := state.Porosity.Get(i, j, k)
		φnew := math.Max(φ-dV/cellVolume, minPorosity)
		if φnew >= φ {
			continue
		}
		state.Porosity.Set(φnew, i, j, k)

		mineral := state.AddMineral(n.Mineral)
		mineral.Set(mineral.Get(i, j, k)+(φ-φnew), i, j, k)
	}
}
