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

import "math"

// Van Genuchten–Mualem constitutive laws relating phase saturation to
// relative permeability and capillary pressure via the shape parameters
// m and α.

// WaterRelPerm returns the water relative permeability [0–1] at water
// saturation sw, for residual water saturation slr and shape parameter m.
func WaterRelPerm(sw, slr, m float64) float64 {
	if sw <= slr {
		return 0
	}
	if sw >= 1 {
		return 1
	}
	se := clamp((sw-slr)/(1-slr), 0, 1)
	inner := 1 - math.Pow(1-math.Pow(se, 1/m), m)
	return math.Sqrt(se) * inner * inner
}

// GasRelPerm returns the gas relative permeability [0–1] at gas saturation
// sg, for residual gas saturation sgr and shape parameter m. It is the same
// functional family as the water curve with the outer power 2m.
func GasRelPerm(sg, sgr, m float64) float64 {
	if sg <= sgr {
		return 0
	}
	if sg >= 1 {
		return 1
	}
	se := clamp((sg-sgr)/(1-sgr), 0, 1)
	inner := 1 - math.Pow(1-math.Pow(se, 1/m), m)
	return math.Sqrt(se) * math.Pow(inner, 2*m)
}

// CapillaryPressure returns the capillary pressure [Pa] at water saturation
// sw for residual water saturation slr and van Genuchten parameters m and
// α [1/Pa]. A fully dry state returns 1e8 Pa, a large but finite sentinel.
func CapillaryPressure(sw, slr, m, α float64) float64 {
	if sw <= 0 {
		return 1e8
	}
	se := clamp((sw-slr)/(1-slr), 0.01, 0.99)
	n := 1 / (1 - m)
	return math.Pow(math.Pow(se, -1/m)-1, 1/n) / α
}

// HarmonicMean returns the harmonic face average 2ab/(a+b), guarded against
// zero-valued inputs. Harmonic averaging preserves flux continuity across a
// material discontinuity; arithmetic averaging would not.
func HarmonicMean(a, b float64) float64 {
	const ε = 1e-20
	return 2 * a * b / (a + b + ε)
}
