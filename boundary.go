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
	"fmt"

	"github.com/Knetic/govaluate"
	"github.com/spf13/cast"
)

// BCLocation identifies the domain face a boundary condition applies to.
type BCLocation int

// Domain faces.
const (
	XMin BCLocation = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

func (l BCLocation) String() string {
	switch l {
	case XMin:
		return "XMin"
	case XMax:
		return "XMax"
	case YMin:
		return "YMin"
	case YMax:
		return "YMax"
	case ZMin:
		return "ZMin"
	case ZMax:
		return "ZMax"
	}
	return fmt.Sprintf("BCLocation(%d)", int(l))
}

// ParseBCLocation converts a face name to a BCLocation.
func ParseBCLocation(s string) (BCLocation, error) {
	for l := XMin; l <= ZMax; l++ {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("georeactor: unknown boundary location %q", s)
}

// BCVariable identifies the physical variable a boundary condition constrains.
type BCVariable int

// Constrained variables.
const (
	BCTemperature BCVariable = iota
	BCPressure
	BCConcentration
	BCSaturation
)

func (v BCVariable) String() string {
	switch v {
	case BCTemperature:
		return "Temperature"
	case BCPressure:
		return "Pressure"
	case BCConcentration:
		return "Concentration"
	case BCSaturation:
		return "Saturation"
	}
	return fmt.Sprintf("BCVariable(%d)", int(v))
}

// ParseBCVariable converts a variable name to a BCVariable.
func ParseBCVariable(s string) (BCVariable, error) {
	for v := BCTemperature; v <= BCSaturation; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("georeactor: unknown boundary variable %q", s)
}

// BCKind identifies how a boundary condition constrains its variable.
type BCKind int

// Condition kinds.
const (
	FixedValue BCKind = iota
	FixedFlux
)

func (k BCKind) String() string {
	switch k {
	case FixedValue:
		return "FixedValue"
	case FixedFlux:
		return "FixedFlux"
	}
	return fmt.Sprintf("BCKind(%d)", int(k))
}

// BoundaryCondition is one entry of the ordered condition list supplied to a
// solver call. Only Active conditions participate; faces with no condition
// fall back to zero-gradient extrapolation. Conditions are applied in list
// order, so a later entry for the same face wins.
type BoundaryCondition struct {
	Location BCLocation
	Variable BCVariable
	Kind     BCKind
	Value    float64
	Flux     float64 // boundary flux for FixedFlux conditions [W/m²], positive into the domain
	Species  string  // species name, for Concentration conditions
	Active   bool

	expr *govaluate.EvaluableExpression
}

// SetExpression attaches a time-dependent value to the condition, given as a
// govaluate expression in the variable t [s], e.g. "300 + 10*t".
func (b *BoundaryCondition) SetExpression(expr string) error {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return fmt.Errorf("georeactor: parsing boundary expression %q: %v", expr, err)
	}
	b.expr = e
	return nil
}

// ValueAt evaluates the condition value at simulation time t [s]. Conditions
// without a time-dependent expression return the static Value, as do
// conditions whose expression fails to evaluate.
func (b *BoundaryCondition) ValueAt(t float64) float64 {
	if b.expr == nil {
		return b.Value
	}
	v, err := b.expr.Evaluate(map[string]interface{}{"t": t})
	if err != nil {
		return b.Value
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return b.Value
	}
	return f
}
