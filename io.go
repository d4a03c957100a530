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
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/sparse"
)

// Outputter writes voxel fields of one z-layer as CSV, where each output
// variable is an expression over named fields, e.g.
// {"Celsius": "Temperature - 273.15", "MobileGas": "GasSaturation + VaporSaturation"}.
type Outputter struct {
	fileName        string
	layer           int
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
}

// NewOutputter creates an Outputter for the given z-layer. outputFunctions
// adds to (or overrides) the default function library, which contains
// 'exp(x)', 'min(a,b)', and 'max(a,b)'.
func NewOutputter(fileName string, layer int, outputVariables map[string]string,
	outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {

	if len(outputVariables) == 0 {
		return nil, fmt.Errorf("georeactor: there are no variables specified for output")
	}

	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("georeactor: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return math.Exp(arg[0].(float64)), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("georeactor: got %d arguments for function 'min', but needs 2", len(arg))
			}
			return math.Min(arg[0].(float64), arg[1].(float64)), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 2 {
				return nil, fmt.Errorf("georeactor: got %d arguments for function 'max', but needs 2", len(arg))
			}
			return math.Max(arg[0].(float64), arg[1].(float64)), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	return &Outputter{
		fileName:        fileName,
		layer:           layer,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
	}, nil
}

// Output returns a function that evaluates the output variables over the
// configured layer and writes the result to the output file.
func (o *Outputter) Output() DomainManipulator {
	return func(s *Simulation) error {
		f, err := os.Create(o.fileName)
		if err != nil {
			return fmt.Errorf("georeactor: creating output file: %v", err)
		}
		defer f.Close()
		return o.Write(f, s.State)
	}
}

// Write evaluates the output variables over the configured layer of state
// and writes CSV rows x,y,z,<variables...> to w.
func (o *Outputter) Write(w io.Writer, state *GridState) error {
	if o.layer < 0 || o.layer >= state.Nz {
		return fmt.Errorf("georeactor: output layer %d out of range [0,%d)", o.layer, state.Nz)
	}

	names := make([]string, 0, len(o.outputVariables))
	for name := range o.outputVariables {
		names = append(names, name)
	}
	sort.Strings(names)

	exprs := make([]*govaluate.EvaluableExpression, len(names))
	for n, name := range names {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(o.outputVariables[name], o.outputFunctions)
		if err != nil {
			return fmt.Errorf("georeactor: parsing output variable %q: %v", name, err)
		}
		exprs[n] = e
	}

	fields := state.fieldsByName()
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{"x", "y", "z"}, names...)); err != nil {
		return err
	}

	k := o.layer
	row := make([]string, 3+len(names))
	params := make(map[string]interface{})
	for i := 0; i < state.Nx; i++ {
		for j := 0; j < state.Ny; j++ {
			row[0] = strconv.FormatFloat((float64(i)+0.5)*state.Dx, 'g', -1, 64)
			row[1] = strconv.FormatFloat((float64(j)+0.5)*state.Dy, 'g', -1, 64)
			row[2] = strconv.FormatFloat((float64(k)+0.5)*state.Dz, 'g', -1, 64)
			for n, e := range exprs {
				for _, v := range e.Vars() {
					field, ok := fields[v]
					if !ok {
						return fmt.Errorf("georeactor: output variable %q references unknown field %q", names[n], v)
					}
					params[v] = field.Get(i, j, k)
				}
				result, err := e.Evaluate(params)
				if err != nil {
					return fmt.Errorf("georeactor: evaluating output variable %q: %v", names[n], err)
				}
				row[3+n] = strconv.FormatFloat(result.(float64), 'g', -1, 64)
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// fieldsByName maps the expression-visible field names to their arrays.
// Species and minerals appear under their own names; a species shadows a
// mineral of the same name.
func (s *GridState) fieldsByName() map[string]*sparse.DenseArray {
	m := map[string]*sparse.DenseArray{
		"Temperature":      s.Temperature,
		"Pressure":         s.Pressure,
		"Porosity":         s.Porosity,
		"Permeability":     s.Permeability,
		"VelocityX":        s.VelocityX,
		"VelocityY":        s.VelocityY,
		"VelocityZ":        s.VelocityZ,
		"LiquidSaturation": s.LiquidSaturation,
		"GasSaturation":    s.GasSaturation,
		"VaporSaturation":  s.VaporSaturation,
	}
	for name, f := range s.Species {
		if _, ok := m[name]; !ok {
			m[name] = f
		}
	}
	for name, f := range s.Minerals {
		if _, ok := m[name]; !ok {
			m[name] = f
		}
	}
	return m
}
