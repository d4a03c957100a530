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
	"encoding/gob"
	"fmt"
	"io"

	"github.com/ctessum/sparse"
)

// SaveSnapshot returns a function that gob-encodes the current grid state
// to w (format description at https://golang.org/pkg/encoding/gob/).
func SaveSnapshot(w io.Writer) DomainManipulator {
	return func(s *Simulation) error {
		e := gob.NewEncoder(w)
		if err := e.Encode(s.State); err != nil {
			return fmt.Errorf("georeactor: saving snapshot: %v", err)
		}
		return nil
	}
}

// LoadSnapshot returns a function that replaces the simulation state with
// one previously written by SaveSnapshot.
func LoadSnapshot(r io.Reader) DomainManipulator {
	return func(s *Simulation) error {
		dec := gob.NewDecoder(r)
		state := new(GridState)
		if err := dec.Decode(state); err != nil {
			return fmt.Errorf("georeactor: loading snapshot: %v", err)
		}
		state.Temperature = rehydrate(state.Temperature)
		state.Pressure = rehydrate(state.Pressure)
		state.Porosity = rehydrate(state.Porosity)
		state.Permeability = rehydrate(state.Permeability)
		state.VelocityX = rehydrate(state.VelocityX)
		state.VelocityY = rehydrate(state.VelocityY)
		state.VelocityZ = rehydrate(state.VelocityZ)
		state.ForceX = rehydrate(state.ForceX)
		state.ForceY = rehydrate(state.ForceY)
		state.ForceZ = rehydrate(state.ForceZ)
		state.LiquidSaturation = rehydrate(state.LiquidSaturation)
		state.GasSaturation = rehydrate(state.GasSaturation)
		state.VaporSaturation = rehydrate(state.VaporSaturation)
		for name, arr := range state.Species {
			state.Species[name] = rehydrate(arr)
		}
		for name, arr := range state.Minerals {
			state.Minerals[name] = rehydrate(arr)
		}
		s.State = state
		return nil
	}
}

// rehydrate rebuilds a gob-decoded array. Gob restores only the exported
// Shape and Elements fields, so the array must be reallocated through the
// sparse constructor to restore its unexported dimension bookkeeping.
func rehydrate(a *sparse.DenseArray) *sparse.DenseArray {
	if a == nil {
		return nil
	}
	b := sparse.ZerosDense(a.Shape...)
	copy(b.Elements, a.Elements)
	return b
}
