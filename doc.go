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

// Package georeactor implements the coupled multiphysics transport core of a
// geoscience reactor simulator: explicit finite-difference/finite-volume
// solvers that advance temperature, pressure, multiphase fluid saturation,
// and mineral nucleation and growth on a shared structured voxel grid.
//
// The three solvers (heat transfer, multiphase flow, nucleation) mutate a
// GridState in place and are sequenced by a Simulation run loop composed of
// DomainManipulator closures. The solvers themselves are not safe to run
// concurrently against the same state; within one solver call, voxel sweeps
// parallelize over the outermost spatial index.
package georeactor

// Version gives the model version.
const Version = "1.2.1"
