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

// Command georeactor is a command-line interface for the GeoReactor coupled
// transport model.
package main

import (
	"fmt"
	"os"

	"github.com/mattemangia/GeoscientistToolkit-sub019/georeactorutil"
)

func main() {
	if err := georeactorutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
