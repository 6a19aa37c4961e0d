/*
Copyright © 2024 the RuNeVis authors.
This file is part of RuNeVis.

RuNeVis is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

RuNeVis is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with RuNeVis.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command runevis is a command-line interface for inspecting NetCDF
// files and reducing their variables along a dimension.
package main

import (
	"fmt"
	"os"

	"github.com/greensh16/RuNeVis/runevisutil"
)

func main() {
	if err := runevisutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
