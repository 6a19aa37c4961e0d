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

// Package hash creates keys for cached requests.
package hash

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// printer is used for values that gob cannot encode.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Key returns a hex-encoded 128-bit FNV-1a hash of parts. Equal
// parts in the same order give equal keys.
func Key(parts ...interface{}) string {
	h := fnv.New128a()
	var b bytes.Buffer
	for _, p := range parts {
		b.Reset()
		if err := gob.NewEncoder(&b).Encode(p); err != nil {
			b.Reset()
			printer.Fprintf(&b, "%#v", p)
		}
		fmt.Fprintf(h, "%d:", b.Len())
		h.Write(b.Bytes())
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
