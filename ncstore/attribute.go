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

package ncstore

import (
	"fmt"

	"github.com/ctessum/cdf"
	"github.com/greensh16/RuNeVis"
)

// readAttributes returns the attributes of variable v, or the global
// attributes if v is empty.
func readAttributes(h *cdf.Header, v string) runevis.Attributes {
	names := h.Attributes(v)
	attrs := make(runevis.Attributes, 0, len(names))
	for _, name := range names {
		if val := fromCDF(h.GetAttribute(v, name)); val != nil {
			attrs = append(attrs, runevis.Attribute{Name: name, Value: val})
		}
	}
	return attrs
}

func fromCDF(val interface{}) runevis.AttributeValue {
	switch x := val.(type) {
	case string:
		return runevis.String(x)
	case []uint8:
		o := make(runevis.Int8s, len(x))
		for i, b := range x {
			o[i] = int8(b)
		}
		return o
	case []int16:
		return runevis.Int16s(x)
	case []int32:
		return runevis.Int32s(x)
	case []float32:
		return runevis.Float32s(x)
	case []float64:
		return runevis.Float64s(x)
	default:
		return nil
	}
}

// toCDF converts val to a type that can be stored in a NetCDF classic
// header. Types without a classic representation return an error
// matching runevis.ErrUnsupportedAttribute.
func toCDF(val runevis.AttributeValue) (interface{}, error) {
	switch x := val.(type) {
	case runevis.String:
		return string(x), nil
	case runevis.Int8s:
		o := make([]uint8, len(x))
		for i, b := range x {
			o[i] = uint8(b)
		}
		return o, nil
	case runevis.Int16s:
		return []int16(x), nil
	case runevis.Int32s:
		return []int32(x), nil
	case runevis.Float32s:
		return []float32(x), nil
	case runevis.Float64s:
		return []float64(x), nil
	default:
		return nil, fmt.Errorf("ncstore: %w: %s", runevis.ErrUnsupportedAttribute, val.Type())
	}
}
