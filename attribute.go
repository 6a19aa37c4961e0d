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

package runevis

import (
	"fmt"
	"strings"
)

// AttributeValue is the value of a dataset or variable attribute.
// The set of implementations is closed: String, Strings, Float32s,
// Float64s, Int8s, Uint8s, Int16s, Uint16s, Int32s, Uint32s,
// Int64s and Uint64s. Scalars are stored as single-element lists.
type AttributeValue interface {
	// Type returns the name of the value's element type.
	Type() string
	// Len returns the number of elements.
	Len() int
	fmt.Stringer
	attributeValue()
}

// String is a text attribute.
type String string

// Strings is a list of text values.
type Strings []string

// Float32s is a list of 32-bit floats.
type Float32s []float32

// Float64s is a list of 64-bit floats.
type Float64s []float64

// Int8s is a list of signed bytes.
type Int8s []int8

// Uint8s is a list of unsigned bytes.
type Uint8s []uint8

// Int16s is a list of 16-bit integers.
type Int16s []int16

// Uint16s is a list of unsigned 16-bit integers.
type Uint16s []uint16

// Int32s is a list of 32-bit integers.
type Int32s []int32

// Uint32s is a list of unsigned 32-bit integers.
type Uint32s []uint32

// Int64s is a list of 64-bit integers.
type Int64s []int64

// Uint64s is a list of unsigned 64-bit integers.
type Uint64s []uint64

func (String) attributeValue()   {}
func (Strings) attributeValue()  {}
func (Float32s) attributeValue() {}
func (Float64s) attributeValue() {}
func (Int8s) attributeValue()    {}
func (Uint8s) attributeValue()   {}
func (Int16s) attributeValue()   {}
func (Uint16s) attributeValue()  {}
func (Int32s) attributeValue()   {}
func (Uint32s) attributeValue()  {}
func (Int64s) attributeValue()   {}
func (Uint64s) attributeValue()  {}

func (String) Type() string   { return "string" }
func (Strings) Type() string  { return "string list" }
func (Float32s) Type() string { return "float" }
func (Float64s) Type() string { return "double" }
func (Int8s) Type() string    { return "byte" }
func (Uint8s) Type() string   { return "ubyte" }
func (Int16s) Type() string   { return "short" }
func (Uint16s) Type() string  { return "ushort" }
func (Int32s) Type() string   { return "int" }
func (Uint32s) Type() string  { return "uint" }
func (Int64s) Type() string   { return "int64" }
func (Uint64s) Type() string  { return "uint64" }

func (String) Len() int     { return 1 }
func (v Strings) Len() int  { return len(v) }
func (v Float32s) Len() int { return len(v) }
func (v Float64s) Len() int { return len(v) }
func (v Int8s) Len() int    { return len(v) }
func (v Uint8s) Len() int   { return len(v) }
func (v Int16s) Len() int   { return len(v) }
func (v Uint16s) Len() int  { return len(v) }
func (v Int32s) Len() int   { return len(v) }
func (v Uint32s) Len() int  { return len(v) }
func (v Int64s) Len() int   { return len(v) }
func (v Uint64s) Len() int  { return len(v) }

func (v String) String() string   { return string(v) }
func (v Strings) String() string  { return "[" + strings.Join(v, ", ") + "]" }
func (v Float32s) String() string { return formatList([]float32(v)) }
func (v Float64s) String() string { return formatList([]float64(v)) }
func (v Int8s) String() string    { return formatList([]int8(v)) }
func (v Uint8s) String() string   { return formatList([]uint8(v)) }
func (v Int16s) String() string   { return formatList([]int16(v)) }
func (v Uint16s) String() string  { return formatList([]uint16(v)) }
func (v Int32s) String() string   { return formatList([]int32(v)) }
func (v Uint32s) String() string  { return formatList([]uint32(v)) }
func (v Int64s) String() string   { return formatList([]int64(v)) }
func (v Uint64s) String() string  { return formatList([]uint64(v)) }

// formatList prints single values bare and longer lists in brackets.
func formatList(list interface{}) string {
	s := strings.Trim(fmt.Sprint(list), "[]")
	if strings.Contains(s, " ") {
		return "[" + strings.Join(strings.Fields(s), ", ") + "]"
	}
	return s
}

// Attribute is a named attribute value.
type Attribute struct {
	Name  string
	Value AttributeValue
}

// Attributes is an ordered list of attributes.
type Attributes []Attribute

// Get returns the value of the named attribute.
func (a Attributes) Get(name string) (AttributeValue, bool) {
	for _, at := range a {
		if at.Name == name {
			return at.Value, true
		}
	}
	return nil, false
}

// FillValueName is the conventional name of the fill value attribute.
const FillValueName = "_FillValue"

// FillValue returns the first element of the _FillValue attribute
// narrowed to float32. Only floating point and short integer fill
// values are recognized.
func (a Attributes) FillValue() (float32, bool) {
	v, ok := a.Get(FillValueName)
	if !ok || v.Len() == 0 {
		return 0, false
	}
	switch fv := v.(type) {
	case Float32s:
		return fv[0], true
	case Float64s:
		return float32(fv[0]), true
	case Int16s:
		return float32(fv[0]), true
	}
	return 0, false
}
