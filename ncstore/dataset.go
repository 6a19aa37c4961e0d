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

// Package ncstore reads and writes NetCDF classic files for runevis.
// Paths may refer to local files or to blob storage locations in the
// form 'provider://bucket/key', which are staged through a local
// temporary directory.
package ncstore

import (
	"context"
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/greensh16/RuNeVis"
	"github.com/sirupsen/logrus"
)

// Dataset is an open NetCDF file.
type Dataset struct {
	// Path is the location the dataset was opened from.
	Path string

	f       *os.File
	cf      *cdf.File
	numRecs int
	staged  *staged
}

// Open opens the dataset at path, downloading it first if path refers
// to blob storage.
func Open(ctx context.Context, path string) (*Dataset, error) {
	local := path
	var s *staged
	if IsBlob(path) {
		var err error
		s, err = download(ctx, path, logrus.StandardLogger())
		if err != nil {
			return nil, &runevis.IOError{Op: "download", Path: path, Err: err}
		}
		local = s.local
	}
	f, err := os.Open(local)
	if err != nil {
		s.cleanup()
		return nil, &runevis.IOError{Op: "open", Path: path, Err: err}
	}
	cf, err := cdf.Open(f)
	if err != nil {
		f.Close()
		s.cleanup()
		return nil, &runevis.IOError{Op: "open", Path: path, Err: err}
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		s.cleanup()
		return nil, &runevis.IOError{Op: "open", Path: path, Err: err}
	}
	d := &Dataset{Path: path, f: f, cf: cf, staged: s}
	if n := cf.Header.NumRecs(fi.Size()); n > 0 {
		d.numRecs = int(n)
	}
	return d, nil
}

// Close closes the file and removes any staged copy.
func (d *Dataset) Close() error {
	err := d.f.Close()
	d.staged.cleanup()
	return err
}

// Dimensions returns the dataset's dimensions in declaration order.
// The length of the unlimited dimension is its current number of records.
func (d *Dataset) Dimensions() []runevis.DimensionDescriptor {
	names := d.cf.Header.Dimensions("")
	lengths := d.cf.Header.Lengths("")
	dims := make([]runevis.DimensionDescriptor, len(names))
	for i, name := range names {
		dims[i] = runevis.DimensionDescriptor{Name: name, Len: lengths[i]}
		if lengths[i] == 0 {
			dims[i].Len = d.numRecs
			dims[i].Unlimited = true
		}
	}
	return dims
}

// Attributes returns the global attributes.
func (d *Dataset) Attributes() runevis.Attributes {
	return readAttributes(d.cf.Header, "")
}

// Variables returns the names of all variables in declaration order.
func (d *Dataset) Variables() []string {
	return d.cf.Header.Variables()
}

// Variable returns the named variable.
func (d *Dataset) Variable(name string) (*Variable, bool) {
	for _, v := range d.cf.Header.Variables() {
		if v == name {
			return &Variable{d: d, name: name}, true
		}
	}
	return nil, false
}

// LookupVariable implements runevis.VariableSource.
func (d *Dataset) LookupVariable(name string) (runevis.Variable, bool) {
	v, ok := d.Variable(name)
	if !ok {
		return nil, false
	}
	return v, true
}

// Variable is a variable in an open dataset.
type Variable struct {
	d    *Dataset
	name string
}

// Name returns the variable name.
func (v *Variable) Name() string { return v.name }

// Dimensions returns the variable's dimensions in storage order.
func (v *Variable) Dimensions() []runevis.DimensionDescriptor {
	h := v.d.cf.Header
	names := h.Dimensions(v.name)
	lengths := h.Lengths(v.name)
	record := h.IsRecordVariable(v.name)
	dims := make([]runevis.DimensionDescriptor, len(names))
	for i, name := range names {
		dims[i] = runevis.DimensionDescriptor{Name: name, Len: lengths[i]}
		if i == 0 && record {
			dims[i].Len = v.d.numRecs
			dims[i].Unlimited = true
		}
	}
	return dims
}

// Shape returns the length of each dimension.
func (v *Variable) Shape() []int {
	return runevis.DimensionShape(v.Dimensions())
}

// DataType returns the NetCDF type name of the variable.
func (v *Variable) DataType() string {
	switch v.d.cf.Reader(v.name, nil, nil).Zero(0).(type) {
	case []uint8:
		return "byte"
	case string:
		return "char"
	case []int16:
		return "short"
	case []int32:
		return "int"
	case []float32:
		return "float"
	case []float64:
		return "double"
	default:
		return "unknown"
	}
}

// ElementSize returns the number of bytes used to store one value.
func (v *Variable) ElementSize() int {
	switch v.DataType() {
	case "byte", "char":
		return 1
	case "short":
		return 2
	case "double":
		return 8
	default:
		return 4
	}
}

// Attributes returns the variable's attributes.
func (v *Variable) Attributes() runevis.Attributes {
	return readAttributes(v.d.cf.Header, v.name)
}

// Float32s reads all values of the variable converted to float32.
// Byte values are interpreted as signed.
func (v *Variable) Float32s() ([]float32, error) {
	shape := v.Shape()
	n := runevis.Shape(shape).Size()
	if n == 0 {
		return []float32{}, nil
	}
	var begin, end []int
	if len(shape) > 0 {
		begin = make([]int, len(shape))
		end = shape
	}
	r := v.d.cf.Reader(v.name, begin, end)
	buf := r.Zero(n)
	if _, err := r.Read(buf); err != nil {
		return nil, fmt.Errorf("ncstore: reading variable %s: %v", v.name, err)
	}
	out := make([]float32, n)
	switch b := buf.(type) {
	case []float32:
		copy(out, b)
	case []float64:
		for i, x := range b {
			out[i] = float32(x)
		}
	case []int32:
		for i, x := range b {
			out[i] = float32(x)
		}
	case []int16:
		for i, x := range b {
			out[i] = float32(x)
		}
	case []uint8:
		for i, x := range b {
			out[i] = float32(int8(x))
		}
	default:
		return nil, fmt.Errorf("ncstore: variable %s has non-numeric type %T", v.name, buf)
	}
	return out, nil
}
