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
	"strconv"
	"strings"
)

// SliceRange selects the half-open index range [Start, End) of a
// dimension. An empty Dimension refers to the first axis.
type SliceRange struct {
	Dimension  string
	Start, End int
}

// SliceSpec selects a hyperslab of a variable.
type SliceSpec struct {
	Variable string
	Ranges   []SliceRange
}

// ParseSlice parses a specification of the form
// "var:start:end[,dim:start:end]...". The first range applies to the
// first axis of the variable and later ranges name their dimension.
func ParseSlice(s string) (*SliceSpec, error) {
	parts := strings.Split(s, ",")
	spec := new(SliceSpec)
	for i, p := range parts {
		fields := strings.Split(strings.TrimSpace(p), ":")
		if len(fields) != 3 {
			if i == 0 {
				return nil, invalidSlice("expected format var:start:end, got '%s'", p)
			}
			return nil, invalidSlice("expected format dim:start:end, got '%s'", p)
		}
		if fields[0] == "" {
			return nil, invalidSlice("missing name in '%s'", p)
		}
		start, err := parseIndex(fields[1])
		if err != nil {
			return nil, err
		}
		end, err := parseIndex(fields[2])
		if err != nil {
			return nil, err
		}
		if i == 0 {
			spec.Variable = fields[0]
			spec.Ranges = append(spec.Ranges, SliceRange{Start: start, End: end})
			continue
		}
		spec.Ranges = append(spec.Ranges, SliceRange{Dimension: fields[0], Start: start, End: end})
	}
	return spec, nil
}

func parseIndex(s string) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || i < 0 {
		return 0, invalidSlice("invalid index '%s'", s)
	}
	return i, nil
}

// Bounds returns the start and end index of every axis of a variable
// with the given dimensions. Axes without a range are taken whole.
func (s *SliceSpec) Bounds(dims []DimensionDescriptor) (start, end []int, err error) {
	if len(dims) == 0 {
		return nil, nil, invalidSlice("variable '%s' is a scalar", s.Variable)
	}
	start = make([]int, len(dims))
	end = DimensionShape(dims)
	for _, r := range s.Ranges {
		axis := 0
		if r.Dimension != "" {
			if axis, err = ResolveAxis(s.Variable, dims, r.Dimension); err != nil {
				return nil, nil, invalidSlice("dimension '%s' not found in variable '%s'", r.Dimension, s.Variable)
			}
		}
		size := dims[axis].Len
		if r.Start >= size || r.End > size || r.Start >= r.End {
			return nil, nil, invalidSlice("invalid range %d:%d for dimension '%s' with size %d",
				r.Start, r.End, dims[axis].Name, size)
		}
		start[axis], end[axis] = r.Start, r.End
	}
	return start, end, nil
}

// Slice returns a new array holding the elements of a with
// start[i] <= index i < end[i] for every axis.
func (a *NDArray) Slice(start, end []int) (*NDArray, error) {
	if len(start) != a.Rank() || len(end) != a.Rank() {
		return nil, invalidSlice("got %d ranges for array of rank %d", len(start), a.Rank())
	}
	shape := make(Shape, a.Rank())
	for i := range shape {
		if start[i] < 0 || end[i] > a.shape[i] || start[i] > end[i] {
			return nil, invalidSlice("invalid range %d:%d for axis %d with size %d",
				start[i], end[i], i, a.shape[i])
		}
		shape[i] = end[i] - start[i]
	}
	data := make([]float32, shape.Size())
	coords := make([]int, len(shape))
	for o := range data {
		coords = shape.Coords(o, coords)
		for i := range coords {
			coords[i] += start[i]
		}
		data[o] = a.data[a.shape.Index(coords)]
	}
	return &NDArray{shape: shape, data: data}, nil
}

// SliceVariable reads the hyperslab selected by spec from src.
func SliceVariable(src VariableSource, spec *SliceSpec) (*NDArray, error) {
	v, ok := src.LookupVariable(spec.Variable)
	if !ok {
		return nil, &VariableNotFoundError{Variable: spec.Variable}
	}
	start, end, err := spec.Bounds(v.Dimensions())
	if err != nil {
		return nil, err
	}
	a, err := Load(v)
	if err != nil {
		return nil, err
	}
	return a.Slice(start, end)
}
