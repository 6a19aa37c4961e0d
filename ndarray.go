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

// Shape holds the length of each axis of a row-major array.
// Axis 0 varies slowest and the last axis varies fastest.
type Shape []int

// Size returns the number of elements in an array of shape s.
// The size of a zero-rank shape is 1.
func (s Shape) Size() int {
	n := 1
	for _, l := range s {
		n *= l
	}
	return n
}

// Strides returns the flat-index step of each axis.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

// Coords decodes the flat index into per-axis coordinates, storing
// them in dst if it has enough capacity.
func (s Shape) Coords(flat int, dst []int) []int {
	if cap(dst) < len(s) {
		dst = make([]int, len(s))
	}
	dst = dst[:len(s)]
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == 0 {
			dst[i] = 0
			continue
		}
		dst[i] = flat % s[i]
		flat /= s[i]
	}
	return dst
}

// Index encodes coords into a flat index. It is the inverse of Coords.
func (s Shape) Index(coords []int) int {
	idx := 0
	for i, c := range coords {
		idx = idx*s[i] + c
	}
	return idx
}

// Without returns a copy of s with the given axis removed.
func (s Shape) Without(axis int) Shape {
	o := make(Shape, 0, len(s)-1)
	o = append(o, s[:axis]...)
	return append(o, s[axis+1:]...)
}

// NDArray is an immutable multi-dimensional array of float32 values
// stored in row-major order.
type NDArray struct {
	shape Shape
	data  []float32
}

// NewNDArray returns an array with the given shape backed by data.
// It returns a *ShapeMismatchError if len(data) does not equal the
// product of shape. The array takes ownership of data.
func NewNDArray(shape []int, data []float32) (*NDArray, error) {
	for _, l := range shape {
		if l < 0 {
			return nil, &ShapeMismatchError{Shape: append([]int(nil), shape...), Len: len(data)}
		}
	}
	s := append(Shape(nil), shape...)
	if s.Size() != len(data) {
		return nil, &ShapeMismatchError{Shape: s, Len: len(data)}
	}
	return &NDArray{shape: s, data: data}, nil
}

// Shape returns a copy of the array's shape.
func (a *NDArray) Shape() []int { return append([]int(nil), a.shape...) }

// Rank returns the number of axes.
func (a *NDArray) Rank() int { return len(a.shape) }

// Len returns the number of elements.
func (a *NDArray) Len() int { return len(a.data) }

// Data returns the flat row-major buffer. It must not be modified.
func (a *NDArray) Data() []float32 { return a.data }

// At returns the element at the given coordinates.
func (a *NDArray) At(coords ...int) float32 {
	if len(coords) != len(a.shape) {
		panic("runevis: wrong number of coordinates")
	}
	for i, c := range coords {
		if c < 0 || c >= a.shape[i] {
			panic("runevis: index out of range")
		}
	}
	return a.data[a.shape.Index(coords)]
}
