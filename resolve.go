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

// DimensionDescriptor describes one axis of a variable.
type DimensionDescriptor struct {
	Name      string
	Len       int
	Unlimited bool
}

// DimensionShape returns the lengths of dims in order.
func DimensionShape(dims []DimensionDescriptor) []int {
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = d.Len
	}
	return shape
}

// DimensionNames returns the names of dims in order.
func DimensionNames(dims []DimensionDescriptor) []string {
	names := make([]string, len(dims))
	for i, d := range dims {
		names[i] = d.Name
	}
	return names
}

// ResolveAxis returns the index of the first dimension of variable
// named name. It returns a *DimensionNotFoundError if there is none.
func ResolveAxis(variable string, dims []DimensionDescriptor, name string) (int, error) {
	for i, d := range dims {
		if d.Name == name {
			return i, nil
		}
	}
	return -1, &DimensionNotFoundError{Variable: variable, Dimension: name}
}

// KeptNames returns the names of dims with the entry at axis removed,
// in their original order.
func KeptNames(dims []DimensionDescriptor, axis int) []string {
	names := make([]string, 0, len(dims))
	for i, d := range dims {
		if i != axis {
			names = append(names, d.Name)
		}
	}
	return names
}
