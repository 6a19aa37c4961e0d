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
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the finite values of an array.
type Stats struct {
	Min, Max, Mean, Std float64
	// Valid is the number of finite values and Total the number
	// of all values.
	Valid, Total int
}

// Summarize computes statistics over the finite elements of values.
// Std is the population standard deviation. If there are no finite
// values, all statistics are NaN.
func Summarize(values []float32) Stats {
	s := Stats{Total: len(values)}
	x := make([]float64, 0, len(values))
	for _, v := range values {
		if finite(v) {
			x = append(x, float64(v))
		}
	}
	s.Valid = len(x)
	if len(x) == 0 {
		nan := math.NaN()
		s.Min, s.Max, s.Mean, s.Std = nan, nan, nan, nan
		return s
	}
	s.Min = floats.Min(x)
	s.Max = floats.Max(x)
	s.Mean, s.Std = stat.PopMeanStdDev(x, nil)
	return s
}
