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
	"math"
	"strings"
)

// Operation is a reduction that collapses one axis of an array.
type Operation int

// The available reductions.
const (
	Mean Operation = iota
	Sum
	Min
	Max
)

// String returns the name used for op in derived variable names.
func (op Operation) String() string {
	switch op {
	case Mean:
		return "mean"
	case Sum:
		return "sum"
	case Min:
		return "minimum"
	case Max:
		return "maximum"
	default:
		return fmt.Sprintf("Operation(%d)", int(op))
	}
}

// ParseOperation returns the operation named by s. Both the short
// ("min", "max") and long ("minimum", "maximum") spellings are accepted.
func ParseOperation(s string) (Operation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mean", "avg", "average":
		return Mean, nil
	case "sum":
		return Sum, nil
	case "min", "minimum":
		return Min, nil
	case "max", "maximum":
		return Max, nil
	}
	return 0, fmt.Errorf("runevis: invalid operation %q", s)
}

// Kernel folds the values lying along a reduced axis into one value.
// If skipNonFinite is true, NaN and ±Inf inputs are ignored.
type Kernel func(values []float32, skipNonFinite bool) float32

// Kernel returns the fold function for op.
func (op Operation) Kernel() Kernel {
	switch op {
	case Mean:
		return MeanKernel
	case Sum:
		return SumKernel
	case Min:
		return MinKernel
	case Max:
		return MaxKernel
	default:
		panic(fmt.Errorf("runevis: invalid operation %d", int(op)))
	}
}

func finite(v float32) bool {
	return !math.IsNaN(float64(v)) && !math.IsInf(float64(v), 0)
}

// SumKernel accumulates in float32. Skipped values contribute nothing,
// so an axis with no finite values sums to zero.
func SumKernel(values []float32, skipNonFinite bool) float32 {
	var sum float32
	for _, v := range values {
		if skipNonFinite && !finite(v) {
			continue
		}
		sum += v
	}
	return sum
}

// MinKernel returns the smallest value, or NaN if no value was used.
func MinKernel(values []float32, skipNonFinite bool) float32 {
	min := float32(math.Inf(1))
	seen := false
	for _, v := range values {
		if !finite(v) {
			if skipNonFinite {
				continue
			}
			if math.IsNaN(float64(v)) {
				return v
			}
		}
		seen = true
		if v < min {
			min = v
		}
	}
	if !seen {
		return float32(math.NaN())
	}
	return min
}

// MaxKernel returns the largest value, or NaN if no value was used.
func MaxKernel(values []float32, skipNonFinite bool) float32 {
	max := float32(math.Inf(-1))
	seen := false
	for _, v := range values {
		if !finite(v) {
			if skipNonFinite {
				continue
			}
			if math.IsNaN(float64(v)) {
				return v
			}
		}
		seen = true
		if v > max {
			max = v
		}
	}
	if !seen {
		return float32(math.NaN())
	}
	return max
}

// MeanKernel accumulates the sum and count in float64 and narrows the
// quotient to float32. The mean of zero values is NaN.
func MeanKernel(values []float32, skipNonFinite bool) float32 {
	var sum, count float64
	for _, v := range values {
		if skipNonFinite && !finite(v) {
			continue
		}
		sum += float64(v)
		count++
	}
	if count == 0 {
		return float32(math.NaN())
	}
	return float32(sum / count)
}
