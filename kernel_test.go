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
	"testing"
)

func isNaN(v float32) bool { return math.IsNaN(float64(v)) }

type kernelTest struct {
	name string
	k    Kernel
	want float32 // NaN means the result must be NaN.
}

func checkKernels(t *testing.T, values []float32, skip bool, tests []kernelTest) {
	t.Helper()
	for _, test := range tests {
		got := test.k(values, skip)
		if isNaN(test.want) {
			if !isNaN(got) {
				t.Errorf("%s(%v): have %g, want NaN", test.name, values, got)
			}
			continue
		}
		if got != test.want {
			t.Errorf("%s(%v): have %g, want %g", test.name, values, got, test.want)
		}
	}
}

func TestKernelsSkipNonFinite(t *testing.T) {
	inf := float32(math.Inf(1))
	checkKernels(t, []float32{1, float32(math.NaN()), 3, inf, 5, -inf}, true, []kernelTest{
		{"sum", SumKernel, 9},
		{"min", MinKernel, 1},
		{"max", MaxKernel, 5},
		{"mean", MeanKernel, 3},
	})
}

func TestKernelsAllInvalid(t *testing.T) {
	nan := float32(math.NaN())
	checkKernels(t, []float32{nan, nan, nan}, true, []kernelTest{
		{"sum", SumKernel, 0},
		{"min", MinKernel, nan},
		{"max", MaxKernel, nan},
		{"mean", MeanKernel, nan},
	})
}

func TestKernelsEmpty(t *testing.T) {
	nan := float32(math.NaN())
	checkKernels(t, nil, true, []kernelTest{
		{"sum", SumKernel, 0},
		{"min", MinKernel, nan},
		{"max", MaxKernel, nan},
		{"mean", MeanKernel, nan},
	})
}

func TestKernelsPropagate(t *testing.T) {
	nan := float32(math.NaN())
	checkKernels(t, []float32{1, nan, 3}, false, []kernelTest{
		{"sum", SumKernel, nan},
		{"min", MinKernel, nan},
		{"max", MaxKernel, nan},
		{"mean", MeanKernel, nan},
	})
	checkKernels(t, []float32{2, float32(math.Inf(-1))}, false, []kernelTest{
		{"min", MinKernel, float32(math.Inf(-1))},
	})
}

func TestMeanPrecision(t *testing.T) {
	// In float32, 2^24 + 1 rounds back to 2^24.
	values := []float32{16777216, 1, 1}
	if got := MeanKernel(values, true); got != 5592406 {
		t.Errorf("have %g, want 5592406", got)
	}
}

func TestOperation(t *testing.T) {
	for _, test := range []struct {
		in   string
		op   Operation
		name string
	}{
		{"mean", Mean, "mean"},
		{"sum", Sum, "sum"},
		{"min", Min, "minimum"},
		{"maximum", Max, "maximum"},
		{"MAX", Max, "maximum"},
	} {
		t.Run(test.in, func(t *testing.T) {
			op, err := ParseOperation(test.in)
			if err != nil {
				t.Fatal(err)
			}
			if op != test.op {
				t.Errorf("have %v, want %v", op, test.op)
			}
			if op.String() != test.name {
				t.Errorf("name: have %s, want %s", op.String(), test.name)
			}
			if op.Kernel() == nil {
				t.Error("nil kernel")
			}
		})
	}
	if _, err := ParseOperation("median"); err == nil {
		t.Error("expected error for unknown operation")
	}
}
