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

package runevisutil

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/greensh16/RuNeVis"
	"github.com/greensh16/RuNeVis/ncstore"
)

// keyAttributes are shown for each variable by ListVariables.
var keyAttributes = []string{"units", "long_name", runevis.FillValueName}

// maxPrintedValues is the largest slice that is printed in full.
const maxPrintedValues = 20

// ListVariables prints the dimensions and variables of d, sorted by name.
func ListVariables(w io.Writer, d *ncstore.Dataset) {
	dims := d.Dimensions()
	sort.Slice(dims, func(i, j int) bool { return dims[i].Name < dims[j].Name })
	fmt.Fprintln(w, "Dimensions")
	for _, dim := range dims {
		if dim.Unlimited {
			fmt.Fprintf(w, "  %s: %d (unlimited)\n", dim.Name, dim.Len)
		} else {
			fmt.Fprintf(w, "  %s: %d\n", dim.Name, dim.Len)
		}
	}

	names := append([]string(nil), d.Variables()...)
	sort.Strings(names)
	fmt.Fprintln(w, "\nVariables")
	for _, name := range names {
		v, _ := d.Variable(name)
		vdims := v.Dimensions()
		if len(vdims) == 0 {
			fmt.Fprintf(w, "  %s (%s) scalar\n", name, v.DataType())
		} else {
			fmt.Fprintf(w, "  %s (%s) [%s] shape %s\n", name, v.DataType(),
				strings.Join(runevis.DimensionNames(vdims), ", "), formatShape(v.Shape()))
		}
		attrs := v.Attributes()
		for _, a := range keyAttributes {
			if val, ok := attrs.Get(a); ok {
				fmt.Fprintf(w, "      %s: %s\n", a, val)
			}
		}
	}
}

// Describe prints the details of variable name.
func Describe(w io.Writer, d *ncstore.Dataset, name string) error {
	v, ok := d.Variable(name)
	if !ok {
		return &runevis.VariableNotFoundError{Variable: name}
	}
	dims := v.Dimensions()
	shape := v.Shape()
	n := runevis.Shape(shape).Size()

	fmt.Fprintf(w, "Variable: %s\n", name)
	fmt.Fprintf(w, "  Data type: %s\n", v.DataType())
	if len(dims) == 0 {
		fmt.Fprintln(w, "  Dimensions: none (scalar)")
	} else {
		fmt.Fprintf(w, "  Dimensions: %s\n", strings.Join(runevis.DimensionNames(dims), ", "))
		fmt.Fprintf(w, "  Shape: %s\n", formatShape(shape))
		fmt.Fprintln(w, "  Dimension details:")
		for i, dim := range dims {
			unlimited := ""
			if dim.Unlimited {
				unlimited = " (unlimited)"
			}
			fmt.Fprintf(w, "    %d. %s: %d%s\n", i+1, dim.Name, dim.Len, unlimited)
		}
	}
	attrs := v.Attributes()
	if len(attrs) == 0 {
		fmt.Fprintln(w, "  Attributes: none")
	} else {
		fmt.Fprintln(w, "  Attributes:")
		for _, a := range attrs {
			fmt.Fprintf(w, "    %s = %s (%s)\n", a.Name, a.Value, a.Value.Type())
		}
	}
	fmt.Fprintf(w, "  Total elements: %d\n", n)
	fmt.Fprintf(w, "  Storage size: %s\n", formatBytes(int64(n)*int64(v.ElementSize())))
	return nil
}

// Summary prints statistics of the finite values of variable name.
func Summary(w io.Writer, src runevis.VariableSource, name string) error {
	v, ok := src.LookupVariable(name)
	if !ok {
		return &runevis.VariableNotFoundError{Variable: name}
	}
	a, err := runevis.Load(v)
	if err != nil {
		return err
	}
	s := runevis.Summarize(a.Data())
	fmt.Fprintf(w, "Summary for variable: %s\n", name)
	fmt.Fprintf(w, "  Min: %g\n", s.Min)
	fmt.Fprintf(w, "  Max: %g\n", s.Max)
	fmt.Fprintf(w, "  Mean: %.2f\n", s.Mean)
	fmt.Fprintf(w, "  Std Dev: %.2f\n", s.Std)
	fmt.Fprintf(w, "  Valid values: %d of %d\n", s.Valid, s.Total)
	return nil
}

// PrintSlice prints a sliced array with statistics of its finite values.
func PrintSlice(w io.Writer, spec *runevis.SliceSpec, a *runevis.NDArray) {
	fmt.Fprintf(w, "Slice of variable: %s\n", spec.Variable)
	fmt.Fprintf(w, "  Sliced shape: %s\n", formatShape(a.Shape()))
	fmt.Fprintf(w, "  Total elements: %d\n", a.Len())
	s := runevis.Summarize(a.Data())
	if s.Valid > 0 {
		fmt.Fprintf(w, "  Min: %g\n", s.Min)
		fmt.Fprintf(w, "  Max: %g\n", s.Max)
		fmt.Fprintf(w, "  Mean: %.4f\n", s.Mean)
	}
	fmt.Fprintf(w, "  Valid values: %d of %d\n", s.Valid, s.Total)
	data := a.Data()
	if len(data) <= maxPrintedValues {
		fmt.Fprintf(w, "  Values: %s\n", formatValues(data))
	} else {
		fmt.Fprintf(w, "  First 10 values: %s ...\n", formatValues(data[:10]))
	}
}

// PrintMetadata prints the global attributes and variables of d.
func PrintMetadata(w io.Writer, d *ncstore.Dataset) {
	fmt.Fprintln(w, "Global attributes")
	for _, a := range d.Attributes() {
		fmt.Fprintf(w, "  %s: %s\n", a.Name, a.Value)
	}
	fmt.Fprintln(w, "\nVariables")
	for _, name := range d.Variables() {
		v, _ := d.Variable(name)
		dims := v.Dimensions()
		parts := make([]string, len(dims))
		for i, dim := range dims {
			parts[i] = fmt.Sprintf("%s[%d]", dim.Name, dim.Len)
		}
		fmt.Fprintf(w, "- %s (%s)\n", name, strings.Join(parts, ", "))
	}
}

// PrintResult prints a reduction result as a nested array.
func PrintResult(w io.Writer, r *runevis.Result) {
	fmt.Fprintf(w, "Computed %s array %s (%s) with shape %s:\n", r.Operation, r.Name,
		strings.Join(r.KeptDimensions, ", "), formatShape(r.Data.Shape()))
	writeArray(w, r.Data.Shape(), r.Data.Data(), 0)
	fmt.Fprintln(w)
}

// writeArray writes data with the given shape as nested brackets.
func writeArray(w io.Writer, shape []int, data []float32, depth int) {
	switch len(shape) {
	case 0:
		fmt.Fprintf(w, "%g", data[0])
	case 1:
		fmt.Fprint(w, formatValues(data))
	default:
		stride := runevis.Shape(shape[1:]).Size()
		fmt.Fprint(w, "[")
		for i := 0; i < shape[0]; i++ {
			if i > 0 {
				fmt.Fprintf(w, ",\n%s", strings.Repeat(" ", depth+1))
			}
			writeArray(w, shape[1:], data[i*stride:(i+1)*stride], depth+1)
		}
		fmt.Fprint(w, "]")
	}
}

func formatValues(data []float32) string {
	s := make([]string, len(data))
	for i, v := range data {
		s[i] = fmt.Sprintf("%g", v)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

func formatShape(shape []int) string {
	s := make([]string, len(shape))
	for i, l := range shape {
		s[i] = fmt.Sprint(l)
	}
	return "[" + strings.Join(s, ", ") + "]"
}

// formatBytes returns a human-readable size.
func formatBytes(n int64) string {
	const (
		kb = 1 << 10
		mb = 1 << 20
		gb = 1 << 30
	)
	switch {
	case n < kb:
		return fmt.Sprintf("%d bytes", n)
	case n < mb:
		return fmt.Sprintf("%.2f KB", float64(n)/kb)
	case n < gb:
		return fmt.Sprintf("%.2f MB", float64(n)/mb)
	default:
		return fmt.Sprintf("%.2f GB", float64(n)/gb)
	}
}
