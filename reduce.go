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

	"github.com/sirupsen/logrus"
)

// Variable is a read-only view of a variable in a dataset.
type Variable interface {
	Name() string
	// Dimensions returns the variable's axes in storage order.
	Dimensions() []DimensionDescriptor
	// DataType returns the name of the stored element type.
	DataType() string
	Attributes() Attributes
	// Float32s reads every value of the variable in row-major order.
	Float32s() ([]float32, error)
}

// VariableSource looks up variables by name.
type VariableSource interface {
	LookupVariable(name string) (Variable, bool)
}

// Request specifies a reduction of one variable along one dimension.
type Request struct {
	Variable  string
	Dimension string
	Operation Operation
}

// ParseRequest parses a "variable:dimension" pair.
func ParseRequest(s string, op Operation) (Request, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Request{}, fmt.Errorf("runevis: invalid reduction %q, expected format variable:dimension", s)
	}
	return Request{Variable: parts[0], Dimension: parts[1], Operation: op}, nil
}

// Load reads a variable into an NDArray.
func Load(v Variable) (*NDArray, error) {
	data, err := v.Float32s()
	if err != nil {
		return nil, wrapIO("read", v.Name(), err)
	}
	return NewNDArray(DimensionShape(v.Dimensions()), data)
}

// Reduce performs the reduction specified by req on a variable from src.
// The dimension is resolved before any data is read.
func (e *Executor) Reduce(src VariableSource, req Request) (*Result, error) {
	v, ok := src.LookupVariable(req.Variable)
	if !ok {
		return nil, &VariableNotFoundError{Variable: req.Variable}
	}
	dims := v.Dimensions()
	axis, err := ResolveAxis(req.Variable, dims, req.Dimension)
	if err != nil {
		return nil, err
	}
	a, err := Load(v)
	if err != nil {
		return nil, err
	}
	e.Log.WithFields(logrus.Fields{
		"variable":  req.Variable,
		"dimension": req.Dimension,
		"operation": req.Operation.String(),
	}).Debug("reducing")
	reduced, err := e.FoldAxis(a, axis, req.Operation.Kernel())
	if err != nil {
		return nil, err
	}
	return Materialize(reduced, KeptNames(dims, axis), req.Operation, req.Variable, req.Dimension, v.Attributes())
}
