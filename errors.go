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
	"errors"
	"fmt"
)

// Sentinel errors that can be matched with errors.Is against the
// typed errors returned by this package.
var (
	ErrVariableNotFound  = errors.New("variable not found")
	ErrDimensionNotFound = errors.New("dimension not found")
	ErrAxisOutOfBounds   = errors.New("axis out of bounds")
	ErrShapeMismatch     = errors.New("shape mismatch")
	ErrInvalidSlice      = errors.New("invalid slice")
	ErrIO                = errors.New("i/o error")
	ErrThreadPool        = errors.New("thread pool error")

	// ErrUnsupportedAttribute is returned by a DatasetSink when it
	// cannot store an attribute value of the given type.
	ErrUnsupportedAttribute = errors.New("unsupported attribute type")
)

// VariableNotFoundError is returned when a requested variable
// does not exist in a dataset.
type VariableNotFoundError struct {
	Variable string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("Variable '%s' not found in file", e.Variable)
}

// Is reports whether target is ErrVariableNotFound.
func (e *VariableNotFoundError) Is(target error) bool { return target == ErrVariableNotFound }

// DimensionNotFoundError is returned when a requested dimension is not
// one of the dimensions of a variable.
type DimensionNotFoundError struct {
	Variable, Dimension string
}

func (e *DimensionNotFoundError) Error() string {
	return fmt.Sprintf("Dimension '%s' not found in variable '%s'", e.Dimension, e.Variable)
}

// Is reports whether target is ErrDimensionNotFound.
func (e *DimensionNotFoundError) Is(target error) bool { return target == ErrDimensionNotFound }

// AxisOutOfBoundsError indicates that an axis index is not smaller than
// the rank of the array it refers to.
type AxisOutOfBoundsError struct {
	Axis, Rank int
}

func (e *AxisOutOfBoundsError) Error() string {
	return fmt.Sprintf("axis %d is out of bounds for array of rank %d", e.Axis, e.Rank)
}

// Is reports whether target is ErrAxisOutOfBounds.
func (e *AxisOutOfBoundsError) Is(target error) bool { return target == ErrAxisOutOfBounds }

// ShapeMismatchError indicates that a flat buffer does not hold the
// number of elements its shape requires.
type ShapeMismatchError struct {
	Shape []int
	Len   int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("shape %v requires %d elements but buffer has %d",
		e.Shape, Shape(e.Shape).Size(), e.Len)
}

// Is reports whether target is ErrShapeMismatch.
func (e *ShapeMismatchError) Is(target error) bool { return target == ErrShapeMismatch }

// InvalidSliceError is returned for malformed or out-of-range
// slice specifications.
type InvalidSliceError struct {
	Message string
}

func (e *InvalidSliceError) Error() string {
	return "Invalid slice specification: " + e.Message
}

// Is reports whether target is ErrInvalidSlice.
func (e *InvalidSliceError) Is(target error) bool { return target == ErrInvalidSlice }

func invalidSlice(format string, a ...interface{}) error {
	return &InvalidSliceError{Message: fmt.Sprintf(format, a...)}
}

// IOError wraps a failure of the underlying dataset storage.
type IOError struct {
	// Op is the operation that failed, e.g. "read" or "create".
	Op string
	// Path is the file or variable involved, if known.
	Path string
	Err  error
}

func (e *IOError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("I/O error: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("I/O error: %s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying storage error.
func (e *IOError) Unwrap() error { return e.Err }

// Is reports whether target is ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// ThreadPoolError indicates a misconfigured worker pool.
type ThreadPoolError struct {
	Message string
}

func (e *ThreadPoolError) Error() string {
	return "Thread pool error: " + e.Message
}

// Is reports whether target is ErrThreadPool.
func (e *ThreadPoolError) Is(target error) bool { return target == ErrThreadPool }

// wrapIO returns err unchanged if it is already one of this package's
// typed errors and wraps it in an IOError otherwise.
func wrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var (
		vnf *VariableNotFoundError
		dnf *DimensionNotFoundError
		sm  *ShapeMismatchError
		ioe *IOError
	)
	if errors.As(err, &vnf) || errors.As(err, &dnf) || errors.As(err, &sm) || errors.As(err, &ioe) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}
