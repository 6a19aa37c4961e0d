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

package ncstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ctessum/cdf"
	"github.com/google/uuid"
	"github.com/greensh16/RuNeVis"
	"github.com/sirupsen/logrus"
)

// RunIDAttribute is the global attribute holding a unique identifier
// for each created file.
const RunIDAttribute = "runevis_run_id"

type attribute struct {
	variable, name string
	value          interface{}
}

// Writer creates a new NetCDF file. Dimensions, variables and
// attributes are collected until the first call to Put, at which point
// the header is written. Writer implements runevis.DatasetSink.
type Writer struct {
	// Log receives upload progress messages.
	Log logrus.FieldLogger

	ctx        context.Context
	path       string
	local      string
	uploadPath string

	dims    []string
	lengths []int
	vars    []string
	varDims map[string][]string
	attrs   []attribute

	f      *os.File
	cf     *cdf.File
	closed bool
}

// Create prepares a new dataset at path. An existing file at path is
// removed. If path refers to blob storage, the file is written to a
// temporary location and uploaded when the Writer is closed.
func Create(ctx context.Context, path string) (*Writer, error) {
	w := &Writer{
		Log:     logrus.StandardLogger(),
		ctx:     ctx,
		path:    path,
		local:   path,
		varDims: make(map[string][]string),
	}
	if IsBlob(path) {
		local, err := uploadLocation(path)
		if err != nil {
			return nil, &runevis.IOError{Op: "create", Path: path, Err: err}
		}
		w.local = local
		w.uploadPath = path
	}
	if err := os.Remove(w.local); err != nil && !os.IsNotExist(err) {
		return nil, &runevis.IOError{Op: "remove", Path: w.local, Err: err}
	}
	return w, nil
}

// AddDimension adds a dimension. A dimension with length zero is
// stored as the unlimited dimension; only one is allowed.
func (w *Writer) AddDimension(name string, length int) error {
	if w.cf != nil {
		return fmt.Errorf("ncstore: cannot add dimension %s after data has been written", name)
	}
	for i, d := range w.dims {
		if d == name {
			return fmt.Errorf("ncstore: duplicate dimension %s", name)
		}
		if length == 0 && w.lengths[i] == 0 {
			return fmt.Errorf("ncstore: dimension %s has zero length but %s is already unlimited", name, d)
		}
	}
	if length < 0 {
		return fmt.Errorf("ncstore: invalid length %d for dimension %s", length, name)
	}
	w.dims = append(w.dims, name)
	w.lengths = append(w.lengths, length)
	return nil
}

// AddVariable adds a float32 variable with the given dimensions.
func (w *Writer) AddVariable(name string, dims []string) error {
	if w.cf != nil {
		return fmt.Errorf("ncstore: cannot add variable %s after data has been written", name)
	}
	if _, ok := w.varDims[name]; ok {
		return fmt.Errorf("ncstore: duplicate variable %s", name)
	}
	for i, d := range dims {
		j := w.dimIndex(d)
		if j < 0 {
			return fmt.Errorf("ncstore: variable %s: undefined dimension %s", name, d)
		}
		if w.lengths[j] == 0 && i != 0 {
			return fmt.Errorf("ncstore: variable %s: unlimited dimension %s must be first", name, d)
		}
	}
	w.vars = append(w.vars, name)
	w.varDims[name] = append([]string(nil), dims...)
	return nil
}

func (w *Writer) dimIndex(name string) int {
	for i, d := range w.dims {
		if d == name {
			return i
		}
	}
	return -1
}

// PutAttribute sets an attribute of variable, or a global attribute if
// variable is empty.
func (w *Writer) PutAttribute(variable, name string, value runevis.AttributeValue) error {
	if w.cf != nil {
		return fmt.Errorf("ncstore: cannot add attribute %s after data has been written", name)
	}
	if _, ok := w.varDims[variable]; variable != "" && !ok {
		return fmt.Errorf("ncstore: attribute %s: undefined variable %s", name, variable)
	}
	v, err := toCDF(value)
	if err != nil {
		return err
	}
	w.attrs = append(w.attrs, attribute{variable: variable, name: name, value: v})
	return nil
}

// define writes the header.
func (w *Writer) define() error {
	h := cdf.NewHeader(w.dims, w.lengths)
	for _, v := range w.vars {
		h.AddVariable(v, w.varDims[v], []float32{0})
	}
	for _, a := range w.attrs {
		h.AddAttribute(a.variable, a.name, a.value)
	}
	h.AddAttribute("", RunIDAttribute, uuid.New().String())
	h.Define()

	f, err := os.Create(w.local)
	if err != nil {
		return err
	}
	cf, err := cdf.Create(f, h)
	if err != nil {
		f.Close()
		return err
	}
	w.f, w.cf = f, cf
	return nil
}

// Put writes all values of variable.
func (w *Writer) Put(variable string, data []float32) error {
	dims, ok := w.varDims[variable]
	if !ok {
		return fmt.Errorf("ncstore: undefined variable %s", variable)
	}
	if w.cf == nil {
		if err := w.define(); err != nil {
			return err
		}
	}
	shape := make([]int, len(dims))
	for i, d := range dims {
		shape[i] = w.lengths[w.dimIndex(d)]
	}
	if len(shape) > 0 && shape[0] == 0 {
		// Unlimited dimension: the number of records follows from the data.
		if inner := runevis.Shape(shape[1:]).Size(); inner > 0 {
			shape[0] = len(data) / inner
		}
	}
	if n := runevis.Shape(shape).Size(); n != len(data) {
		return &runevis.ShapeMismatchError{Shape: shape, Len: len(data)}
	}
	if len(data) == 0 {
		return nil
	}
	var begin, end []int
	if len(shape) > 0 {
		begin = make([]int, len(shape))
		end = shape
	}
	if _, err := w.cf.Writer(variable, begin, end).Write(data); err != nil {
		return fmt.Errorf("ncstore: writing variable %s: %v", variable, err)
	}
	return nil
}

// Close finishes the file and uploads it if it is bound for blob
// storage. A file without variables is not written. If finishing fails,
// the partial file is removed.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if len(w.vars) == 0 {
		w.discard()
		return fmt.Errorf("ncstore: %s has no variables", w.path)
	}
	if w.cf == nil {
		if err := w.define(); err != nil {
			w.discard()
			return err
		}
	}
	if err := cdf.UpdateNumRecs(w.f); err != nil {
		w.discard()
		return fmt.Errorf("ncstore: finalizing %s: %v", w.path, err)
	}
	if err := w.f.Close(); err != nil {
		w.f = nil
		w.discard()
		return err
	}
	w.f = nil
	if w.uploadPath == "" {
		return nil
	}
	return upload(w.ctx, w.local, w.uploadPath, w.Log)
}

// Abort discards the file. Nothing is left at the output path and
// nothing is uploaded.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.discard()
}

// discard closes and removes the local file, along with its temporary
// directory if the file was bound for blob storage.
func (w *Writer) discard() error {
	if w.f != nil {
		w.f.Close()
		w.f = nil
	}
	if w.uploadPath != "" {
		return os.RemoveAll(filepath.Dir(w.local))
	}
	if err := os.Remove(w.local); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
