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
	"time"

	"github.com/sirupsen/logrus"
)

// Result is a reduced variable ready to be printed or persisted.
type Result struct {
	// Data holds the reduced values.
	Data *NDArray
	// KeptDimensions are the names of the axes of Data.
	KeptDimensions []string
	// Name is the derived name of the reduced variable.
	Name string

	Operation Operation
	// Source and Dimension are the reduced variable and dimension.
	Source, Dimension string
	// SourceAttributes are the attributes of the source variable.
	SourceAttributes Attributes
}

// DerivedName returns the name of variable reduced over dimension
// by op, e.g. "temperature_mean_over_time".
func DerivedName(variable string, op Operation, dimension string) string {
	return fmt.Sprintf("%s_%s_over_%s", variable, op, dimension)
}

// Materialize wraps a reduced array with its derived name and
// dimension names.
func Materialize(reduced *NDArray, kept []string, op Operation, variable, dimension string, attrs Attributes) (*Result, error) {
	if len(kept) != reduced.Rank() {
		return nil, &ShapeMismatchError{Shape: reduced.Shape(), Len: len(kept)}
	}
	return &Result{
		Data:             reduced,
		KeptDimensions:   append([]string(nil), kept...),
		Name:             DerivedName(variable, op, dimension),
		Operation:        op,
		Source:           variable,
		Dimension:        dimension,
		SourceAttributes: attrs,
	}, nil
}

// A DatasetSink builds a new dataset. Dimensions, variables and
// attributes must be added before data is put.
type DatasetSink interface {
	AddDimension(name string, length int) error
	AddVariable(name string, dims []string) error
	// PutAttribute sets an attribute of variable, or a global attribute
	// if variable is empty. It returns an error matching
	// ErrUnsupportedAttribute if the value type cannot be stored.
	PutAttribute(variable, name string, value AttributeValue) error
	Put(variable string, data []float32) error
	// Close finishes the dataset.
	Close() error
	// Abort discards the dataset. Nothing is left at its destination.
	Abort() error
}

// HistoryAttribute is the name of the global provenance attribute.
const HistoryAttribute = "history"

// History returns the provenance text recorded at time t.
func History(t time.Time) string {
	return fmt.Sprintf("Created by %s on %s", Name, t.Format(time.RFC3339))
}

// Persist writes r to sink and closes it. The fill value of the source
// variable is attached before any data is written. Other source
// attributes are copied; ones the sink cannot store are skipped with a
// warning. If writing fails, the sink is aborted instead of closed.
func (r *Result) Persist(sink DatasetSink, log logrus.FieldLogger) error {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if err := r.persist(sink, log); err != nil {
		if aerr := sink.Abort(); aerr != nil {
			log.WithField("variable", r.Name).Warnf("discarding partial output: %v", aerr)
		}
		return err
	}
	if err := sink.Close(); err != nil {
		return wrapIO("close", r.Name, err)
	}
	return nil
}

func (r *Result) persist(sink DatasetSink, log logrus.FieldLogger) error {
	shape := r.Data.Shape()
	added := make(map[string]int, len(shape))
	for i, name := range r.KeptDimensions {
		// A variable may use the same dimension on several axes.
		if n, ok := added[name]; ok && n == shape[i] {
			continue
		}
		if err := sink.AddDimension(name, shape[i]); err != nil {
			return wrapIO("add dimension", name, err)
		}
		added[name] = shape[i]
	}
	if err := sink.AddVariable(r.Name, r.KeptDimensions); err != nil {
		return wrapIO("add variable", r.Name, err)
	}
	if fill, ok := r.SourceAttributes.FillValue(); ok {
		if err := sink.PutAttribute(r.Name, FillValueName, Float32s{fill}); err != nil {
			return wrapIO("add attribute", FillValueName, err)
		}
	}
	for _, a := range r.SourceAttributes {
		if a.Name == FillValueName {
			continue
		}
		err := sink.PutAttribute(r.Name, a.Name, a.Value)
		if errors.Is(err, ErrUnsupportedAttribute) {
			log.WithFields(logrus.Fields{
				"variable":  r.Name,
				"attribute": a.Name,
				"type":      a.Value.Type(),
			}).Warn("skipping attribute with unsupported type")
			continue
		} else if err != nil {
			return wrapIO("add attribute", a.Name, err)
		}
	}
	if err := sink.PutAttribute("", HistoryAttribute, String(History(time.Now()))); err != nil {
		return wrapIO("add attribute", HistoryAttribute, err)
	}
	if err := sink.Put(r.Name, r.Data.Data()); err != nil {
		return wrapIO("write", r.Name, err)
	}
	return nil
}
