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
	"context"
	"fmt"
	"io"

	"github.com/greensh16/RuNeVis"
	"github.com/greensh16/RuNeVis/ncstore"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
)

// Options specifies what to do with a dataset. At most one action is
// performed, checked in the order ListVars, Reduction, Describe,
// Summary and Slice. If none is set, the metadata is printed.
type Options struct {
	File string

	ListVars bool
	// Reduction is the requested reduction, if any.
	Reduction *runevis.Request
	// Output is where the reduction result is saved. If empty,
	// the result is printed.
	Output string

	Describe string
	Summary  string
	Slice    *runevis.SliceSpec
}

// optionsFromConfig reads the options from cfg.
func optionsFromConfig(cfg *viper.Viper, file string) (*Options, error) {
	o := &Options{
		File:     file,
		ListVars: cfg.GetBool("list-vars"),
		Output:   cfg.GetString("output-netcdf"),
		Describe: cfg.GetString("describe"),
		Summary:  cfg.GetString("summary"),
	}
	for _, op := range []struct {
		flag string
		op   runevis.Operation
	}{
		{"mean", runevis.Mean},
		{"sum", runevis.Sum},
		{"min", runevis.Min},
		{"max", runevis.Max},
	} {
		s := cfg.GetString(op.flag)
		if s == "" {
			continue
		}
		req, err := runevis.ParseRequest(s, op.op)
		if err != nil {
			return nil, err
		}
		o.Reduction = &req
		break
	}
	if s := cfg.GetString("slice"); s != "" {
		spec, err := runevis.ParseSlice(s)
		if err != nil {
			return nil, err
		}
		o.Slice = spec
	}
	return o, nil
}

// Run opens the dataset and performs the requested action, writing
// reports to w.
func (o *Options) Run(ctx context.Context, w io.Writer, e *runevis.Executor) error {
	d, err := ncstore.Open(ctx, o.File)
	if err != nil {
		return fmt.Errorf("runevis: failed to open NetCDF file '%s': %w", o.File, err)
	}
	defer d.Close()
	logrus.WithField("path", o.File).Debug("opened dataset")

	switch {
	case o.ListVars:
		ListVariables(w, d)
		return nil
	case o.Reduction != nil:
		return o.reduce(ctx, w, e, d)
	case o.Describe != "":
		if err := Describe(w, d, o.Describe); err != nil {
			return fmt.Errorf("runevis: failed describing variable '%s': %w", o.Describe, err)
		}
		return nil
	case o.Summary != "":
		if err := Summary(w, d, o.Summary); err != nil {
			return fmt.Errorf("runevis: failed computing summary for variable '%s': %w", o.Summary, err)
		}
		return nil
	case o.Slice != nil:
		a, err := runevis.SliceVariable(d, o.Slice)
		if err != nil {
			return fmt.Errorf("runevis: failed extracting slice of variable '%s': %w", o.Slice.Variable, err)
		}
		PrintSlice(w, o.Slice, a)
		return nil
	default:
		PrintMetadata(w, d)
		return nil
	}
}

func (o *Options) reduce(ctx context.Context, w io.Writer, e *runevis.Executor, src runevis.VariableSource) error {
	req := *o.Reduction
	r, err := e.Reduce(src, req)
	if err != nil {
		return fmt.Errorf("runevis: failed computing %s of variable '%s' over dimension '%s': %w",
			req.Operation, req.Variable, req.Dimension, err)
	}
	if o.Output == "" {
		PrintResult(w, r)
		return nil
	}
	if err := save(ctx, r, o.Output); err != nil {
		return err
	}
	fmt.Fprintf(w, "Result saved to %s\n", o.Output)
	return nil
}

// save persists r as a new NetCDF file at path.
func save(ctx context.Context, r *runevis.Result, path string) error {
	sink, err := ncstore.Create(ctx, path)
	if err != nil {
		return fmt.Errorf("runevis: failed writing to NetCDF '%s': %w", path, err)
	}
	if err := r.Persist(sink, logrus.StandardLogger()); err != nil {
		return fmt.Errorf("runevis: failed writing to NetCDF '%s': %w", path, err)
	}
	logrus.WithFields(logrus.Fields{"path": path, "variable": r.Name}).Info("saved result")
	return nil
}
