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
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/greensh16/RuNeVis"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Plan is a list of reductions read from a TOML or YAML file.
type Plan struct {
	// File is the default input file for steps that do not set one.
	File       string `toml:"file" yaml:"file"`
	Reductions []Step `toml:"reductions" yaml:"reductions"`
}

// Step is one reduction in a Plan.
type Step struct {
	File      string `toml:"file" yaml:"file"`
	Variable  string `toml:"variable" yaml:"variable"`
	Dimension string `toml:"dimension" yaml:"dimension"`
	Operation string `toml:"operation" yaml:"operation"`
	// Output is where the result is saved. If empty, it is printed.
	Output string `toml:"output" yaml:"output"`
}

// LoadPlan reads a plan from path. The format is chosen by the file
// extension: .toml for TOML and .yaml or .yml for YAML.
func LoadPlan(path string) (*Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("runevis: opening plan: %v", err)
	}
	defer f.Close()
	var p Plan
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.NewDecoder(f).Decode(&p)
		if err != nil {
			return nil, fmt.Errorf("runevis: reading plan %s: %v", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("runevis: reading plan %s: unknown key %s", path, undecoded[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(f)
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil && err != io.EOF {
			return nil, fmt.Errorf("runevis: reading plan %s: %v", path, err)
		}
	default:
		return nil, fmt.Errorf("runevis: plan %s has unsupported extension; use .toml, .yaml or .yml", path)
	}
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("runevis: plan %s: %v", path, err)
	}
	return &p, nil
}

func (p *Plan) validate() error {
	if len(p.Reductions) == 0 {
		return fmt.Errorf("no reductions")
	}
	for i, s := range p.Reductions {
		if s.File == "" && p.File == "" {
			return fmt.Errorf("reduction %d: no input file", i+1)
		}
		if s.Variable == "" || s.Dimension == "" {
			return fmt.Errorf("reduction %d: variable and dimension are required", i+1)
		}
		if _, err := runevis.ParseOperation(s.Operation); err != nil {
			return fmt.Errorf("reduction %d: %v", i+1, err)
		}
	}
	return nil
}

// Run performs each reduction in turn with e. Source variables are
// read once and kept in a cache holding up to cacheSize variables.
func (p *Plan) Run(ctx context.Context, w io.Writer, e *runevis.Executor, cacheSize int) error {
	l := NewLoader(ctx, cacheSize)
	defer l.Close()
	for i, s := range p.Reductions {
		file := s.File
		if file == "" {
			file = p.File
		}
		op, err := runevis.ParseOperation(s.Operation)
		if err != nil {
			return err
		}
		src, err := l.Open(file)
		if err != nil {
			return fmt.Errorf("runevis: reduction %d: failed to open NetCDF file '%s': %w", i+1, file, err)
		}
		req := runevis.Request{Variable: s.Variable, Dimension: s.Dimension, Operation: op}
		logrus.WithFields(logrus.Fields{
			"path":      file,
			"variable":  s.Variable,
			"dimension": s.Dimension,
			"operation": op.String(),
		}).Info("running reduction")
		o := &Options{File: file, Reduction: &req, Output: s.Output}
		if err := o.reduce(ctx, w, e, src); err != nil {
			return fmt.Errorf("runevis: reduction %d: %w", i+1, err)
		}
	}
	return nil
}
