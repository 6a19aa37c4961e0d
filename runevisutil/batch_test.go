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
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/greensh16/RuNeVis"
	"github.com/greensh16/RuNeVis/ncstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPlanTOML(t *testing.T) {
	path := writePlan(t, "plan.toml", `
file = "in.nc"

[[reductions]]
variable = "temperature"
dimension = "time"
operation = "mean"
output = "mean.nc"

[[reductions]]
file = "other.nc"
variable = "temperature"
dimension = "lat"
operation = "max"
`)
	p, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, &Plan{
		File: "in.nc",
		Reductions: []Step{
			{Variable: "temperature", Dimension: "time", Operation: "mean", Output: "mean.nc"},
			{File: "other.nc", Variable: "temperature", Dimension: "lat", Operation: "max"},
		},
	}, p)
}

func TestLoadPlanYAML(t *testing.T) {
	path := writePlan(t, "plan.yml", `
file: in.nc
reductions:
  - variable: temperature
    dimension: time
    operation: minimum
`)
	p, err := LoadPlan(path)
	require.NoError(t, err)
	assert.Equal(t, []Step{{Variable: "temperature", Dimension: "time", Operation: "minimum"}}, p.Reductions)
}

func TestLoadPlanErrors(t *testing.T) {
	for name, content := range map[string]string{
		"unknown.toml":   "[[reductions]]\nvariable = \"t\"\ndimension = \"x\"\noperation = \"sum\"\nfile = \"a.nc\"\nbogus = 1\n",
		"unknown.yaml":   "reductions:\n  - variable: t\n    dimension: x\n    operation: sum\n    file: a.nc\n    bogus: 1\n",
		"empty.yaml":     "",
		"nofile.toml":    "[[reductions]]\nvariable = \"t\"\ndimension = \"x\"\noperation = \"sum\"\n",
		"badop.toml":     "file = \"a.nc\"\n[[reductions]]\nvariable = \"t\"\ndimension = \"x\"\noperation = \"median\"\n",
		"nodim.yaml":     "file: a.nc\nreductions:\n  - variable: t\n    operation: sum\n",
		"plan.json":      "{}",
		"malformed.toml": "[[reductions]\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := LoadPlan(writePlan(t, name, content))
			assert.Error(t, err)
		})
	}
	_, err := LoadPlan(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestPlanRun(t *testing.T) {
	file := writeFixture(t)
	outDir := t.TempDir()
	p := &Plan{
		File: file,
		Reductions: []Step{
			{Variable: "temperature", Dimension: "time", Operation: "mean", Output: filepath.Join(outDir, "mean.nc")},
			{Variable: "temperature", Dimension: "lon", Operation: "max"},
		},
	}
	e, err := runevis.NewExecutor(2)
	require.NoError(t, err)
	defer e.Close()
	var buf bytes.Buffer
	require.NoError(t, p.Run(context.Background(), &buf, e, 4))
	assert.Contains(t, buf.String(), "Result saved to "+filepath.Join(outDir, "mean.nc"))
	assert.Contains(t, buf.String(), "temperature_maximum_over_lon")

	d, err := ncstore.Open(context.Background(), filepath.Join(outDir, "mean.nc"))
	require.NoError(t, err)
	defer d.Close()
	_, ok := d.Variable("temperature_mean_over_time")
	assert.True(t, ok)

	p.Reductions = append(p.Reductions, Step{Variable: "temperature", Dimension: "bogus", Operation: "sum"})
	err = p.Run(context.Background(), &buf, e, 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reduction 3")
}

func TestLoaderCachesVariables(t *testing.T) {
	file := writeFixture(t)
	l := NewLoader(context.Background(), 2)
	defer l.Close()
	e, err := runevis.NewExecutor(2)
	require.NoError(t, err)
	defer e.Close()

	for i, dim := range []string{"time", "lat", "lon"} {
		src, err := l.Open(file)
		require.NoError(t, err)
		_, err = e.Reduce(src, runevis.Request{Variable: "temperature", Dimension: dim, Operation: runevis.Sum})
		require.NoError(t, err, fmt.Sprint(i))
	}
	assert.Equal(t, 1, l.Reads())

	src, err := l.Open(file)
	require.NoError(t, err)
	_, err = e.Reduce(src, runevis.Request{Variable: "cube", Dimension: "x", Operation: runevis.Sum})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Reads())
	assert.Len(t, l.datasets, 1)
}
