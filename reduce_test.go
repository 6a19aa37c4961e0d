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
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memVariable struct {
	name  string
	dims  []DimensionDescriptor
	attrs Attributes
	data  []float32
	reads int
	err   error
}

func (v *memVariable) Name() string                      { return v.name }
func (v *memVariable) Dimensions() []DimensionDescriptor { return v.dims }
func (v *memVariable) DataType() string                  { return "float" }
func (v *memVariable) Attributes() Attributes            { return v.attrs }
func (v *memVariable) Float32s() ([]float32, error) {
	v.reads++
	return v.data, v.err
}

type memSource map[string]*memVariable

func (s memSource) LookupVariable(name string) (Variable, bool) {
	v, ok := s[name]
	if !ok {
		return nil, false
	}
	return v, true
}

func temperature() *memVariable {
	data := make([]float32, 24)
	for i := range data {
		data[i] = float32(i + 1)
	}
	return &memVariable{
		name: "temperature",
		dims: []DimensionDescriptor{
			{Name: "time", Len: 4, Unlimited: true},
			{Name: "lat", Len: 3},
			{Name: "lon", Len: 2},
		},
		attrs: Attributes{
			{Name: "units", Value: String("K")},
			{Name: FillValueName, Value: Float64s{-9999}},
			{Name: "valid_range", Value: Float32s{0, 400}},
			{Name: "flags", Value: Uint64s{1, 2}},
		},
		data: data,
	}
}

func TestResolveAxis(t *testing.T) {
	dims := []DimensionDescriptor{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}, {Name: "b"}}
	axis, err := ResolveAxis("v", dims, "b")
	require.NoError(t, err)
	assert.Equal(t, 1, axis)
	assert.Equal(t, []string{"a", "c", "d", "b"}, KeptNames(dims, axis))

	_, err = ResolveAxis("v", dims, "bogus")
	var dnf *DimensionNotFoundError
	require.True(t, errors.As(err, &dnf))
	assert.Equal(t, "v", dnf.Variable)
	assert.Equal(t, "bogus", dnf.Dimension)
}

func TestKeptNamesOrder(t *testing.T) {
	dims := []DimensionDescriptor{{Name: "a"}, {Name: "b"}, {Name: "c"}, {Name: "d"}}
	assert.Equal(t, []string{"a", "c", "d"}, KeptNames(dims, 1))
	assert.Equal(t, []string{"b", "c", "d"}, KeptNames(dims, 0))
	assert.Equal(t, []string{"a", "b", "c"}, KeptNames(dims, 3))
}

func TestDerivedName(t *testing.T) {
	assert.Equal(t, "temperature_mean_over_time", DerivedName("temperature", Mean, "time"))
	assert.Equal(t, "t_minimum_over_lat", DerivedName("t", Min, "lat"))
	assert.Equal(t, "t_maximum_over_lat", DerivedName("t", Max, "lat"))
	assert.Equal(t, "t_sum_over_lat", DerivedName("t", Sum, "lat"))
}

func TestReduce(t *testing.T) {
	e := newExecutor(t, 2)
	src := memSource{"temperature": temperature()}
	r, err := e.Reduce(src, Request{Variable: "temperature", Dimension: "time", Operation: Mean})
	require.NoError(t, err)
	assert.Equal(t, "temperature_mean_over_time", r.Name)
	assert.Equal(t, []string{"lat", "lon"}, r.KeptDimensions)
	assert.Equal(t, []int{3, 2}, r.Data.Shape())
	assert.Equal(t, float32(10), r.Data.At(0, 0))
}

func TestReduceErrors(t *testing.T) {
	e := newExecutor(t, 2)
	v := &memVariable{
		name: "data",
		dims: []DimensionDescriptor{{Name: "x", Len: 2}, {Name: "y", Len: 2}},
		data: []float32{1, 2, 3, 4},
	}
	src := memSource{"data": v}

	t.Run("dimension", func(t *testing.T) {
		_, err := e.Reduce(src, Request{Variable: "data", Dimension: "bogus", Operation: Sum})
		var dnf *DimensionNotFoundError
		require.True(t, errors.As(err, &dnf))
		assert.Equal(t, DimensionNotFoundError{Variable: "data", Dimension: "bogus"}, *dnf)
		assert.Equal(t, "Dimension 'bogus' not found in variable 'data'", err.Error())
		assert.Equal(t, 0, v.reads, "data must not be read before the dimension is resolved")
	})
	t.Run("variable", func(t *testing.T) {
		_, err := e.Reduce(src, Request{Variable: "nope", Dimension: "x", Operation: Sum})
		assert.True(t, errors.Is(err, ErrVariableNotFound))
		assert.Equal(t, "Variable 'nope' not found in file", err.Error())
	})
	t.Run("shape", func(t *testing.T) {
		bad := &memVariable{name: "bad", dims: v.dims, data: []float32{1, 2, 3}}
		_, err := e.Reduce(memSource{"bad": bad}, Request{Variable: "bad", Dimension: "x", Operation: Sum})
		assert.True(t, errors.Is(err, ErrShapeMismatch))
	})
	t.Run("io", func(t *testing.T) {
		broken := &memVariable{name: "broken", dims: v.dims, err: fmt.Errorf("disk on fire")}
		_, err := e.Reduce(memSource{"broken": broken}, Request{Variable: "broken", Dimension: "x", Operation: Sum})
		assert.True(t, errors.Is(err, ErrIO))
		var ioe *IOError
		require.True(t, errors.As(err, &ioe))
		assert.Equal(t, "disk on fire", errors.Unwrap(ioe).Error())
	})
}

func TestParseRequest(t *testing.T) {
	req, err := ParseRequest("temperature:time", Max)
	require.NoError(t, err)
	assert.Equal(t, Request{Variable: "temperature", Dimension: "time", Operation: Max}, req)
	for _, bad := range []string{"temperature", "temperature:", ":time", "a:b:c"} {
		_, err := ParseRequest(bad, Sum)
		assert.Error(t, err, bad)
	}
}

type putAttr struct {
	variable, name string
	value          AttributeValue
}

type memSink struct {
	dims    [][2]interface{}
	vars    map[string][]string
	attrs   []putAttr
	data    map[string][]float32
	closed  bool
	aborted bool
	// putData records the number of attributes present when data was put.
	putData int
}

func newMemSink() *memSink {
	return &memSink{vars: make(map[string][]string), data: make(map[string][]float32)}
}

func (s *memSink) AddDimension(name string, length int) error {
	s.dims = append(s.dims, [2]interface{}{name, length})
	return nil
}
func (s *memSink) AddVariable(name string, dims []string) error {
	s.vars[name] = dims
	return nil
}
func (s *memSink) PutAttribute(variable, name string, value AttributeValue) error {
	switch value.(type) {
	case Uint64s, Int64s, Strings:
		return fmt.Errorf("memsink: %w: %s", ErrUnsupportedAttribute, value.Type())
	}
	s.attrs = append(s.attrs, putAttr{variable, name, value})
	return nil
}
func (s *memSink) Put(variable string, data []float32) error {
	s.putData = len(s.attrs)
	s.data[variable] = data
	return nil
}
func (s *memSink) Close() error {
	s.closed = true
	return nil
}
func (s *memSink) Abort() error {
	s.aborted = true
	return nil
}

func TestPersist(t *testing.T) {
	e := newExecutor(t, 2)
	r, err := e.Reduce(memSource{"temperature": temperature()},
		Request{Variable: "temperature", Dimension: "lat", Operation: Sum})
	require.NoError(t, err)

	logger, hook := test.NewNullLogger()
	sink := newMemSink()
	before := time.Now().Add(-time.Second)
	require.NoError(t, r.Persist(sink, logger))

	assert.True(t, sink.closed)
	assert.Equal(t, [][2]interface{}{{"time", 4}, {"lon", 2}}, sink.dims)
	assert.Equal(t, []string{"time", "lon"}, sink.vars["temperature_sum_over_lat"])
	require.Len(t, sink.attrs, 4)
	assert.Equal(t, putAttr{"temperature_sum_over_lat", FillValueName, Float32s{-9999}}, sink.attrs[0])
	assert.Equal(t, putAttr{"temperature_sum_over_lat", "units", String("K")}, sink.attrs[1])
	assert.Equal(t, putAttr{"temperature_sum_over_lat", "valid_range", Float32s{0, 400}}, sink.attrs[2])

	history := sink.attrs[3]
	assert.Equal(t, "", history.variable)
	assert.Equal(t, HistoryAttribute, history.name)
	prefix := "Created by RuNeVis on "
	require.True(t, strings.HasPrefix(history.value.String(), prefix))
	stamp, err := time.Parse(time.RFC3339, strings.TrimPrefix(history.value.String(), prefix))
	require.NoError(t, err)
	assert.False(t, stamp.Before(before.Truncate(time.Second)))

	assert.Equal(t, 4, sink.putData)
	assert.Equal(t, []float32{9, 12, 27, 30, 45, 48, 63, 66}, sink.data["temperature_sum_over_lat"])

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "flags", hook.LastEntry().Data["attribute"])
}

type failingSink struct{ *memSink }

func (failingSink) Put(string, []float32) error { return fmt.Errorf("no space left on device") }

func TestPersistIOError(t *testing.T) {
	e := newExecutor(t, 1)
	r, err := e.Reduce(memSource{"temperature": temperature()},
		Request{Variable: "temperature", Dimension: "time", Operation: Max})
	require.NoError(t, err)
	sink := failingSink{newMemSink()}
	err = r.Persist(sink, nil)
	assert.True(t, errors.Is(err, ErrIO))
	assert.True(t, sink.aborted)
	assert.False(t, sink.closed)
}

func TestPersistRepeatedDimension(t *testing.T) {
	m := &memVariable{
		name: "m",
		dims: []DimensionDescriptor{{Name: "x", Len: 2}, {Name: "x", Len: 2}, {Name: "y", Len: 3}},
		data: make([]float32, 12),
	}
	e := newExecutor(t, 2)
	r, err := e.Reduce(memSource{"m": m}, Request{Variable: "m", Dimension: "y", Operation: Sum})
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "x"}, r.KeptDimensions)

	sink := newMemSink()
	require.NoError(t, r.Persist(sink, nil))
	assert.Equal(t, [][2]interface{}{{"x", 2}}, sink.dims)
	assert.Equal(t, []string{"x", "x"}, sink.vars["m_sum_over_y"])
	assert.True(t, sink.closed)
}

func TestMaterializeRankMismatch(t *testing.T) {
	a, err := NewNDArray([]int{2}, []float32{1, 2})
	require.NoError(t, err)
	_, err = Materialize(a, []string{"x", "y"}, Mean, "v", "z", nil)
	assert.True(t, errors.Is(err, ErrShapeMismatch))
}
