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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/greensh16/RuNeVis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsBlob(t *testing.T) {
	assert.True(t, IsBlob("gs://bucket/file.nc"))
	assert.True(t, IsBlob("s3://bucket/file.nc"))
	assert.True(t, IsBlob("file:///tmp/file.nc"))
	assert.False(t, IsBlob("/tmp/file.nc"))
	assert.False(t, IsBlob("file.nc"))
}

func TestSplitBlob(t *testing.T) {
	for _, test := range []struct {
		path, bucket, key string
	}{
		{"gs://bucket/dir/file.nc", "gs://bucket", "dir/file.nc"},
		{"s3://bucket/file.nc", "s3://bucket", "file.nc"},
		{"file:///tmp/data/file.nc", "file:///tmp/data", "file.nc"},
	} {
		bucket, key, err := splitBlob(test.path)
		require.NoError(t, err)
		assert.Equal(t, test.bucket, bucket, test.path)
		assert.Equal(t, test.key, key, test.path)
	}
	_, _, err := splitBlob("gs://bucket")
	assert.Error(t, err)
}

func TestBlobRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFixture(t, filepath.Join(dir, "fixture.nc"))

	d, err := Open(ctx, "file://"+filepath.Join(dir, "fixture.nc"))
	require.NoError(t, err)
	staged := d.staged.dir
	assert.DirExists(t, staged)

	e, err := runevis.NewExecutor(2)
	require.NoError(t, err)
	defer e.Close()
	r, err := e.Reduce(d, runevis.Request{Variable: "temperature", Dimension: "lat", Operation: runevis.Min})
	require.NoError(t, err)
	require.NoError(t, d.Close())
	_, err = os.Stat(staged)
	assert.True(t, os.IsNotExist(err))

	outDir := t.TempDir()
	w, err := Create(ctx, "file://"+filepath.Join(outDir, "min.nc"))
	require.NoError(t, err)
	require.NoError(t, r.Persist(w, nil))

	o, err := Open(ctx, filepath.Join(outDir, "min.nc"))
	require.NoError(t, err)
	defer o.Close()
	v, ok := o.Variable("temperature_minimum_over_lat")
	require.True(t, ok)
	data, err := v.Float32s()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 7, 8, 13, 14, 19, 20}, data)
}

func TestBlobMissing(t *testing.T) {
	_, err := Open(context.Background(), "file://"+filepath.Join(t.TempDir(), "missing.nc"))
	assert.True(t, errors.Is(err, runevis.ErrIO))
}
