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
	"runtime"

	"github.com/ctessum/requestcache"
	"github.com/greensh16/RuNeVis"
	"github.com/greensh16/RuNeVis/internal/hash"
	"github.com/greensh16/RuNeVis/ncstore"
)

// Loader opens datasets and caches the values of the variables read
// from them, so that repeated reductions of the same variable read it
// only once.
type Loader struct {
	ctx      context.Context
	cache    *requestcache.Cache
	datasets map[string]*ncstore.Dataset
}

// NewLoader returns a loader that keeps up to cacheSize variables in memory.
func NewLoader(ctx context.Context, cacheSize int) *Loader {
	return &Loader{
		ctx: ctx,
		cache: requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
			return request.(*ncstore.Variable).Float32s()
		}, runtime.GOMAXPROCS(0), requestcache.Deduplicate(), requestcache.Memory(cacheSize)),
		datasets: make(map[string]*ncstore.Dataset),
	}
}

// Open returns the dataset at path, opening it if necessary.
func (l *Loader) Open(path string) (runevis.VariableSource, error) {
	d, ok := l.datasets[path]
	if !ok {
		var err error
		d, err = ncstore.Open(l.ctx, path)
		if err != nil {
			return nil, err
		}
		l.datasets[path] = d
	}
	return &cachedDataset{Dataset: d, l: l}, nil
}

// Reads returns the number of variables that have been read from disk.
func (l *Loader) Reads() int {
	r := l.cache.Requests()
	return r[len(r)-1]
}

// Close closes all open datasets.
func (l *Loader) Close() error {
	var err error
	for path, d := range l.datasets {
		if cerr := d.Close(); cerr != nil && err == nil {
			err = cerr
		}
		delete(l.datasets, path)
	}
	return err
}

type cachedDataset struct {
	*ncstore.Dataset
	l *Loader
}

func (d *cachedDataset) LookupVariable(name string) (runevis.Variable, bool) {
	v, ok := d.Variable(name)
	if !ok {
		return nil, false
	}
	return &cachedVariable{Variable: v, key: hash.Key(d.Path, name), l: d.l}, true
}

type cachedVariable struct {
	*ncstore.Variable
	key string
	l   *Loader
}

func (v *cachedVariable) Float32s() ([]float32, error) {
	data, err := v.l.cache.NewRequest(v.l.ctx, v.Variable, v.key).Result()
	if err != nil {
		return nil, err
	}
	return data.([]float32), nil
}
