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
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// AutoThreads requests one worker per available CPU.
const AutoThreads = -1

// chunksPerWorker is the number of contiguous output ranges handed
// to each worker for a single fold.
const chunksPerWorker = 4

// Executor is a fixed-size pool of worker goroutines that computes
// reductions. The pool is started on first use and is reused for
// every subsequent reduction until Close is called. The number of
// workers can only be changed before the first reduction.
type Executor struct {
	// Log receives pool lifecycle messages. It defaults to
	// logrus.StandardLogger().
	Log logrus.FieldLogger

	mu      sync.RWMutex
	threads int
	started bool
	closed  bool
	tasks   chan func()
}

// NewExecutor returns an executor with the given number of workers.
// threads may be AutoThreads to use runtime.GOMAXPROCS(0) workers.
// Zero or other negative values return a *ThreadPoolError.
func NewExecutor(threads int) (*Executor, error) {
	n, err := poolSize(threads)
	if err != nil {
		return nil, err
	}
	return &Executor{
		Log:     logrus.StandardLogger(),
		threads: n,
	}, nil
}

func poolSize(threads int) (int, error) {
	switch {
	case threads == AutoThreads:
		return runtime.GOMAXPROCS(0), nil
	case threads > 0:
		return threads, nil
	case threads == 0:
		return 0, &ThreadPoolError{Message: "number of threads must be greater than zero"}
	default:
		return 0, &ThreadPoolError{Message: fmt.Sprintf("invalid number of threads %d", threads)}
	}
}

// Threads returns the number of workers in the pool.
func (e *Executor) Threads() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.threads
}

// Resize changes the number of workers. It returns a *ThreadPoolError
// once the pool has been used.
func (e *Executor) Resize(threads int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started || e.closed {
		return &ThreadPoolError{Message: fmt.Sprintf(
			"thread pool already initialized with %d threads", e.threads)}
	}
	n, err := poolSize(threads)
	if err != nil {
		return err
	}
	e.threads = n
	return nil
}

// Close stops the workers. Reductions submitted after Close fail.
func (e *Executor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started && !e.closed {
		close(e.tasks)
	}
	e.closed = true
}

func (e *Executor) start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return &ThreadPoolError{Message: "thread pool is closed"}
	}
	if e.started {
		return nil
	}
	e.tasks = make(chan func())
	for i := 0; i < e.threads; i++ {
		go func() {
			for task := range e.tasks {
				task()
			}
		}()
	}
	e.started = true
	e.Log.WithFields(logrus.Fields{"threads": e.threads}).Debug("started worker pool")
	return nil
}

// FoldAxis reduces src along axis with kernel k, skipping non-finite
// values. The result has the shape of src with axis removed. Each output
// element is computed entirely by one worker, so the result does not
// depend on the number of workers.
func (e *Executor) FoldAxis(src *NDArray, axis int, k Kernel) (*NDArray, error) {
	if axis < 0 || axis >= src.Rank() {
		return nil, &AxisOutOfBoundsError{Axis: axis, Rank: src.Rank()}
	}
	if err := e.start(); err != nil {
		return nil, err
	}
	outShape := src.shape.Without(axis)
	out := make([]float32, outShape.Size())

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, &ThreadPoolError{Message: "thread pool is closed"}
	}
	ranges := partition(len(out), e.threads*chunksPerWorker)
	var wg sync.WaitGroup
	wg.Add(len(ranges))
	for _, r := range ranges {
		begin, end := r[0], r[1]
		e.tasks <- func() {
			foldRange(src, axis, outShape, out, begin, end, k)
			wg.Done()
		}
	}
	wg.Wait()
	return &NDArray{shape: outShape, data: out}, nil
}

// partition splits [0, n) into at most parts contiguous ranges.
func partition(n, parts int) [][2]int {
	if n == 0 {
		return nil
	}
	if parts > n {
		parts = n
	}
	if parts < 1 {
		parts = 1
	}
	ranges := make([][2]int, 0, parts)
	size, rem := n/parts, n%parts
	begin := 0
	for i := 0; i < parts; i++ {
		end := begin + size
		if i < rem {
			end++
		}
		ranges = append(ranges, [2]int{begin, end})
		begin = end
	}
	return ranges
}

// foldRange computes out[begin:end]. Every output element gathers the
// values along axis into a scratch buffer owned by the calling worker.
func foldRange(src *NDArray, axis int, outShape Shape, out []float32, begin, end int, k Kernel) {
	axisLen := src.shape[axis]
	stride := src.shape.Strides()[axis]
	values := make([]float32, axisLen)
	outCoords := make([]int, len(outShape))
	srcCoords := make([]int, len(src.shape))
	for o := begin; o < end; o++ {
		outCoords = outShape.Coords(o, outCoords)
		copy(srcCoords[:axis], outCoords[:axis])
		srcCoords[axis] = 0
		copy(srcCoords[axis+1:], outCoords[axis:])
		base := src.shape.Index(srcCoords)
		for i := range values {
			values[i] = src.data[base+i*stride]
		}
		out[o] = k(values, true)
	}
}
