// Package engine is a small in-process data-parallel batch engine.
//
// A Dataset is a set of row partitions; operations are total, row-wise
// transformations (Map, Filter) or shard-then-merge reductions
// (DistinctBy). Partitions execute concurrently on a bounded pool of
// goroutines. Rows are immutable inputs and freshly constructed
// outputs, so no locking is needed beyond the pool itself.
package engine

import (
	"runtime"
	"sync"
)

// Dataset holds rows split into partitions.
type Dataset[T any] struct {
	partitions [][]T
}

// FromSlice splits rows into at most partitions roughly equal chunks.
// partitions < 1 falls back to a single partition.
func FromSlice[T any](rows []T, partitions int) Dataset[T] {
	if partitions < 1 {
		partitions = 1
	}
	if partitions > len(rows) {
		partitions = len(rows)
	}
	if len(rows) == 0 {
		return Dataset[T]{}
	}

	parts := make([][]T, 0, partitions)
	chunk := (len(rows) + partitions - 1) / partitions
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		parts = append(parts, rows[start:end])
	}
	return Dataset[T]{partitions: parts}
}

// Collect flattens the dataset back into one slice, partition order
// first. Row order across partitions is an implementation detail.
func (d Dataset[T]) Collect() []T {
	var out []T
	for _, p := range d.partitions {
		out = append(out, p...)
	}
	return out
}

// Len returns the total row count.
func (d Dataset[T]) Len() int {
	n := 0
	for _, p := range d.partitions {
		n += len(p)
	}
	return n
}

// Engine schedules per-partition work on a bounded goroutine pool.
type Engine struct {
	workers int
}

// New creates an Engine. workers < 1 uses GOMAXPROCS.
func New(workers int) *Engine {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Engine{workers: workers}
}

// run executes task(p) for every partition index, at most e.workers at
// a time.
func (e *Engine) run(partitions int, task func(p int)) {
	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for p := 0; p < partitions; p++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(p int) {
			defer wg.Done()
			defer func() { <-sem }()
			task(p)
		}(p)
	}
	wg.Wait()
}

// Map applies a total transformation to every row.
func Map[I, O any](e *Engine, in Dataset[I], fn func(I) O) Dataset[O] {
	out := make([][]O, len(in.partitions))
	e.run(len(in.partitions), func(p int) {
		rows := make([]O, len(in.partitions[p]))
		for i, row := range in.partitions[p] {
			rows[i] = fn(row)
		}
		out[p] = rows
	})
	return Dataset[O]{partitions: out}
}

// Filter keeps the rows for which keep returns true.
func Filter[T any](e *Engine, in Dataset[T], keep func(T) bool) Dataset[T] {
	out := make([][]T, len(in.partitions))
	e.run(len(in.partitions), func(p int) {
		var rows []T
		for _, row := range in.partitions[p] {
			if keep(row) {
				rows = append(rows, row)
			}
		}
		out[p] = rows
	})
	return Dataset[T]{partitions: out}
}

// DistinctBy keeps one row per distinct key. Each partition dedupes
// locally in parallel, then the partial results are merged with a
// global key set. Which duplicate survives is unspecified.
func DistinctBy[T any, K comparable](e *Engine, in Dataset[T], key func(T) K) Dataset[T] {
	local := make([][]T, len(in.partitions))
	e.run(len(in.partitions), func(p int) {
		seen := make(map[K]struct{})
		var rows []T
		for _, row := range in.partitions[p] {
			k := key(row)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rows = append(rows, row)
		}
		local[p] = rows
	})

	seen := make(map[K]struct{})
	var merged []T
	for _, rows := range local {
		for _, row := range rows {
			k := key(row)
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			merged = append(merged, row)
		}
	}
	return FromSlice(merged, len(in.partitions))
}
