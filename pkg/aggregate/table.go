// Package aggregate provides concurrent frequency tables for error records.
package aggregate

import (
	"sync"
	"sync/atomic"
)

// Table counts occurrences per key. It is safe for concurrent use without
// caller-side locking.
type Table struct {
	counts sync.Map // string -> *atomic.Int64
}

// Increment adds one to the count for key, creating it at 1 if absent.
func (t *Table) Increment(key string) {
	if v, ok := t.counts.Load(key); ok {
		v.(*atomic.Int64).Add(1)
		return
	}
	v, _ := t.counts.LoadOrStore(key, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)
}

// Snapshot returns an independent copy of the table.
func (t *Table) Snapshot() map[string]int64 {
	out := make(map[string]int64)
	t.counts.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Int64).Load()
		return true
	})
	return out
}

// Total returns the sum of all counts.
func (t *Table) Total() int64 {
	var total int64
	t.counts.Range(func(_, v any) bool {
		total += v.(*atomic.Int64).Load()
		return true
	})
	return total
}
