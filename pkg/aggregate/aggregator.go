package aggregate

import "github.com/ccollicutt/errprofile/pkg/parser"

// Aggregator accumulates error records into hour, minute and type tables.
// Every added record increments each table exactly once. There is no
// atomicity across the three tables; only final totals are meaningful.
type Aggregator struct {
	hours   Table
	minutes Table
	types   Table
}

// New creates an empty Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// IncrementHour counts one error for the given hour key.
func (a *Aggregator) IncrementHour(key string) { a.hours.Increment(key) }

// IncrementMinute counts one error for the given minute key.
func (a *Aggregator) IncrementMinute(key string) { a.minutes.Increment(key) }

// IncrementType counts one error for the given type key.
func (a *Aggregator) IncrementType(key string) { a.types.Increment(key) }

// Add counts rec in all three tables. It implements parser.Sink.
func (a *Aggregator) Add(rec parser.Record) {
	a.IncrementHour(rec.Hour)
	a.IncrementMinute(rec.Minute)
	a.IncrementType(rec.Type)
}

// Snapshot copies the three tables. Call it once all producers have finished;
// the copies are not affected by later increments.
func (a *Aggregator) Snapshot() Snapshot {
	return Snapshot{
		Hours:   a.hours.Snapshot(),
		Minutes: a.minutes.Snapshot(),
		Types:   a.types.Snapshot(),
	}
}

// Snapshot is a point-in-time copy of the three frequency tables.
type Snapshot struct {
	Hours   map[string]int64 `json:"hours"`
	Minutes map[string]int64 `json:"minutes"`
	Types   map[string]int64 `json:"types"`
}

// Total returns the number of records in the snapshot.
func (s Snapshot) Total() int64 {
	var total int64
	for _, n := range s.Hours {
		total += n
	}
	return total
}

// Empty reports whether no records were counted.
func (s Snapshot) Empty() bool {
	return len(s.Hours) == 0 && len(s.Minutes) == 0 && len(s.Types) == 0
}
