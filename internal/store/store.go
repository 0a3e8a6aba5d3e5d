// Package store defines the persistence interface for the event log.
//
// The log is the sole owner of durable state. There is deliberately no
// update or delete in this interface: append-only is enforced by never
// exposing anything else.
package store

import (
	"context"

	"github.com/noirclub/noird/internal/model"
)

// SubjectSum is one row of a per-subject amount fold.
type SubjectSum struct {
	Subject int64
	Sum     int64
}

// Store is the persistence interface for the event log.
type Store interface {
	// AppendEvent inserts the event and fills in its ID and CreatedAt.
	AppendEvent(ctx context.Context, ev *model.Event) error

	// Events returns events matching the filter, ordered by ID.
	Events(ctx context.Context, filter model.EventFilter) ([]*model.Event, error)

	// LastEvent returns the highest-ID event matching the filter, or nil
	// when none matches.
	LastEvent(ctx context.Context, filter model.EventFilter) (*model.Event, error)

	// SumAmounts returns the sum of Amount over matching events; events
	// with a NULL amount count as zero.
	SumAmounts(ctx context.Context, filter model.EventFilter) (int64, error)

	// SubjectSums returns per-subject amount sums for one kind, largest
	// first. Events with no subject are excluded.
	SubjectSums(ctx context.Context, kind model.Kind) ([]SubjectSum, error)

	// Subjects returns the distinct subjects that have at least one event
	// of any of the given kinds.
	Subjects(ctx context.Context, kinds ...model.Kind) ([]int64, error)

	// RunInTransaction runs fn against a transactional view of the store,
	// committing on success and rolling back on error.
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
