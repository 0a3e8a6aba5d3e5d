// Package memory implements store.Store in process memory. It backs
// `noird serve --memory` for local development and the domain-logic tests;
// nothing survives a restart.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// MemoryStore implements store.Store with an in-memory event slice.
type MemoryStore struct {
	mu     sync.RWMutex
	txMu   sync.Mutex
	events []*model.Event
	nextID int64

	// Now is the clock used for CreatedAt stamps. Tests may override it.
	Now func() time.Time
}

// Compile-time check that MemoryStore implements store.Store.
var _ store.Store = (*MemoryStore)(nil)

// New returns an empty in-memory store.
func New() *MemoryStore {
	return &MemoryStore{nextID: 1, Now: time.Now}
}

func (m *MemoryStore) AppendEvent(_ context.Context, ev *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := *ev
	stored.ID = m.nextID
	stored.CreatedAt = m.Now().UTC().Truncate(time.Second)
	m.nextID++
	m.events = append(m.events, &stored)

	ev.ID = stored.ID
	ev.CreatedAt = stored.CreatedAt
	return nil
}

func matches(ev *model.Event, f model.EventFilter) bool {
	if len(f.Kinds) > 0 {
		found := false
		for _, k := range f.Kinds {
			if ev.Kind == k {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SystemSubject {
		if ev.Subject != nil {
			return false
		}
	} else if f.Subject != nil {
		if ev.Subject == nil || *ev.Subject != *f.Subject {
			return false
		}
	}
	if f.AfterID > 0 && ev.ID <= f.AfterID {
		return false
	}
	if f.Annotation != "" && ev.Annotation != f.Annotation {
		return false
	}
	if f.AnnotationPrefix != "" && !strings.HasPrefix(ev.Annotation, f.AnnotationPrefix) {
		return false
	}
	return true
}

func (m *MemoryStore) Events(_ context.Context, f model.EventFilter) ([]*model.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []*model.Event
	for _, ev := range m.events {
		if matches(ev, f) {
			copied := *ev
			result = append(result, &copied)
		}
	}
	if f.Order == model.OrderDesc {
		for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
			result[i], result[j] = result[j], result[i]
		}
	}
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (m *MemoryStore) LastEvent(ctx context.Context, f model.EventFilter) (*model.Event, error) {
	f.Order = model.OrderDesc
	f.Limit = 1
	events, err := m.Events(ctx, f)
	if err != nil {
		return nil, err
	}
	if len(events) == 0 {
		return nil, nil
	}
	return events[0], nil
}

func (m *MemoryStore) SumAmounts(_ context.Context, f model.EventFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum int64
	for _, ev := range m.events {
		if matches(ev, f) {
			sum += ev.AmountValue()
		}
	}
	return sum, nil
}

func (m *MemoryStore) SubjectSums(_ context.Context, kind model.Kind) ([]store.SubjectSum, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[int64]int64)
	for _, ev := range m.events {
		if ev.Kind == kind && ev.Subject != nil {
			totals[*ev.Subject] += ev.AmountValue()
		}
	}

	sums := make([]store.SubjectSum, 0, len(totals))
	for subject, sum := range totals {
		sums = append(sums, store.SubjectSum{Subject: subject, Sum: sum})
	}
	sort.Slice(sums, func(i, j int) bool {
		if sums[i].Sum != sums[j].Sum {
			return sums[i].Sum > sums[j].Sum
		}
		return sums[i].Subject < sums[j].Subject
	})
	return sums, nil
}

func (m *MemoryStore) Subjects(_ context.Context, kinds ...model.Kind) ([]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[int64]bool)
	for _, ev := range m.events {
		if ev.Subject == nil {
			continue
		}
		for _, k := range kinds {
			if ev.Kind == k {
				seen[*ev.Subject] = true
				break
			}
		}
	}

	subjects := make([]int64, 0, len(seen))
	for s := range seen {
		subjects = append(subjects, s)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i] < subjects[j] })
	return subjects, nil
}

// RunInTransaction serializes transactions against each other and runs fn
// with the store itself. There is no rollback: the memory backend is for
// development and tests, where a failed multi-append is exactly the partial
// sequence the log-reconstruction tests want to observe.
func (m *MemoryStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(m)
}

func (m *MemoryStore) Close() error {
	return nil
}
