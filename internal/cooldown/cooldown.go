// Package cooldown answers "how long since this subject last did that" over
// the event log. It owns no durations: callers compare the elapsed time
// against their own cooldown constants.
package cooldown

import (
	"context"
	"fmt"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Tracker answers elapsed-time queries and writes cooldown markers.
type Tracker struct {
	store store.Store

	// Now is the clock elapsed times are measured against. Overridable in
	// tests.
	Now func() time.Time
}

// New returns a Tracker over the given store.
func New(s store.Store) *Tracker {
	return &Tracker{store: s, Now: time.Now}
}

// SecondsSince returns the seconds elapsed since the subject's most recent
// event of the kind with the given annotation tag, or nil when no such event
// ever happened. An empty tag matches events of the kind regardless of
// annotation.
func (t *Tracker) SecondsSince(ctx context.Context, subject int64, kind model.Kind, tag string) (*int64, error) {
	filter := model.EventFilter{
		Kinds:   []model.Kind{kind},
		Subject: &subject,
	}
	if tag != "" {
		filter.Annotation = tag
	}
	ev, err := t.store.LastEvent(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("last %s of %d: %w", kind, subject, err)
	}
	if ev == nil {
		return nil, nil
	}
	elapsed := int64(t.Now().Sub(ev.CreatedAt) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return &elapsed, nil
}

// Mark records a cooldown marker for the subject under the given tag.
func (t *Tracker) Mark(ctx context.Context, subject int64, tag string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindCooldownMarker,
		Annotation: tag,
	}
	if err := t.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("mark cooldown %q for %d: %w", tag, subject, err)
	}
	return nil
}

// Ready reports whether at least d has passed since the subject's last
// marker with the tag. A subject with no marker is always ready.
func (t *Tracker) Ready(ctx context.Context, subject int64, tag string, d time.Duration) (bool, error) {
	elapsed, err := t.SecondsSince(ctx, subject, model.KindCooldownMarker, tag)
	if err != nil {
		return false, err
	}
	if elapsed == nil {
		return true, nil
	}
	return *elapsed >= int64(d/time.Second), nil
}
