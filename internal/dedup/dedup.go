// Package dedup guards against redundant delivery of the same inbound chat
// message. Callers must check Processed before touching any other state and
// Mark immediately after the check succeeds, before business logic runs:
// a crash mid-handler then drops the message instead of applying it twice.
package dedup

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Guard answers idempotency checks keyed by chat and message ID.
type Guard struct {
	store store.Store
}

// New returns a Guard over the given store.
func New(s store.Store) *Guard {
	return &Guard{store: s}
}

// Processed reports whether the message was already marked.
func (g *Guard) Processed(ctx context.Context, chatID, messageID int64) (bool, error) {
	ev, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds:      []model.Kind{model.KindDedupMarker},
		Annotation: model.DedupAnnotation{Chat: chatID, Msg: messageID}.Encode(),
	})
	if err != nil {
		return false, fmt.Errorf("dedup check %d/%d: %w", chatID, messageID, err)
	}
	return ev != nil, nil
}

// Mark records the message as processed.
func (g *Guard) Mark(ctx context.Context, chatID, messageID int64) error {
	ev := &model.Event{
		Kind:       model.KindDedupMarker,
		Annotation: model.DedupAnnotation{Chat: chatID, Msg: messageID}.Encode(),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("dedup mark %d/%d: %w", chatID, messageID, err)
	}
	return nil
}
