package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EventCount int       `json:"event_count"`
	LastID     int64     `json:"last_id"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes the whole event log as JSONL to w, oldest first. The
// log is the only durable state, so this one stream is a complete backup:
// replaying it into an empty store reproduces every derived aggregate.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	events, err := s.Events(ctx, model.EventFilter{Order: model.OrderAsc})
	if err != nil {
		return fmt.Errorf("list events: %w", err)
	}

	var lastID int64
	if len(events) > 0 {
		lastID = events[len(events)-1].ID
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    "1",
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		EventCount: len(events),
		LastID:     lastID,
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, ev := range events {
		if err := enc.Encode(record{Type: "event", Data: ev}); err != nil {
			return fmt.Errorf("encode event %d: %w", ev.ID, err)
		}
	}

	return nil
}
