package club

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
)

// GrantKey hands the subject a safe key.
func (c *Club) GrantKey(ctx context.Context, subject int64) error {
	ev := &model.Event{
		Subject: model.Int64(subject),
		Kind:    model.KindKeyGrant,
	}
	if err := c.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("grant key to %d: %w", subject, err)
	}
	return nil
}

// RevokeKey takes the subject's safe key away.
func (c *Club) RevokeKey(ctx context.Context, subject int64) error {
	ev := &model.Event{
		Subject: model.Int64(subject),
		Kind:    model.KindKeyRevoke,
	}
	if err := c.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("revoke key from %d: %w", subject, err)
	}
	return nil
}

// HasKey reports whether the subject currently holds a key: the most recent
// grant/revoke wins.
func (c *Club) HasKey(ctx context.Context, subject int64) (bool, error) {
	ev, err := c.store.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindKeyGrant, model.KindKeyRevoke},
		Subject: &subject,
	})
	if err != nil {
		return false, fmt.Errorf("key of %d: %w", subject, err)
	}
	return ev != nil && ev.Kind == model.KindKeyGrant, nil
}

// Holders lists every subject currently holding a key.
func (c *Club) Holders(ctx context.Context) ([]int64, error) {
	subjects, err := c.store.Subjects(ctx, model.KindKeyGrant)
	if err != nil {
		return nil, fmt.Errorf("key subjects: %w", err)
	}
	var holders []int64
	for _, subject := range subjects {
		has, err := c.HasKey(ctx, subject)
		if err != nil {
			return nil, err
		}
		if has {
			holders = append(holders, subject)
		}
	}
	return holders, nil
}
