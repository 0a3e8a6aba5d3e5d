// Package settings derives runtime tunables from config-set events. Each key
// reads as the amount of the most recent config-set carrying that key, or a
// compiled-in default when no such event exists. Changing a tunable is itself
// a logged event, so the history of every knob survives.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// ErrUnknownKey is returned for keys outside the known tunable set.
var ErrUnknownKey = errors.New("unknown setting")

// Known keys. All tunables are integers; percentages and basis points keep
// the arithmetic exact.
const (
	KeyBurnBps             = "burn_bps"
	KeyDepositFeePct       = "deposit_fee_pct"
	KeyStorageFeePct       = "storage_fee_pct"
	KeyCellIntervalHours   = "cell_interval_hours"
	KeyHeroReward          = "hero_reward"
	KeySalaryAmount        = "salary_amount"
	KeySalaryIntervalHours = "salary_interval_hours"
)

var defaults = map[string]int64{
	KeyBurnBps:             500,
	KeyDepositFeePct:       3,
	KeyStorageFeePct:       1,
	KeyCellIntervalHours:   24,
	KeyHeroReward:          5,
	KeySalaryAmount:        5,
	KeySalaryIntervalHours: 24,
}

// Settings answers tunable lookups over the event log.
type Settings struct {
	store store.Store
}

// New returns a Settings over the given store.
func New(s store.Store) *Settings {
	return &Settings{store: s}
}

// Set records a new value for the key. The actor is kept as the event subject
// so the log shows who turned which knob.
func (s *Settings) Set(ctx context.Context, key string, value int64, actor int64) error {
	if _, ok := defaults[key]; !ok {
		return fmt.Errorf("set %q: %w", key, ErrUnknownKey)
	}
	ev := &model.Event{
		Subject:    model.Int64(actor),
		Kind:       model.KindConfigSet,
		Amount:     model.Int64(value),
		Annotation: key,
	}
	if err := s.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("set %q=%d: %w", key, value, err)
	}
	return nil
}

// Get returns the current value of the key: the latest config-set wins,
// otherwise the default.
func (s *Settings) Get(ctx context.Context, key string) (int64, error) {
	def, ok := defaults[key]
	if !ok {
		return 0, fmt.Errorf("get %q: %w", key, ErrUnknownKey)
	}
	ev, err := s.store.LastEvent(ctx, model.EventFilter{
		Kinds:      []model.Kind{model.KindConfigSet},
		Annotation: key,
	})
	if err != nil {
		return 0, fmt.Errorf("get %q: %w", key, err)
	}
	if ev == nil {
		return def, nil
	}
	return ev.AmountValue(), nil
}

// All returns the effective value of every known key.
func (s *Settings) All(ctx context.Context) (map[string]int64, error) {
	out := make(map[string]int64, len(defaults))
	for key := range defaults {
		v, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		out[key] = v
	}
	return out, nil
}

// BurnBps is the market burn rate in basis points of the sale price.
func (s *Settings) BurnBps(ctx context.Context) (int64, error) {
	return s.Get(ctx, KeyBurnBps)
}

// DepositFeePct is the one-off bank deposit fee in percent.
func (s *Settings) DepositFeePct(ctx context.Context) (int64, error) {
	return s.Get(ctx, KeyDepositFeePct)
}

// StorageFeePct is the per-interval bank storage fee in percent.
func (s *Settings) StorageFeePct(ctx context.Context) (int64, error) {
	return s.Get(ctx, KeyStorageFeePct)
}

// CellInterval is the bank fee accrual interval.
func (s *Settings) CellInterval(ctx context.Context) (time.Duration, error) {
	hours, err := s.Get(ctx, KeyCellIntervalHours)
	if err != nil {
		return 0, err
	}
	return time.Duration(hours) * time.Hour, nil
}

// HeroReward is the amount paid out for a hero-of-the-day claim.
func (s *Settings) HeroReward(ctx context.Context) (int64, error) {
	return s.Get(ctx, KeyHeroReward)
}

// SalaryAmount is the amount paid per salary claim.
func (s *Settings) SalaryAmount(ctx context.Context) (int64, error) {
	return s.Get(ctx, KeySalaryAmount)
}

// SalaryInterval is the minimum time between salary claims.
func (s *Settings) SalaryInterval(ctx context.Context) (time.Duration, error) {
	hours, err := s.Get(ctx, KeySalaryIntervalHours)
	if err != nil {
		return 0, err
	}
	return time.Duration(hours) * time.Hour, nil
}
