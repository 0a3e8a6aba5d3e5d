package games

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
)

// Hero is the current hero of the day.
type Hero struct {
	Subject int64  `json:"subject"`
	Title   string `json:"title,omitempty"`
}

// SetHero crowns a new hero of the day. The latest hero-set wins.
func (g *Games) SetHero(ctx context.Context, subject int64, title string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindHeroSet,
		Annotation: title,
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("set hero %d: %w", subject, err)
	}
	return nil
}

// Hero returns the current hero, nil when nobody was ever crowned.
func (g *Games) Hero(ctx context.Context) (*Hero, error) {
	ev, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindHeroSet},
	})
	if err != nil {
		return nil, fmt.Errorf("current hero: %w", err)
	}
	if ev == nil {
		return nil, nil
	}
	return &Hero{Subject: ev.SubjectID(), Title: ev.Annotation}, nil
}

// ClaimHero pays the hero reward to the current hero. Each crowning can be
// claimed once: a hero-claim newer than the latest hero-set blocks further
// claims until someone is crowned again. A non-hero or repeat claim returns
// ok=false and appends nothing.
func (g *Games) ClaimHero(ctx context.Context, subject int64) (int64, bool, error) {
	crowned, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindHeroSet},
	})
	if err != nil {
		return 0, false, fmt.Errorf("current hero: %w", err)
	}
	if crowned == nil || crowned.SubjectID() != subject {
		return 0, false, nil
	}

	claimed, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindHeroClaim},
		AfterID: crowned.ID,
	})
	if err != nil {
		return 0, false, fmt.Errorf("hero claims since crowning: %w", err)
	}
	if claimed != nil {
		return 0, false, nil
	}

	reward, err := g.settings.HeroReward(ctx)
	if err != nil {
		return 0, false, err
	}
	ev := &model.Event{
		Subject: model.Int64(subject),
		Kind:    model.KindHeroClaim,
		Amount:  model.Int64(reward),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return 0, false, fmt.Errorf("claim hero reward: %w", err)
	}
	if _, err := g.ledger.ChangeBalance(ctx, subject, reward, "hero of the day"); err != nil {
		return 0, false, err
	}
	return reward, true, nil
}
