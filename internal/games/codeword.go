package games

import (
	"context"
	"fmt"
	"strings"

	"github.com/noirclub/noird/internal/model"
)

// SetCodeword arms a new codeword with a prize. Arming replaces any earlier
// codeword, claimed or not.
func (g *Games) SetCodeword(ctx context.Context, word string, prize int64, actor int64) error {
	word = strings.TrimSpace(word)
	if word == "" {
		return fmt.Errorf("set codeword: word must not be empty")
	}
	if prize <= 0 {
		return fmt.Errorf("set codeword: prize %d must be positive", prize)
	}
	ev := &model.Event{
		Subject:    model.Int64(actor),
		Kind:       model.KindCodewordSet,
		Amount:     model.Int64(prize),
		Annotation: model.CodewordAnnotation{Word: word}.Encode(),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("set codeword: %w", err)
	}
	return nil
}

// TryCodeword checks a guess against the armed codeword. The first correct
// guess wins the prize; a win newer than the latest codeword-set means the
// word was already claimed and every further guess loses. Wrong guesses
// append nothing.
func (g *Games) TryCodeword(ctx context.Context, subject int64, guess string) (int64, bool, error) {
	armed, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindCodewordSet},
	})
	if err != nil {
		return 0, false, fmt.Errorf("armed codeword: %w", err)
	}
	if armed == nil {
		return 0, false, nil
	}

	want := model.ParseCodewordAnnotation(armed.Annotation).Word
	if strings.ToLower(strings.TrimSpace(guess)) != want {
		return 0, false, nil
	}

	won, err := g.store.LastEvent(ctx, model.EventFilter{
		Kinds:   []model.Kind{model.KindCodewordWin},
		AfterID: armed.ID,
	})
	if err != nil {
		return 0, false, fmt.Errorf("codeword wins since arming: %w", err)
	}
	if won != nil {
		return 0, false, nil
	}

	prize := armed.AmountValue()
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindCodewordWin,
		Amount:     model.Int64(prize),
		Annotation: armed.Annotation,
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return 0, false, fmt.Errorf("record codeword win: %w", err)
	}
	if _, err := g.ledger.ChangeBalance(ctx, subject, prize, "codeword prize"); err != nil {
		return 0, false, err
	}
	return prize, true, nil
}
