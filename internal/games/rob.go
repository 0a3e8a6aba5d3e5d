package games

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/idgen"
	"github.com/noirclub/noird/internal/model"
)

// Rob empties every bank cell into the robber's pocket and records a single
// bank-rob summary event with the total loot. The per-cell drain events and
// the summary share one reference code.
func (g *Games) Rob(ctx context.Context, robber int64) (int64, error) {
	ref, err := idgen.Generate()
	if err != nil {
		return 0, err
	}
	loot, err := g.bank.RobAll(ctx, ref)
	if err != nil {
		return 0, err
	}
	if loot > 0 {
		if _, err := g.ledger.ChangeBalance(ctx, robber, loot, "bank rob "+ref); err != nil {
			return 0, err
		}
	}
	ev := &model.Event{
		Subject:    model.Int64(robber),
		Kind:       model.KindBankRob,
		Amount:     model.Int64(loot),
		Annotation: model.EncodeFields([2]string{"ref", ref}),
	}
	if err := g.store.AppendEvent(ctx, ev); err != nil {
		return 0, fmt.Errorf("record bank rob: %w", err)
	}
	return loot, nil
}
