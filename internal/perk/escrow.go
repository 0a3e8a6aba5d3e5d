package perk

import (
	"context"
	"fmt"

	"github.com/noirclub/noird/internal/model"
	"github.com/noirclub/noird/internal/store"
)

// Hold identifies who escrowed which perk behind an offer.
type Hold struct {
	Subject int64
	Code    string
}

// EscrowOpen takes the perk out of the subject's active set and marks it as
// backing the given offer. The revoke is raw: auto-replacement must not fire
// here, or a voucher would silently vanish into the escrow.
func (r *Registry) EscrowOpen(ctx context.Context, subject int64, code string, offerID int64) error {
	code = Normalize(code)
	return r.store.RunInTransaction(ctx, func(tx store.Store) error {
		reg := &Registry{store: tx}

		ev := &model.Event{
			Subject:    model.Int64(subject),
			Kind:       model.KindPerkEscrowOpen,
			Annotation: model.EscrowAnnotation{Code: code, Offer: offerID}.Encode(),
		}
		if err := tx.AppendEvent(ctx, ev); err != nil {
			return fmt.Errorf("open escrow of %q for offer %d: %w", code, offerID, err)
		}
		return reg.revokeRaw(ctx, subject, code)
	})
}

// EscrowClose releases the escrow with a reason ("sold", "cancelled", ...).
// It does not re-grant anything; the caller decides who receives the perk.
func (r *Registry) EscrowClose(ctx context.Context, subject int64, code string, offerID int64, reason string) error {
	ev := &model.Event{
		Subject:    model.Int64(subject),
		Kind:       model.KindPerkEscrowClose,
		Annotation: model.EscrowAnnotation{Code: Normalize(code), Offer: offerID, Reason: reason}.Encode(),
	}
	if err := r.store.AppendEvent(ctx, ev); err != nil {
		return fmt.Errorf("close escrow of %q for offer %d: %w", code, offerID, err)
	}
	return nil
}

// EscrowOwner returns the open escrow hold for the offer, or nil when the
// offer has no escrow or its escrow was closed. The most recent open wins;
// any later close for the same offer clears it.
func (r *Registry) EscrowOwner(ctx context.Context, offerID int64) (*Hold, error) {
	events, err := r.store.Events(ctx, model.EventFilter{
		Kinds: []model.Kind{model.KindPerkEscrowOpen, model.KindPerkEscrowClose},
	})
	if err != nil {
		return nil, fmt.Errorf("escrow history for offer %d: %w", offerID, err)
	}

	var hold *Hold
	for _, ev := range events {
		ann := model.ParseEscrowAnnotation(ev.Annotation)
		if ann.Offer != offerID {
			continue
		}
		switch ev.Kind {
		case model.KindPerkEscrowOpen:
			hold = &Hold{Subject: ev.SubjectID(), Code: ann.Code}
		case model.KindPerkEscrowClose:
			hold = nil
		}
	}
	return hold, nil
}
