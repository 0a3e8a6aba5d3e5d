// Package server exposes the ledger and its derived services over an HTTP
// JSON API. The chat-platform adapter is a client of this API; nothing in
// here knows about chats or messages beyond the dedup keys.
package server

import (
	"context"
	"log/slog"

	"github.com/noirclub/noird/internal/bank"
	"github.com/noirclub/noird/internal/club"
	"github.com/noirclub/noird/internal/cooldown"
	"github.com/noirclub/noird/internal/dedup"
	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/games"
	"github.com/noirclub/noird/internal/guard"
	"github.com/noirclub/noird/internal/ledger"
	"github.com/noirclub/noird/internal/market"
	"github.com/noirclub/noird/internal/perk"
	"github.com/noirclub/noird/internal/settings"
	"github.com/noirclub/noird/internal/store"
	"github.com/noirclub/noird/internal/vault"
)

// NoirServer bundles every derived service over one store and publishes
// mutations to the event bus.
type NoirServer struct {
	store     store.Store
	publisher events.Publisher

	ledger   *ledger.Ledger
	perks    *perk.Registry
	market   *market.Market
	vault    *vault.Vault
	bank     *bank.Bank
	settings *settings.Settings
	club     *club.Club
	games    *games.Games
	cooldown *cooldown.Tracker
	dedup    *dedup.Guard
}

// NewNoirServer wires all services over the given store and publisher. One
// lock set is shared by every service that runs a read-decide-write sequence,
// so a subject is busy for all of them at once, not per service.
func NewNoirServer(s store.Store, p events.Publisher) *NoirServer {
	l := ledger.New(s)
	perks := perk.New(s)
	cfg := settings.New(s)
	locks := guard.New()
	b := bank.New(s, l, cfg, locks)
	v := vault.New(s, l, b, cfg)
	cd := cooldown.New(s)
	return &NoirServer{
		store:     s,
		publisher: p,
		ledger:    l,
		perks:     perks,
		market:    market.New(s, l, perks, v, cfg, locks),
		vault:     v,
		bank:      b,
		settings:  cfg,
		club:      club.New(s),
		games:     games.New(s, l, b, perks, cfg, cd, locks),
		cooldown:  cd,
		dedup:     dedup.New(s),
	}
}

// publish emits a bus event best-effort. The log append is the operation of
// record; a bus failure is logged and never surfaces to the caller.
func (s *NoirServer) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "error", err)
	}
}
