package server

import (
	"errors"
	"net/http"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/market"
	"github.com/noirclub/noird/internal/model"
)

// handleCreateOffer handles POST /v1/offers.
func (s *NoirServer) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Seller int64  `json:"seller"`
		Price  int64  `json:"price"`
		Kind   string `json:"kind"`
		Item   string `json:"item"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	kind := model.OfferKind(in.Kind)
	if kind == "" {
		kind = model.OfferItem
	}
	if kind != model.OfferItem && kind != model.OfferPerk {
		writeError(w, http.StatusBadRequest, "kind must be item or perk")
		return
	}
	if in.Price <= 0 {
		writeError(w, http.StatusBadRequest, "price must be positive")
		return
	}

	id, err := s.market.Create(r.Context(), in.Seller, in.Price, kind, in.Item)
	if err != nil {
		if errors.Is(err, market.ErrPerkNotHeld) {
			writeError(w, http.StatusConflict, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	offer, err := s.market.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicOfferCreated, events.OfferCreated{Offer: offer})
	writeJSON(w, http.StatusCreated, offer)
}

// handleListOffers handles GET /v1/offers.
func (s *NoirServer) handleListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := s.market.Active(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if offers == nil {
		offers = []*model.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

// handleCancelOffer handles POST /v1/offers/{id}/cancel.
func (s *NoirServer) handleCancelOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		By int64 `json:"by"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := s.market.Cancel(r.Context(), id, in.By); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicOfferCancelled, events.OfferCancelled{OfferID: id, By: in.By})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSettleOffer handles POST /v1/offers/{id}/settle.
func (s *NoirServer) handleSettleOffer(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var in struct {
		Buyer int64 `json:"buyer"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	result, err := s.market.Settle(r.Context(), id, in.Buyer)
	if err != nil {
		switch {
		case errors.Is(err, market.ErrNotActive):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, market.ErrInsufficientFunds), errors.Is(err, market.ErrOwnOffer),
			errors.Is(err, market.ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	s.publish(r.Context(), events.TopicOfferSettled, events.OfferSettled{Settlement: result})
	writeJSON(w, http.StatusOK, result)
}
