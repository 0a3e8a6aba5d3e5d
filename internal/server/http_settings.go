package server

import (
	"errors"
	"net/http"

	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/settings"
)

// handleGetSettings handles GET /v1/settings.
func (s *NoirServer) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	all, err := s.settings.All(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, all)
}

// handleSetSetting handles PUT /v1/settings/{key}.
func (s *NoirServer) handleSetSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	var in struct {
		Value int64 `json:"value"`
		Actor int64 `json:"actor"`
	}
	if !decodeBody(w, r, &in) {
		return
	}

	if err := s.settings.Set(r.Context(), key, in.Value, in.Actor); err != nil {
		if errors.Is(err, settings.ErrUnknownKey) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), events.TopicSettingSet, events.SettingSet{Key: key, Value: in.Value, Actor: in.Actor})
	writeJSON(w, http.StatusOK, map[string]any{"key": key, "value": in.Value})
}
