package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/noirclub/noird/internal/club"
	"github.com/noirclub/noird/internal/events"
	"github.com/noirclub/noird/internal/model"
)

// handleAllRoles handles GET /v1/club/roles.
func (s *NoirServer) handleAllRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.club.AllRoles(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if roles == nil {
		roles = []*model.Role{}
	}
	writeJSON(w, http.StatusOK, roles)
}

// handleGetRole handles GET /v1/club/roles/{subject}.
func (s *NoirServer) handleGetRole(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	role, err := s.club.Role(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if role == nil {
		writeError(w, http.StatusNotFound, "no role")
		return
	}
	writeJSON(w, http.StatusOK, role)
}

// handleSetRole handles PUT /v1/club/roles/{subject}.
func (s *NoirServer) handleSetRole(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Name  string     `json:"name"`
		Desc  string     `json:"desc"`
		Until *time.Time `json:"until"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	if err := s.club.SetRole(r.Context(), subject, in.Name, in.Desc, in.Until); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	role := &model.Role{Subject: subject, Name: in.Name, Desc: in.Desc, Until: in.Until}
	s.publish(r.Context(), events.TopicRoleSet, events.RoleSet{Role: role, Subject: subject})
	writeJSON(w, http.StatusOK, role)
}

// handleSetRoleImage handles PUT /v1/club/roles/{subject}/image.
func (s *NoirServer) handleSetRoleImage(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	var in struct {
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	if in.Image == "" {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}

	role, err := s.club.SetImage(r.Context(), subject, in.Image)
	if err != nil {
		if errors.Is(err, club.ErrNoRole) {
			writeError(w, http.StatusNotFound, "no role")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicRoleSet, events.RoleSet{Role: role, Subject: subject})
	writeJSON(w, http.StatusOK, role)
}

// handleClearRole handles DELETE /v1/club/roles/{subject}.
func (s *NoirServer) handleClearRole(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	if err := s.club.ClearRole(r.Context(), subject); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicRoleSet, events.RoleSet{Subject: subject})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleKeyHolders handles GET /v1/club/keys.
func (s *NoirServer) handleKeyHolders(w http.ResponseWriter, r *http.Request) {
	holders, err := s.club.Holders(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if holders == nil {
		holders = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"holders": holders})
}

// handleHasKey handles GET /v1/club/keys/{subject}.
func (s *NoirServer) handleHasKey(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	has, err := s.club.HasKey(r.Context(), subject)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"subject": subject, "held": has})
}

// handleGrantKey handles POST /v1/club/keys/{subject}/grant.
func (s *NoirServer) handleGrantKey(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	if err := s.club.GrantKey(r.Context(), subject); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicKeyChanged, events.KeyChanged{Subject: subject, Held: true})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRevokeKey handles POST /v1/club/keys/{subject}/revoke.
func (s *NoirServer) handleRevokeKey(w http.ResponseWriter, r *http.Request) {
	subject, ok := pathID(w, r, "subject")
	if !ok {
		return
	}
	if err := s.club.RevokeKey(r.Context(), subject); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.publish(r.Context(), events.TopicKeyChanged, events.KeyChanged{Subject: subject, Held: false})
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
