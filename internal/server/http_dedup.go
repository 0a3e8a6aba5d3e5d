package server

import (
	"net/http"
	"strconv"
)

func dedupKey(w http.ResponseWriter, r *http.Request) (chat, msg int64, ok bool) {
	q := r.URL.Query()
	chat, err := strconv.ParseInt(q.Get("chat"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid chat")
		return 0, 0, false
	}
	msg, err = strconv.ParseInt(q.Get("msg"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid msg")
		return 0, 0, false
	}
	return chat, msg, true
}

// handleDedupCheck handles GET /v1/dedup?chat=&msg=.
func (s *NoirServer) handleDedupCheck(w http.ResponseWriter, r *http.Request) {
	chat, msg, ok := dedupKey(w, r)
	if !ok {
		return
	}
	processed, err := s.dedup.Processed(r.Context(), chat, msg)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"processed": processed})
}

// handleDedupMark handles POST /v1/dedup?chat=&msg=.
func (s *NoirServer) handleDedupMark(w http.ResponseWriter, r *http.Request) {
	chat, msg, ok := dedupKey(w, r)
	if !ok {
		return
	}
	if err := s.dedup.Mark(r.Context(), chat, msg); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
