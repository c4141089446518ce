package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sebr/inception-bridge/internal/flags"
)

// handleGetFlags returns the feature flags stored under a key. Unknown
// keys report every flag off.
func (s *Server) handleGetFlags(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	if s.gate != nil && key == s.gate.Key() {
		writeJSON(w, http.StatusOK, s.gate.Flags())
		return
	}

	f, err := s.flags.Load(r.Context(), key)
	if err != nil {
		s.logger.Error("loading flags failed", "key", key, "error", err)
		writeInternalError(w, "failed to load flags")
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// handlePutFlags replaces the feature flags stored under a key. Updating
// the live gate's key changes review filtering immediately.
func (s *Server) handlePutFlags(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")

	var f flags.Flags
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	var (
		saved flags.Flags
		err   error
	)
	if s.gate != nil && key == s.gate.Key() {
		saved, err = s.gate.Update(r.Context(), f)
	} else {
		saved, err = s.flags.Save(r.Context(), key, f)
	}
	if err != nil {
		if errors.Is(err, flags.ErrInvalidKey) {
			writeBadRequest(w, err.Error())
			return
		}
		s.logger.Error("saving flags failed", "key", key, "error", err)
		writeInternalError(w, "failed to save flags")
		return
	}

	s.logger.Info("feature flags updated",
		"key", key,
		"enabled", saved.EnabledCategories(),
		"global", saved.Global,
		"subject", subjectFromContext(r.Context()),
	)
	writeJSON(w, http.StatusOK, saved)
}
