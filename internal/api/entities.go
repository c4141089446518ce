package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sebr/inception-bridge/internal/inception"
)

// controlTimeout bounds one control request to the panel.
const controlTimeout = 10 * time.Second

// controlRequest is the body of POST /entities/{kind}/{id}/control.
type controlRequest struct {
	Action   string `json:"action"`
	TimeSecs int    `json:"time_secs,omitempty"`
}

// controlResponse acknowledges a control request the panel accepted.
type controlResponse struct {
	Kind     inception.EntityKind `json:"kind"`
	EntityID string               `json:"entity_id"`
	Action   string               `json:"action"`
	Status   string               `json:"status"`
}

// entityListResponse is the body of GET /entities/{kind}.
type entityListResponse struct {
	Kind     inception.EntityKind       `json:"kind"`
	Entities []inception.EntitySnapshot `json:"entities"`
	Count    int                        `json:"count"`
	Actions  []string                   `json:"actions"`
}

// mirror returns the loaded mirror or writes a 503.
func (s *Server) mirror(w http.ResponseWriter) (*inception.Data, bool) {
	data := s.panel.Mirror()
	if data == nil {
		writeUnavailable(w, "entity data not loaded yet")
		return nil, false
	}
	return data, true
}

// handleListEntities returns every entity of a kind from the mirror.
func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	kind, err := inception.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	data, ok := s.mirror(w)
	if !ok {
		return
	}

	snaps, err := data.Entities(kind)
	if err != nil {
		writePanelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entityListResponse{
		Kind:     kind,
		Entities: snaps,
		Count:    len(snaps),
		Actions:  inception.Actions[kind],
	})
}

// handleGetEntity returns one entity from the mirror.
func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	kind, err := inception.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	data, ok := s.mirror(w)
	if !ok {
		return
	}

	snap, err := data.Entity(kind, chi.URLParam(r, "id"))
	if err != nil {
		writePanelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleControlEntity forwards a control action to the panel. The entity
// must be present in the mirror.
func (s *Server) handleControlEntity(w http.ResponseWriter, r *http.Request) {
	kind, err := inception.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeNotFound(w, err.Error())
		return
	}
	id := chi.URLParam(r, "id")

	var req controlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Action == "" {
		writeBadRequest(w, "action is required")
		return
	}
	if req.TimeSecs < 0 {
		writeBadRequest(w, "time_secs must not be negative")
		return
	}

	data, ok := s.mirror(w)
	if !ok {
		return
	}
	if _, err := data.Entity(kind, id); err != nil {
		writePanelError(w, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), controlTimeout)
	defer cancel()

	if err := s.panel.Control(ctx, kind, id, req.Action, req.TimeSecs); err != nil {
		s.logger.Warn("control request failed",
			"kind", kind,
			"id", id,
			"action", req.Action,
			"subject", subjectFromContext(r.Context()),
			"error", err,
		)
		writePanelError(w, err)
		return
	}

	s.logger.Info("control request sent",
		"kind", kind,
		"id", id,
		"action", req.Action,
		"subject", subjectFromContext(r.Context()),
	)
	writeJSON(w, http.StatusAccepted, controlResponse{
		Kind:     kind,
		EntityID: id,
		Action:   req.Action,
		Status:   "accepted",
	})
}
