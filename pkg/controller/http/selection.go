package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/assetcheck/pkg/domain/model"
	"github.com/secmon-lab/assetcheck/pkg/domain/types"
)

var errSelectionNotFound = goerr.Wrap(model.ErrNotFound, "selection not found")

const (
	defaultSelectionTTL  = 12 * time.Hour
	defaultMaxSelections = 1000
)

// selectionStore keeps print selections per UI session in memory. They are
// lost on restart. Sessions idle longer than ttl expire, and once max
// sessions exist the least recently used one is evicted.
type selectionStore struct {
	mu       sync.Mutex
	sessions map[string]*selectionSession
	ttl      time.Duration
	max      int
	now      func() time.Time
}

type selectionSession struct {
	sel      *model.Selection
	lastUsed time.Time
}

func newSelectionStore() *selectionStore {
	return &selectionStore{
		sessions: make(map[string]*selectionSession),
		ttl:      defaultSelectionTTL,
		max:      defaultMaxSelections,
		now:      time.Now,
	}
}

func (s *selectionStore) create() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)
	for s.max > 0 && len(s.sessions) >= s.max {
		s.evictOldest()
	}

	id := uuid.NewString()
	s.sessions[id] = &selectionSession{sel: model.NewSelection(), lastUsed: now}
	return id
}

// with runs fn on the selection while holding the store lock
func (s *selectionStore) with(id string, fn func(sel *model.Selection) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.expire(now)

	session, ok := s.sessions[id]
	if !ok {
		return goerr.Wrap(errSelectionNotFound, "unknown selection", goerr.V("selection_id", id))
	}
	session.lastUsed = now
	return fn(session.sel)
}

func (s *selectionStore) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(s.now())
	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// expire drops idle sessions. Caller holds mu.
func (s *selectionStore) expire(now time.Time) {
	if s.ttl <= 0 {
		return
	}
	for id, session := range s.sessions {
		if now.Sub(session.lastUsed) > s.ttl {
			delete(s.sessions, id)
		}
	}
}

// evictOldest drops the least recently used session. Caller holds mu.
func (s *selectionStore) evictOldest() {
	var oldestID string
	var oldest time.Time
	for id, session := range s.sessions {
		if oldestID == "" || session.lastUsed.Before(oldest) {
			oldestID, oldest = id, session.lastUsed
		}
	}
	delete(s.sessions, oldestID)
}

type selectionKeyResponse struct {
	TaskID types.TaskID `json:"task_id"`
	Code   string       `json:"code"`
}

type selectionResponse struct {
	ID     string                 `json:"id"`
	Count  int                    `json:"count"`
	Keys   []selectionKeyResponse `json:"keys"`
	Assets []assetResponse        `json:"assets,omitempty"`
}

func toSelectionResponse(id string, sel *model.Selection) selectionResponse {
	keys := sel.Keys()
	resp := selectionResponse{
		ID:    id,
		Count: len(keys),
		Keys:  make([]selectionKeyResponse, len(keys)),
	}
	for i, k := range keys {
		resp.Keys[i] = selectionKeyResponse{TaskID: k.TaskID, Code: k.Code}
	}
	return resp
}

func (s *Server) createSelection(w http.ResponseWriter, r *http.Request) {
	id := s.selections.create()
	writeJSON(w, r, http.StatusCreated, selectionResponse{ID: id, Keys: []selectionKeyResponse{}})
}

// getSelection returns the selected keys. With ?task_id= it also resolves the
// selected assets of that task in listing order.
func (s *Server) getSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "selectionID")

	var assets []*model.Asset
	if raw := r.URL.Query().Get("task_id"); raw != "" {
		taskID, err := types.ParseTaskID(raw)
		if err != nil {
			writeError(w, r, badRequest(err, "invalid task ID"))
			return
		}
		list, err := s.uc.Asset.List(r.Context(), taskID, model.AssetFilter{})
		if err != nil {
			writeError(w, r, err)
			return
		}
		assets = list.Assets
	}

	var resp selectionResponse
	err := s.selections.with(id, func(sel *model.Selection) error {
		resp = toSelectionResponse(id, sel)
		if assets != nil {
			resp.Assets = toAssetResponses(sel.Resolve(assets))
		}
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

type updateSelectionRequest struct {
	TaskID   types.TaskID `json:"task_id"`
	Codes    []string     `json:"codes"`
	Selected bool         `json:"selected"`
	// All applies Selected to every asset of the task
	All bool `json:"all"`
}

func (s *Server) updateSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "selectionID")

	var req updateSelectionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.TaskID <= 0 {
		writeError(w, r, goerr.Wrap(model.ErrValidation, "task_id is required"))
		return
	}

	var taskAssets []*model.Asset
	if req.All {
		list, err := s.uc.Asset.List(r.Context(), req.TaskID, model.AssetFilter{})
		if err != nil {
			writeError(w, r, err)
			return
		}
		taskAssets = list.Assets
	}

	var resp selectionResponse
	err := s.selections.with(id, func(sel *model.Selection) error {
		switch {
		case req.All && req.Selected:
			sel.SelectAll(taskAssets)
		case req.All:
			for _, a := range taskAssets {
				sel.Set(a.Key(), false)
			}
		default:
			for _, code := range req.Codes {
				sel.Set(model.AssetKey{TaskID: req.TaskID, Code: code}, req.Selected)
			}
		}
		resp = toSelectionResponse(id, sel)
		return nil
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) deleteSelection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "selectionID")
	if !s.selections.remove(id) {
		writeError(w, r, goerr.Wrap(errSelectionNotFound, "unknown selection", goerr.V("selection_id", id)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]any{"statuses": types.StatusPresentations()})
}
