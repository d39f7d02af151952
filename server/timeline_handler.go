package server

import (
	"net/http"
	"strconv"

	"cutroom/core/composition"
	"cutroom/core/session"
	"cutroom/model"

	"github.com/gorilla/mux"
)

// AddTrackRequest is the body for adding a track.
type AddTrackRequest struct {
	Kind model.TrackKind `json:"kind"`
	Name string          `json:"name"`
}

// AddClipRequest is the body for placing a clip.
type AddClipRequest struct {
	TrackID        string  `json:"trackId"`
	SourcePath     string  `json:"sourcePath"`
	StartTime      int64   `json:"startTime"`
	SourceDuration int64   `json:"sourceDuration"`
	TrimIn         int64   `json:"trimIn"`
	TrimOut        *int64  `json:"trimOut"` // Defaults to SourceDuration
	FadeIn         int64   `json:"fadeIn"`
	FadeOut        int64   `json:"fadeOut"`
	Volume         float64 `json:"volume"`
	Muted          bool    `json:"muted"`
}

// UpdateClipRequest mirrors composition.ClipPatch over JSON; absent
// fields leave the clip unchanged.
type UpdateClipRequest struct {
	TrimIn       *int64              `json:"trimIn"`
	TrimOut      *int64              `json:"trimOut"`
	FadeIn       *int64              `json:"fadeIn"`
	FadeOut      *int64              `json:"fadeOut"`
	Volume       *float64            `json:"volume"`
	Muted        *bool               `json:"muted"`
	Transform    *model.Transform    `json:"transform"`
	AudioStreams []model.AudioStream `json:"audioStreams"`
}

// MoveClipRequest is the body for a committed clip move.
type MoveClipRequest struct {
	StartTime int64 `json:"startTime"`
}

// MoveClipToTrackRequest is the body for a cross-track move.
type MoveClipToTrackRequest struct {
	TrackID string `json:"trackId"`
}

// SplitClipRequest is the body for a split.
type SplitClipRequest struct {
	Time float64 `json:"time"`
}

// ViewStateRequest is the body for zoom/scroll updates.
type ViewStateRequest struct {
	Zoom   *float64 `json:"zoom"`
	Scroll *int64   `json:"scroll"`
}

// openedSession resolves the route project to an open session owned by
// the caller, answering the error response itself when that fails.
func (h *APIHandler) openedSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Not authenticated")
		return nil, false
	}
	projectID := mux.Vars(r)["id"]
	sess := h.sessions.Get(projectID)
	if sess == nil || sess.UserID != userID {
		respondError(w, http.StatusConflict, "Project is not open")
		return nil, false
	}
	return sess, true
}

// withTimeline answers with the session's current timeline snapshot and
// view state.
func (h *APIHandler) withTimeline(sess *session.Session, respond func(map[string]interface{})) {
	payload := map[string]interface{}{"projectId": sess.ProjectID}
	sess.With(func(store *composition.Store) {
		payload["timeline"] = store.Timeline()
		payload["zoom"] = store.Zoom()
		payload["scroll"] = store.Scroll()
		payload["historyDepth"] = store.HistoryDepth()
		if selected := store.SelectedClip(); selected != nil {
			payload["selectedClipId"] = selected.ID
		}
	})
	respond(payload)
}

// applyOp runs a mutation against the session's store and translates
// the engine's accept/reject into 200/409, counting both outcomes.
func (h *APIHandler) applyOp(w http.ResponseWriter, sess *session.Session, op string, mutate func(store *composition.Store) bool) {
	ok := false
	sess.With(func(store *composition.Store) {
		ok = mutate(store)
	})
	if !ok {
		h.metrics.OpRejected(op)
		respondError(w, http.StatusConflict, "Operation rejected")
		return
	}
	h.metrics.OpApplied(op)
	h.withTimeline(sess, func(payload map[string]interface{}) {
		respondJSON(w, http.StatusOK, payload)
	})
}

// GetTimelineHandler returns the current timeline of an open session.
func (h *APIHandler) GetTimelineHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	h.withTimeline(sess, func(payload map[string]interface{}) {
		respondJSON(w, http.StatusOK, payload)
	})
}

// AddTrackHandler appends a track to the composition.
func (h *APIHandler) AddTrackHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req AddTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Kind != model.TrackVideo && req.Kind != model.TrackAudio {
		respondError(w, http.StatusBadRequest, "Track kind must be video or audio")
		return
	}

	var trackID string
	sess.With(func(store *composition.Store) {
		trackID = store.AddTrack(req.Kind, req.Name)
	})
	h.metrics.OpApplied("add_track")
	respondJSON(w, http.StatusCreated, map[string]string{"trackId": trackID})
}

// AddClipHandler places a new clip on a track.
func (h *APIHandler) AddClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req AddClipRequest
	if !decodeBody(w, r, &req) {
		return
	}

	trimOut := req.SourceDuration
	if req.TrimOut != nil {
		trimOut = *req.TrimOut
	}
	volume := req.Volume
	if volume == 0 {
		volume = 1.0
	}
	clip := &model.Clip{
		SourcePath:     req.SourcePath,
		StartTime:      req.StartTime,
		SourceDuration: req.SourceDuration,
		TrimIn:         req.TrimIn,
		TrimOut:        trimOut,
		FadeIn:         req.FadeIn,
		FadeOut:        req.FadeOut,
		Volume:         volume,
		Muted:          req.Muted,
	}
	h.applyOp(w, sess, "add_clip", func(store *composition.Store) bool {
		return store.AddClip(req.TrackID, clip)
	})
}

// UpdateClipHandler patches trim, fades and the carried fields.
func (h *APIHandler) UpdateClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req UpdateClipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	patch := composition.ClipPatch{
		TrimIn:       req.TrimIn,
		TrimOut:      req.TrimOut,
		FadeIn:       req.FadeIn,
		FadeOut:      req.FadeOut,
		Volume:       req.Volume,
		Muted:        req.Muted,
		Transform:    req.Transform,
		AudioStreams: req.AudioStreams,
	}
	h.applyOp(w, sess, "update_clip", func(store *composition.Store) bool {
		return store.UpdateClip(clipID, patch)
	})
}

// DeleteClipHandler removes a clip; ?ripple=true closes the gap.
func (h *APIHandler) DeleteClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	ripple, _ := strconv.ParseBool(r.URL.Query().Get("ripple"))
	h.applyOp(w, sess, "delete_clip", func(store *composition.Store) bool {
		return store.RemoveClip(clipID, ripple)
	})
}

// MoveClipHandler commits a clip move with collision resolution and a
// history entry. Intermediate drag positions go over the websocket
// channel instead and never reach the store.
func (h *APIHandler) MoveClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req MoveClipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	h.applyOp(w, sess, "move_clip", func(store *composition.Store) bool {
		return store.MoveClip(clipID, req.StartTime, true)
	})
}

// MoveClipToTrackHandler reassigns a clip to another track.
func (h *APIHandler) MoveClipToTrackHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req MoveClipToTrackRequest
	if !decodeBody(w, r, &req) {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	h.applyOp(w, sess, "move_clip_to_track", func(store *composition.Store) bool {
		return store.MoveClipToTrack(clipID, req.TrackID)
	})
}

// SplitClipHandler cuts a clip at the given time.
func (h *APIHandler) SplitClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req SplitClipRequest
	if !decodeBody(w, r, &req) {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	h.applyOp(w, sess, "split_clip", func(store *composition.Store) bool {
		return store.SplitClip(clipID, req.Time)
	})
}

// ResetTrimHandler restores a clip's full source range.
func (h *APIHandler) ResetTrimHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	h.applyOp(w, sess, "reset_trim", func(store *composition.Store) bool {
		return store.ResetTrim(clipID)
	})
}

// SelectClipHandler marks a clip as selected.
func (h *APIHandler) SelectClipHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	clipID := mux.Vars(r)["clipId"]
	sess.With(func(store *composition.Store) {
		store.SelectClip(clipID)
	})
	h.withTimeline(sess, func(payload map[string]interface{}) {
		respondJSON(w, http.StatusOK, payload)
	})
}

// UndoHandler steps the composition back one history entry. An empty
// history is a no-op, reported as such rather than an error.
func (h *APIHandler) UndoHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	undone := false
	sess.With(func(store *composition.Store) {
		undone = store.Undo()
	})
	if undone {
		h.metrics.OpApplied("undo")
	}
	h.withTimeline(sess, func(payload map[string]interface{}) {
		payload["undone"] = undone
		respondJSON(w, http.StatusOK, payload)
	})
}

// ViewStateHandler updates zoom and scroll for the session.
func (h *APIHandler) ViewStateHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req ViewStateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	sess.With(func(store *composition.Store) {
		if req.Zoom != nil {
			store.SetZoom(*req.Zoom)
		}
		if req.Scroll != nil {
			store.SetScroll(*req.Scroll)
		}
	})
	respondJSON(w, http.StatusOK, map[string]bool{"updated": true})
}
