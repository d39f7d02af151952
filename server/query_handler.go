package server

import (
	"net/http"
	"strconv"

	"cutroom/core/clipops"
	"cutroom/core/composition"
	"cutroom/core/gap"
	"cutroom/core/snap"
	"cutroom/model"
)

// SnapRequest is the body for resolving a drag position.
type SnapRequest struct {
	Position      int64  `json:"position"`
	ExcludeClipID string `json:"excludeClipId"`
	Threshold     *int64 `json:"threshold"` // Defaults to the configured snap threshold
	Enabled       *bool  `json:"enabled"`   // Defaults to true
}

// queryTime parses the ?time= query parameter in milliseconds.
func queryTime(r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("time")
	if raw == "" {
		return 0, false
	}
	t, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || t < 0 {
		return 0, false
	}
	return t, true
}

// GetGapsHandler returns the gap report for the open session's timeline.
func (h *APIHandler) GetGapsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var report *model.GapReport
	sess.With(func(store *composition.Store) {
		report = gap.AnalyzeTimeline(store.Timeline())
	})
	respondJSON(w, http.StatusOK, report)
}

// GetClipAtHandler returns the clip active at ?time= on each track.
func (h *APIHandler) GetClipAtHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	t, ok := queryTime(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "A non-negative time query parameter is required")
		return
	}

	trackFilter := r.URL.Query().Get("track")
	clips := make(map[string]*model.Clip)
	sess.With(func(store *composition.Store) {
		for _, track := range store.Timeline().Tracks {
			if trackFilter != "" && track.ID != trackFilter {
				continue
			}
			if clip := clipops.FindClipAtTime(track, t); clip != nil {
				clips[track.ID] = clip
			}
		}
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"time":  t,
		"clips": clips,
	})
}

// GetPlaybackHandler answers the renderer's question for ?time=: is the
// whole composition in a gap, and where is the next gap boundary. The
// renderer schedules one timer per boundary instead of polling.
func (h *APIHandler) GetPlaybackHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	t, ok := queryTime(r)
	if !ok {
		respondError(w, http.StatusBadRequest, "A non-negative time query parameter is required")
		return
	}

	payload := map[string]interface{}{"time": t}
	sess.With(func(store *composition.Store) {
		timeline := store.Timeline()
		report := gap.AnalyzeTimeline(timeline)
		payload["allTracksInGap"] = gap.AllTracksInGap(t, timeline)
		payload["totalDuration"] = timeline.TotalDuration
		if next, found := gap.NextBoundary(t, report.Gaps); found {
			payload["nextBoundary"] = next
		}
	})
	respondJSON(w, http.StatusOK, payload)
}

// GetSnapTargetsHandler returns the snap candidates at the session's
// current zoom. ?exclude= names the clip being dragged.
func (h *APIHandler) GetSnapTargetsHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	exclude := r.URL.Query().Get("exclude")
	zoomOverride, _ := strconv.ParseFloat(r.URL.Query().Get("zoom"), 64)

	var targets []model.SnapTarget
	var interval int64
	sess.With(func(store *composition.Store) {
		zoom := store.Zoom()
		if zoomOverride > 0 {
			zoom = zoomOverride
		}
		targets = snap.FindTargets(store.Timeline(), exclude, zoom, h.cfg.BasePixelsPerSecond)
		interval = snap.GridInterval(zoom, h.cfg.BasePixelsPerSecond)
	})
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"targets":      targets,
		"gridInterval": interval,
	})
}

// SnapHandler resolves one candidate position against the current snap
// targets. Pure query, the store is never mutated.
func (h *APIHandler) SnapHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.openedSession(w, r)
	if !ok {
		return
	}
	var req SnapRequest
	if !decodeBody(w, r, &req) {
		return
	}
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	threshold := h.cfg.SnapThresholdMs
	if req.Threshold != nil && *req.Threshold > 0 {
		threshold = *req.Threshold
	}

	var result model.SnapResult
	sess.With(func(store *composition.Store) {
		targets := snap.FindTargets(store.Timeline(), req.ExcludeClipID, store.Zoom(), h.cfg.BasePixelsPerSecond)
		result = snap.Apply(req.Position, targets, threshold, enabled)
	})
	respondJSON(w, http.StatusOK, result)
}
