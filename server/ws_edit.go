package server

import (
	"net/http"

	"cutroom/core/auth"
	"cutroom/core/composition"
	"cutroom/core/snap"
	"cutroom/logger"
	"cutroom/model"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Cross-origin handled by the reverse proxy
	},
}

// EditMessage is one client frame on the edit channel. "preview" asks
// for snap resolution of an in-flight drag position; "commit" lands the
// drag as a real move with one history entry.
type EditMessage struct {
	Type     string `json:"type"`
	ClipID   string `json:"clipId"`
	Position int64  `json:"position"`
	Snap     *bool  `json:"snap"` // Defaults to true
}

// EditReply is the server's answer to one EditMessage.
type EditReply struct {
	Type     string            `json:"type"`
	ClipID   string            `json:"clipId,omitempty"`
	Result   *model.SnapResult `json:"result,omitempty"`
	Applied  bool              `json:"applied,omitempty"`
	Timeline *model.Timeline   `json:"timeline,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// EditChannelHandler serves the websocket drag channel of one open
// project. Browsers cannot set headers on websocket requests, so the
// JWT arrives as a ?token= query parameter instead.
func (h *APIHandler) EditChannelHandler(w http.ResponseWriter, r *http.Request) {
	claims, err := auth.ParseToken(r.URL.Query().Get("token"))
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	projectID := mux.Vars(r)["id"]
	sess := h.sessions.Get(projectID)
	if sess == nil || sess.UserID != claims.UserID {
		respondError(w, http.StatusConflict, "Project is not open")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", logger.ErrorField(err))
		return
	}
	defer conn.Close()
	logger.Info("edit channel opened",
		logger.String("project", projectID), logger.Int64("user", claims.UserID))

	for {
		var msg EditMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("edit channel read error", logger.ErrorField(err))
			}
			return
		}
		h.metrics.IncWSMessages()

		var reply EditReply
		switch msg.Type {
		case "preview":
			reply = h.previewDrag(sess, msg)
		case "commit":
			reply = h.commitDrag(sess, msg)
		default:
			reply = EditReply{Type: "error", Error: "unknown message type"}
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("edit channel write error", logger.ErrorField(err))
			return
		}
	}
}

// previewDrag resolves one in-flight drag position against the snap
// targets. The store is never mutated and nothing enters the undo log.
func (h *APIHandler) previewDrag(sess sessionHandle, msg EditMessage) EditReply {
	enabled := true
	if msg.Snap != nil {
		enabled = *msg.Snap
	}

	var result model.SnapResult
	sess.With(func(store *composition.Store) {
		targets := snap.FindTargets(store.Timeline(), msg.ClipID, store.Zoom(), h.cfg.BasePixelsPerSecond)
		result = snap.Apply(msg.Position, targets, h.cfg.SnapThresholdMs, enabled)
	})
	return EditReply{Type: "preview", ClipID: msg.ClipID, Result: &result}
}

// commitDrag lands the drag: snap the final position, then move the
// clip with collision resolution and a single history entry.
func (h *APIHandler) commitDrag(sess sessionHandle, msg EditMessage) EditReply {
	enabled := true
	if msg.Snap != nil {
		enabled = *msg.Snap
	}

	applied := false
	var timeline *model.Timeline
	sess.With(func(store *composition.Store) {
		targets := snap.FindTargets(store.Timeline(), msg.ClipID, store.Zoom(), h.cfg.BasePixelsPerSecond)
		resolved := snap.Apply(msg.Position, targets, h.cfg.SnapThresholdMs, enabled)
		applied = store.MoveClip(msg.ClipID, resolved.Position, true)
		if applied {
			timeline = store.Timeline()
		}
	})
	if !applied {
		h.metrics.OpRejected("move_clip")
		return EditReply{Type: "commit", ClipID: msg.ClipID, Error: "move rejected"}
	}
	h.metrics.OpApplied("move_clip")
	return EditReply{Type: "commit", ClipID: msg.ClipID, Applied: true, Timeline: timeline}
}

// sessionHandle is the slice of session.Session the drag handlers need,
// kept narrow so tests can drive them without the manager.
type sessionHandle interface {
	With(fn func(store *composition.Store))
}
