// Package session manages the live editing sessions of the server: one
// composition store per open project, loaded from the project
// repository and saved back on demand. The engine itself is
// single-threaded; the manager provides the locking so concurrent HTTP
// and websocket handlers access each store one at a time.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cutroom/cache"
	"cutroom/core/composition"
	"cutroom/logger"
	"cutroom/model"
	"cutroom/repository"
)

// Session wraps one open composition store with its lock and metadata.
type Session struct {
	ProjectID string
	UserID    int64
	OpenedAt  time.Time

	mu    sync.Mutex
	store *composition.Store
}

// With runs fn with exclusive access to the session's store. All store
// access goes through here; the store pointer must not escape fn.
func (s *Session) With(fn func(store *composition.Store)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.store)
}

// Manager tracks the open sessions.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	repo     repository.ProjectRepository
}

// NewManager creates a session manager backed by the project repository.
func NewManager(repo repository.ProjectRepository) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		repo:     repo,
	}
}

// Open loads a project's timeline into a live session. Reopening an
// already open project returns the existing session. When a newer
// autosave snapshot exists in Redis than the database copy, the
// snapshot wins — it represents edits lost in a crash.
func (m *Manager) Open(ctx context.Context, projectID string, userID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.sessions[projectID]; ok {
		return existing, nil
	}

	project, err := m.repo.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s not found", projectID)
	}
	if project.UserID != userID {
		return nil, fmt.Errorf("project %s does not belong to user %d", projectID, userID)
	}

	timeline, err := m.repo.LoadTimeline(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	zoom, scroll := project.Zoom, project.ScrollOffset

	if snap, err := cache.GetSnapshot(ctx, projectID); err != nil {
		logger.Warn("autosave snapshot unavailable", logger.String("project", projectID), logger.ErrorField(err))
	} else if snap != nil && snap.SavedAt > project.UpdatedAt.UnixMilli() {
		logger.Info("recovering timeline from autosave snapshot",
			logger.String("project", projectID))
		timeline = snap.Timeline
		zoom, scroll = snap.Zoom, snap.Scroll
	}

	store := composition.Load(timeline)
	if zoom > 0 {
		store.SetZoom(zoom)
	}
	store.SetScroll(scroll)
	store.ClearDirty()

	session := &Session{
		ProjectID: projectID,
		UserID:    userID,
		OpenedAt:  time.Now(),
		store:     store,
	}
	m.sessions[projectID] = session

	if err := cache.TouchRecentProject(ctx, userID, projectID); err != nil {
		logger.Warn("failed to record recent project", logger.ErrorField(err))
	}
	return session, nil
}

// Get returns the open session for a project, or nil.
func (m *Manager) Get(projectID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[projectID]
}

// Save persists a session's timeline to the database and drops the
// autosave snapshot it supersedes.
func (m *Manager) Save(ctx context.Context, projectID string) error {
	session := m.Get(projectID)
	if session == nil {
		return fmt.Errorf("project %s is not open", projectID)
	}

	var timeline *model.Timeline
	var zoom float64
	var scroll int64
	session.With(func(store *composition.Store) {
		timeline = store.Timeline()
		zoom = store.Zoom()
		scroll = store.Scroll()
	})

	if err := m.repo.SaveTimeline(ctx, projectID, timeline, zoom, scroll); err != nil {
		return fmt.Errorf("failed to save timeline: %w", err)
	}

	// Only a confirmed write clears the flag; a failed save must stay
	// visible to the autosave loop and the shutdown flush.
	session.With(func(store *composition.Store) {
		store.ClearDirty()
	})
	if err := cache.DropSnapshot(ctx, projectID); err != nil {
		logger.Warn("failed to drop autosave snapshot", logger.ErrorField(err))
	}
	return nil
}

// Close saves and removes a session. Closing an unopened project is a
// no-op.
func (m *Manager) Close(ctx context.Context, projectID string) error {
	if m.Get(projectID) == nil {
		return nil
	}
	if err := m.Save(ctx, projectID); err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.sessions, projectID)
	m.mu.Unlock()
	return nil
}

// Discard removes a session without saving, for project deletion where
// the timeline is being dropped anyway. Unopened projects are a no-op.
func (m *Manager) Discard(projectID string) {
	m.mu.Lock()
	delete(m.sessions, projectID)
	m.mu.Unlock()
}

// OpenCount returns the number of live sessions, for metrics.
func (m *Manager) OpenCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// DirtySessions returns the sessions with unsaved changes, for the
// autosave service.
func (m *Manager) DirtySessions() []*Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	dirty := make([]*Session, 0)
	for _, session := range m.sessions {
		session.With(func(store *composition.Store) {
			if store.Dirty() {
				dirty = append(dirty, session)
			}
		})
	}
	return dirty
}
