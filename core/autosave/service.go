// Package autosave periodically snapshots dirty editing sessions to
// Redis so a crashed server loses at most one interval of edits. It
// runs on its own go-redis v9 client, independent of the shared v8
// client the cache package uses.
package autosave

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"cutroom/cache"
	"cutroom/config"
	"cutroom/core/composition"
	"cutroom/core/session"
	"cutroom/logger"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL is how long a snapshot survives without being refreshed.
// Long enough to ride out a server restart, short enough not to
// resurrect stale edits days later.
const snapshotTTL = 6 * time.Hour

// Service drives the periodic autosave loop.
type Service struct {
	manager  *session.Manager
	client   *redis.Client
	interval time.Duration

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewService creates the autosave service with its own Redis connection.
func NewService(manager *session.Manager, cfg *config.Config) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("autosave redis connection failed: %w", err)
	}

	interval := time.Duration(cfg.AutosaveIntervalSec) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Service{
		manager:  manager,
		client:   client,
		interval: interval,
		stopChan: make(chan struct{}),
	}, nil
}

// Start launches the autosave loop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
	logger.Info("autosave service started", logger.Duration("interval", s.interval))
}

// Stop flushes one final round of snapshots and shuts the loop down.
func (s *Service) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.snapshotDirty()
	if err := s.client.Close(); err != nil {
		logger.Warn("autosave redis close failed", logger.ErrorField(err))
	}
}

func (s *Service) run() {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.snapshotDirty()
		case <-s.stopChan:
			return
		}
	}
}

// snapshotDirty writes one snapshot per dirty session.
func (s *Service) snapshotDirty() {
	dirty := s.manager.DirtySessions()
	if len(dirty) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, sess := range dirty {
		snap := &cache.TimelineSnapshot{
			ProjectID: sess.ProjectID,
			SavedAt:   time.Now().UnixMilli(),
		}
		sess.With(func(store *composition.Store) {
			snap.Timeline = store.Timeline()
			snap.Zoom = store.Zoom()
			snap.Scroll = store.Scroll()
		})

		payload, err := json.Marshal(snap)
		if err != nil {
			logger.Error("failed to marshal autosave snapshot",
				logger.String("project", sess.ProjectID), logger.ErrorField(err))
			continue
		}
		if err := s.client.Set(ctx, cache.SnapshotKey(sess.ProjectID), payload, snapshotTTL).Err(); err != nil {
			logger.Error("failed to write autosave snapshot",
				logger.String("project", sess.ProjectID), logger.ErrorField(err))
			continue
		}
		logger.Debug("autosaved session", logger.String("project", sess.ProjectID))
	}
}
