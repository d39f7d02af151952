package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"cutroom/db"
	"cutroom/model"

	"github.com/go-redis/redis/v8"
)

// TimelineSnapshot is the cached form of an open session: the timeline
// plus the view state and the moment it was taken. The autosave service
// writes these; this package reads and drops them.
type TimelineSnapshot struct {
	ProjectID string          `json:"projectId"`
	Timeline  *model.Timeline `json:"timeline"`
	Zoom      float64         `json:"zoom"`
	Scroll    int64           `json:"scroll"`
	SavedAt   int64           `json:"savedAt"` // Unix milliseconds
}

// SnapshotKey builds the Redis key for a project's autosave snapshot.
func SnapshotKey(projectID string) string {
	return fmt.Sprintf("autosave:%s", projectID)
}

// GetSnapshot reads a project's autosave snapshot. A missing key
// returns nil without error.
func GetSnapshot(ctx context.Context, projectID string) (*TimelineSnapshot, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}
	payload, err := db.RedisClient.Get(ctx, SnapshotKey(projectID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get timeline snapshot: %w", err)
	}
	snap := &TimelineSnapshot{}
	if err := json.Unmarshal(payload, snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline snapshot: %w", err)
	}
	return snap, nil
}

// DropSnapshot removes a project's autosave snapshot, called after a
// clean save to the database.
func DropSnapshot(ctx context.Context, projectID string) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	return db.RedisClient.Del(ctx, SnapshotKey(projectID)).Err()
}
