package cache

import (
	"context"
	"fmt"
	"time"

	"cutroom/db"

	"github.com/go-redis/redis/v8"
)

// recentLimit caps how many recently opened projects are remembered per
// user.
const recentLimit = 20

// RecentProjectsKey builds the Redis key for a user's recent projects.
func RecentProjectsKey(userID int64) string {
	return fmt.Sprintf("recent:%d", userID)
}

// TouchRecentProject records that a user opened a project, scored by
// open time so the newest sorts last.
func TouchRecentProject(ctx context.Context, userID int64, projectID string) error {
	if db.RedisClient == nil {
		return fmt.Errorf("Redis client not initialized")
	}
	key := RecentProjectsKey(userID)

	err := db.RedisClient.ZAdd(ctx, key, &redis.Z{
		Score:  float64(time.Now().UnixMilli()),
		Member: projectID,
	}).Err()
	if err != nil {
		return fmt.Errorf("failed to record recent project: %w", err)
	}

	// Trim the oldest entries beyond the limit.
	if err := db.RedisClient.ZRemRangeByRank(ctx, key, 0, int64(-recentLimit-1)).Err(); err != nil {
		return fmt.Errorf("failed to trim recent projects: %w", err)
	}
	return db.RedisClient.Expire(ctx, key, 30*24*time.Hour).Err()
}

// GetRecentProjects returns a user's recently opened project IDs,
// newest first.
func GetRecentProjects(ctx context.Context, userID int64) ([]string, error) {
	if db.RedisClient == nil {
		return nil, fmt.Errorf("Redis client not initialized")
	}
	ids, err := db.RedisClient.ZRevRange(ctx, RecentProjectsKey(userID), 0, recentLimit-1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get recent projects: %w", err)
	}
	return ids, nil
}
