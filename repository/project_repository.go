package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"cutroom/model"

	"gorm.io/gorm"
)

// ProjectRepository is the data access interface for editing projects.
// The timeline travels as a JSON blob; the repository owns the
// (de)serialization so callers deal only in model.Timeline.
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	GetAllByUserID(ctx context.Context, userID int64) ([]*model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	SaveTimeline(ctx context.Context, id string, timeline *model.Timeline, zoom float64, scroll int64) error
	LoadTimeline(ctx context.Context, id string) (*model.Timeline, error)
	Delete(ctx context.Context, id string) error
}

// gormProjectRepository is the GORM implementation.
type gormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a GORM project repository.
func NewGormProjectRepository(db *gorm.DB) ProjectRepository {
	return &gormProjectRepository{db: db}
}

// Create inserts a new project. An empty timeline is serialized so
// LoadTimeline always has something to return.
func (r *gormProjectRepository) Create(ctx context.Context, project *model.Project) error {
	if project.TimelineJSON == "" {
		empty, err := json.Marshal(&model.Timeline{Tracks: []*model.Track{}})
		if err != nil {
			return fmt.Errorf("failed to marshal empty timeline: %w", err)
		}
		project.TimelineJSON = string(empty)
	}
	return r.db.WithContext(ctx).Create(project).Error
}

// GetByID returns the project with the given ID, or nil when absent.
func (r *gormProjectRepository) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&project).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project %s: %w", id, err)
	}
	return &project, nil
}

// GetAllByUserID lists a user's projects, newest first. The timeline
// blob is omitted from listings.
func (r *gormProjectRepository) GetAllByUserID(ctx context.Context, userID int64) ([]*model.Project, error) {
	var projects []*model.Project
	err := r.db.WithContext(ctx).
		Select("id", "user_id", "name", "total_duration", "track_count", "clip_count", "zoom", "scroll_offset", "created_at", "updated_at").
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&projects).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list projects for user %d: %w", userID, err)
	}
	return projects, nil
}

// Update saves project fields.
func (r *gormProjectRepository) Update(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Save(project).Error
}

// SaveTimeline serializes and persists the timeline plus the
// denormalized listing fields and view state.
func (r *gormProjectRepository) SaveTimeline(ctx context.Context, id string, timeline *model.Timeline, zoom float64, scroll int64) error {
	blob, err := json.Marshal(timeline)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}
	clipCount := 0
	for _, track := range timeline.Tracks {
		clipCount += len(track.Clips)
	}
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"timeline_json":  string(blob),
			"total_duration": timeline.TotalDuration,
			"track_count":    len(timeline.Tracks),
			"clip_count":     clipCount,
			"zoom":           zoom,
			"scroll_offset":  scroll,
		}).Error
}

// LoadTimeline deserializes the stored timeline. A missing project
// returns nil without error, matching the engine's not-found contract.
func (r *gormProjectRepository) LoadTimeline(ctx context.Context, id string) (*model.Timeline, error) {
	project, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	timeline := &model.Timeline{Tracks: []*model.Track{}}
	if project.TimelineJSON != "" {
		if err := json.Unmarshal([]byte(project.TimelineJSON), timeline); err != nil {
			return nil, fmt.Errorf("failed to unmarshal timeline for project %s: %w", id, err)
		}
	}
	return timeline, nil
}

// Delete removes a project.
func (r *gormProjectRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.Project{}, "id = ?", id).Error
}
