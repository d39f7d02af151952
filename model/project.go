package model

import "time"

// Project is a persisted editing project owned by a user. The timeline
// is stored as a JSON blob; TotalDuration is denormalized for listings.
type Project struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        int64     `json:"userId" gorm:"index"`
	Name          string    `json:"name" gorm:"size:255"`
	TimelineJSON  string    `json:"-" gorm:"column:timeline_json;type:longtext"`
	TotalDuration int64     `json:"totalDuration"`
	TrackCount    int       `json:"trackCount"`
	ClipCount     int       `json:"clipCount"`
	Zoom          float64   `json:"zoom"`
	ScrollOffset  int64     `json:"scrollOffset"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName maps Project to the projects table.
func (Project) TableName() string {
	return "projects"
}
