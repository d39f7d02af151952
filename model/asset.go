package model

import "time"

// AssetKind identifies the media type of an imported asset.
type AssetKind string

const (
	AssetVideo AssetKind = "video"
	AssetAudio AssetKind = "audio"
)

// Asset is an imported media file. The bytes live in MinIO under
// ObjectPath; only metadata is kept in the database. Clips reference
// assets through SourcePath, which the engine treats as opaque.
type Asset struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"userId"`
	Name       string    `json:"name"`
	Kind       AssetKind `json:"kind"`
	ObjectPath string    `json:"objectPath"` // Key inside the MinIO bucket
	Duration   int64     `json:"duration"`   // Milliseconds, from ffprobe
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	SizeBytes  int64     `json:"sizeBytes"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}
