package model

// SnapTargetType classifies a snap candidate. Clip edges take priority
// over grid lines when both fall within the snap threshold.
type SnapTargetType string

const (
	SnapClipStart SnapTargetType = "clip-start"
	SnapClipEnd   SnapTargetType = "clip-end"
	SnapGrid      SnapTargetType = "grid"
)

// SnapTarget is a candidate timeline position considered during
// interactive placement. Derived on demand, never persisted.
type SnapTarget struct {
	Position int64          `json:"position"`
	Type     SnapTargetType `json:"type"`
	ClipID   string         `json:"clipId,omitempty"` // Empty for grid targets
}

// IsClipEdge reports whether the target is a clip start or end.
func (t SnapTarget) IsClipEdge() bool {
	return t.Type == SnapClipStart || t.Type == SnapClipEnd
}

// SnapResult is the outcome of resolving a position against snap targets.
// When no target is within threshold (or snapping is disabled) Position
// passes through unchanged and Indicator is nil.
type SnapResult struct {
	Position  int64       `json:"position"`
	Snapped   bool        `json:"snapped"`
	Indicator *SnapTarget `json:"indicator,omitempty"`
}
