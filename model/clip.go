package model

// MaxFadeDuration is the per-fade cap in milliseconds. A fade longer than
// this is rejected regardless of clip length.
const MaxFadeDuration int64 = 5000

// AudioStream describes one audio stream carried by a clip's source file.
// The engine stores these but never interprets them; the playback layer does.
type AudioStream struct {
	Index    int    `json:"index"`
	Language string `json:"language,omitempty"`
	Channels int    `json:"channels,omitempty"`
	Enabled  bool   `json:"enabled"`
}

// Transform is an optional spatial transform applied by the rendering layer.
type Transform struct {
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Scale    float64 `json:"scale"`
	Rotation float64 `json:"rotation"`
}

// Clip is a trimmed reference to a media source placed on a track.
// All time fields are integer milliseconds. The active sub-range of the
// source is [TrimIn, TrimOut) with 0 <= TrimIn < TrimOut <= SourceDuration,
// so the timeline footprint is [StartTime, StartTime+EffectiveDuration).
type Clip struct {
	ID             string        `json:"id"`
	TrackID        string        `json:"trackId"`
	SourcePath     string        `json:"sourcePath"` // Opaque to the engine; resolved by storage/playback
	StartTime      int64         `json:"startTime"`
	SourceDuration int64         `json:"sourceDuration"`
	TrimIn         int64         `json:"trimIn"`
	TrimOut        int64         `json:"trimOut"`
	FadeIn         int64         `json:"fadeIn,omitempty"`  // 0 = no fade
	FadeOut        int64         `json:"fadeOut,omitempty"` // 0 = no fade
	Volume         float64       `json:"volume"`
	Muted          bool          `json:"muted"`
	AudioStreams   []AudioStream `json:"audioStreams,omitempty"`
	Transform      *Transform    `json:"transform,omitempty"`
}

// EffectiveDuration returns the portion of the clip active on the timeline.
// Always positive for a valid clip.
func (c *Clip) EffectiveDuration() int64 {
	return c.TrimOut - c.TrimIn
}

// EndTime returns the exclusive end of the clip's timeline footprint.
func (c *Clip) EndTime() int64 {
	return c.StartTime + c.EffectiveDuration()
}

// Overlaps reports whether the timeline footprints of c and other
// intersect. Footprints are closed-open intervals, so a clip that ends
// exactly where the other begins does not overlap.
func (c *Clip) Overlaps(other *Clip) bool {
	return c.StartTime < other.EndTime() && c.EndTime() > other.StartTime
}

// ContainsTime reports whether t falls inside the clip's footprint,
// inclusive of the start and exclusive of the end.
func (c *Clip) ContainsTime(t int64) bool {
	return t >= c.StartTime && t < c.EndTime()
}

// Clone returns a deep copy of the clip.
func (c *Clip) Clone() *Clip {
	dup := *c
	if c.AudioStreams != nil {
		dup.AudioStreams = make([]AudioStream, len(c.AudioStreams))
		copy(dup.AudioStreams, c.AudioStreams)
	}
	if c.Transform != nil {
		t := *c.Transform
		dup.Transform = &t
	}
	return &dup
}
