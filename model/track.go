package model

import "sort"

// TrackKind identifies the media type a track carries.
type TrackKind string

const (
	TrackVideo TrackKind = "video"
	TrackAudio TrackKind = "audio"
)

// Track is an ordered, non-overlapping sequence of clips of one media type.
// Clips are kept sorted by StartTime; no two clip footprints intersect.
type Track struct {
	ID    string    `json:"id"`
	Kind  TrackKind `json:"kind"`
	Name  string    `json:"name"`
	Clips []*Clip   `json:"clips"`
}

// SortClips orders the track's clips by StartTime. Mutating operations
// call this after every change so readers can rely on the order.
func (t *Track) SortClips() {
	sort.SliceStable(t.Clips, func(i, j int) bool {
		return t.Clips[i].StartTime < t.Clips[j].StartTime
	})
}

// SortedClips returns a copy of the clip slice ordered by StartTime,
// leaving the track untouched. Used by read paths that must not assume
// the caller kept the invariant.
func (t *Track) SortedClips() []*Clip {
	clips := make([]*Clip, len(t.Clips))
	copy(clips, t.Clips)
	sort.SliceStable(clips, func(i, j int) bool {
		return clips[i].StartTime < clips[j].StartTime
	})
	return clips
}

// Clone returns a deep copy of the track and its clips.
func (t *Track) Clone() *Track {
	dup := &Track{ID: t.ID, Kind: t.Kind, Name: t.Name}
	dup.Clips = make([]*Clip, len(t.Clips))
	for i, c := range t.Clips {
		dup.Clips[i] = c.Clone()
	}
	return dup
}
