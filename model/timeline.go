package model

// Timeline is the full multi-track composition. TotalDuration is derived
// from the clips and recomputed by the composition store after every
// mutation; it is never set independently.
type Timeline struct {
	Tracks        []*Track `json:"tracks"`
	TotalDuration int64    `json:"totalDuration"`
}

// ComputeTotalDuration returns the maximum clip end time across all
// tracks, or 0 for an empty composition.
func (tl *Timeline) ComputeTotalDuration() int64 {
	var max int64
	for _, track := range tl.Tracks {
		for _, clip := range track.Clips {
			if end := clip.EndTime(); end > max {
				max = end
			}
		}
	}
	return max
}

// Track returns the track with the given ID, or nil if unknown.
func (tl *Timeline) Track(id string) *Track {
	for _, track := range tl.Tracks {
		if track.ID == id {
			return track
		}
	}
	return nil
}

// FindClip returns the clip with the given ID and its track, or nils.
func (tl *Timeline) FindClip(id string) (*Clip, *Track) {
	for _, track := range tl.Tracks {
		for _, clip := range track.Clips {
			if clip.ID == id {
				return clip, track
			}
		}
	}
	return nil, nil
}

// Clone returns a deep copy of the timeline.
func (tl *Timeline) Clone() *Timeline {
	dup := &Timeline{TotalDuration: tl.TotalDuration}
	dup.Tracks = make([]*Track, len(tl.Tracks))
	for i, track := range tl.Tracks {
		dup.Tracks[i] = track.Clone()
	}
	return dup
}
