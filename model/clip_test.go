package model

import "testing"

func clip(id string, start, trimIn, trimOut, sourceDur int64) *Clip {
	return &Clip{
		ID:             id,
		StartTime:      start,
		TrimIn:         trimIn,
		TrimOut:        trimOut,
		SourceDuration: sourceDur,
		Volume:         1.0,
	}
}

func TestClipFootprint(t *testing.T) {
	c := clip("a", 2000, 500, 3500, 10000)
	if got := c.EffectiveDuration(); got != 3000 {
		t.Errorf("EffectiveDuration() = %d, want 3000", got)
	}
	if got := c.EndTime(); got != 5000 {
		t.Errorf("EndTime() = %d, want 5000", got)
	}
}

func TestClipOverlaps(t *testing.T) {
	base := clip("a", 1000, 0, 2000, 5000) // footprint [1000, 3000)

	tests := []struct {
		name  string
		other *Clip
		want  bool
	}{
		{"disjoint before", clip("b", 0, 0, 500, 5000), false},
		{"touching end to start", clip("b", 3000, 0, 1000, 5000), false},
		{"touching start to end", clip("b", 0, 0, 1000, 5000), false},
		{"partial overlap", clip("b", 2500, 0, 1000, 5000), true},
		{"contained", clip("b", 1500, 0, 500, 5000), true},
		{"identical footprint", clip("b", 1000, 0, 2000, 5000), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Overlaps(tt.other); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
			if got := tt.other.Overlaps(base); got != tt.want {
				t.Errorf("Overlaps() reversed = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClipContainsTime(t *testing.T) {
	c := clip("a", 1000, 0, 2000, 5000) // footprint [1000, 3000)

	tests := []struct {
		t    int64
		want bool
	}{
		{999, false},
		{1000, true},
		{2999, true},
		{3000, false},
	}
	for _, tt := range tests {
		if got := c.ContainsTime(tt.t); got != tt.want {
			t.Errorf("ContainsTime(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestClipCloneIndependence(t *testing.T) {
	c := clip("a", 0, 0, 1000, 1000)
	c.AudioStreams = []AudioStream{{Index: 0, Enabled: true}}
	c.Transform = &Transform{Scale: 1.0}

	dup := c.Clone()
	dup.AudioStreams[0].Enabled = false
	dup.Transform.Scale = 2.0

	if !c.AudioStreams[0].Enabled {
		t.Error("clone shares the AudioStreams slice with the original")
	}
	if c.Transform.Scale != 1.0 {
		t.Error("clone shares the Transform with the original")
	}
}

func TestComputeTotalDuration(t *testing.T) {
	tl := &Timeline{Tracks: []*Track{
		{ID: "v1", Kind: TrackVideo, Clips: []*Clip{
			clip("a", 0, 0, 4000, 5000),
			clip("b", 4000, 0, 2000, 5000),
		}},
		{ID: "a1", Kind: TrackAudio, Clips: []*Clip{
			clip("c", 5000, 0, 2500, 5000),
		}},
	}}
	if got := tl.ComputeTotalDuration(); got != 7500 {
		t.Errorf("ComputeTotalDuration() = %d, want 7500", got)
	}

	empty := &Timeline{}
	if got := empty.ComputeTotalDuration(); got != 0 {
		t.Errorf("ComputeTotalDuration() on empty timeline = %d, want 0", got)
	}
}
