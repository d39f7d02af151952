package clipops

import (
	"testing"

	"cutroom/model"
)

func newClip(id string, start, trimIn, trimOut, sourceDur int64) *model.Clip {
	return &model.Clip{
		ID:             id,
		SourcePath:     "assets/" + id + ".mp4",
		StartTime:      start,
		SourceDuration: sourceDur,
		TrimIn:         trimIn,
		TrimOut:        trimOut,
		Volume:         1.0,
	}
}

func newTrack(clips ...*model.Clip) *model.Track {
	return &model.Track{ID: "t1", Kind: model.TrackVideo, Clips: clips}
}

func TestSequentialPosition(t *testing.T) {
	tests := []struct {
		name  string
		track *model.Track
		want  int64
	}{
		{"empty track", newTrack(), 0},
		{"single clip", newTrack(newClip("a", 0, 0, 5000, 5000)), 5000},
		{"unsorted clips", newTrack(
			newClip("b", 8000, 0, 2000, 2000),
			newClip("a", 0, 0, 5000, 5000),
		), 10000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SequentialPosition(tt.track); got != tt.want {
				t.Errorf("SequentialPosition() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDetectOverlap(t *testing.T) {
	track := newTrack(
		newClip("a", 0, 0, 5000, 5000),
		newClip("b", 7000, 0, 3000, 3000),
	)

	tests := []struct {
		name    string
		clip    *model.Clip
		exclude string
		want    bool
	}{
		{"touching is not overlap", newClip("c", 5000, 0, 2000, 2000), "", false},
		{"inside existing clip", newClip("c", 1000, 0, 1000, 1000), "", true},
		{"straddles clip edge", newClip("c", 4000, 0, 2000, 2000), "", true},
		{"self move excluded", newClip("a", 1000, 0, 5000, 5000), "a", true},
		{"self move into free space", newClip("b", 5000, 0, 2000, 2000), "b", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectOverlap(tt.clip, track, tt.exclude); got != tt.want {
				t.Errorf("DetectOverlap() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidatePosition(t *testing.T) {
	track := newTrack(newClip("a", 0, 0, 5000, 5000))

	if ValidatePosition(newClip("b", -1, 0, 1000, 1000), track, "") {
		t.Error("negative start should be invalid")
	}
	if ValidatePosition(newClip("b", 4999, 0, 1000, 1000), track, "") {
		t.Error("overlapping position should be invalid")
	}
	if !ValidatePosition(newClip("b", 5000, 0, 1000, 1000), track, "") {
		t.Error("touching position should be valid")
	}
}

func TestFindClipAtTime(t *testing.T) {
	a := newClip("a", 0, 0, 5000, 5000)
	b := newClip("b", 7000, 0, 3000, 3000)
	track := newTrack(a, b)

	tests := []struct {
		name string
		time int64
		want *model.Clip
	}{
		{"start is inclusive", 0, a},
		{"end is exclusive", 5000, nil},
		{"inside gap", 6000, nil},
		{"inside second clip", 7500, b},
		{"past everything", 10000, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindClipAtTime(track, tt.time); got != tt.want {
				t.Errorf("FindClipAtTime(%d) = %v, want %v", tt.time, got, tt.want)
			}
		})
	}
}

func TestSplitAt(t *testing.T) {
	// Spec example: clip at 5000 with full 10000ms source, split at 10000.
	clip := newClip("a", 5000, 0, 10000, 10000)
	first, second, err := SplitAt(clip, 10000)
	if err != nil {
		t.Fatalf("SplitAt returned error: %v", err)
	}
	if first.StartTime != 5000 || first.TrimIn != 0 || first.TrimOut != 5000 {
		t.Errorf("first = {start:%d trimIn:%d trimOut:%d}, want {5000 0 5000}",
			first.StartTime, first.TrimIn, first.TrimOut)
	}
	if second.StartTime != 10000 || second.TrimIn != 5000 || second.TrimOut != 10000 {
		t.Errorf("second = {start:%d trimIn:%d trimOut:%d}, want {10000 5000 10000}",
			second.StartTime, second.TrimIn, second.TrimOut)
	}
	if first.ID == clip.ID || second.ID == clip.ID || first.ID == second.ID {
		t.Error("split results must have fresh unique IDs")
	}
}

func TestSplitAtExactness(t *testing.T) {
	clip := newClip("a", 1234, 500, 8117, 9000)
	clip.FadeIn = 200
	clip.FadeOut = 300

	first, second, err := SplitAt(clip, 4321.6) // Rounds to 4322
	if err != nil {
		t.Fatalf("SplitAt returned error: %v", err)
	}
	if got := first.EffectiveDuration() + second.EffectiveDuration(); got != clip.EffectiveDuration() {
		t.Errorf("durations sum to %d, want %d", got, clip.EffectiveDuration())
	}
	if first.EndTime() != second.StartTime {
		t.Errorf("halves do not tile: first ends %d, second starts %d", first.EndTime(), second.StartTime)
	}
	if first.TrimOut != second.TrimIn {
		t.Errorf("trims do not tile: first.TrimOut=%d second.TrimIn=%d", first.TrimOut, second.TrimIn)
	}
	if second.StartTime != 4322 {
		t.Errorf("split time not rounded to nearest ms: second starts %d", second.StartTime)
	}
	// A fade cannot survive a cut through its region.
	if first.FadeOut != 0 || second.FadeIn != 0 {
		t.Errorf("fades at the cut must be zeroed, got first.FadeOut=%d second.FadeIn=%d",
			first.FadeOut, second.FadeIn)
	}
	if first.FadeIn != 200 || second.FadeOut != 300 {
		t.Error("outer fades must be preserved")
	}
}

func TestSplitAtRejectsBounds(t *testing.T) {
	clip := newClip("a", 1000, 0, 4000, 4000) // Footprint [1000, 5000)

	for _, bad := range []float64{999, 1000, 1000.4, 5000, 5001} {
		if _, _, err := SplitAt(clip, bad); err == nil {
			t.Errorf("SplitAt(%v) should be rejected", bad)
		}
	}
	if _, _, err := SplitAt(clip, 1001); err != nil {
		t.Errorf("SplitAt(1001) should succeed, got %v", err)
	}
}

func TestDeleteClip(t *testing.T) {
	build := func() []*model.Clip {
		return []*model.Clip{
			newClip("a", 0, 0, 5000, 5000),
			newClip("b", 5000, 0, 3000, 3000),
			newClip("c", 8000, 0, 2000, 2000),
		}
	}

	t.Run("ripple shifts later clips", func(t *testing.T) {
		// Spec example 4: deleting [5000,8000) pulls the 8000 clip to 5000.
		clips := DeleteClip(build(), "b", true)
		if len(clips) != 2 {
			t.Fatalf("expected 2 clips, got %d", len(clips))
		}
		for _, c := range clips {
			switch c.ID {
			case "a":
				if c.StartTime != 0 {
					t.Errorf("clip before deletion moved to %d", c.StartTime)
				}
			case "c":
				if c.StartTime != 5000 {
					t.Errorf("ripple shifted clip to %d, want 5000", c.StartTime)
				}
			}
		}
	})

	t.Run("plain delete leaves a gap", func(t *testing.T) {
		clips := DeleteClip(build(), "b", false)
		for _, c := range clips {
			if c.ID == "c" && c.StartTime != 8000 {
				t.Errorf("non-ripple delete moved clip to %d", c.StartTime)
			}
		}
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		clips := build()
		if got := DeleteClip(clips, "nope", true); len(got) != 3 {
			t.Errorf("unknown id removed a clip: %d left", len(got))
		}
	})
}

func TestRippleConservation(t *testing.T) {
	clips := []*model.Clip{
		newClip("a", 0, 0, 4000, 4000),
		newClip("b", 4500, 1000, 3500, 5000), // Effective 2500
		newClip("c", 7000, 0, 1000, 1000),
		newClip("d", 9000, 0, 2000, 2000),
	}
	target := clips[1]
	shift := RippleShift(target)
	if shift != 2500 {
		t.Fatalf("RippleShift = %d, want 2500", shift)
	}

	before := map[string]int64{}
	for _, c := range clips {
		before[c.ID] = c.StartTime
	}

	remaining := DeleteClip(clips, "b", true)
	for _, c := range remaining {
		want := before[c.ID]
		if before[c.ID] > target.StartTime {
			want -= shift
		}
		if c.StartTime != want {
			t.Errorf("clip %s at %d, want %d", c.ID, c.StartTime, want)
		}
	}
}

func TestValidateFadeDuration(t *testing.T) {
	ptr := func(v int64) *int64 { return &v }
	clip := newClip("a", 0, 0, 10000, 10000)

	tests := []struct {
		name    string
		clip    *model.Clip
		fadeIn  *int64
		fadeOut *int64
		want    bool
	}{
		{"no fades", clip, nil, nil, true},
		{"sum equals duration", clip, ptr(5000), ptr(5000), true},
		{"over per-fade cap", clip, ptr(5001), nil, false},
		{"negative fade", clip, ptr(-1), nil, false},
		{"sum over duration", newClip("b", 0, 0, 6000, 6000), ptr(4000), ptr(3000), false},
		{"current values used when nil", func() *model.Clip {
			c := newClip("c", 0, 0, 3000, 3000)
			c.FadeIn = 2000
			return c
		}(), nil, ptr(1500), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateFadeDuration(tt.clip, tt.fadeIn, tt.fadeOut); got != tt.want {
				t.Errorf("ValidateFadeDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFadeInvalidatedByTrim(t *testing.T) {
	clip := newClip("a", 0, 0, 10000, 10000)
	clip.FadeIn = 4000
	clip.FadeOut = 4000
	if !ValidateFadeDuration(clip, nil, nil) {
		t.Fatal("fades should be valid before trimming")
	}
	clip.TrimOut = 6000 // Effective duration now 6000 < 8000 of fades
	if ValidateFadeDuration(clip, nil, nil) {
		t.Error("trimming must invalidate fades that no longer fit")
	}
}
