package gap

import (
	"math/rand"
	"sort"
	"testing"

	"cutroom/model"
)

func newClip(id string, start, dur int64) *model.Clip {
	return &model.Clip{
		ID:             id,
		StartTime:      start,
		SourceDuration: dur,
		TrimIn:         0,
		TrimOut:        dur,
	}
}

func newTrack(id string, clips ...*model.Clip) *model.Track {
	return &model.Track{ID: id, Kind: model.TrackVideo, Clips: clips}
}

func TestAnalyzeTrack(t *testing.T) {
	tests := []struct {
		name     string
		track    *model.Track
		duration int64
		want     []model.Gap
	}{
		{
			// Spec example 1: touching clips yield no gaps.
			name:     "touching clips",
			track:    newTrack("t", newClip("a", 0, 5000), newClip("b", 5000, 3000)),
			duration: 8000,
			want:     []model.Gap{},
		},
		{
			// Spec example 3: one middle gap between 5000 and 7000.
			name:     "middle gap",
			track:    newTrack("t", newClip("a", 0, 5000), newClip("b", 7000, 3000)),
			duration: 10000,
			want: []model.Gap{
				{TrackID: "t", StartTime: 5000, EndTime: 7000, Duration: 2000, Position: model.GapMiddle},
			},
		},
		{
			name:     "leading and trailing gaps",
			track:    newTrack("t", newClip("a", 2000, 3000)),
			duration: 9000,
			want: []model.Gap{
				{TrackID: "t", StartTime: 0, EndTime: 2000, Duration: 2000, Position: model.GapStart},
				{TrackID: "t", StartTime: 5000, EndTime: 9000, Duration: 4000, Position: model.GapEnd},
			},
		},
		{
			name:     "empty track spans timeline",
			track:    newTrack("t"),
			duration: 4000,
			want: []model.Gap{
				{TrackID: "t", StartTime: 0, EndTime: 4000, Duration: 4000, Position: model.GapStart},
			},
		},
		{
			name:     "empty track on empty timeline",
			track:    newTrack("t"),
			duration: 0,
			want:     []model.Gap{},
		},
		{
			name:     "unsorted input",
			track:    newTrack("t", newClip("b", 6000, 1000), newClip("a", 0, 5000)),
			duration: 7000,
			want: []model.Gap{
				{TrackID: "t", StartTime: 5000, EndTime: 6000, Duration: 1000, Position: model.GapMiddle},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeTrack(tt.track, tt.duration)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d gaps, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("gap[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAnalyzeTimeline(t *testing.T) {
	timeline := &model.Timeline{
		Tracks: []*model.Track{
			newTrack("v1", newClip("a", 0, 5000), newClip("b", 7000, 3000)),
			newTrack("a1", newClip("c", 0, 10000)),
		},
	}
	timeline.TotalDuration = timeline.ComputeTotalDuration()

	report := AnalyzeTimeline(timeline)
	if report.TotalGaps != 1 || !report.HasGaps {
		t.Fatalf("report = %+v, want one gap", report)
	}
	if len(report.TracksWithGaps) != 1 || report.TracksWithGaps[0] != "v1" {
		t.Errorf("TracksWithGaps = %v, want [v1]", report.TracksWithGaps)
	}
}

func TestGapAt(t *testing.T) {
	gaps := []model.Gap{
		{TrackID: "t", StartTime: 1000, EndTime: 2000},
		{TrackID: "t", StartTime: 2000, EndTime: 3000},
	}
	if g := GapAt(999, gaps); g != nil {
		t.Error("time before all gaps should miss")
	}
	if g := GapAt(1000, gaps); g == nil || g.StartTime != 1000 {
		t.Error("gap start is inclusive")
	}
	if g := GapAt(2000, gaps); g == nil || g.StartTime != 2000 {
		t.Error("gap end is exclusive; next gap should match")
	}
	if g := GapAt(3000, gaps); g != nil {
		t.Error("time past all gaps should miss")
	}
}

func TestAllTracksInGap(t *testing.T) {
	timeline := &model.Timeline{
		Tracks: []*model.Track{
			newTrack("v1", newClip("a", 0, 2000), newClip("b", 5000, 2000)),
			newTrack("a1", newClip("c", 0, 3000)),
		},
	}
	timeline.TotalDuration = timeline.ComputeTotalDuration()

	if AllTracksInGap(1000, timeline) {
		t.Error("both tracks active at 1000")
	}
	if AllTracksInGap(2500, timeline) {
		t.Error("audio track still active at 2500")
	}
	if !AllTracksInGap(4000, timeline) {
		t.Error("no track active at 4000")
	}

	empty := &model.Timeline{}
	if !AllTracksInGap(0, empty) {
		t.Error("empty timeline counts as fully in gap")
	}
}

func TestNextBoundary(t *testing.T) {
	gaps := []model.Gap{
		{StartTime: 2000, EndTime: 3000},
		{StartTime: 6000, EndTime: 9000},
	}
	tests := []struct {
		t     int64
		want  int64
		found bool
	}{
		{0, 2000, true},
		{2000, 3000, true},
		{2500, 3000, true},
		{3000, 6000, true},
		{8999, 9000, true},
		{9000, 0, false},
	}
	for _, tt := range tests {
		got, found := NextBoundary(tt.t, gaps)
		if found != tt.found || got != tt.want {
			t.Errorf("NextBoundary(%d) = (%d, %v), want (%d, %v)", tt.t, got, found, tt.want, tt.found)
		}
	}
	if _, found := NextBoundary(0, nil); found {
		t.Error("no gaps means no boundary")
	}
}

// TestGapTiling checks that clip footprints and detected gaps exactly
// tile [0, totalDuration) for randomized non-overlapping layouts.
func TestGapTiling(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	for run := 0; run < 50; run++ {
		track := newTrack("t")
		cursor := int64(0)
		for i := 0; i < rng.Intn(8); i++ {
			cursor += int64(rng.Intn(3000)) // Maybe leave a gap
			dur := int64(rng.Intn(4000) + 1)
			track.Clips = append(track.Clips, newClip("c", cursor, dur))
			cursor += dur
		}
		timelineDur := cursor + int64(rng.Intn(2000))

		type span struct {
			start, end int64
		}
		spans := make([]span, 0)
		for _, c := range track.Clips {
			spans = append(spans, span{c.StartTime, c.EndTime()})
		}
		for _, g := range AnalyzeTrack(track, timelineDur) {
			spans = append(spans, span{g.StartTime, g.EndTime})
		}
		sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

		if timelineDur == 0 {
			if len(spans) != 0 {
				t.Fatalf("run %d: empty timeline produced spans %+v", run, spans)
			}
			continue
		}
		expect := int64(0)
		for _, sp := range spans {
			if sp.start != expect {
				t.Fatalf("run %d: hole or overlap at %d (span starts %d)", run, expect, sp.start)
			}
			expect = sp.end
		}
		if expect != timelineDur {
			t.Fatalf("run %d: tiling ends at %d, want %d", run, expect, timelineDur)
		}
	}
}
