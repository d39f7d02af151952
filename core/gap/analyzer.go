// Package gap detects the unoccupied intervals of a timeline. The
// playback layer uses the results to render black frames or silence
// instead of scanning every track on every frame.
package gap

import "cutroom/model"

// AnalyzeTrack returns the maximal unoccupied intervals of one track
// within [0, timelineDuration). Clips are sorted defensively before the
// scan. An empty track yields a single "start" gap covering the whole
// timeline, unless the timeline itself is empty.
func AnalyzeTrack(track *model.Track, timelineDuration int64) []model.Gap {
	gaps := make([]model.Gap, 0)
	clips := track.SortedClips()

	if len(clips) == 0 {
		if timelineDuration > 0 {
			gaps = append(gaps, newGap(track.ID, 0, timelineDuration, model.GapStart))
		}
		return gaps
	}

	if first := clips[0]; first.StartTime > 0 {
		gaps = append(gaps, newGap(track.ID, 0, first.StartTime, model.GapStart))
	}

	for i := 0; i < len(clips)-1; i++ {
		end := clips[i].EndTime()
		next := clips[i+1].StartTime
		if next > end {
			gaps = append(gaps, newGap(track.ID, end, next, model.GapMiddle))
		}
	}

	if last := clips[len(clips)-1]; last.EndTime() < timelineDuration {
		gaps = append(gaps, newGap(track.ID, last.EndTime(), timelineDuration, model.GapEnd))
	}

	return gaps
}

// AnalyzeTimeline runs AnalyzeTrack over every track and aggregates the
// results. A track appears in TracksWithGaps iff it has at least one gap.
func AnalyzeTimeline(timeline *model.Timeline) *model.GapReport {
	report := &model.GapReport{
		Gaps:           make([]model.Gap, 0),
		TracksWithGaps: make([]string, 0),
	}
	for _, track := range timeline.Tracks {
		trackGaps := AnalyzeTrack(track, timeline.TotalDuration)
		if len(trackGaps) > 0 {
			report.TracksWithGaps = append(report.TracksWithGaps, track.ID)
		}
		report.Gaps = append(report.Gaps, trackGaps...)
	}
	report.TotalGaps = len(report.Gaps)
	report.HasGaps = report.TotalGaps > 0
	return report
}

// GapAt returns the first gap containing t (inclusive start, exclusive
// end), or nil.
func GapAt(t int64, gaps []model.Gap) *model.Gap {
	for i := range gaps {
		if gaps[i].Contains(t) {
			return &gaps[i]
		}
	}
	return nil
}

// AllTracksInGap reports whether no track has an active clip at t, i.e.
// the whole composition should render black/silence. An empty timeline
// counts as fully in gap.
func AllTracksInGap(t int64, timeline *model.Timeline) bool {
	for _, track := range timeline.Tracks {
		gaps := AnalyzeTrack(track, timeline.TotalDuration)
		if GapAt(t, gaps) == nil {
			return false
		}
	}
	return true
}

// NextBoundary returns the earliest gap start or end strictly greater
// than t across the supplied gaps. The second return is false when no
// boundary lies ahead. Playback uses this to schedule the next gap
// transition instead of re-scanning per frame.
func NextBoundary(t int64, gaps []model.Gap) (int64, bool) {
	var next int64
	found := false
	consider := func(v int64) {
		if v > t && (!found || v < next) {
			next = v
			found = true
		}
	}
	for _, g := range gaps {
		consider(g.StartTime)
		consider(g.EndTime)
	}
	return next, found
}

func newGap(trackID string, start, end int64, pos model.GapPosition) model.Gap {
	return model.Gap{
		TrackID:   trackID,
		StartTime: start,
		EndTime:   end,
		Duration:  end - start,
		Position:  pos,
	}
}
