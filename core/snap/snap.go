// Package snap resolves magnetic snapping for interactive clip
// placement: grid lines derived from the zoom level plus the edges of
// existing clips, with clip edges taking priority over the grid.
package snap

import "cutroom/model"

// gridLadder holds the candidate grid intervals in milliseconds, from
// finest to coarsest.
var gridLadder = []int64{100, 250, 500, 1000, 2000, 5000, 10000, 30000, 60000}

const (
	// targetPixelSpacing is the minimum on-screen distance between two
	// grid lines before the engine steps up to a coarser interval.
	targetPixelSpacing = 75.0

	// minTimelineSpan keeps grid targets covering at least one minute so
	// an empty or short timeline still snaps sensibly.
	minTimelineSpan int64 = 60000
)

// GridInterval picks the finest ladder rung whose on-screen spacing at
// the given zoom is at least targetPixelSpacing, falling back to the
// coarsest rung when even that is too dense.
func GridInterval(zoom, basePixelsPerSecond float64) int64 {
	pixelsPerMs := basePixelsPerSecond * zoom / 1000.0
	for _, interval := range gridLadder {
		if float64(interval)*pixelsPerMs >= targetPixelSpacing {
			return interval
		}
	}
	return gridLadder[len(gridLadder)-1]
}

// FindTargets collects the snap candidates for a drag of excludeClipID:
// the start and end of every other clip on every track (snapping is
// cross-track) plus grid lines from 0 through the end of the timeline.
func FindTargets(timeline *model.Timeline, excludeClipID string, zoom, basePixelsPerSecond float64) []model.SnapTarget {
	targets := make([]model.SnapTarget, 0)

	for _, track := range timeline.Tracks {
		for _, clip := range track.Clips {
			if clip.ID == excludeClipID {
				continue
			}
			targets = append(targets,
				model.SnapTarget{Position: clip.StartTime, Type: model.SnapClipStart, ClipID: clip.ID},
				model.SnapTarget{Position: clip.EndTime(), Type: model.SnapClipEnd, ClipID: clip.ID},
			)
		}
	}

	span := timeline.TotalDuration
	if span < minTimelineSpan {
		span = minTimelineSpan
	}
	interval := GridInterval(zoom, basePixelsPerSecond)
	for pos := int64(0); pos <= span; pos += interval {
		targets = append(targets, model.SnapTarget{Position: pos, Type: model.SnapGrid})
	}

	return targets
}

// Apply resolves a candidate position against the targets. Clip-edge
// targets are evaluated first and any clip edge within threshold wins
// over every grid target, regardless of which is numerically closer.
// Within one priority class the closest target wins; between equidistant
// targets the first found is kept, so the caller-supplied order is the
// tie-break. Disabled snapping or no target within threshold passes the
// position through with a nil indicator.
func Apply(position int64, targets []model.SnapTarget, threshold int64, enabled bool) model.SnapResult {
	if !enabled {
		return model.SnapResult{Position: position}
	}
	if best := closest(position, targets, threshold, true); best != nil {
		return model.SnapResult{Position: best.Position, Snapped: true, Indicator: best}
	}
	if best := closest(position, targets, threshold, false); best != nil {
		return model.SnapResult{Position: best.Position, Snapped: true, Indicator: best}
	}
	return model.SnapResult{Position: position}
}

// ToGrid snaps against grid targets only.
func ToGrid(position int64, targets []model.SnapTarget, threshold int64) model.SnapResult {
	return Apply(position, filter(targets, false), threshold, true)
}

// ToClipEdges snaps against clip-edge targets only.
func ToClipEdges(position int64, targets []model.SnapTarget, threshold int64) model.SnapResult {
	return Apply(position, filter(targets, true), threshold, true)
}

// closest returns the nearest target of the requested class within
// threshold, keeping the first found on equal distance.
func closest(position int64, targets []model.SnapTarget, threshold int64, clipEdges bool) *model.SnapTarget {
	var best *model.SnapTarget
	var bestDist int64
	for i := range targets {
		t := targets[i]
		if t.IsClipEdge() != clipEdges {
			continue
		}
		dist := t.Position - position
		if dist < 0 {
			dist = -dist
		}
		if dist > threshold {
			continue
		}
		if best == nil || dist < bestDist {
			best = &targets[i]
			bestDist = dist
		}
	}
	return best
}

func filter(targets []model.SnapTarget, clipEdges bool) []model.SnapTarget {
	out := make([]model.SnapTarget, 0, len(targets))
	for _, t := range targets {
		if t.IsClipEdge() == clipEdges {
			out = append(out, t)
		}
	}
	return out
}
