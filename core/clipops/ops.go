// Package clipops implements the pure clip-level operations of the
// timeline engine: placement validation, split, ripple delete and fade
// validation. All functions are side-effect free; callers own mutation.
package clipops

import (
	"fmt"
	"math"

	"cutroom/model"

	"github.com/google/uuid"
)

// ErrInvalidSplitPoint is returned when a split time falls on or outside
// the clip's footprint. A split must leave two non-empty halves.
var ErrInvalidSplitPoint = fmt.Errorf("split time outside clip bounds")

// SequentialPosition returns the end time of the last clip on the track,
// or 0 for an empty track. Clips are sorted defensively; caller order is
// not trusted.
func SequentialPosition(track *model.Track) int64 {
	if track == nil || len(track.Clips) == 0 {
		return 0
	}
	clips := track.SortedClips()
	return clips[len(clips)-1].EndTime()
}

// DetectOverlap reports whether clip's footprint intersects any clip on
// the track other than excludeID. Pass the clip's own ID as excludeID
// when checking a reposition, so the clip is not compared against itself.
func DetectOverlap(clip *model.Clip, track *model.Track, excludeID string) bool {
	if track == nil {
		return false
	}
	for _, other := range track.Clips {
		if other.ID == excludeID {
			continue
		}
		if clip.Overlaps(other) {
			return true
		}
	}
	return false
}

// ValidatePosition reports whether the clip may occupy its current
// StartTime on the track: the start must be non-negative and the
// footprint must not overlap any other clip.
func ValidatePosition(clip *model.Clip, track *model.Track, excludeID string) bool {
	if clip.StartTime < 0 {
		return false
	}
	return !DetectOverlap(clip, track, excludeID)
}

// FindClipAtTime returns the clip whose footprint contains t (inclusive
// start, exclusive end), or nil. By the no-overlap invariant at most one
// clip can match.
func FindClipAtTime(track *model.Track, t int64) *model.Clip {
	if track == nil {
		return nil
	}
	for _, clip := range track.Clips {
		if clip.ContainsTime(t) {
			return clip
		}
	}
	return nil
}

// SplitAt cuts a clip in two at splitTime. The split time is rounded to
// the nearest integer millisecond before any arithmetic so the halves
// tile exactly: first.TrimOut == second.TrimIn and the effective
// durations sum to the original's. Both halves get fresh IDs; the fade
// crossing the cut is dropped (first.FadeOut = 0, second.FadeIn = 0).
// Returns ErrInvalidSplitPoint when splitTime is at or outside the open
// interval (StartTime, EndTime), which would leave a zero-length half.
func SplitAt(clip *model.Clip, splitTime float64) (*model.Clip, *model.Clip, error) {
	t := int64(math.Round(splitTime))
	if t <= clip.StartTime || t >= clip.EndTime() {
		return nil, nil, ErrInvalidSplitPoint
	}

	offset := t - clip.StartTime

	first := clip.Clone()
	first.ID = uuid.NewString()
	first.TrimOut = clip.TrimIn + offset
	first.FadeOut = 0

	second := clip.Clone()
	second.ID = uuid.NewString()
	second.StartTime = t
	second.TrimIn = clip.TrimIn + offset
	second.FadeIn = 0

	return first, second, nil
}

// RippleShift returns the distance later clips move left after a ripple
// delete of the clip: its effective duration.
func RippleShift(clip *model.Clip) int64 {
	return clip.EffectiveDuration()
}

// DeleteClip removes the clip with the given ID from the slice. With
// ripple=false the remaining clips keep their positions and a gap is
// left. With ripple=true every clip whose StartTime is strictly greater
// than the deleted clip's original StartTime shifts left by RippleShift;
// clips before the deletion point are untouched. Unknown IDs return the
// input unchanged.
func DeleteClip(clips []*model.Clip, id string, ripple bool) []*model.Clip {
	var deleted *model.Clip
	remaining := make([]*model.Clip, 0, len(clips))
	for _, clip := range clips {
		if clip.ID == id {
			deleted = clip
			continue
		}
		remaining = append(remaining, clip)
	}
	if deleted == nil {
		return clips
	}
	if ripple {
		shift := RippleShift(deleted)
		for _, clip := range remaining {
			if clip.StartTime > deleted.StartTime {
				clip.StartTime -= shift
			}
		}
	}
	return remaining
}

// ValidateFadeDuration checks a proposed fade configuration against the
// clip's trimmed duration. Nil proposals fall back to the clip's current
// values. Rejected: negative fades, a single fade over MaxFadeDuration,
// or a combined total over the effective duration. The boundary case
// fadeIn+fadeOut == effectiveDuration is valid. Because validation runs
// against the trimmed duration, tightening a trim can invalidate fades
// that were previously fine; callers re-validate after trim changes.
func ValidateFadeDuration(clip *model.Clip, fadeIn, fadeOut *int64) bool {
	in := clip.FadeIn
	if fadeIn != nil {
		in = *fadeIn
	}
	out := clip.FadeOut
	if fadeOut != nil {
		out = *fadeOut
	}
	if in < 0 || out < 0 {
		return false
	}
	if in > model.MaxFadeDuration || out > model.MaxFadeDuration {
		return false
	}
	return in+out <= clip.EffectiveDuration()
}
