// Package composition holds the mutable editing state of one open
// project: its tracks and clips, selection, view state and a bounded
// undo log. Every public operation is a transaction — validate, compute,
// then commit or reject — so the timeline observed between operations is
// always structurally valid. The store is not safe for concurrent use;
// the session layer serializes access.
package composition

import (
	"cutroom/core/clipops"
	"cutroom/model"

	"github.com/google/uuid"
)

// ClipPatch carries the optional field updates accepted by UpdateClip.
// Nil means "leave unchanged". StartTime moves go through MoveClip, not
// the patch, because moves need collision resolution.
type ClipPatch struct {
	TrimIn       *int64
	TrimOut      *int64
	FadeIn       *int64
	FadeOut      *int64
	Volume       *float64
	Muted        *bool
	Transform    *model.Transform
	AudioStreams []model.AudioStream
}

// Store owns the timeline of one open project. Construct with New or
// Load; callers never hold references into the store's clips — Timeline
// hands out deep copies.
type Store struct {
	timeline       *model.Timeline
	selectedClipID string
	zoom           float64
	scrollOffset   int64
	history        *historyLog
	dirty          bool
}

// New returns an empty composition at zoom 1.
func New() *Store {
	return &Store{
		timeline: &model.Timeline{Tracks: make([]*model.Track, 0)},
		zoom:     1.0,
		history:  newHistoryLog(),
	}
}

// Load wraps an existing timeline (e.g. deserialized from the project
// repository) in a fresh store. The timeline is deep-copied; sort order
// and total duration are re-established rather than trusted.
func Load(tl *model.Timeline) *Store {
	s := New()
	if tl != nil {
		s.timeline = tl.Clone()
		for _, track := range s.timeline.Tracks {
			track.SortClips()
		}
		s.timeline.TotalDuration = s.timeline.ComputeTotalDuration()
	}
	return s
}

// Timeline returns a deep-copied snapshot for readers.
func (s *Store) Timeline() *model.Timeline {
	return s.timeline.Clone()
}

// TotalDuration returns the derived composition length.
func (s *Store) TotalDuration() int64 {
	return s.timeline.TotalDuration
}

// Dirty reports whether the composition changed since ClearDirty.
func (s *Store) Dirty() bool {
	return s.dirty
}

// ClearDirty marks the composition as persisted.
func (s *Store) ClearDirty() {
	s.dirty = false
}

// HistoryDepth returns the number of undo steps available.
func (s *Store) HistoryDepth() int {
	return s.history.depth()
}

// AddTrack appends a new track and returns its ID. Track creation is
// structural, not clip-level, so it does not enter the undo log.
func (s *Store) AddTrack(kind model.TrackKind, name string) string {
	track := &model.Track{
		ID:    uuid.NewString(),
		Kind:  kind,
		Name:  name,
		Clips: make([]*model.Clip, 0),
	}
	s.timeline.Tracks = append(s.timeline.Tracks, track)
	s.dirty = true
	return track.ID
}

// Track returns the track with the given ID, or nil.
func (s *Store) Track(id string) *model.Track {
	return s.timeline.Track(id)
}

// Tracks returns deep-copied snapshots of all tracks in order.
func (s *Store) Tracks() []*model.Track {
	tracks := make([]*model.Track, len(s.timeline.Tracks))
	for i, track := range s.timeline.Tracks {
		tracks[i] = track.Clone()
	}
	return tracks
}

// Clip returns a copy of the clip with the given ID, or nil.
func (s *Store) Clip(id string) *model.Clip {
	clip, _ := s.timeline.FindClip(id)
	if clip == nil {
		return nil
	}
	return clip.Clone()
}

// AddClip places a clip on a track. A missing ID is filled with a fresh
// uuid; a negative start or a collision rejects the add with the store
// unchanged. Fades on the incoming clip must already be valid.
func (s *Store) AddClip(trackID string, clip *model.Clip) bool {
	track := s.timeline.Track(trackID)
	if track == nil || clip == nil {
		return false
	}
	if clip.TrimIn < 0 || clip.TrimOut <= clip.TrimIn || clip.TrimOut > clip.SourceDuration {
		return false
	}
	if !clipops.ValidatePosition(clip, track, "") {
		return false
	}
	if !clipops.ValidateFadeDuration(clip, nil, nil) {
		return false
	}

	s.record()
	placed := clip.Clone()
	if placed.ID == "" {
		placed.ID = uuid.NewString()
	}
	placed.TrackID = track.ID
	track.Clips = append(track.Clips, placed)
	track.SortClips()
	s.commit()
	return true
}

// RemoveClip deletes a clip. With ripple=true later clips on the same
// track close the gap; clips before the deletion point never move.
// Unknown IDs are a no-op returning false.
func (s *Store) RemoveClip(id string, ripple bool) bool {
	clip, track := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}
	s.record()
	track.Clips = clipops.DeleteClip(track.Clips, id, ripple)
	track.SortClips()
	s.commit()
	if s.selectedClipID == id {
		s.selectedClipID = ""
	}
	return true
}

// UpdateClip applies a field patch to a clip. Trim changes are bounded
// by the source and must not collide with neighbours at the new
// footprint; fade changes are validated against the post-patch trimmed
// duration and rejected — never clamped — when out of bounds.
func (s *Store) UpdateClip(id string, patch ClipPatch) bool {
	clip, track := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}

	candidate := clip.Clone()
	if patch.TrimIn != nil {
		candidate.TrimIn = *patch.TrimIn
	}
	if patch.TrimOut != nil {
		candidate.TrimOut = *patch.TrimOut
	}
	if candidate.TrimIn < 0 || candidate.TrimOut <= candidate.TrimIn || candidate.TrimOut > candidate.SourceDuration {
		return false
	}
	if !clipops.ValidatePosition(candidate, track, id) {
		return false
	}
	if !clipops.ValidateFadeDuration(candidate, patch.FadeIn, patch.FadeOut) {
		return false
	}

	s.record()
	clip.TrimIn = candidate.TrimIn
	clip.TrimOut = candidate.TrimOut
	if patch.FadeIn != nil {
		clip.FadeIn = *patch.FadeIn
	}
	if patch.FadeOut != nil {
		clip.FadeOut = *patch.FadeOut
	}
	if patch.Volume != nil {
		clip.Volume = *patch.Volume
	}
	if patch.Muted != nil {
		clip.Muted = *patch.Muted
	}
	if patch.Transform != nil {
		t := *patch.Transform
		clip.Transform = &t
	}
	if patch.AudioStreams != nil {
		clip.AudioStreams = make([]model.AudioStream, len(patch.AudioStreams))
		copy(clip.AudioStreams, patch.AudioStreams)
	}
	track.SortClips()
	s.commit()
	return true
}

// MoveClip repositions a clip on its track. A colliding target start is
// resolved to the nearest valid position (minimal displacement) instead
// of rejected. recordHistory=false serves intermediate drag feedback;
// drag completion passes true so one gesture costs one history entry.
func (s *Store) MoveClip(id string, newStart int64, recordHistory bool) bool {
	clip, track := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}
	resolved, ok := s.resolvePosition(clip, track, newStart)
	if !ok {
		return false
	}
	if recordHistory {
		s.record()
	}
	clip.StartTime = resolved
	track.SortClips()
	s.commit()
	return true
}

// MoveClipToTrack reassigns a clip to another track, keeping its
// StartTime. Rejected when the target is unknown, is the clip's current
// track, or already has a clip under the footprint. Always records
// history on success.
func (s *Store) MoveClipToTrack(id, targetTrackID string) bool {
	clip, srcTrack := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}
	target := s.timeline.Track(targetTrackID)
	if target == nil || target.ID == srcTrack.ID {
		return false
	}
	if clipops.DetectOverlap(clip, target, "") {
		return false
	}

	s.record()
	srcTrack.Clips = clipops.DeleteClip(srcTrack.Clips, id, false)
	clip.TrackID = target.ID
	target.Clips = append(target.Clips, clip)
	target.SortClips()
	s.commit()
	return true
}

// SplitClip cuts a clip in two at t, replacing it atomically. Any
// rejection from the split math leaves the store untouched.
func (s *Store) SplitClip(id string, t float64) bool {
	clip, track := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}
	first, second, err := clipops.SplitAt(clip, t)
	if err != nil {
		return false
	}

	s.record()
	track.Clips = clipops.DeleteClip(track.Clips, id, false)
	track.Clips = append(track.Clips, first, second)
	track.SortClips()
	s.commit()
	if s.selectedClipID == id {
		s.selectedClipID = first.ID
	}
	return true
}

// ResetTrim restores the clip's full source range. Rejected when the
// extended footprint would run into a neighbouring clip, or when the
// current fades no longer fit is impossible here (the range only grows).
func (s *Store) ResetTrim(id string) bool {
	clip, track := s.timeline.FindClip(id)
	if clip == nil {
		return false
	}
	candidate := clip.Clone()
	candidate.TrimIn = 0
	candidate.TrimOut = candidate.SourceDuration
	if !clipops.ValidatePosition(candidate, track, id) {
		return false
	}

	s.record()
	clip.TrimIn = 0
	clip.TrimOut = clip.SourceDuration
	track.SortClips()
	s.commit()
	return true
}

// Undo restores the most recent snapshot. Empty history is a no-op.
func (s *Store) Undo() bool {
	snap := s.history.undo()
	if snap == nil {
		return false
	}
	s.timeline.Tracks = snap.tracks
	s.timeline.TotalDuration = snap.totalDuration
	s.selectedClipID = snap.selectedClipID
	s.dirty = true
	return true
}

// SelectClip marks a clip as selected; an unknown ID clears selection.
func (s *Store) SelectClip(id string) {
	if clip, _ := s.timeline.FindClip(id); clip == nil {
		s.selectedClipID = ""
		return
	}
	s.selectedClipID = id
}

// SelectedClip returns a copy of the selected clip, or nil.
func (s *Store) SelectedClip() *model.Clip {
	if s.selectedClipID == "" {
		return nil
	}
	return s.Clip(s.selectedClipID)
}

// SetZoom stores the view zoom factor; non-positive values are ignored.
func (s *Store) SetZoom(zoom float64) {
	if zoom > 0 {
		s.zoom = zoom
		s.dirty = true
	}
}

// Zoom returns the view zoom factor.
func (s *Store) Zoom() float64 {
	return s.zoom
}

// SetScroll stores the view scroll offset in milliseconds.
func (s *Store) SetScroll(offset int64) {
	if offset >= 0 {
		s.scrollOffset = offset
		s.dirty = true
	}
}

// Scroll returns the view scroll offset.
func (s *Store) Scroll() int64 {
	return s.scrollOffset
}

// resolvePosition finds the valid start nearest to wanted for the clip.
// The wanted position itself wins when free; otherwise the edges of
// every other clip (directly after, or directly before with room for
// the moving clip) and position 0 are candidates, and the one with the
// smallest displacement is chosen.
func (s *Store) resolvePosition(clip *model.Clip, track *model.Track, wanted int64) (int64, bool) {
	if wanted < 0 {
		wanted = 0
	}
	probe := clip.Clone()
	probe.StartTime = wanted
	if clipops.ValidatePosition(probe, track, clip.ID) {
		return wanted, true
	}

	candidates := []int64{0, clipops.SequentialPosition(track)}
	for _, other := range track.Clips {
		if other.ID == clip.ID {
			continue
		}
		candidates = append(candidates, other.EndTime())
		if before := other.StartTime - clip.EffectiveDuration(); before >= 0 {
			candidates = append(candidates, before)
		}
	}

	best := int64(-1)
	var bestDist int64
	for _, cand := range candidates {
		probe.StartTime = cand
		if !clipops.ValidatePosition(probe, track, clip.ID) {
			continue
		}
		dist := cand - wanted
		if dist < 0 {
			dist = -dist
		}
		if best < 0 || dist < bestDist {
			best = cand
			bestDist = dist
		}
	}
	if best < 0 {
		return 0, false
	}
	return best, true
}

// record pushes the current state onto the undo log. Called before a
// committed mutation so Undo restores the pre-mutation state.
func (s *Store) record() {
	snap := &snapshot{
		tracks:         make([]*model.Track, len(s.timeline.Tracks)),
		totalDuration:  s.timeline.TotalDuration,
		selectedClipID: s.selectedClipID,
	}
	for i, track := range s.timeline.Tracks {
		snap.tracks[i] = track.Clone()
	}
	s.history.push(snap)
}

// commit re-derives TotalDuration and marks the store dirty. Every
// mutating operation ends here.
func (s *Store) commit() {
	s.timeline.TotalDuration = s.timeline.ComputeTotalDuration()
	s.dirty = true
}
