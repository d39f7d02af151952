package composition

import (
	"math/rand"
	"testing"

	"cutroom/model"
)

func newClip(start, dur int64) *model.Clip {
	return &model.Clip{
		SourcePath:     "assets/demo.mp4",
		StartTime:      start,
		SourceDuration: dur,
		TrimIn:         0,
		TrimOut:        dur,
		Volume:         1.0,
	}
}

func seedStore(t *testing.T) (*Store, string) {
	t.Helper()
	s := New()
	trackID := s.AddTrack(model.TrackVideo, "V1")
	return s, trackID
}

func addClip(t *testing.T, s *Store, trackID string, start, dur int64) string {
	t.Helper()
	clip := newClip(start, dur)
	if !s.AddClip(trackID, clip) {
		t.Fatalf("AddClip(start=%d dur=%d) rejected", start, dur)
	}
	// The store assigns the ID to its own copy; find it by position.
	for _, c := range s.Track(trackID).Clips {
		if c.StartTime == start && c.EffectiveDuration() == dur {
			return c.ID
		}
	}
	t.Fatal("added clip not found")
	return ""
}

func TestAddClip(t *testing.T) {
	s, trackID := seedStore(t)

	addClip(t, s, trackID, 0, 5000)
	if s.TotalDuration() != 5000 {
		t.Errorf("TotalDuration = %d, want 5000", s.TotalDuration())
	}

	if s.AddClip(trackID, newClip(-100, 1000)) {
		t.Error("negative start must be rejected")
	}
	if s.AddClip(trackID, newClip(4000, 2000)) {
		t.Error("overlapping add must be rejected")
	}
	if s.AddClip("missing-track", newClip(0, 1000)) {
		t.Error("unknown track must be rejected")
	}
	bad := newClip(10000, 1000)
	bad.TrimOut = 2000 // Past SourceDuration
	if s.AddClip(trackID, bad) {
		t.Error("trim past source duration must be rejected")
	}
	if s.TotalDuration() != 5000 {
		t.Error("rejected operations must not change state")
	}

	addClip(t, s, trackID, 5000, 3000) // Touching is fine
	if s.TotalDuration() != 8000 {
		t.Errorf("TotalDuration = %d, want 8000", s.TotalDuration())
	}
}

func TestRemoveClipRipple(t *testing.T) {
	s, trackID := seedStore(t)
	addClip(t, s, trackID, 0, 5000)
	b := addClip(t, s, trackID, 5000, 3000)
	c := addClip(t, s, trackID, 8000, 2000)

	if !s.RemoveClip(b, true) {
		t.Fatal("RemoveClip rejected")
	}
	moved := s.Clip(c)
	if moved.StartTime != 5000 {
		t.Errorf("ripple left clip at %d, want 5000", moved.StartTime)
	}
	if s.TotalDuration() != 7000 {
		t.Errorf("TotalDuration = %d, want 7000", s.TotalDuration())
	}
	if s.RemoveClip("missing", true) {
		t.Error("unknown clip id must be a no-op returning false")
	}
}

func TestMoveClipCollisionResolution(t *testing.T) {
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 5000)
	b := addClip(t, s, trackID, 7000, 2000)

	// Free target: exact move.
	if !s.MoveClip(b, 5500, true) {
		t.Fatal("move to free space rejected")
	}
	if got := s.Clip(b).StartTime; got != 5500 {
		t.Errorf("moved to %d, want 5500", got)
	}

	// Colliding target: nearest valid position, here flush against a's end.
	if !s.MoveClip(b, 4000, true) {
		t.Fatal("colliding move should resolve, not reject")
	}
	if got := s.Clip(b).StartTime; got != 5000 {
		t.Errorf("resolved to %d, want 5000", got)
	}

	// Negative target clamps to the nearest valid non-negative position.
	if !s.MoveClip(a, -500, true) {
		t.Fatal("negative move should clamp")
	}
	if got := s.Clip(a).StartTime; got != 0 {
		t.Errorf("clamped to %d, want 0", got)
	}

	if s.MoveClip("missing", 0, true) {
		t.Error("unknown clip must return false")
	}
}

func TestMoveClipHistorySeparation(t *testing.T) {
	s, trackID := seedStore(t)
	b := addClip(t, s, trackID, 0, 2000)
	depth := s.HistoryDepth()

	// Intermediate drag updates carry no history entries.
	for pos := int64(100); pos <= 1000; pos += 100 {
		s.MoveClip(b, pos+2000, false)
	}
	if s.HistoryDepth() != depth {
		t.Errorf("intermediate moves recorded history: depth %d, want %d", s.HistoryDepth(), depth)
	}

	// The committed move records exactly one entry.
	s.MoveClip(b, 4000, true)
	if s.HistoryDepth() != depth+1 {
		t.Errorf("committed move depth = %d, want %d", s.HistoryDepth(), depth+1)
	}
}

func TestMoveClipToTrack(t *testing.T) {
	s, v1 := seedStore(t)
	v2 := s.AddTrack(model.TrackVideo, "V2")
	a := addClip(t, s, v1, 0, 5000)
	addClip(t, s, v2, 4000, 3000)

	if s.MoveClipToTrack(a, v1) {
		t.Error("same track must be rejected")
	}
	if s.MoveClipToTrack(a, "missing") {
		t.Error("unknown track must be rejected")
	}
	if s.MoveClipToTrack(a, v2) {
		t.Error("colliding footprint on target track must be rejected")
	}

	b := addClip(t, s, v1, 8000, 1000)
	if !s.MoveClipToTrack(b, v2) {
		t.Fatal("valid cross-track move rejected")
	}
	if got := s.Clip(b); got.TrackID != v2 || got.StartTime != 8000 {
		t.Errorf("clip after move = {track:%s start:%d}, want {%s 8000}", got.TrackID, got.StartTime, v2)
	}
	if len(s.Track(v1).Clips) != 1 {
		t.Error("clip still present on source track")
	}
}

func TestSplitClip(t *testing.T) {
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 5000, 10000)

	if s.SplitClip(a, 5000) || s.SplitClip(a, 15000) {
		t.Error("split at footprint bounds must be rejected")
	}
	if len(s.Track(trackID).Clips) != 1 {
		t.Fatal("rejected split mutated the track")
	}

	if !s.SplitClip(a, 10000) {
		t.Fatal("valid split rejected")
	}
	clips := s.Track(trackID).Clips
	if len(clips) != 2 {
		t.Fatalf("expected 2 clips after split, got %d", len(clips))
	}
	if clips[0].EndTime() != clips[1].StartTime {
		t.Error("split halves do not tile")
	}
	if s.Clip(a) != nil {
		t.Error("original clip must be gone after split")
	}
	if s.TotalDuration() != 15000 {
		t.Errorf("TotalDuration = %d, want 15000", s.TotalDuration())
	}
}

func TestUpdateClipFades(t *testing.T) {
	ptr := func(v int64) *int64 { return &v }
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 10000)

	if !s.UpdateClip(a, ClipPatch{FadeIn: ptr(5000), FadeOut: ptr(5000)}) {
		t.Fatal("boundary fade sum must be accepted")
	}
	if s.UpdateClip(a, ClipPatch{FadeIn: ptr(5001)}) {
		t.Error("fade over per-fade cap must be rejected")
	}
	// Tightening the trim below the fade sum must reject, not clamp.
	if s.UpdateClip(a, ClipPatch{TrimOut: ptr(int64(6000))}) {
		t.Error("trim invalidating fades must be rejected")
	}
	got := s.Clip(a)
	if got.FadeIn != 5000 || got.FadeOut != 5000 || got.TrimOut != 10000 {
		t.Errorf("rejected updates leaked: %+v", got)
	}
}

func TestResetTrim(t *testing.T) {
	ptr := func(v int64) *int64 { return &v }
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 10000)
	if !s.UpdateClip(a, ClipPatch{TrimIn: ptr(int64(2000)), TrimOut: ptr(int64(6000))}) {
		t.Fatal("trim update rejected")
	}

	if !s.ResetTrim(a) {
		t.Fatal("ResetTrim rejected")
	}
	got := s.Clip(a)
	if got.TrimIn != 0 || got.TrimOut != 10000 {
		t.Errorf("trim after reset = [%d,%d), want [0,10000)", got.TrimIn, got.TrimOut)
	}

	// A neighbour inside the restored footprint blocks the reset.
	if !s.UpdateClip(a, ClipPatch{TrimOut: ptr(int64(5000))}) {
		t.Fatal("trim update rejected")
	}
	addClip(t, s, trackID, 8000, 1000)
	if s.ResetTrim(a) {
		t.Error("reset growing into a neighbour must be rejected")
	}
	got = s.Clip(a)
	if got.TrimOut != 5000 {
		t.Errorf("rejected reset mutated trim to %d", got.TrimOut)
	}
}

func TestUndo(t *testing.T) {
	s, trackID := seedStore(t)

	if s.Undo() {
		t.Error("undo with empty history must be a no-op")
	}

	a := addClip(t, s, trackID, 0, 5000)
	s.MoveClip(a, 7000, true)
	if got := s.Clip(a).StartTime; got != 7000 {
		t.Fatalf("precondition: clip at %d", got)
	}

	if !s.Undo() {
		t.Fatal("undo rejected")
	}
	if got := s.Clip(a).StartTime; got != 0 {
		t.Errorf("undo restored start %d, want 0", got)
	}
	if !s.Undo() {
		t.Fatal("second undo rejected")
	}
	if s.Clip(a) != nil {
		t.Error("undo past the add should remove the clip")
	}
	if s.Undo() {
		t.Error("history exhausted; undo must be a no-op")
	}
}

func TestUndoLinearHistory(t *testing.T) {
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 1000)

	s.MoveClip(a, 5000, true)
	s.MoveClip(a, 9000, true)
	s.Undo() // Back to 5000
	if got := s.Clip(a).StartTime; got != 5000 {
		t.Fatalf("after undo clip at %d, want 5000", got)
	}

	// A new mutation discards the redone tail.
	s.MoveClip(a, 2000, true)
	if !s.Undo() {
		t.Fatal("undo rejected")
	}
	if got := s.Clip(a).StartTime; got != 5000 {
		t.Errorf("undo after branch restored %d, want 5000", got)
	}
}

func TestHistoryCap(t *testing.T) {
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 100)

	for i := 1; i <= 25; i++ {
		s.MoveClip(a, int64(i*1000), true)
	}
	if depth := s.HistoryDepth(); depth != maxHistoryEntries {
		t.Fatalf("history depth = %d, want %d", depth, maxHistoryEntries)
	}

	undos := 0
	for s.Undo() {
		undos++
	}
	if undos != maxHistoryEntries {
		t.Errorf("performed %d undos, want %d", undos, maxHistoryEntries)
	}
	// Oldest entries were dropped; we land 10 moves back, not at the add.
	if got := s.Clip(a).StartTime; got != 15000 {
		t.Errorf("deepest undo landed at %d, want 15000", got)
	}
}

func TestSelection(t *testing.T) {
	s, trackID := seedStore(t)
	a := addClip(t, s, trackID, 0, 1000)

	s.SelectClip(a)
	if got := s.SelectedClip(); got == nil || got.ID != a {
		t.Error("selection not recorded")
	}
	s.SelectClip("missing")
	if s.SelectedClip() != nil {
		t.Error("unknown id must clear selection")
	}

	s.SelectClip(a)
	s.RemoveClip(a, false)
	if s.SelectedClip() != nil {
		t.Error("removing the selected clip must clear selection")
	}
}

// TestNoOverlapInvariant drives the store with random operations and
// checks after each one that no two clip footprints on any track
// intersect and TotalDuration matches the clips.
func TestNoOverlapInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	s := New()
	trackIDs := []string{
		s.AddTrack(model.TrackVideo, "V1"),
		s.AddTrack(model.TrackVideo, "V2"),
		s.AddTrack(model.TrackAudio, "A1"),
	}
	var clipIDs []string

	refresh := func() {
		clipIDs = clipIDs[:0]
		for _, tid := range trackIDs {
			for _, c := range s.Track(tid).Clips {
				clipIDs = append(clipIDs, c.ID)
			}
		}
	}
	randClip := func() string {
		if len(clipIDs) == 0 {
			return ""
		}
		return clipIDs[rng.Intn(len(clipIDs))]
	}

	for step := 0; step < 500; step++ {
		switch rng.Intn(5) {
		case 0:
			dur := int64(rng.Intn(5000) + 100)
			s.AddClip(trackIDs[rng.Intn(3)], newClip(int64(rng.Intn(30000)), dur))
		case 1:
			if id := randClip(); id != "" {
				s.MoveClip(id, int64(rng.Intn(30000)), rng.Intn(2) == 0)
			}
		case 2:
			if id := randClip(); id != "" {
				if c := s.Clip(id); c != nil && c.EffectiveDuration() > 2 {
					s.SplitClip(id, float64(c.StartTime+1+int64(rng.Intn(int(c.EffectiveDuration()-1)))))
				}
			}
		case 3:
			if id := randClip(); id != "" {
				s.RemoveClip(id, rng.Intn(2) == 0)
			}
		case 4:
			s.Undo()
		}
		refresh()

		var maxEnd int64
		for _, tid := range trackIDs {
			track := s.Track(tid)
			clips := track.SortedClips()
			for i := 0; i < len(clips); i++ {
				if end := clips[i].EndTime(); end > maxEnd {
					maxEnd = end
				}
				if clips[i].EffectiveDuration() <= 0 {
					t.Fatalf("step %d: zero-length clip %s", step, clips[i].ID)
				}
				if i > 0 && clips[i-1].EndTime() > clips[i].StartTime {
					t.Fatalf("step %d: overlap on track %s between %s and %s",
						step, tid, clips[i-1].ID, clips[i].ID)
				}
			}
		}
		if s.TotalDuration() != maxEnd {
			t.Fatalf("step %d: TotalDuration %d, want %d", step, s.TotalDuration(), maxEnd)
		}
	}
}
