package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"cutroom/core/composition"
	"cutroom/model"
)

// fakeProjectRepo backs the manager without a database. saveErr makes
// SaveTimeline fail; saveCalls counts write attempts.
type fakeProjectRepo struct {
	project   *model.Project
	timeline  *model.Timeline
	saveErr   error
	saveCalls int
}

func (r *fakeProjectRepo) Create(ctx context.Context, project *model.Project) error { return nil }

func (r *fakeProjectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	if r.project != nil && r.project.ID == id {
		return r.project, nil
	}
	return nil, nil
}

func (r *fakeProjectRepo) GetAllByUserID(ctx context.Context, userID int64) ([]*model.Project, error) {
	return nil, nil
}

func (r *fakeProjectRepo) Update(ctx context.Context, project *model.Project) error { return nil }

func (r *fakeProjectRepo) SaveTimeline(ctx context.Context, id string, timeline *model.Timeline, zoom float64, scroll int64) error {
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.timeline = timeline
	return nil
}

func (r *fakeProjectRepo) LoadTimeline(ctx context.Context, id string) (*model.Timeline, error) {
	if r.timeline != nil {
		return r.timeline, nil
	}
	return &model.Timeline{Tracks: []*model.Track{}}, nil
}

func (r *fakeProjectRepo) Delete(ctx context.Context, id string) error { return nil }

func newFakeRepo() *fakeProjectRepo {
	return &fakeProjectRepo{
		project: &model.Project{
			ID:        "p1",
			UserID:    7,
			Name:      "test",
			UpdatedAt: time.Now(),
		},
	}
}

func editSession(t *testing.T, sess *Session) {
	t.Helper()
	sess.With(func(store *composition.Store) {
		trackID := store.AddTrack(model.TrackVideo, "V1")
		ok := store.AddClip(trackID, &model.Clip{
			SourcePath:     "a.mp4",
			StartTime:      0,
			SourceDuration: 4000,
			TrimIn:         0,
			TrimOut:        4000,
			Volume:         1.0,
		})
		if !ok {
			t.Fatal("AddClip rejected a valid clip")
		}
	})
}

func TestSaveKeepsDirtyOnFailure(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	ctx := context.Background()

	sess, err := m.Open(ctx, "p1", 7)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	editSession(t, sess)
	if len(m.DirtySessions()) != 1 {
		t.Fatal("edited session not reported dirty")
	}

	repo.saveErr = errors.New("db unavailable")
	if err := m.Save(ctx, "p1"); err == nil {
		t.Fatal("Save() succeeded despite repository error")
	}
	if len(m.DirtySessions()) != 1 {
		t.Error("failed save cleared the dirty flag; edits would be skipped by autosave and shutdown flush")
	}

	repo.saveErr = nil
	if err := m.Save(ctx, "p1"); err != nil {
		t.Fatalf("Save() error after repository recovered: %v", err)
	}
	if len(m.DirtySessions()) != 0 {
		t.Error("successful save left the session dirty")
	}
	if repo.timeline == nil || len(repo.timeline.Tracks) != 1 {
		t.Error("successful save did not persist the edited timeline")
	}
}

func TestDiscardDropsSessionWithoutSaving(t *testing.T) {
	repo := newFakeRepo()
	m := NewManager(repo)
	ctx := context.Background()

	sess, err := m.Open(ctx, "p1", 7)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	editSession(t, sess)

	m.Discard("p1")

	if m.Get("p1") != nil {
		t.Error("Discard() left the session registered")
	}
	if m.OpenCount() != 0 {
		t.Errorf("OpenCount() = %d after discard, want 0", m.OpenCount())
	}
	if len(m.DirtySessions()) != 0 {
		t.Error("discarded session still reported dirty")
	}
	if repo.saveCalls != 0 {
		t.Errorf("Discard() wrote to the repository %d times, want 0", repo.saveCalls)
	}

	// Discarding an unopened project is a no-op.
	m.Discard("p1")
}
