package learning

import (
	"context"
	"testing"

	svc "github.com/dlemos/caderno/internal/learning"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/study"
)

func testScreen(t *testing.T) (*LearningScreen, *store.Store) {
	t.Helper()
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	mock := llm.NewMockProvider()
	note := notes.Note{RelPath: "go/slices.md", Title: "slices"}
	loc := notes.Location{Root: t.TempDir(), NoteRel: note.RelPath}
	folders := notes.FolderNames{
		Interviews: "interviews",
		Exercises:  "exercises",
		Challenges: "challenges",
	}
	s := New(svc.NewService(mock, svc.DefaultConfig()),
		st.EventRepo(), st.SnapshotRepo(), note, loc, folders, 4, nil)
	return s, st
}

func TestAbandonSavesResumableSnapshot(t *testing.T) {
	s, st := testScreen(t)
	s.sess = study.NewSession(study.ModeLearning, "go/slices.md", "slices", []study.Item{
		{Title: "Slices"}, {Title: "Maps"},
	})
	s.sess.Append(study.NewMessage(study.RoleAssistant, "What is a slice?"))

	if cmd := s.endSession("abandoned"); cmd == nil {
		t.Fatal("expected a summary handoff command")
	}

	snap, err := st.SnapshotRepo().Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap == nil {
		t.Fatal("abandoning must leave a snapshot behind")
	}

	restored, err := study.Restore(snap.Data.Session)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.ID() != s.sess.ID() {
		t.Errorf("restored id = %q, want %q", restored.ID(), s.sess.ID())
	}
	// The snapshot is taken before the session completes, or a resumed
	// session would be finished on arrival.
	if restored.IsComplete() {
		t.Error("restored session is complete")
	}
	if h := restored.History(); len(h) != 1 || h[0].Content != "What is a slice?" {
		t.Errorf("restored history wrong: %+v", h)
	}
}

func TestCompletedSessionLeavesNoSnapshot(t *testing.T) {
	s, st := testScreen(t)
	s.sess = study.NewSession(study.ModeLearning, "go/slices.md", "slices", []study.Item{
		{Title: "Slices"},
	})
	s.sess.MarkCompleted(0)

	if cmd := s.endSession("completed"); cmd == nil {
		t.Fatal("expected a summary handoff command")
	}

	snap, err := st.SnapshotRepo().Latest(context.Background())
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if snap != nil {
		t.Fatal("a finished session must not be resumable")
	}
}

func TestResumedSessionSkipsExtraction(t *testing.T) {
	s, _ := testScreen(t)
	sess := study.NewSession(study.ModeLearning, "go/slices.md", "slices", []study.Item{
		{Title: "Slices"}, {Title: "Maps"},
	})
	sess.Append(study.NewMessage(study.RoleAssistant, "Where were we?"))

	resumed := New(s.service, s.eventRepo, s.snapshots, s.note, s.loc, s.folders, 4, sess)
	if resumed.Init() == nil {
		t.Fatal("expected init commands")
	}
	if resumed.sess != sess {
		t.Fatal("resumed screen must keep the restored session")
	}
	if got := resumed.sess.History(); len(got) != 1 {
		t.Fatalf("history rewritten on resume: %+v", got)
	}
}
