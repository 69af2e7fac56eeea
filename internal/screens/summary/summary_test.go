package summary

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/study"
)

func testSession() *study.Session {
	sess := study.NewSession(study.ModeInterview, "go/basics.md", "basics", []study.Item{
		{Title: "Explain slices", Category: "fundamentals"},
		{Title: "Explain maps"},
	})
	sess.Append(study.NewMessage(study.RoleAssistant, "Tell me about slices."))
	sess.Append(study.NewMessage(study.RoleUser, "A slice is a view over an array."))
	_ = sess.SetEvaluation(0, study.Evaluation{Score: study.ScoreHire, Feedback: "Solid."})
	sess.Complete()
	return sess
}

func testLocation(t *testing.T) (notes.Location, notes.FolderNames) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "go"), 0o755); err != nil {
		t.Fatal(err)
	}
	loc := notes.Location{Root: root, NoteRel: filepath.Join("go", "basics.md")}
	folders := notes.FolderNames{
		Interviews: "entrevistas",
		Exercises:  "exercicios",
		Challenges: "desafios",
	}
	return loc, folders
}

func TestInitSavesTranscript(t *testing.T) {
	loc, folders := testLocation(t)
	s := New(testSession(), loc, folders, Options{
		FinalVerdict: study.ScoreHire,
		FinalSummary: "Good fundamentals.",
	})

	msg := s.Init()()
	saved, ok := msg.(savedMsg)
	if !ok {
		t.Fatalf("expected savedMsg, got %T", msg)
	}
	if saved.Err != nil {
		t.Fatalf("save failed: %v", saved.Err)
	}
	if !strings.Contains(saved.Path, "entrevistas") {
		t.Errorf("transcript path %q not under the interviews folder", saved.Path)
	}
	if _, err := os.Stat(saved.Path); err != nil {
		t.Errorf("transcript file missing: %v", err)
	}
}

func TestViewShowsOutcome(t *testing.T) {
	loc, folders := testLocation(t)
	s := New(testSession(), loc, folders, Options{
		FinalVerdict: study.ScoreHire,
		FinalSummary: "Good fundamentals.",
	})

	updated, _ := s.Update(savedMsg{Path: "/tmp/x.md"})
	view := updated.View(100, 30)

	for _, want := range []string{
		"Session complete",
		"Verdict: Hire",
		"Explain slices",
		"Transcript saved",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestViewShowsSaveError(t *testing.T) {
	loc, folders := testLocation(t)
	s := New(testSession(), loc, folders, Options{})

	updated, _ := s.Update(savedMsg{Err: os.ErrPermission})
	view := updated.View(100, 30)
	if !strings.Contains(view, "Could not save the transcript") {
		t.Error("view missing save error")
	}

	// R retries the save.
	hints := updated.(*SummaryScreen).KeyHints()
	if hints[0].Key != "R" {
		t.Errorf("expected retry hint first, got %+v", hints)
	}
}
