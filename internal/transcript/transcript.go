// Package transcript renders a finished (or abandoned) study session into
// a markdown artifact and saves it into the note library's artifact
// folders.
package transcript

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/study"
)

// Options carries the per-mode extras the session itself does not hold.
type Options struct {
	// FinalVerdict and FinalSummary come from the end-of-interview
	// evaluation; both empty for other modes.
	FinalVerdict study.Score
	FinalSummary string
}

// ArtifactKind maps a session mode to the artifact folder it saves into.
func ArtifactKind(mode study.Mode) notes.Kind {
	switch mode {
	case study.ModeInterview:
		return notes.KindInterview
	case study.ModePair:
		return notes.KindChallenge
	default:
		return notes.KindExercise
	}
}

// Render produces the markdown transcript for a session.
func Render(s *study.Session, opts Options) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("# %s\n\n", s.NoteTitle()))
	b.WriteString(fmt.Sprintf("- Mode: %s\n", modeLabel(s.Mode())))
	b.WriteString(fmt.Sprintf("- Note: %s\n", s.NotePath()))
	b.WriteString(fmt.Sprintf("- Date: %s\n", s.CreatedAt().Format("2006-01-02 15:04")))
	if s.Mode() == study.ModeInterview && opts.FinalVerdict != "" {
		b.WriteString(fmt.Sprintf("- Verdict: %s\n", verdictLabel(opts.FinalVerdict)))
	}
	b.WriteString("\n")

	if s.Mode() == study.ModeInterview && opts.FinalSummary != "" {
		b.WriteString("## Overall\n\n")
		b.WriteString(opts.FinalSummary)
		b.WriteString("\n\n")
	}

	for i, item := range s.Items() {
		renderItem(&b, s, i, item)
	}

	return b.String()
}

func renderItem(b *strings.Builder, s *study.Session, index int, item study.Item) {
	b.WriteString(fmt.Sprintf("## %d. %s\n\n", index+1, item.Title))

	var meta []string
	if item.Category != "" {
		meta = append(meta, item.Category)
	}
	if item.Difficulty != "" {
		meta = append(meta, item.Difficulty)
	}
	if len(meta) > 0 {
		b.WriteString(fmt.Sprintf("*%s*\n\n", strings.Join(meta, " · ")))
	}

	renderDialog(b, s.Mode(), s.StoredHistory(index, ""))

	for _, sub := range item.SubItems {
		history := s.StoredHistory(index, sub.ID)
		if len(history) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("### %s\n\n", sub.Title))
		renderDialog(b, s.Mode(), history)
	}

	if item.Evaluation != nil {
		renderEvaluation(b, item.Evaluation)
	}
}

func renderDialog(b *strings.Builder, mode study.Mode, history []study.Message) {
	for _, m := range history {
		if m.Type == study.TypeNotice {
			continue
		}
		b.WriteString(fmt.Sprintf("**%s:** %s\n\n", roleLabel(mode, m.Role), m.Content))
		if m.SuggestedCode != "" {
			b.WriteString("```\n")
			b.WriteString(m.SuggestedCode)
			b.WriteString("\n```\n\n")
		}
	}
}

func renderEvaluation(b *strings.Builder, eval *study.Evaluation) {
	b.WriteString(fmt.Sprintf("**Evaluation: %s**\n\n", verdictLabel(eval.Score)))
	for _, d := range eval.Dimensions {
		b.WriteString(fmt.Sprintf("- %s: %d/4\n", d.Name, d.Score))
	}
	if len(eval.Dimensions) > 0 {
		b.WriteString("\n")
	}
	if eval.Feedback != "" {
		b.WriteString(eval.Feedback)
		b.WriteString("\n\n")
	}
	for _, st := range eval.Strengths {
		b.WriteString(fmt.Sprintf("- ✓ %s\n", st))
	}
	for _, im := range eval.Improvements {
		b.WriteString(fmt.Sprintf("- △ %s\n", im))
	}
	if len(eval.Strengths)+len(eval.Improvements) > 0 {
		b.WriteString("\n")
	}
}

// Save renders the session and writes it into the library's artifact
// folder for the session's mode, creating the folder if needed. Existing
// files are never overwritten. The saved path is returned; any failure
// leaves the session untouched.
func Save(s *study.Session, loc notes.Location, folders notes.FolderNames, opts Options) (string, error) {
	path, err := notes.ArtifactPath(loc, ArtifactKind(s.Mode()), folders, time.Now())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create artifact folder: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(Render(s, opts)); err != nil {
		return "", fmt.Errorf("write transcript: %w", err)
	}
	return path, nil
}

func modeLabel(mode study.Mode) string {
	switch mode {
	case study.ModeLearning:
		return "Learning"
	case study.ModeInterview:
		return "Interview"
	case study.ModePair:
		return "Pair Programming"
	default:
		return string(mode)
	}
}

func roleLabel(mode study.Mode, role study.Role) string {
	if role == study.RoleUser {
		switch mode {
		case study.ModeInterview:
			return "Candidate"
		case study.ModePair:
			return "Driver"
		default:
			return "Student"
		}
	}
	switch mode {
	case study.ModeInterview:
		return "Interviewer"
	case study.ModePair:
		return "Navigator"
	default:
		return "Tutor"
	}
}

func verdictLabel(s study.Score) string {
	switch s {
	case study.ScoreStrongHire:
		return "Strong Hire"
	case study.ScoreHire:
		return "Hire"
	case study.ScoreMixed:
		return "Mixed"
	case study.ScoreNoHire:
		return "No Hire"
	default:
		return string(s)
	}
}
