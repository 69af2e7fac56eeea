// Package home is the entry screen: the note library listing plus the mode
// picker that launches a study session.
package home

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/audio"
	"github.com/dlemos/caderno/internal/config"
	"github.com/dlemos/caderno/internal/interview"
	"github.com/dlemos/caderno/internal/learning"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/pair"
	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/screens/history"
	interviewscreen "github.com/dlemos/caderno/internal/screens/interview"
	learningscreen "github.com/dlemos/caderno/internal/screens/learning"
	pairscreen "github.com/dlemos/caderno/internal/screens/pair"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/study"
	"github.com/dlemos/caderno/internal/ui/components"
	"github.com/dlemos/caderno/internal/ui/layout"
	"github.com/dlemos/caderno/internal/ui/theme"
)

// Deps carries everything the home screen needs to launch sessions.
type Deps struct {
	Config      *config.Config
	Library     *notes.Library
	Provider    llm.Provider
	Transcriber audio.Transcriber
	EventRepo   store.EventRepo
	Snapshots   store.SnapshotRepo

	// Watcher is optional; when present the listing refreshes on library
	// changes.
	Watcher *notes.Watcher
}

type notesLoadedMsg struct {
	Notes []notes.Note
	Err   error
}

type notesChangedMsg struct{}

// HomeScreen lists the library and dispatches into the study modes.
type HomeScreen struct {
	deps Deps

	notes    []notes.Note
	selected int
	loadErr  error
	loaded   bool

	picker     components.Picker
	pickerOpen bool
}

var _ screen.Screen = (*HomeScreen)(nil)
var _ screen.KeyHintProvider = (*HomeScreen)(nil)
var _ screen.StatusProvider = (*HomeScreen)(nil)
var _ screen.EscHandler = (*HomeScreen)(nil)

// New creates the home screen.
func New(deps Deps) *HomeScreen {
	return &HomeScreen{deps: deps}
}

func (h *HomeScreen) Init() tea.Cmd {
	cmds := []tea.Cmd{h.loadNotes()}
	if h.deps.Watcher != nil {
		cmds = append(cmds, h.waitChange())
	}
	return tea.Batch(cmds...)
}

func (h *HomeScreen) Title() string {
	return "Notes"
}

func (h *HomeScreen) Status() string {
	if !h.loaded || h.loadErr != nil {
		return ""
	}
	return fmt.Sprintf("%d notes", len(h.notes))
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.pickerOpen {
		return []layout.KeyHint{
			{Key: "↑/↓", Description: "Mode"},
			{Key: "Enter", Description: "Start"},
			{Key: "Esc", Description: "Back"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑/↓", Description: "Navigate"},
		{Key: "Enter", Description: "Study"},
		{Key: "H", Description: "History"},
		{Key: "Q", Description: "Quit"},
	}
}

// HandleEsc closes the mode picker; at the top level Esc falls through to
// the router (which quits at stack bottom).
func (h *HomeScreen) HandleEsc() (bool, tea.Cmd) {
	if h.pickerOpen {
		h.pickerOpen = false
		return true, nil
	}
	return false, nil
}

func (h *HomeScreen) loadNotes() tea.Cmd {
	lib := h.deps.Library
	return func() tea.Msg {
		list, err := lib.List()
		return notesLoadedMsg{Notes: list, Err: err}
	}
}

func (h *HomeScreen) waitChange() tea.Cmd {
	ch := h.deps.Watcher.Changed()
	return func() tea.Msg {
		<-ch
		return notesChangedMsg{}
	}
}

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case notesLoadedMsg:
		h.loaded = true
		h.loadErr = msg.Err
		if msg.Err == nil {
			h.notes = msg.Notes
			if h.selected >= len(h.notes) {
				h.selected = max(len(h.notes)-1, 0)
			}
		}
		return h, nil

	case notesChangedMsg:
		return h, tea.Batch(h.loadNotes(), h.waitChange())

	case tea.KeyMsg:
		return h.handleKey(msg)
	}
	return h, nil
}

func (h *HomeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if h.pickerOpen {
		if msg.String() == "esc" {
			h.pickerOpen = false
			return h, nil
		}
		var cmd tea.Cmd
		h.picker, cmd = h.picker.Update(msg)
		if h.picker.Submitted {
			h.pickerOpen = false
			return h, h.startSession(h.picker.Chosen)
		}
		return h, cmd
	}

	switch msg.String() {
	case "up", "k":
		if h.selected > 0 {
			h.selected--
		}
	case "down", "j":
		if h.selected < len(h.notes)-1 {
			h.selected++
		}
	case "enter":
		if len(h.notes) == 0 {
			return h, nil
		}
		h.picker = components.NewPicker(
			"Study "+h.notes[h.selected].Title+" as...",
			[]components.PickerOption{
				{Label: "Learning", Detail: "Socratic tutoring through the note's concepts"},
				{Label: "Interview", Detail: "Mock interview with graded answers"},
				{Label: "Pair Programming", Detail: "A coding challenge with an AI navigator"},
			})
		h.pickerOpen = true
	case "h", "H":
		return h, func() tea.Msg {
			return router.PushScreenMsg{Screen: history.New(h.deps.EventRepo)}
		}
	case "q", "Q":
		return h, tea.Quit
	}
	return h, nil
}

// startSession builds the chosen mode's service and pushes its screen.
func (h *HomeScreen) startSession(mode int) tea.Cmd {
	var m study.Mode
	switch mode {
	case 0:
		m = study.ModeLearning
	case 1:
		m = study.ModeInterview
	case 2:
		m = study.ModePair
	default:
		return nil
	}

	s := ModeScreen(h.deps, h.notes[h.selected], m, nil)
	return func() tea.Msg {
		return router.PushScreenMsg{Screen: s}
	}
}

// ModeScreen builds the screen for one study mode over one note. Shared
// with the `study` subcommand, which skips the picker and may hand in a
// restored session to resume.
func ModeScreen(deps Deps, note notes.Note, mode study.Mode, resume *study.Session) screen.Screen {
	loc := notes.LocationOf(deps.Library, note)
	folders := notes.FolderNames{
		Interviews: deps.Config.Folders.Interviews,
		Exercises:  deps.Config.Folders.Exercises,
		Challenges: deps.Config.Folders.Challenges,
	}

	switch mode {
	case study.ModeInterview:
		return interviewscreen.New(
			interview.NewService(deps.Provider, interview.DefaultConfig()),
			deps.Transcriber,
			deps.EventRepo, deps.Snapshots, note, loc, folders, resume)
	case study.ModePair:
		return pairscreen.New(
			pair.NewService(deps.Provider, pair.DefaultConfig()),
			deps.EventRepo, deps.Snapshots, note, loc, folders, resume)
	default:
		cfg := learning.DefaultConfig()
		cfg.PrefetchAhead = deps.Config.Session.PrefetchAhead
		return learningscreen.New(
			learning.NewService(deps.Provider, cfg),
			deps.EventRepo, deps.Snapshots, note, loc, folders,
			deps.Config.Session.MaxSupportLevel, resume)
	}
}

func (h *HomeScreen) View(width, height int) string {
	if h.loadErr != nil {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.Error).
			Render("\n\n  Could not read the notes library:\n  " + h.loadErr.Error())
	}
	if !h.loaded {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  Reading your notes...")
	}
	if h.pickerOpen {
		return "\n\n" + indent(h.picker.View(), 4)
	}
	if len(h.notes) == 0 {
		return lipgloss.NewStyle().
			Width(width).Align(lipgloss.Center).Foreground(theme.TextDim).
			Render("\n\n  No notes found under " + h.deps.Library.Root() +
				"\n  Drop markdown or PDF files there and they will appear here.")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).
		Render("  " + h.deps.Library.Root()))
	b.WriteString("\n\n")

	visible := height - 5
	start := 0
	if visible > 0 && h.selected >= visible {
		start = h.selected - visible + 1
	}

	for i := start; i < len(h.notes); i++ {
		if visible > 0 && i-start >= visible {
			break
		}
		b.WriteString(h.renderNoteLine(i, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (h *HomeScreen) renderNoteLine(i, width int) string {
	n := h.notes[i]

	var label string
	if dir := filepath.Dir(n.RelPath); dir != "." {
		label = lipgloss.NewStyle().Foreground(theme.TextDim).Render(dir+"/") + n.Title
	} else {
		label = n.Title
	}

	detail := formatSize(n.Size)
	if n.IsPDF() {
		detail = "pdf · " + detail
	}

	line := fmt.Sprintf("%s  %s", label, lipgloss.NewStyle().Foreground(theme.TextDim).Render(detail))
	if i == h.selected {
		return lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("  ▸ ") +
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(line)
	}
	return "    " + lipgloss.NewStyle().Foreground(theme.Text).Render(line)
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
