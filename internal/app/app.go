// Package app wires the TUI together: dependency construction, the root
// Bubble Tea model, and the screen router.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/log"

	"github.com/dlemos/caderno/internal/audio"
	"github.com/dlemos/caderno/internal/config"
	"github.com/dlemos/caderno/internal/llm"
	"github.com/dlemos/caderno/internal/notes"
	"github.com/dlemos/caderno/internal/router"
	"github.com/dlemos/caderno/internal/screen"
	"github.com/dlemos/caderno/internal/screens/home"
	"github.com/dlemos/caderno/internal/store"
	"github.com/dlemos/caderno/internal/ui/layout"
)

// Deps are the constructed dependencies the TUI runs on.
type Deps struct {
	Config      *config.Config
	Library     *notes.Library
	Provider    llm.Provider
	Transcriber audio.Transcriber
	EventRepo   store.EventRepo
	Snapshots   store.SnapshotRepo
	Logger      *log.Logger

	// Watcher is optional; nil disables live library refresh.
	Watcher *notes.Watcher

	// StartScreen, when set, is pushed over the home screen on startup
	// (the `study` subcommand jumps straight into a session).
	StartScreen screen.Screen
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	start  screen.Screen
	width  int
	height int
}

func newAppModel(deps Deps) AppModel {
	homeScreen := home.New(home.Deps{
		Config:      deps.Config,
		Library:     deps.Library,
		Provider:    deps.Provider,
		Transcriber: deps.Transcriber,
		EventRepo:   deps.EventRepo,
		Snapshots:   deps.Snapshots,
		Watcher:     deps.Watcher,
	})
	return AppModel{
		router: router.New(homeScreen),
		start:  deps.StartScreen,
	}
}

func (m AppModel) Init() tea.Cmd {
	var cmds []tea.Cmd
	if active := m.router.Active(); active != nil {
		cmds = append(cmds, active.Init())
	}
	if m.start != nil {
		s := m.start
		cmds = append(cmds, func() tea.Msg {
			return router.PushScreenMsg{Screen: s}
		})
	}
	return tea.Batch(cmds...)
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			// The active screen gets first refusal (quit confirmations,
			// overlay dismissal); otherwise esc pops the stack.
			if h, ok := m.router.Active().(screen.EscHandler); ok {
				if handled, cmd := h.HandleEsc(); handled {
					return m, cmd
				}
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title, status := "", ""
	if active != nil {
		title = active.Title()
		if sp, ok := active.(screen.StatusProvider); ok {
			status = sp.Status()
		}
	}

	header := layout.RenderHeader(title, status, m.width)

	footerHints := []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
	}
	if hp, ok := active.(screen.KeyHintProvider); ok {
		footerHints = hp.KeyHints()
	}
	footerHints = append(footerHints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	footer := layout.RenderFooter(footerHints, m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

// Run starts the Bubble Tea program.
func Run(deps Deps) error {
	if deps.Watcher != nil {
		defer deps.Watcher.Close()
	}
	if deps.Logger != nil {
		deps.Logger.Info("starting tui",
			"notes_dir", deps.Config.NotesDir,
			"provider", deps.Config.LLM.Provider)
	}

	p := tea.NewProgram(newAppModel(deps))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
