package components

import (
	"fmt"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/dlemos/caderno/internal/ui/theme"
)

// PickerOption is one choice in a Picker.
type PickerOption struct {
	Label  string
	Detail string
}

// Picker is a vertical single-choice selector (mode picker, sub-item
// picker).
type Picker struct {
	Prompt    string
	Options   []PickerOption
	Selected  int
	Submitted bool
	Chosen    int
}

// NewPicker creates a picker over the given options.
func NewPicker(prompt string, options []PickerOption) Picker {
	return Picker{
		Prompt:  prompt,
		Options: options,
		Chosen:  -1,
	}
}

// Init returns nil.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update handles keyboard navigation and selection.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	if p.Submitted {
		return p, nil
	}

	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}

	switch kmsg.String() {
	case "up", "k":
		if p.Selected > 0 {
			p.Selected--
		}
	case "down", "j":
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case "enter":
		p.Submitted = true
		p.Chosen = p.Selected
	}

	return p, nil
}

// View renders the picker.
func (p Picker) View() string {
	s := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(p.Prompt) + "\n\n"

	for i, opt := range p.Options {
		prefix := "  "
		if i == p.Selected && !p.Submitted {
			prefix = "▸ "
		}

		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.Label)

		if i == p.Selected {
			s += lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render(line)
		} else {
			s += lipgloss.NewStyle().Foreground(theme.Text).Render(line)
		}
		if opt.Detail != "" {
			s += "\n" + lipgloss.NewStyle().Foreground(theme.TextDim).Render("      "+opt.Detail)
		}
		s += "\n"
	}

	return s
}
