package cli

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/pacstage/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProviderListModel - Interactive provider selection
// =============================================================================

// ProviderListModel is the bubbletea model for picking one of several
// packages that satisfy a dependency.
type ProviderListModel struct {
	Dependency string
	Candidates []string
	Cursor     int
	Selected   string
	Cancelled  bool
	Height     int
	Offset     int
}

// NewProviderListModel creates a new provider list model.
func NewProviderListModel(dep string, candidates []string) ProviderListModel {
	return ProviderListModel{
		Dependency: dep,
		Candidates: candidates,
		Height:     15,
	}
}

func (m ProviderListModel) Init() tea.Cmd {
	return nil
}

func (m ProviderListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.Cancelled = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Candidates)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = m.Candidates[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProviderListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select a provider for " + m.Dependency))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Candidates))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + m.Candidates[i]))
		} else {
			b.WriteString(listNormalStyle.Render("  " + m.Candidates[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Candidates))))

	return b.String()
}

// chooseProvider runs the picker on the terminal. It satisfies
// pipeline.Options.Choose.
func chooseProvider(dep string, candidates []string) (string, error) {
	p := tea.NewProgram(NewProviderListModel(dep, candidates), tea.WithOutput(os.Stderr))
	final, err := p.Run()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "provider picker")
	}

	m := final.(ProviderListModel)
	if m.Cancelled || m.Selected == "" {
		return "", errors.New(errors.ErrCodeInvalidInput, "no provider selected for %q", dep)
	}
	return m.Selected, nil
}
