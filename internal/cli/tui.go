package cli

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// languageListModel is the bubbletea model for interactive language
// selection. An "all languages" entry is prepended to the registry's
// language names.
type languageListModel struct {
	entries  []string
	cursor   int
	selected string
	chosen   bool
}

const entryAll = "all languages"

func newLanguageListModel() languageListModel {
	return languageListModel{entries: append([]string{entryAll}, supportedLanguages()...)}
}

func (m languageListModel) Init() tea.Cmd {
	return nil
}

func (m languageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = true
			if m.entries[m.cursor] != entryAll {
				m.selected = m.entries[m.cursor]
			}
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m languageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Language"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	for i, entry := range m.entries {
		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "▸ "
			style = listSelectedStyle
		}
		b.WriteString(cursor + style.Render(entry) + "\n")
	}
	return b.String()
}

// pickLanguage runs the interactive language picker. The second return
// value is false if the user quit without choosing.
func pickLanguage() (string, bool, error) {
	final, err := tea.NewProgram(newLanguageListModel()).Run()
	if err != nil {
		return "", false, err
	}
	m, ok := final.(languageListModel)
	if !ok || !m.chosen {
		return "", false, nil
	}
	return m.selected, true, nil
}
