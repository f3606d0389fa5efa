package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/treemark/treemark/pkg/transform"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// transformPickerModel is the bubbletea model for interactive transform
// selection. Space toggles, enter confirms, order of toggling is kept so
// the picked chain runs in the order the user built it.
type transformPickerModel struct {
	metas   []transform.Meta
	cursor  int
	checked map[int]bool
	order   []int
	done    bool
}

func newTransformPicker(metas []transform.Meta) transformPickerModel {
	return transformPickerModel{
		metas:   metas,
		checked: make(map[int]bool),
	}
}

func (m transformPickerModel) Init() tea.Cmd {
	return nil
}

func (m transformPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.order = nil
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.metas)-1 {
				m.cursor++
			}
		case " ":
			if m.checked[m.cursor] {
				delete(m.checked, m.cursor)
				for i, idx := range m.order {
					if idx == m.cursor {
						m.order = append(m.order[:i], m.order[i+1:]...)
						break
					}
				}
			} else {
				m.checked[m.cursor] = true
				m.order = append(m.order, m.cursor)
			}
		case "enter":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m transformPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Transforms"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ confirm  q quit"))
	b.WriteString("\n\n")

	for i, meta := range m.metas {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.checked[i] {
			box = "[" + StyleSuccess.Render("x") + "]"
		}

		line := fmt.Sprintf("%s%s %-18s %s", cursor, box, meta.Name, listDimStyle.Render(meta.Description))
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else if m.checked[i] {
			b.WriteString(listNormalStyle.Render(line))
		} else {
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %d selected", len(m.order))))
	return b.String()
}

// picked returns the chosen transform names in toggle order.
func (m transformPickerModel) picked() []string {
	names := make([]string, 0, len(m.order))
	for _, idx := range m.order {
		names = append(names, m.metas[idx].Name)
	}
	return names
}

// pickTransforms runs the interactive picker over the registry contents.
func pickTransforms(reg *transform.Registry) ([]string, error) {
	var metas []transform.Meta
	for _, name := range reg.Names() {
		if m, ok := reg.Get(name); ok {
			metas = append(metas, m)
		}
	}
	if len(metas) == 0 {
		return nil, nil
	}

	final, err := tea.NewProgram(newTransformPicker(metas)).Run()
	if err != nil {
		return nil, fmt.Errorf("transform picker: %w", err)
	}
	model, ok := final.(transformPickerModel)
	if !ok || !model.done {
		return nil, nil
	}
	return model.picked(), nil
}
