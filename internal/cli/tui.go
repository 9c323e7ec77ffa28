package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/badgeforge/pkg/spec"
	"github.com/matzehuels/badgeforge/pkg/store"
)

var (
	pickerTitle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	pickerHelp   = lipgloss.NewStyle().Foreground(colorDim)
	pickerHeader = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	pickerBorder = lipgloss.NewStyle().Foreground(colorDim)
)

// TemplateListModel is the bubbletea model behind "template pick". Selected
// is set when the user confirms a row.
type TemplateListModel struct {
	Templates []store.Template
	Cursor    int
	Selected  *store.Template
	Height    int // visible rows
	Offset    int // first visible row

	previews []string
}

func NewTemplateListModel(templates []store.Template) TemplateListModel {
	previews := make([]string, len(templates))
	for i, t := range templates {
		previews[i] = previewTemplate(t)
	}
	return TemplateListModel{Templates: templates, Height: 15, previews: previews}
}

// previewTemplate summarizes a template's document as "W×H · N layers".
func previewTemplate(t store.Template) string {
	doc, err := spec.Decode(t.Document)
	if err != nil {
		return "invalid"
	}
	return fmt.Sprintf("%d×%d · %d layers", doc.Canvas.Width, doc.Canvas.Height, len(doc.Layers))
}

func (m TemplateListModel) Init() tea.Cmd { return nil }

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		m.moveTo(m.Cursor)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			if len(m.Templates) > 0 {
				sel := m.Templates[m.Cursor]
				m.Selected = &sel
				return m, tea.Quit
			}
		case "up", "k":
			m.moveTo(m.Cursor - 1)
		case "down", "j":
			m.moveTo(m.Cursor + 1)
		case "pgup":
			m.moveTo(m.Cursor - m.Height)
		case "pgdown":
			m.moveTo(m.Cursor + m.Height)
		case "home", "g":
			m.moveTo(0)
		case "end", "G":
			m.moveTo(len(m.Templates) - 1)
		}
	}
	return m, nil
}

// moveTo clamps the cursor to the list and scrolls it into view.
func (m *TemplateListModel) moveTo(i int) {
	m.Cursor = max(min(i, len(m.Templates)-1), 0)
	switch {
	case m.Cursor < m.Offset:
		m.Offset = m.Cursor
	case m.Cursor >= m.Offset+m.Height:
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m TemplateListModel) View() string {
	end := min(m.Offset+m.Height, len(m.Templates))
	now := time.Now()

	var rows [][]string
	for i := m.Offset; i < end; i++ {
		t := m.Templates[i]
		marker, source, updated := "  ", "saved", "—"
		if i == m.Cursor {
			marker = "▸ "
		}
		if t.Builtin {
			source = "builtin"
		}
		if !t.UpdatedAt.IsZero() {
			updated = formatRelativeTime(t.UpdatedAt, now)
		}
		desc := t.Description
		if desc == "" {
			desc = "—"
		}
		rows = append(rows, []string{marker, t.Name, m.previews[i], source, updated, desc})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(pickerBorder).
		Headers("", "Template", "Canvas", "Source", "Updated", "Description").
		Rows(rows...).
		StyleFunc(m.cellStyle)

	var b strings.Builder
	b.WriteString(pickerTitle.Render("Select Template") + "\n")
	b.WriteString(pickerHelp.Render("↑/↓ move  pgup/pgdn page  ⏎ render  q quit") + "\n\n")
	b.WriteString(tbl.Render() + "\n\n")
	b.WriteString(pickerHelp.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Templates))))
	return b.String()
}

// cellStyle colors the cursor row, and saved templates' names. Row -1 is
// the header.
func (m TemplateListModel) cellStyle(row, col int) lipgloss.Style {
	if row == -1 {
		return pickerHeader
	}
	i := m.Offset + row
	s := lipgloss.NewStyle()
	if i >= len(m.Templates) {
		return s
	}
	named := col < 2
	if !named {
		s = s.Foreground(colorDim)
	}
	switch {
	case i == m.Cursor && named:
		return s.Foreground(colorGreen).Bold(true)
	case i == m.Cursor:
		return s.Foreground(colorGray).Bold(true)
	case named && !m.Templates[i].Builtin:
		return s.Foreground(colorCyan)
	}
	return s
}

// formatRelativeTime renders t relative to now, switching to a date after
// a week.
func formatRelativeTime(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return t.Format("Jan 2, 2006")
}
