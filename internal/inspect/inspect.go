// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package inspect is an interactive terminal view of a rewrite plan.
package inspect

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/staranto/gridmemo/internal/memo"
)

const (
	maxHeight  = 20
	tableWidth = 64
)

var (
	mainStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	detailStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00c8f0"))
)

// Model is the bubbletea model of the inspector.
type Model struct {
	plan     *memo.Plan
	table    table.Model
	detail   bool
	quitting bool
}

// New builds the inspector model for p.
func New(p *memo.Plan) Model {
	cols := []table.Column{
		{Title: "Key", Width: 16},
		{Title: "Action", Width: 10},
		{Title: "Fingerprint", Width: 14},
		{Title: "Of", Width: 16},
	}

	rows := make([]table.Row, 0, len(p.Steps))
	for _, s := range p.Steps {
		rows = append(rows, table.Row{string(s.Key), string(s.Action), s.Fingerprint.Short(), string(s.Of)})
	}

	height := 2 + len(rows)
	if height > maxHeight {
		height = maxHeight
	}
	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(tableWidth),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	t.SetStyles(s)

	return Model{plan: p, table: t}
}

// Run shows the inspector on the terminal until the user quits.
func Run(ctx context.Context, p *memo.Plan, in io.Reader, out io.Writer) error {
	prog := tea.NewProgram(New(p), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	_, err := prog.Run()
	return err
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "enter", " ":
			m.detail = !m.detail
			return m, nil
		}
	case tea.WindowSizeMsg:
		m.table.SetWidth(msg.Width)
		if h := msg.Height - 6; h < maxHeight && h > 2 {
			m.table.SetHeight(h)
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// Selected is the step under the cursor.
func (m Model) Selected() (memo.Step, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.plan.Steps) {
		return memo.Step{}, false
	}
	return m.plan.Steps[i], true
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(mainStyle.Render(m.table.View()))
	b.WriteString("\n")

	if step, ok := m.Selected(); ok && m.detail {
		b.WriteString(detailStyle.Render(fmt.Sprintf("%s  %s\n%s", step.Key, step.Action, step.Fingerprint)))
		b.WriteString("\n")
	}

	b.WriteString(footerStyle.Render(fmt.Sprintf(
		"%s  load %d  store %d  duplicate %d  keep %d  (enter: details, q: quit)",
		m.plan.Location,
		m.plan.Count(memo.Load),
		m.plan.Count(memo.Store),
		m.plan.Count(memo.Duplicate),
		m.plan.Count(memo.Keep),
	)))
	b.WriteString("\n")
	return b.String()
}
