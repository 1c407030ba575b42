// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package inspect

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/gridmemo/internal/backend"
	"github.com/staranto/gridmemo/internal/memo"
)

func testPlan() *memo.Plan {
	return &memo.Plan{
		Location: backend.MustParseLocation("file:///tmp/cache"),
		Steps: []memo.Step{
			{Key: "n1", Action: memo.Keep, Fingerprint: "aaaaaaaaaaaaaaaaaaaa"},
			{Key: "n2", Action: memo.Store, Fingerprint: "bbbbbbbbbbbbbbbbbbbb"},
			{Key: "n3", Action: memo.Duplicate, Fingerprint: "bbbbbbbbbbbbbbbbbbbb", Of: "n2"},
		},
	}
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestView(t *testing.T) {
	m := New(testPlan())
	v := m.View()
	assert.Contains(t, v, "n1")
	assert.Contains(t, v, "duplicate")
	assert.Contains(t, v, "load 0  store 1  duplicate 1  keep 1")
	assert.Contains(t, v, "file:///tmp/cache")
}

func TestUpdate_Navigation(t *testing.T) {
	var model tea.Model = New(testPlan())

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyDown})
	step, ok := model.(Model).Selected()
	require.True(t, ok)
	assert.Equal(t, "n2", string(step.Key))

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Contains(t, model.View(), "bbbbbbbbbbbbbbbbbbbb")

	model, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotContains(t, model.View(), "bbbbbbbbbbbbbbbbbbbb")
}

func TestUpdate_Quit(t *testing.T) {
	var model tea.Model = New(testPlan())

	model, cmd := model.Update(key("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, model.View())
}
