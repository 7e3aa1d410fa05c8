package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()

	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

var (
	enter = tea.KeyMsg{Type: tea.KeyEnter}
	esc   = tea.KeyMsg{Type: tea.KeyEsc}
	tab   = tea.KeyMsg{Type: tea.KeyTab}
)

// collect runs cmd and returns the first Result it produces.
func collect(t *testing.T, cmd tea.Cmd) Result {
	t.Helper()
	require.NotNil(t, cmd)

	switch msg := cmd().(type) {
	case Result:
		return msg
	case tea.BatchMsg:
		for _, c := range msg {
			if c == nil {
				continue
			}
			if r, ok := c().(Result); ok {
				return r
			}
		}
	}

	t.Fatal("command produced no result")
	return Result{}
}

func TestServeSelection(t *testing.T) {
	m := NewModel(nil, "/etc/amc-site/settings.yml", "localhost:8080")

	m, _ = press(t, m, enter)
	require.Equal(t, ViewInput, m.State())
	require.Len(t, m.inputs, 2)

	m, cmd := press(t, m, enter)
	require.NotNil(t, cmd)
	req, ok := m.Selected()
	require.True(t, ok)
	require.Equal(t, Request{Action: ActionServe, Config: "/etc/amc-site/settings.yml", Listen: "localhost:8080"}, req)
}

func TestEmptyInputIsNotSubmitted(t *testing.T) {
	m := NewModel(nil, "", "localhost:8080")

	m, _ = press(t, m, enter)
	m, cmd := press(t, m, enter)
	require.Nil(t, cmd)
	require.Equal(t, ViewInput, m.State())

	_, ok := m.Selected()
	require.False(t, ok)

	m, _ = press(t, m, tab)
	require.Equal(t, 1, m.focusIndex)
	m, _ = press(t, m, esc)
	require.Equal(t, ViewMain, m.State())
}

func TestRunMigration(t *testing.T) {
	var got Request
	runner := func(req Request) Result {
		got = req
		return Result{Success: true, Message: "done", Details: "moved: portfolioCategories"}
	}

	m := NewModel(runner, "settings.yml", "")
	m = m.openAction(ActionMigrateDry)
	require.Len(t, m.inputs, 1)

	m, cmd := press(t, m, enter)
	require.Equal(t, ViewRunning, m.State())

	res := collect(t, cmd)
	require.Equal(t, Request{Action: ActionMigrateDry, Config: "settings.yml"}, got)

	next, _ := m.Update(res)
	m = next.(Model)
	require.Equal(t, ViewResult, m.State())
	require.Contains(t, m.View(), "done")

	m, _ = press(t, m, enter)
	require.Equal(t, ViewMain, m.State())
}

func TestQuit(t *testing.T) {
	m := NewModel(nil, "", "")
	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	require.True(t, m.quitting)
	require.Contains(t, m.View(), "bye")
}
