// Package tui is the operator console of amc-site.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ViewState is the screen currently shown.
type ViewState int

const (
	ViewMain ViewState = iota
	ViewInput
	ViewRunning
	ViewResult
)

// Action is a task the console can run.
type Action string

const (
	// ActionServe leaves the console and starts the API server.
	ActionServe Action = "serve"
	// ActionCheck loads and validates a settings file.
	ActionCheck Action = "check"
	// ActionMigrateDry reports what the portfolio migration would change.
	ActionMigrateDry Action = "migrate-dry"
	// ActionMigrate applies the portfolio migration.
	ActionMigrate Action = "migrate"
)

// Request is what the operator filled in for an action.
type Request struct {
	Action Action
	Config string
	Listen string
}

// Result is shown after a non-serve action finishes.
type Result struct {
	Success bool
	Message string
	Details string
}

// Runner executes check and migrate requests. It is called off the UI goroutine.
type Runner func(Request) Result

type menuItem struct {
	title       string
	description string
	action      Action
}

func (m menuItem) Title() string       { return m.title }
func (m menuItem) Description() string { return m.description }
func (m menuItem) FilterValue() string { return m.title }

type keyMap struct {
	Enter key.Binding
	Back  key.Binding
	Tab   key.Binding
	Quit  key.Binding
}

var keys = keyMap{
	Enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
	Back:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Tab:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
	Quit:  key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// Model is the bubbletea model of the console.
type Model struct {
	state ViewState

	menuList list.Model
	spinner  spinner.Model

	action     Action
	inputs     []textinput.Model
	focusIndex int

	result *Result
	runner Runner

	defaultConfig string
	defaultListen string

	// selected is set when the operator chose to start the server
	selected *Request
	quitting bool
}

// NewModel creates the console, defaultConfig and defaultListen prefill the inputs.
func NewModel(runner Runner, defaultConfig, defaultListen string) Model {
	items := []list.Item{
		menuItem{"Start API server", "Serve the site API, admin API and frontend build", ActionServe},
		menuItem{"Check configuration", "Load a settings file and validate every key", ActionCheck},
		menuItem{"Portfolio migration (dry run)", "Report singletons and label fields that would move", ActionMigrateDry},
		menuItem{"Portfolio migration", "Move configuration singletons and fold labels into details", ActionMigrate},
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(primaryColor).
		BorderForeground(primaryColor)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(secondaryColor)

	menuList := list.New(items, delegate, 0, 0)
	menuList.Title = "AMC site console"
	menuList.SetShowStatusBar(false)
	menuList.SetFilteringEnabled(false)
	menuList.Styles.Title = headerStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = progressStyle

	return Model{
		state:         ViewMain,
		menuList:      menuList,
		spinner:       sp,
		runner:        runner,
		defaultConfig: defaultConfig,
		defaultListen: defaultListen,
	}
}

// Selected returns the serve request when the console was left to start the server.
func (m Model) Selected() (Request, bool) {
	if m.selected == nil {
		return Request{}, false
	}
	return *m.selected, true
}

// State returns the current screen.
func (m Model) State() ViewState {
	return m.state
}

func newInput(placeholder, value string, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.SetValue(value)
	in.CharLimit = 256
	in.Width = width
	in.Prompt = "> "
	in.PromptStyle = inputLabelStyle
	return in
}

func (m Model) openAction(action Action) Model {
	m.action = action
	m.focusIndex = 0
	m.inputs = []textinput.Model{newInput("/etc/amc-site/settings.yml", m.defaultConfig, 50)}
	if action == ActionServe {
		m.inputs = append(m.inputs, newInput("localhost:8080", m.defaultListen, 30))
	}
	m.inputs[0].Focus()
	m.state = ViewInput
	return m
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.menuList.SetSize(msg.Width-4, msg.Height-6)
		return m, nil
	case tea.KeyMsg:
		switch m.state {
		case ViewMain:
			return m.handleMainMenu(msg)
		case ViewInput:
			return m.handleInputView(msg)
		case ViewResult:
			return m.handleResultView(msg)
		case ViewRunning:
			return m, nil
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case Result:
		m.result = &msg
		m.state = ViewResult
		return m, nil
	}

	if m.state == ViewMain {
		var cmd tea.Cmd
		m.menuList, cmd = m.menuList.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleMainMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, keys.Enter):
		if item, ok := m.menuList.SelectedItem().(menuItem); ok {
			return m.openAction(item.action), nil
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.menuList, cmd = m.menuList.Update(msg)
	return m, cmd
}

func (m Model) handleInputView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back):
		m.state = ViewMain
		return m, nil
	case key.Matches(msg, keys.Tab):
		m.focusIndex = (m.focusIndex + 1) % len(m.inputs)
		for i := range m.inputs {
			if i == m.focusIndex {
				m.inputs[i].Focus()
			} else {
				m.inputs[i].Blur()
			}
		}
		return m, nil
	case key.Matches(msg, keys.Enter):
		return m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

func (m Model) request() (Request, bool) {
	req := Request{Action: m.action, Config: strings.TrimSpace(m.inputs[0].Value())}
	if req.Config == "" {
		return req, false
	}
	if m.action == ActionServe {
		req.Listen = strings.TrimSpace(m.inputs[1].Value())
		if req.Listen == "" {
			return req, false
		}
	}
	return req, true
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	req, ok := m.request()
	if !ok {
		return m, nil
	}

	if req.Action == ActionServe {
		m.selected = &req
		m.quitting = true
		return m, tea.Quit
	}

	m.state = ViewRunning
	runner := m.runner
	return m, tea.Batch(m.spinner.Tick, func() tea.Msg {
		if runner == nil {
			return Result{Message: "nothing to run"}
		}
		return runner(req)
	})
}

func (m Model) handleResultView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Enter):
		m.state = ViewMain
		m.result = nil
		return m, nil
	case key.Matches(msg, keys.Quit):
		m.quitting = true
		return m, tea.Quit
	}

	return m, nil
}

// View renders the TUI
func (m Model) View() string {
	if m.quitting {
		if m.selected != nil {
			return subtitleStyle.Render(fmt.Sprintf("starting server on %s\n", m.selected.Listen))
		}
		return subtitleStyle.Render("bye\n")
	}

	switch m.state {
	case ViewMain:
		return lipgloss.JoinVertical(lipgloss.Left,
			m.menuList.View(),
			helpStyle.Render("↑/↓ navigate • enter select • q quit"),
		)
	case ViewInput:
		return m.renderInputs()
	case ViewRunning:
		return boxStyle.Render(m.spinner.View() + " running " + string(m.action))
	case ViewResult:
		return m.renderResult()
	default:
		return "unknown state"
	}
}

func (m Model) renderInputs() string {
	var sb strings.Builder
	sb.WriteString(headerStyle.Render(string(m.action)) + "\n\n")

	labels := []string{"Settings file:", "Listen address:"}
	for i, input := range m.inputs {
		sb.WriteString(inputLabelStyle.Render(labels[i]) + "\n")
		sb.WriteString(input.View() + "\n\n")
	}

	sb.WriteString(helpStyle.Render("tab: next field • enter: run • esc: back"))
	return boxStyle.Render(sb.String())
}

func (m Model) renderResult() string {
	if m.result == nil {
		return "no result"
	}

	status := errorStyle.Render("✗ " + m.result.Message)
	if m.result.Success {
		status = successStyle.Render("✓ " + m.result.Message)
	}

	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		status,
		"",
		subtitleStyle.Render(m.result.Details),
		"",
		helpStyle.Render("enter/esc: back to menu • q: quit"),
	))
}
