package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/impaktor/internal/auth"
	"github.com/impaktor/pkg/impaktor"
	"github.com/impaktor/pkg/outcome"
)

// LoginOutcome is what a login attempt resolves to.
type LoginOutcome = outcome.Outcome[auth.Response, impaktor.APIError]

// LoginFunc performs one login attempt.
type LoginFunc func(ctx context.Context, creds auth.Credentials) LoginOutcome

// Stage is where the login screen is.
type Stage int

const (
	StageInput Stage = iota
	StageSubmitting
	StageDone
)

const (
	fieldIdentifier = iota
	fieldPassword
	fieldCount
)

// loginResultMsg carries the resolved outcome back to the model.
type loginResultMsg struct {
	outcome LoginOutcome
}

// LoginModel is the interactive login screen.
type LoginModel struct {
	ctx        context.Context
	login      LoginFunc
	logger     *zap.Logger
	address    string
	inputs     []textinput.Model
	focusIndex int
	spinner    spinner.Model
	stage      Stage
	validation string
	result     LoginOutcome
	attempts   int
	width      int
}

// NewLoginModel creates the login screen for client. identifier pre-fills
// the first field.
func NewLoginModel(ctx context.Context, client *impaktor.Client, identifier string, logger *zap.Logger) LoginModel {
	login := func(ctx context.Context, creds auth.Credentials) LoginOutcome {
		return auth.Login(ctx, client, creds)
	}
	m := newLoginModel(ctx, login, identifier, logger)
	if client != nil {
		m.address = client.Config().BaseAddress
	}
	return m
}

func newLoginModel(ctx context.Context, login LoginFunc, identifier string, logger *zap.Logger) LoginModel {
	if logger == nil {
		logger = zap.NewNop()
	}

	m := LoginModel{
		ctx:     ctx,
		login:   login,
		logger:  logger,
		spinner: newSpinner(),
		inputs:  make([]textinput.Model, fieldCount),
	}

	m.inputs[fieldIdentifier] = textinput.New()
	m.inputs[fieldIdentifier].Placeholder = "you@example.com"
	m.inputs[fieldIdentifier].CharLimit = 256
	m.inputs[fieldIdentifier].Width = 40
	m.inputs[fieldIdentifier].SetValue(identifier)

	m.inputs[fieldPassword] = textinput.New()
	m.inputs[fieldPassword].Placeholder = "password"
	m.inputs[fieldPassword].CharLimit = 256
	m.inputs[fieldPassword].Width = 40
	m.inputs[fieldPassword].EchoMode = textinput.EchoPassword
	m.inputs[fieldPassword].EchoCharacter = '•'

	if identifier != "" {
		m.focusIndex = fieldPassword
	}
	m.inputs[m.focusIndex].Focus()

	return m
}

// Init initializes the model
func (m LoginModel) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m LoginModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			cmd := m.handleEnter()
			return m, cmd

		case "tab", "down":
			if m.stage == StageInput {
				m.moveFocus(1)
			}
			return m, nil

		case "shift+tab", "up":
			if m.stage == StageInput {
				m.moveFocus(-1)
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case loginResultMsg:
		m.stage = StageDone
		m.result = msg.outcome
		if m.result.IsSuccessful() {
			m.logger.Info("login succeeded", zap.Int("attempt", m.attempts))
		} else {
			m.logger.Warn("login failed", zap.Int("attempt", m.attempts), zap.String("reason", m.result.Reason()))
		}
		return m, nil

	case spinner.TickMsg:
		if m.stage != StageSubmitting {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	if m.stage != StageInput {
		return m, nil
	}
	return m, m.updateInputs(msg)
}

func (m *LoginModel) handleEnter() tea.Cmd {
	switch m.stage {
	case StageInput:
		if m.focusIndex < fieldCount-1 {
			m.moveFocus(1)
			return nil
		}
		return m.submit()

	case StageDone:
		if m.result.IsSuccessful() {
			return tea.Quit
		}
		// Try again with the identifier kept.
		m.stage = StageInput
		m.inputs[fieldPassword].Reset()
		m.setFocus(fieldPassword)
		return textinput.Blink
	}
	return nil
}

func (m *LoginModel) submit() tea.Cmd {
	creds := auth.Credentials{
		Identifier: strings.TrimSpace(m.inputs[fieldIdentifier].Value()),
		Password:   m.inputs[fieldPassword].Value(),
	}
	switch {
	case creds.Identifier == "":
		m.validation = "identifier is required"
		m.setFocus(fieldIdentifier)
		return nil
	case creds.Password == "":
		m.validation = "password is required"
		m.setFocus(fieldPassword)
		return nil
	}

	m.validation = ""
	m.stage = StageSubmitting
	m.attempts++
	m.logger.Debug("login submitted", zap.String("identifier", creds.Identifier))

	ctx, login := m.ctx, m.login
	call := func() tea.Msg {
		return loginResultMsg{outcome: login(ctx, creds)}
	}
	return tea.Batch(m.spinner.Tick, call)
}

func (m *LoginModel) moveFocus(delta int) {
	m.setFocus((m.focusIndex + delta + fieldCount) % fieldCount)
}

func (m *LoginModel) setFocus(index int) {
	m.inputs[m.focusIndex].Blur()
	m.focusIndex = index
	m.inputs[m.focusIndex].Focus()
}

func (m *LoginModel) updateInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd

	for i := range m.inputs {
		var cmd tea.Cmd
		m.inputs[i], cmd = m.inputs[i].Update(msg)
		cmds = append(cmds, cmd)
	}

	return tea.Batch(cmds...)
}

// Stage reports where the screen is.
func (m LoginModel) Stage() Stage {
	return m.stage
}

// Result returns the last outcome and whether an attempt has resolved.
func (m LoginModel) Result() (LoginOutcome, bool) {
	return m.result, m.stage == StageDone
}

// View renders the screen
func (m LoginModel) View() string {
	var b strings.Builder

	b.WriteString(Logo())
	b.WriteString("\n")
	b.WriteString(Tagline())
	b.WriteString("\n\n")

	title := "Sign in"
	if m.address != "" {
		title += " to " + m.address
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n\n")

	b.WriteString(lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("Identifier"),
		m.renderInput(fieldIdentifier),
		LabelStyle.Render("Password"),
		m.renderInput(fieldPassword),
	))
	b.WriteString("\n\n")

	switch m.stage {
	case StageInput:
		if m.validation != "" {
			b.WriteString(ErrorStyle.Render(CrossMark+" "+m.validation) + "\n\n")
		}
		b.WriteString(HelpStyle.Render("tab: next field • enter: sign in • esc: quit"))

	case StageSubmitting:
		b.WriteString(m.spinner.View() + " " + DimStyle.Render("Signing in..."))

	case StageDone:
		b.WriteString(m.renderResult())
		b.WriteString("\n\n")
		if m.result.IsSuccessful() {
			b.WriteString(HelpStyle.Render("enter: continue"))
		} else {
			b.WriteString(HelpStyle.Render("enter: try again • esc: quit"))
		}
	}

	b.WriteString("\n")
	return b.String()
}

func (m LoginModel) renderResult() string {
	switch {
	case m.result.IsSuccessful():
		resp := m.result.Unwrap()
		msg := resp.Message
		if msg == "" {
			msg = "signed in"
		}
		return SuccessStyle.Render(fmt.Sprintf("%s %s", CheckMark, msg))
	case m.result.IsFailure():
		return ErrorStyle.Render(CrossMark + " " + m.result.Reason())
	default:
		return WarningStyle.Render(WarningSign + " " + m.result.Reason())
	}
}

// renderInput renders an input field with focus state.
func (m LoginModel) renderInput(index int) string {
	if index == m.focusIndex && m.stage == StageInput {
		return ActiveBorderStyle.Render(m.inputs[index].View())
	}
	return BorderStyle.Render(m.inputs[index].View())
}
