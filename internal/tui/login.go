package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/session"
)

type loginField int

const (
	loginFieldEmail loginField = iota
	loginFieldPassword
	numLoginFields
)

// gotoSignupMsg switches the app to the signup view.
type gotoSignupMsg struct{}

// loginDoneMsg carries the result of a sign-in attempt.
type loginDoneMsg struct{ err error }

type loginModel struct {
	manager *session.Manager
	fields  [numLoginFields]string
	focus   loginField
	busy    bool
	status  string
	failed  error
}

func newLoginModel(m *session.Manager) loginModel {
	return loginModel{manager: m}
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
			m.fields[loginFieldPassword] = ""
			m.focus = loginFieldPassword
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.status = ""
		m.failed = nil

		switch msg.String() {
		case "tab", "down":
			m.focus = (m.focus + 1) % numLoginFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numLoginFields) % numLoginFields
		case "enter":
			if m.focus == loginFieldEmail {
				m.focus = loginFieldPassword
				return m, nil
			}
			return m.submit()
		case "ctrl+g":
			return m.google()
		case "ctrl+p":
			return m, func() tea.Msg { return openPhoneMsg{} }
		case "ctrl+n":
			return m, func() tea.Msg { return gotoSignupMsg{} }
		default:
			f := &m.fields[m.focus]
			*f = editRune(*f, msg.String())
		}
	}
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[loginFieldEmail])
	password := m.fields[loginFieldPassword]
	if email == "" || password == "" {
		m.focus = loginFieldEmail
		return m, nil
	}

	m.busy = true
	mgr := m.manager
	return m, func() tea.Msg {
		return loginDoneMsg{err: mgr.LoginPassword(context.Background(), email, password)}
	}
}

func (m loginModel) google() (loginModel, tea.Cmd) {
	m.busy = true
	mgr := m.manager
	return m, func() tea.Msg {
		return loginDoneMsg{err: mgr.LoginGoogle(context.Background())}
	}
}

func (m loginModel) View(t Theme, lang Lang) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n %s\n\n", t.Selected.Render(tr(lang, "login.title")))

	labels := [numLoginFields]string{tr(lang, "login.email"), tr(lang, "login.password")}
	for i := loginField(0); i < numLoginFields; i++ {
		cursor := " "
		style := t.Label
		if i == m.focus {
			cursor = ">"
			style = t.Selected
		}
		value := m.fields[i]
		if i == loginFieldPassword {
			value = strings.Repeat("•", len([]rune(value)))
		}
		if i == m.focus && !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(labels[i]), t.Value.Render(value))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "   %s\n", t.Dim.Render("ctrl+g  "+tr(lang, "login.google")))
	fmt.Fprintf(&b, "   %s\n", t.Dim.Render("ctrl+p  "+tr(lang, "login.phone")))
	fmt.Fprintf(&b, "   %s\n", t.Dim.Render("ctrl+n  "+tr(lang, "login.signup")))

	b.WriteString("\n")
	switch {
	case m.busy:
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "login.busy")))
	case m.failed != nil:
		fmt.Fprintf(&b, " %s\n", t.Error.Render(errText(lang, m.failed)))
	case m.status != "":
		fmt.Fprintf(&b, " %s\n", t.Success.Render(m.status))
	}

	return b.String()
}
