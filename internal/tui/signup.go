package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/session"
)

type signupField int

const (
	signupFieldFirst signupField = iota
	signupFieldLast
	signupFieldEmail
	signupFieldPassword
	numSignupFields
)

// signupDoneMsg carries the result of an account creation attempt.
type signupDoneMsg struct{ err error }

type signupModel struct {
	manager *session.Manager
	fields  [numSignupFields]string
	focus   signupField
	busy    bool
	failed  error
	hint    string
}

func newSignupModel(m *session.Manager) signupModel {
	return signupModel{manager: m}
}

func (m signupModel) Update(msg tea.Msg) (signupModel, tea.Cmd) {
	switch msg := msg.(type) {
	case signupDoneMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
		}
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.failed = nil
		m.hint = ""

		switch msg.String() {
		case "tab", "down", "enter":
			m.focus = (m.focus + 1) % numSignupFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numSignupFields) % numSignupFields
		case "ctrl+s":
			return m.submit()
		default:
			f := &m.fields[m.focus]
			*f = editRune(*f, msg.String())
		}
	}
	return m, nil
}

func (m signupModel) submit() (signupModel, tea.Cmd) {
	first := strings.TrimSpace(m.fields[signupFieldFirst])
	last := strings.TrimSpace(m.fields[signupFieldLast])
	email := strings.TrimSpace(m.fields[signupFieldEmail])
	password := m.fields[signupFieldPassword]

	if first == "" || email == "" || password == "" {
		m.hint = "first name, email and password are required"
		return m, nil
	}

	m.busy = true
	mgr := m.manager
	return m, func() tea.Msg {
		return signupDoneMsg{err: mgr.Register(context.Background(), first, last, email, password)}
	}
}

func (m signupModel) View(t Theme, lang Lang) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n %s\n\n", t.Selected.Render(tr(lang, "signup.title")))

	labels := [numSignupFields]string{
		tr(lang, "signup.first"),
		tr(lang, "signup.last"),
		tr(lang, "login.email"),
		tr(lang, "login.password"),
	}
	for i := signupField(0); i < numSignupFields; i++ {
		cursor := " "
		style := t.Label
		if i == m.focus {
			cursor = ">"
			style = t.Selected
		}
		value := m.fields[i]
		if i == signupFieldPassword {
			value = strings.Repeat("•", len([]rune(value)))
		}
		if i == m.focus && !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(labels[i]), t.Value.Render(value))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "signup.busy")))
	case m.failed != nil:
		fmt.Fprintf(&b, " %s\n", t.Error.Render(errText(lang, m.failed)))
	case m.hint != "":
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(m.hint))
	}

	return b.String()
}
