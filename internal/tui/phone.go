package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/session"
)

type phoneStep int

const (
	stepPhone phoneStep = iota
	stepCode
)

// codeSentMsg carries the challenge from the code request.
type codeSentMsg struct {
	ch  *auth.Challenge
	err error
}

// phoneVerifiedMsg carries the result of the code verification.
type phoneVerifiedMsg struct{ err error }

// phoneModal is the two-step phone sign-in overlay: first the number, then
// the one-time code.
type phoneModal struct {
	manager   *session.Manager
	step      phoneStep
	number    string
	code      string
	challenge *auth.Challenge
	busy      bool
	failed    error
	sent      bool
	done      bool
}

func newPhoneModal(m *session.Manager) phoneModal {
	return phoneModal{manager: m}
}

func (m phoneModal) Update(msg tea.Msg) (phoneModal, tea.Cmd) {
	switch msg := msg.(type) {
	case codeSentMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
			return m, nil
		}
		m.challenge = msg.ch
		m.step = stepCode
		m.sent = true
		return m, nil

	case phoneVerifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
			m.code = ""
			return m, nil
		}
		m.done = true
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		m.failed = nil
		m.sent = false

		switch msg.String() {
		case "esc":
			m.done = true
			return m, nil
		case "enter":
			return m.submit()
		default:
			if m.step == stepPhone {
				m.number = editPhone(m.number, msg.String())
			} else {
				m.code = editDigits(m.code, msg.String())
			}
		}
	}
	return m, nil
}

func (m phoneModal) submit() (phoneModal, tea.Cmd) {
	mgr := m.manager
	if m.step == stepPhone {
		number := strings.TrimSpace(m.number)
		if number == "" {
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			ch, err := mgr.RequestPhoneCode(context.Background(), number)
			return codeSentMsg{ch: ch, err: err}
		}
	}

	code := strings.TrimSpace(m.code)
	if code == "" {
		return m, nil
	}
	m.busy = true
	ch := m.challenge
	return m, func() tea.Msg {
		return phoneVerifiedMsg{err: mgr.LoginPhone(context.Background(), ch, code)}
	}
}

func (m phoneModal) View(t Theme, lang Lang) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n %s\n\n", t.Selected.Render(tr(lang, "phone.title")))

	if m.step == stepPhone {
		value := m.number
		if !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " > %s: %s\n", t.Selected.Render(tr(lang, "phone.number")), t.Value.Render(value))
	} else {
		fmt.Fprintf(&b, "   %s: %s\n", t.Label.Render(tr(lang, "phone.number")), t.Dim.Render(m.number))
		value := m.code
		if !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " > %s: %s\n", t.Selected.Render(tr(lang, "phone.code")), t.Value.Render(value))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "phone.busy")))
	case m.failed != nil:
		fmt.Fprintf(&b, " %s\n", t.Error.Render(errText(lang, m.failed)))
	case m.sent:
		fmt.Fprintf(&b, " %s\n", t.Success.Render(tr(lang, "phone.sent")))
	}

	return b.String()
}
