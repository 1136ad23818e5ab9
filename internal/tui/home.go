package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/session"
)

type homeModel struct {
	manager *session.Manager
}

func newHomeModel(m *session.Manager) homeModel {
	return homeModel{manager: m}
}

func (m homeModel) Update(msg tea.Msg) (homeModel, tea.Cmd) {
	return m, nil
}

func (m homeModel) View(t Theme, lang Lang) string {
	var b strings.Builder

	_, sess := m.manager.Snapshot()
	who := sess.Email
	if who == "" {
		who = sess.UserID
	}

	fmt.Fprintf(&b, "\n %s", t.Selected.Render(tr(lang, "home.welcome")))
	if who != "" {
		fmt.Fprintf(&b, " %s", t.Accent.Render(who))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "home.hint")))

	return b.String()
}
