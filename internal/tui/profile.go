package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/api"
)

type profileField int

const (
	profileFieldFirst profileField = iota
	profileFieldLast
	profileFieldPhone
	profileFieldPhoto
	numProfileFields
)

var profileFieldLabels = [numProfileFields]string{
	"first name", "last name", "phone number", "photo URL",
}

// profileLoadedMsg carries the fetched profile.
type profileLoadedMsg struct {
	profile api.Profile
	err     error
}

// profileSavedMsg carries the PATCH result. A failure here never affects
// the session.
type profileSavedMsg struct {
	profile api.Profile
	err     error
}

type profileModel struct {
	backend Backend
	fields  [numProfileFields]string
	email   string
	focus   profileField
	loading bool
	busy    bool
	saved   bool
	failed  error
}

func newProfileModel(b Backend) profileModel {
	return profileModel{backend: b}
}

// begin marks the model loading and returns the fetch command.
func (m profileModel) begin() (profileModel, tea.Cmd) {
	m.loading = true
	m.failed = nil
	m.saved = false
	return m, m.load()
}

func (m profileModel) load() tea.Cmd {
	b := m.backend
	return func() tea.Msg {
		profile, err := b.GetProfile(context.Background())
		return profileLoadedMsg{profile: profile, err: err}
	}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.failed = msg.err
			return m, nil
		}
		m.fields[profileFieldFirst] = msg.profile.FirstName
		m.fields[profileFieldLast] = msg.profile.LastName
		m.fields[profileFieldPhone] = msg.profile.PhoneNumber
		m.fields[profileFieldPhoto] = msg.profile.PhotoURL
		m.email = msg.profile.Email
		return m, nil

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.failed = msg.err
			return m, nil
		}
		m.saved = true
		return m, nil

	case tea.KeyMsg:
		if m.busy || m.loading {
			return m, nil
		}
		m.failed = nil
		m.saved = false

		switch msg.String() {
		case "tab", "down", "enter":
			m.focus = (m.focus + 1) % numProfileFields
		case "shift+tab", "up":
			m.focus = (m.focus - 1 + numProfileFields) % numProfileFields
		case "ctrl+s":
			return m.save()
		default:
			f := &m.fields[m.focus]
			*f = editRune(*f, msg.String())
		}
	}
	return m, nil
}

func (m profileModel) save() (profileModel, tea.Cmd) {
	first := strings.TrimSpace(m.fields[profileFieldFirst])
	last := strings.TrimSpace(m.fields[profileFieldLast])
	phone := strings.TrimSpace(m.fields[profileFieldPhone])
	photo := strings.TrimSpace(m.fields[profileFieldPhoto])

	update := api.ProfileUpdate{
		FirstName:   &first,
		LastName:    &last,
		PhoneNumber: &phone,
		PhotoURL:    &photo,
	}

	m.busy = true
	b := m.backend
	return m, func() tea.Msg {
		profile, err := b.UpdateProfile(context.Background(), update)
		return profileSavedMsg{profile: profile, err: err}
	}
}

func (m profileModel) View(t Theme, lang Lang) string {
	var b strings.Builder

	fmt.Fprintf(&b, "\n %s", t.Selected.Render(tr(lang, "profile.title")))
	if m.email != "" {
		fmt.Fprintf(&b, "  %s", t.Dim.Render(m.email))
	}
	b.WriteString("\n\n")

	if m.loading {
		fmt.Fprintf(&b, " %s\n", t.Dim.Render("loading..."))
		return b.String()
	}

	for i := profileField(0); i < numProfileFields; i++ {
		cursor := " "
		style := t.Label
		if i == m.focus {
			cursor = ">"
			style = t.Selected
		}
		value := m.fields[i]
		if i == m.focus && !m.busy {
			value += "█"
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(profileFieldLabels[i]), t.Value.Render(value))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		fmt.Fprintf(&b, " %s\n", t.Dim.Render(tr(lang, "profile.busy")))
	case m.failed != nil:
		fmt.Fprintf(&b, " %s\n", t.Error.Render(tr(lang, "profile.save_failed")))
	case m.saved:
		fmt.Fprintf(&b, " %s\n", t.Success.Render(tr(lang, "profile.saved")))
	}

	return b.String()
}
