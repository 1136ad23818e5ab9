package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/session"
)

type view int

const (
	viewLogin view = iota
	viewSignup
	viewHome
	viewRecommend
	viewProfile
)

// viewNames are the route names the gate decides on.
var viewNames = map[view]string{
	viewLogin:     "login",
	viewSignup:    "signup",
	viewHome:      "home",
	viewRecommend: "recommend",
	viewProfile:   "profile",
}

func viewByName(name string) view {
	for v, n := range viewNames {
		if n == name {
			return v
		}
	}
	return viewHome
}

// Backend is the slice of the API client the views call.
type Backend interface {
	Predict(ctx context.Context, sample api.SoilSample) (api.Prediction, error)
	GetProfile(ctx context.Context) (api.Profile, error)
	UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.Profile, error)
}

// sessionStateMsg delivers a session transition into the update loop.
type sessionStateMsg session.State

// openPhoneMsg opens the phone sign-in modal over the login view.
type openPhoneMsg struct{}

// Config wires the root model's collaborators.
type Config struct {
	Manager *session.Manager
	Gate    *session.Gate
	Backend Backend
}

// App is the root Bubbletea model.
type App struct {
	manager *session.Manager
	gate    *session.Gate
	view    view
	// returnTo is the route the user asked for before being sent to login.
	returnTo string

	login     loginModel
	signup    signupModel
	phone     phoneModal
	phoneOpen bool
	home      homeModel
	recommend recommendModel
	profile   profileModel

	sessionState session.State
	states       chan session.State

	theme Theme
	dark  bool
	lang  Lang

	width  int
	height int
	frame  int
}

// NewApp creates the root model and subscribes it to session transitions.
func NewApp(cfg Config) App {
	states := make(chan session.State, 16)
	if cfg.Manager != nil {
		cfg.Manager.Subscribe(func(st session.State) {
			select {
			case states <- st:
			default:
			}
		})
	}
	theme := darkTheme()
	a := App{
		manager:      cfg.Manager,
		gate:         cfg.Gate,
		view:         viewLogin,
		login:        newLoginModel(cfg.Manager),
		signup:       newSignupModel(cfg.Manager),
		phone:        newPhoneModal(cfg.Manager),
		home:         newHomeModel(cfg.Manager),
		recommend:    newRecommendModel(cfg.Backend),
		profile:      newProfileModel(cfg.Backend),
		sessionState: session.Uninitialized,
		states:       states,
		theme:        theme,
		dark:         true,
		lang:         LangEN,
	}
	return a
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.hydrate(), a.watchSession(), spinnerTickCmd())
}

// hydrate runs the one-time session load off the update loop.
func (a App) hydrate() tea.Cmd {
	m := a.manager
	return func() tea.Msg {
		m.Load(context.Background())
		return nil
	}
}

func (a App) watchSession() tea.Cmd {
	states := a.states
	return func() tea.Msg {
		return sessionStateMsg(<-states)
	}
}

// open switches to a route that is already allowed and returns its init
// command.
func (a *App) open(name string) tea.Cmd {
	a.view = viewByName(name)
	switch a.view {
	case viewProfile:
		var cmd tea.Cmd
		a.profile, cmd = a.profile.begin()
		return cmd
	case viewRecommend:
		a.recommend = a.recommend.reset()
	}
	return nil
}

// navigate asks the gate whether the named route may render. A pending
// verdict leaves the spinner up; a redirect remembers where the user wanted
// to go.
func (a *App) navigate(name string) tea.Cmd {
	out := a.gate.Decide(name)
	switch out.Decision {
	case session.Allow:
		return a.open(name)
	case session.Pending:
		a.returnTo = out.From
		return nil
	default:
		a.returnTo = out.From
		a.view = viewLogin
		return nil
	}
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinnerTickMsg:
		a.frame++
		return a, spinnerTickCmd()

	case sessionStateMsg:
		return a.onSessionState(session.State(msg))

	case gotoSignupMsg:
		a.signup = newSignupModel(a.manager)
		a.view = viewSignup
		return a, nil

	case openPhoneMsg:
		a.phoneOpen = true
		a.phone = newPhoneModal(a.manager)
		return a, nil

	case codeSentMsg, phoneVerifiedMsg:
		var cmd tea.Cmd
		a.phone, cmd = a.phone.Update(msg)
		if a.phone.done {
			a.phoneOpen = false
		}
		return a, cmd

	case signupDoneMsg:
		var cmd tea.Cmd
		a.signup, cmd = a.signup.Update(msg)
		if msg.err == nil {
			// Back to login with the success note and the address pre-filled.
			a.login.status = tr(a.lang, "signup.created")
			a.login.fields[loginFieldEmail] = a.signup.fields[signupFieldEmail]
			a.view = viewLogin
		}
		return a, cmd

	case tea.KeyMsg:
		return a.onKey(msg)
	}

	return a.route(msg)
}

func (a App) onSessionState(st session.State) (tea.Model, tea.Cmd) {
	prev := a.sessionState
	a.sessionState = st
	cmds := []tea.Cmd{a.watchSession()}

	switch st {
	case session.Authenticated:
		if prev != session.Authenticated && prev != session.Refreshing {
			dest := a.returnTo
			if dest == "" || dest == "login" || dest == "signup" {
				dest = "home"
			}
			a.returnTo = ""
			a.phoneOpen = false
			cmds = append(cmds, a.open(dest))
		}
	case session.Unauthenticated:
		if prev == session.Authenticated || prev == session.Refreshing {
			a.login = newLoginModel(a.manager)
			a.view = viewLogin
		} else if prev == session.Loading && a.view != viewSignup {
			a.view = viewLogin
		}
	}
	return a, tea.Batch(cmds...)
}

func (a App) onKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// While the session check runs only quitting works.
	if a.sessionState == session.Uninitialized || a.sessionState == session.Loading {
		return a, nil
	}

	if a.phoneOpen {
		var cmd tea.Cmd
		a.phone, cmd = a.phone.Update(msg)
		if a.phone.done {
			a.phoneOpen = false
		}
		return a, cmd
	}

	// Global keys apply where no text field owns the keyboard.
	if !a.isEditing() {
		switch key {
		case "q":
			return a, tea.Quit
		case "t":
			a.dark = !a.dark
			if a.dark {
				a.theme = darkTheme()
			} else {
				a.theme = lightTheme()
			}
			return a, nil
		case "l":
			if a.lang == LangEN {
				a.lang = LangHI
			} else {
				a.lang = LangEN
			}
			return a, nil
		case "r":
			return a, a.navigate("recommend")
		case "p":
			return a, a.navigate("profile")
		case "o":
			a.manager.Logout()
			return a, nil
		}
	}

	switch key {
	case "esc":
		switch a.view {
		case viewSignup:
			a.view = viewLogin
			return a, nil
		case viewRecommend, viewProfile:
			return a, a.navigate("home")
		}
	}

	return a.route(msg)
}

// isEditing reports whether the active view owns the keyboard.
func (a App) isEditing() bool {
	switch a.view {
	case viewLogin, viewSignup, viewRecommend, viewProfile:
		return true
	}
	return a.phoneOpen
}

// route forwards a message to the active view's model.
func (a App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.view {
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewSignup:
		a.signup, cmd = a.signup.Update(msg)
	case viewHome:
		a.home, cmd = a.home.Update(msg)
	case viewRecommend:
		a.recommend, cmd = a.recommend.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

func (a App) View() string {
	t := a.theme

	header := t.Title.Render(tr(a.lang, "app.title")) + "\n" +
		t.Tagline.Render(tr(a.lang, "app.tagline")) + "\n"

	var body, help string

	if a.sessionState == session.Uninitialized || a.sessionState == session.Loading {
		spin := spinnerFrames[a.frame%len(spinnerFrames)]
		body = "\n " + t.Accent.Render(spin) + " " + t.Dim.Render(tr(a.lang, "session.checking"))
		help = " " + t.helpEntry("ctrl+c", "quit")
		return a.compose(header, body, help)
	}

	if a.phoneOpen {
		body = a.phone.View(t, a.lang)
		help = " " + t.helpEntry("enter", "next") + "  " + t.helpEntry("esc", "close")
		return a.compose(header, body, help)
	}

	switch a.view {
	case viewLogin:
		body = a.login.View(t, a.lang)
		help = " " + t.helpEntry("tab", "next") + "  " + t.helpEntry("enter", "sign in") + "  " +
			t.helpEntry("ctrl+g", "google") + "  " + t.helpEntry("ctrl+p", "phone") + "  " +
			t.helpEntry("ctrl+n", "sign up") + "  " + t.helpEntry("ctrl+c", "quit")
	case viewSignup:
		body = a.signup.View(t, a.lang)
		help = " " + t.helpEntry("tab", "next") + "  " + t.helpEntry("ctrl+s", "create") + "  " +
			t.helpEntry("esc", "back")
	case viewHome:
		body = a.home.View(t, a.lang)
		help = " " + t.helpEntry("r", "recommend") + "  " + t.helpEntry("p", "profile") + "  " +
			t.helpEntry("t", "theme") + "  " + t.helpEntry("l", "language") + "  " +
			t.helpEntry("o", "logout") + "  " + t.helpEntry("q", "quit")
	case viewRecommend:
		body = a.recommend.View(t, a.lang)
		help = " " + t.helpEntry("tab", "next") + "  " + t.helpEntry("enter", "predict") + "  " +
			t.helpEntry("c", "copy") + "  " + t.helpEntry("esc", "back")
	case viewProfile:
		body = a.profile.View(t, a.lang)
		help = " " + t.helpEntry("tab", "next") + "  " + t.helpEntry("ctrl+s", "save") + "  " +
			t.helpEntry("esc", "back")
	}

	return a.compose(header, body, help)
}

// compose stacks header, body and help bar within the terminal height.
func (a App) compose(header, body, help string) string {
	if a.height > 0 {
		chrome := 3 // header(2) + help(1)
		body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	}
	return fmt.Sprintf("%s%s\n%s", header, body, help)
}
