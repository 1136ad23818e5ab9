package session

// Decision is the route gate's verdict for a protected view.
type Decision int

const (
	// Allow renders the requested view.
	Allow Decision = iota
	// Pending renders a spinner: the initial token check (or a refresh
	// without prior claims) has not finished, and redirecting now would
	// flash the login view at users who are about to be authenticated.
	Pending
	// RedirectToLogin sends the user to the login view, remembering where
	// they wanted to go.
	RedirectToLogin
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Pending:
		return "pending"
	case RedirectToLogin:
		return "redirect-to-login"
	default:
		return "unknown"
	}
}

// Outcome pairs the decision with the originally requested view so a
// successful login can return the user there.
type Outcome struct {
	Decision Decision
	From     string
}

// Gate decides whether a protected view may render for the current session
// state.
type Gate struct {
	manager *Manager
}

func NewGate(m *Manager) *Gate {
	return &Gate{manager: m}
}

// Decide evaluates access to the named protected view.
func (g *Gate) Decide(view string) Outcome {
	state, _ := g.manager.Snapshot()
	return decide(state, g.manager.IsAuthenticated(), view)
}

func decide(state State, authenticated bool, view string) Outcome {
	switch state {
	case Uninitialized, Loading:
		return Outcome{Decision: Pending, From: view}
	case Authenticated:
		return Outcome{Decision: Allow, From: view}
	case Refreshing:
		if authenticated {
			return Outcome{Decision: Allow, From: view}
		}
		return Outcome{Decision: Pending, From: view}
	default:
		return Outcome{Decision: RedirectToLogin, From: view}
	}
}
