package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/store"
)

// PasswordAPI is the slice of the backend client used for primary
// email/password sign-in.
type PasswordAPI interface {
	ObtainToken(ctx context.Context, email, password string) (api.TokenPairResponse, error)
}

// GoogleSignIn is the interactive federated authenticator.
type GoogleSignIn interface {
	SignInInteractive(ctx context.Context) (string, error)
}

// PhoneSignIn is the two-phase OTP authenticator.
type PhoneSignIn interface {
	RequestCode(ctx context.Context, phoneNumber string) (*auth.Challenge, error)
	VerifyCode(ctx context.Context, ch *auth.Challenge, code string) (string, error)
}

// ManagerConfig wires the manager's collaborators.
type ManagerConfig struct {
	Store     store.TokenStore
	Passwords PasswordAPI
	Refresher *Refresher
	Exchanger *Exchanger
	Google    GoogleSignIn
	Phone     PhoneSignIn
}

// Manager owns the current session state and every transition on it. UI
// code never reads or writes the token store directly; it observes the
// manager and calls its operations.
type Manager struct {
	mu    sync.Mutex
	state State
	sess  Session
	// gen increments on logout; an in-flight login or refresh whose result
	// arrives after a logout is discarded instead of resurrecting the
	// session.
	gen  uint64
	subs []func(State)

	store     store.TokenStore
	passwords PasswordAPI
	refresher *Refresher
	exchanger *Exchanger
	google    GoogleSignIn
	phone     PhoneSignIn
	now       func() time.Time
}

func NewManager(cfg ManagerConfig) *Manager {
	return &Manager{
		state:     Uninitialized,
		store:     cfg.Store,
		passwords: cfg.Passwords,
		refresher: cfg.Refresher,
		exchanger: cfg.Exchanger,
		google:    cfg.Google,
		phone:     cfg.Phone,
		now:       time.Now,
	}
}

// Subscribe registers an observer for state transitions. Callbacks run
// outside the manager's lock and may call back into the manager.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	m.subs = append(m.subs, fn)
	m.mu.Unlock()
}

// Snapshot returns the current state and session copy.
func (m *Manager) Snapshot() (State, Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.sess
}

// IsAuthenticated is a pure function of the current state: Authenticated,
// or Refreshing while holding previously valid claims.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == Authenticated || (m.state == Refreshing && m.sess.AccessToken != "")
}

// setState applies an unconditional transition.
func (m *Manager) setState(st State, sess Session) {
	m.mu.Lock()
	m.applyLocked(st, sess)
	subs := m.subsCopyLocked()
	m.mu.Unlock()
	notify(subs, st)
}

// applyIfCurrent applies the transition only if no logout happened since
// gen was captured. Reports whether the transition took effect.
func (m *Manager) applyIfCurrent(gen uint64, st State, sess Session) bool {
	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		log.Debug().Stringer("state", st).Msg("discarding superseded session transition")
		return false
	}
	m.applyLocked(st, sess)
	subs := m.subsCopyLocked()
	m.mu.Unlock()
	notify(subs, st)
	return true
}

func (m *Manager) applyLocked(st State, sess Session) {
	m.state = st
	m.sess = sess
}

func (m *Manager) subsCopyLocked() []func(State) {
	return append([]func(State){}, m.subs...)
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}

func (m *Manager) currentGen() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Load hydrates the session from persisted storage at application start.
// Missing tokens mean logged out; a valid token authenticates immediately;
// an expired token triggers exactly one refresh attempt.
func (m *Manager) Load(ctx context.Context) {
	m.setState(Loading, Session{})
	gen := m.currentGen()

	pair, ok := m.store.Load()
	if !ok {
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return
	}

	claims := auth.DecodeClaims(pair.Access)
	if claims == nil {
		log.Warn().Msg("stored access token is malformed, clearing session")
		if err := m.store.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear malformed session")
		}
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return
	}

	if !claims.Expired(m.now()) {
		m.applyIfCurrent(gen, Authenticated, sessionFrom(pair, claims))
		return
	}

	log.Info().Msg("stored access token expired, refreshing")
	m.applyIfCurrent(gen, Refreshing, Session{})

	newPair, err := m.refresher.Refresh(ctx)
	if err != nil {
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return
	}

	newClaims := auth.DecodeClaims(newPair.Access)
	if newClaims == nil {
		log.Warn().Msg("refreshed access token is malformed, clearing session")
		if err := m.store.Clear(); err != nil {
			log.Error().Err(err).Msg("failed to clear malformed session")
		}
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return
	}

	m.applyIfCurrent(gen, Authenticated, sessionFrom(newPair, newClaims))
}

// LoginPassword signs in with email and password. On failure the session
// state is left exactly as it was.
func (m *Manager) LoginPassword(ctx context.Context, email, password string) error {
	gen := m.currentGen()

	res, err := m.passwords.ObtainToken(ctx, email, password)
	if err != nil {
		return err
	}

	sess, err := m.exchanger.CompletePair(store.TokenPair{Access: res.Access, Refresh: res.Refresh})
	if err != nil {
		return err
	}

	m.finishLogin(gen, sess)
	return nil
}

// finishLogin applies a successful login result. A result that lands after
// a logout is discarded together with the tokens the exchange persisted.
func (m *Manager) finishLogin(gen uint64, sess Session) {
	if m.applyIfCurrent(gen, Authenticated, sess) {
		return
	}
	if err := m.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to discard superseded login tokens")
	}
}

// LoginGoogle runs the interactive federated flow and exchanges the
// provider token for a backend session.
func (m *Manager) LoginGoogle(ctx context.Context) error {
	gen := m.currentGen()

	providerToken, err := m.google.SignInInteractive(ctx)
	if err != nil {
		return err
	}

	sess, err := m.exchanger.ExchangeProviderToken(ctx, providerToken)
	if err != nil {
		return err
	}

	m.finishLogin(gen, sess)
	return nil
}

// RequestPhoneCode starts the phone OTP flow and returns the opaque
// challenge for VerifyPhoneCode.
func (m *Manager) RequestPhoneCode(ctx context.Context, phoneNumber string) (*auth.Challenge, error) {
	return m.phone.RequestCode(ctx, phoneNumber)
}

// LoginPhone redeems the challenge and exchanges the resulting provider
// token for a backend session.
func (m *Manager) LoginPhone(ctx context.Context, ch *auth.Challenge, code string) error {
	gen := m.currentGen()

	providerToken, err := m.phone.VerifyCode(ctx, ch, code)
	if err != nil {
		return err
	}

	sess, err := m.exchanger.ExchangeProviderToken(ctx, providerToken)
	if err != nil {
		return err
	}

	m.finishLogin(gen, sess)
	return nil
}

// Register creates an email/password account. The user signs in afterwards
// as a separate step.
func (m *Manager) Register(ctx context.Context, firstName, lastName, email, password string) error {
	return m.exchanger.RegisterAccount(ctx, firstName, lastName, email, password)
}

// Logout clears the persisted tokens and moves to Unauthenticated. Calling
// it while already logged out is a no-op.
func (m *Manager) Logout() {
	m.mu.Lock()
	if m.state == Unauthenticated {
		m.mu.Unlock()
		return
	}
	m.gen++
	if err := m.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear tokens on logout")
	}
	m.applyLocked(Unauthenticated, Session{})
	subs := m.subsCopyLocked()
	m.mu.Unlock()
	notify(subs, Unauthenticated)
	log.Info().Msg("logged out")
}

// AccessToken returns the current bearer token for API calls. Implements
// api.AuthSource.
func (m *Manager) AccessToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sess.AccessToken
}

// RefreshAccess refreshes the session once and returns the new access
// token. Implements api.AuthSource; concurrent callers share one exchange.
func (m *Manager) RefreshAccess(ctx context.Context) (string, error) {
	m.mu.Lock()
	gen := m.gen
	entered := m.state == Authenticated
	if entered {
		m.applyLocked(Refreshing, m.sess)
	}
	subs := m.subsCopyLocked()
	m.mu.Unlock()
	if entered {
		notify(subs, Refreshing)
	}

	pair, err := m.refresher.Refresh(ctx)
	if err != nil {
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return "", err
	}

	claims := auth.DecodeClaims(pair.Access)
	if claims == nil {
		if clearErr := m.store.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear malformed session")
		}
		m.applyIfCurrent(gen, Unauthenticated, Session{})
		return "", auth.ErrMalformedToken
	}

	m.applyIfCurrent(gen, Authenticated, sessionFrom(pair, claims))
	return pair.Access, nil
}
