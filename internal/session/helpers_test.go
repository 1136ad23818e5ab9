package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/store"
)

// fakeStore implements store.TokenStore in memory with call counters.
type fakeStore struct {
	mu     sync.Mutex
	pair   *store.TokenPair
	saves  int
	clears int
}

func (f *fakeStore) Save(pair store.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saves++
	p := pair
	f.pair = &p
	return nil
}

func (f *fakeStore) Load() (store.TokenPair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pair == nil {
		return store.TokenPair{}, false
	}
	return *f.pair, true
}

func (f *fakeStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
	f.pair = nil
	return nil
}

func (f *fakeStore) Close() error { return nil }

// fakeBackend scripts the backend client surface the session layer uses.
type fakeBackend struct {
	mu sync.Mutex

	obtainResult api.TokenPairResponse
	obtainErr    error
	// obtainGate, when set, blocks ObtainToken until the channel closes so
	// tests can interleave a logout with an in-flight login.
	obtainGate chan struct{}

	refreshCalls  int
	refreshResult api.TokenPairResponse
	refreshErr    error

	exchangeResult api.TokenPairResponse
	exchangeErr    error

	registerErr error
}

func (f *fakeBackend) ObtainToken(ctx context.Context, email, password string) (api.TokenPairResponse, error) {
	if f.obtainGate != nil {
		<-f.obtainGate
	}
	return f.obtainResult, f.obtainErr
}

func (f *fakeBackend) RefreshToken(ctx context.Context, refresh string) (api.TokenPairResponse, error) {
	f.mu.Lock()
	f.refreshCalls++
	f.mu.Unlock()
	return f.refreshResult, f.refreshErr
}

func (f *fakeBackend) ExchangeFirebase(ctx context.Context, providerToken string) (api.TokenPairResponse, error) {
	return f.exchangeResult, f.exchangeErr
}

func (f *fakeBackend) Register(ctx context.Context, firstName, lastName, email, password string) error {
	return f.registerErr
}

// fakeGoogle and fakePhone script the identity providers.
type fakeGoogle struct {
	token string
	err   error
}

func (f *fakeGoogle) SignInInteractive(ctx context.Context) (string, error) {
	return f.token, f.err
}

type fakePhone struct {
	challenge *auth.Challenge
	reqErr    error
	token     string
	verifyErr error
}

func (f *fakePhone) RequestCode(ctx context.Context, phoneNumber string) (*auth.Challenge, error) {
	return f.challenge, f.reqErr
}

func (f *fakePhone) VerifyCode(ctx context.Context, ch *auth.Challenge, code string) (string, error) {
	return f.token, f.verifyErr
}

var errScripted = errors.New("scripted failure")

// mintAccess produces a signed token whose claims the codec can decode.
func mintAccess(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   userID + "@example.com",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

type testRig struct {
	store   *fakeStore
	backend *fakeBackend
	google  *fakeGoogle
	phone   *fakePhone
	manager *Manager
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	st := &fakeStore{}
	backend := &fakeBackend{}
	google := &fakeGoogle{}
	phone := &fakePhone{}
	m := NewManager(ManagerConfig{
		Store:     st,
		Passwords: backend,
		Refresher: NewRefresher(st, backend),
		Exchanger: NewExchanger(st, backend),
		Google:    google,
		Phone:     phone,
	})
	return &testRig{store: st, backend: backend, google: google, phone: phone, manager: m}
}
