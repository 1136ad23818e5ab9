package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/session"
	"github.com/nishadm/agrosage/internal/store"
)

// memStore is an in-memory store.TokenStore for wiring a real manager.
type memStore struct {
	mu   sync.Mutex
	pair *store.TokenPair
}

func (f *memStore) Save(pair store.TokenPair) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := pair
	f.pair = &p
	return nil
}

func (f *memStore) Load() (store.TokenPair, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pair == nil {
		return store.TokenPair{}, false
	}
	return *f.pair, true
}

func (f *memStore) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pair = nil
	return nil
}

func (f *memStore) Close() error { return nil }

// scriptedAuth implements the backend auth surface the manager needs.
type scriptedAuth struct {
	obtainResult api.TokenPairResponse
	obtainErr    error
}

func (s *scriptedAuth) ObtainToken(ctx context.Context, email, password string) (api.TokenPairResponse, error) {
	return s.obtainResult, s.obtainErr
}

func (s *scriptedAuth) RefreshToken(ctx context.Context, refresh string) (api.TokenPairResponse, error) {
	return api.TokenPairResponse{}, auth.ErrNetwork
}

func (s *scriptedAuth) ExchangeFirebase(ctx context.Context, providerToken string) (api.TokenPairResponse, error) {
	return s.obtainResult, s.obtainErr
}

func (s *scriptedAuth) Register(ctx context.Context, firstName, lastName, email, password string) error {
	return nil
}

type nullGoogle struct{}

func (nullGoogle) SignInInteractive(ctx context.Context) (string, error) {
	return "", auth.ErrUserCancelled
}

type nullPhone struct{}

func (nullPhone) RequestCode(ctx context.Context, phoneNumber string) (*auth.Challenge, error) {
	return nil, auth.ErrNetwork
}

func (nullPhone) VerifyCode(ctx context.Context, ch *auth.Challenge, code string) (string, error) {
	return "", auth.ErrNetwork
}

// scriptedBackend implements Backend for the protected views.
type scriptedBackend struct {
	prediction   api.Prediction
	predictErr   error
	predictCalls int
	lastSample   api.SoilSample

	profile    api.Profile
	profileErr error
	updateErr  error
}

func (s *scriptedBackend) Predict(ctx context.Context, sample api.SoilSample) (api.Prediction, error) {
	s.predictCalls++
	s.lastSample = sample
	return s.prediction, s.predictErr
}

func (s *scriptedBackend) GetProfile(ctx context.Context) (api.Profile, error) {
	return s.profile, s.profileErr
}

func (s *scriptedBackend) UpdateProfile(ctx context.Context, update api.ProfileUpdate) (api.Profile, error) {
	return s.profile, s.updateErr
}

func mintAccess(t *testing.T, userID string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"email":   userID + "@example.com",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return signed
}

func newTestManager(st store.TokenStore, backend *scriptedAuth) *session.Manager {
	return session.NewManager(session.ManagerConfig{
		Store:     st,
		Passwords: backend,
		Refresher: session.NewRefresher(st, backend),
		Exchanger: session.NewExchanger(st, backend),
		Google:    nullGoogle{},
		Phone:     nullPhone{},
	})
}

func newTestApp(t *testing.T) (App, *scriptedBackend) {
	t.Helper()
	st := &memStore{}
	authBackend := &scriptedAuth{}
	mgr := newTestManager(st, authBackend)
	backend := &scriptedBackend{}
	a := NewApp(Config{
		Manager: mgr,
		Gate:    session.NewGate(mgr),
		Backend: backend,
	})
	a.width = 80
	a.height = 30
	return a, backend
}
