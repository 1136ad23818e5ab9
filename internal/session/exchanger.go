package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/store"
)

// ExchangeAPI is the slice of the backend client the exchanger needs.
type ExchangeAPI interface {
	ExchangeFirebase(ctx context.Context, providerToken string) (api.TokenPairResponse, error)
	Register(ctx context.Context, firstName, lastName, email, password string) error
}

// Exchanger turns credentials the identity providers hand us into a
// persisted backend session. Nothing is written to storage unless the whole
// exchange, including claim decode, succeeds.
type Exchanger struct {
	store store.TokenStore
	api   ExchangeAPI
}

func NewExchanger(st store.TokenStore, backend ExchangeAPI) *Exchanger {
	return &Exchanger{store: st, api: backend}
}

// ExchangeProviderToken trades a federated or phone provider token for the
// application's own pair and persists it.
func (e *Exchanger) ExchangeProviderToken(ctx context.Context, providerToken string) (Session, error) {
	res, err := e.api.ExchangeFirebase(ctx, providerToken)
	if err != nil {
		return Session{}, err
	}
	return e.CompletePair(store.TokenPair{Access: res.Access, Refresh: res.Refresh})
}

// CompletePair persists a backend-issued pair and returns the decoded
// session. A pair whose access token cannot be decoded is rejected without
// touching storage.
func (e *Exchanger) CompletePair(pair store.TokenPair) (Session, error) {
	claims := auth.DecodeClaims(pair.Access)
	if claims == nil {
		return Session{}, auth.ErrMalformedToken
	}
	if err := e.store.Save(pair); err != nil {
		return Session{}, fmt.Errorf("failed to persist session tokens: %w", err)
	}
	log.Info().Str("userId", claims.UserID).Msg("session established")
	return sessionFrom(pair, claims), nil
}

// RegisterAccount creates an email/password account. Duplicate addresses
// surface as ErrAccountExists and no session exchange is attempted.
func (e *Exchanger) RegisterAccount(ctx context.Context, firstName, lastName, email, password string) error {
	return e.api.Register(ctx, firstName, lastName, email, password)
}
