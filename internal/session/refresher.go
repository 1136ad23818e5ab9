package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/nishadm/agrosage/internal/api"
	"github.com/nishadm/agrosage/internal/auth"
	"github.com/nishadm/agrosage/internal/store"
)

// RefreshAPI is the slice of the backend client the refresher needs.
type RefreshAPI interface {
	RefreshToken(ctx context.Context, refresh string) (api.TokenPairResponse, error)
}

// Refresher exchanges the stored refresh token for a new pair. A rejected
// refresh is unrecoverable: both tokens are cleared before the error is
// returned, and the call is never retried here.
type Refresher struct {
	store store.TokenStore
	api   RefreshAPI
	group singleflight.Group
}

func NewRefresher(st store.TokenStore, backend RefreshAPI) *Refresher {
	return &Refresher{store: st, api: backend}
}

// Refresh performs at most one in-flight exchange; concurrent callers share
// the result instead of issuing duplicate network calls.
func (r *Refresher) Refresh(ctx context.Context) (store.TokenPair, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return store.TokenPair{}, err
	}
	return v.(store.TokenPair), nil
}

func (r *Refresher) refresh(ctx context.Context) (store.TokenPair, error) {
	pair, ok := r.store.Load()
	if !ok || pair.Refresh == "" {
		return store.TokenPair{}, auth.ErrNoRefreshToken
	}

	res, err := r.api.RefreshToken(ctx, pair.Refresh)
	if err != nil {
		// The session is unrecoverable; log out before reporting.
		if clearErr := r.store.Clear(); clearErr != nil {
			log.Error().Err(clearErr).Msg("failed to clear tokens after rejected refresh")
		}
		log.Warn().Err(err).Msg("refresh rejected, session cleared")
		return store.TokenPair{}, fmt.Errorf("%w: %v", auth.ErrRefreshRejected, err)
	}

	newPair := store.TokenPair{Access: res.Access, Refresh: pair.Refresh}
	// The server may rotate the refresh token; keep the old one otherwise.
	if res.Refresh != "" {
		newPair.Refresh = res.Refresh
	}

	if err := r.store.Save(newPair); err != nil {
		return store.TokenPair{}, fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	log.Debug().Bool("rotated", res.Refresh != "").Msg("session refreshed")
	return newPair, nil
}
