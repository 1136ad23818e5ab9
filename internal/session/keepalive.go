package session

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/nishadm/agrosage/internal/auth"
)

const (
	keepAliveInterval = time.Minute
	// refreshMargin is how close to expiry the access token may get before
	// the keep-alive loop refreshes it proactively.
	refreshMargin = 2 * time.Minute
)

// KeepAlive refreshes the access token shortly before it expires so
// interactive calls rarely hit a 401. Runs until the context is cancelled.
func (m *Manager) KeepAlive(ctx context.Context) error {
	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping session keep-alive")
			return ctx.Err()
		case <-ticker.C:
			m.mu.Lock()
			due := m.state == Authenticated &&
				m.sess.ExpiresAt-m.now().Unix() < int64(refreshMargin/time.Second)
			m.mu.Unlock()
			if !due {
				continue
			}
			if _, err := m.RefreshAccess(ctx); err != nil && !errors.Is(err, auth.ErrNoRefreshToken) {
				log.Warn().Err(err).Msg("keep-alive refresh failed")
			}
		}
	}
}
