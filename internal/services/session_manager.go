// Package services implements the business logic of the bot. This file is
// the session manager: the startup decision between resuming a stored Matrix
// session and performing a fresh password login.
package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
)

// Authenticator is the chat-transport contract the session manager drives.
type Authenticator interface {
	// Login performs a password login and returns the credentials to store.
	// An empty access token means the homeserver declined to return one.
	Login(ctx context.Context, userID, password string) (accessToken, deviceID string, err error)

	// Resume restores a connection from stored credentials without
	// contacting the password-login endpoint.
	Resume(ctx context.Context, userID, accessToken, deviceID string) error
}

// SessionStore is the persistence contract for stored sessions. A missing
// record surfaces as gorm.ErrRecordNotFound.
type SessionStore interface {
	Create(ctx context.Context, ownerUserID, accessToken, deviceID string) error
	Get(ctx context.Context, ownerUserID string) (*domain.Session, error)
}

// SessionManager owns the Session record: it is the only component that
// creates one, and nothing updates or deletes it during normal operation
// (invalidation is an explicit administrative action on the admin API).
type SessionManager struct {
	// Store is the session persistence adapter.
	Store SessionStore
	// UserID is the configured bot account (fully qualified Matrix ID).
	UserID string
	// Password is the configured login password, used only when no stored
	// session exists.
	Password string
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(store SessionStore, userID, password string) *SessionManager {
	return &SessionManager{Store: store, UserID: userID, Password: password}
}

// ResumeOrLogin establishes the bot's Matrix session. When a stored session
// exists it is resumed without any password login; otherwise a fresh login is
// performed and its credentials persisted.
//
// When the homeserver declines to return an access token the bot continues
// in a degraded mode: it works for this process lifetime but must log in
// again on the next start. That case is a warning, not an error.
//
// Failure modes: AuthError when the login is rejected, TransportError when
// the resume call fails, StoreError when reading or writing the session
// record fails (a missing record is not a failure).
func (m *SessionManager) ResumeOrLogin(ctx context.Context, auth Authenticator) error {
	session, err := m.Store.Get(ctx, m.UserID)
	switch {
	case err == nil:
		if err := auth.Resume(ctx, m.UserID, session.AccessToken, session.DeviceID); err != nil {
			return &TransportError{Err: err}
		}
		log.Debug().Msg("session restored from database")
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return &StoreError{Err: err}
	}

	log.Debug().Msg("session not found in database, login with credentials")

	accessToken, deviceID, err := auth.Login(ctx, m.UserID, m.Password)
	if err != nil {
		return &AuthError{Err: err}
	}

	if accessToken == "" {
		log.Warn().Msg("homeserver returned no access token; the bot works but cannot resume this session on the next start")
		return nil
	}

	if err := m.Store.Create(ctx, m.UserID, accessToken, deviceID); err != nil {
		return &StoreError{Err: err}
	}
	log.Debug().Msg("session saved to database")
	return nil
}
