// This file adapts the repository free functions to the store interfaces
// expected by the services layer, keeping services decoupled from the
// concrete repo package.

package bot

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
	"github.com/yukibtc/braiinspool-matrix-bot/internal/repo"
)

// SubscriptionStore implements services.SubscriptionStore over the repo
// package.
type SubscriptionStore struct {
	DB *gorm.DB
}

// Create proxies repo.CreateSubscription.
func (s SubscriptionStore) Create(ctx context.Context, userID, roomID, apiToken string) error {
	_, err := repo.CreateSubscription(ctx, s.DB, userID, roomID, apiToken)
	return err
}

// Get proxies repo.GetSubscription.
func (s SubscriptionStore) Get(ctx context.Context, userID string) (*domain.Subscription, error) {
	return repo.GetSubscription(ctx, s.DB, userID)
}

// Delete proxies repo.DeleteSubscription.
func (s SubscriptionStore) Delete(ctx context.Context, userID string) error {
	return repo.DeleteSubscription(ctx, s.DB, userID)
}

// SessionStore implements services.SessionStore over the repo package.
type SessionStore struct {
	DB *gorm.DB
}

// Create proxies repo.CreateSession.
func (s SessionStore) Create(ctx context.Context, ownerUserID, accessToken, deviceID string) error {
	_, err := repo.CreateSession(ctx, s.DB, ownerUserID, accessToken, deviceID)
	return err
}

// Get proxies repo.GetSession.
func (s SessionStore) Get(ctx context.Context, ownerUserID string) (*domain.Session, error) {
	return repo.GetSession(ctx, s.DB, ownerUserID)
}
