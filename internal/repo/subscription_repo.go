// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Subscription model.
//
// Error semantics match session_repo.go: ErrNotFound for missing rows,
// raw gorm errors for storage failures.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
)

// CreateSubscription links userID to a pool API token, pinned to roomID.
// CreatedAt is set to UTC. A second create for the same user overwrites the
// previous row (last write wins); the dispatcher checks existence first, so
// an overwrite only happens on the accepted near-simultaneous-subscribe race.
func CreateSubscription(ctx context.Context, db *gorm.DB, userID, roomID, apiToken string) (*domain.Subscription, error) {
	sub := &domain.Subscription{
		UserID:    userID,
		RoomID:    roomID,
		APIToken:  apiToken,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Save(sub).Error; err != nil {
		return nil, err
	}
	return sub, nil
}

// GetSubscription fetches the subscription for userID, or ErrNotFound.
func GetSubscription(ctx context.Context, db *gorm.DB, userID string) (*domain.Subscription, error) {
	var sub domain.Subscription
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, err
	}
	return &sub, nil
}

// DeleteSubscription unlinks userID from its pool token. It returns
// ErrNotFound when no subscription exists.
func DeleteSubscription(ctx context.Context, db *gorm.DB, userID string) error {
	res := db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
