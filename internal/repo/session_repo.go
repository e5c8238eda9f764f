// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model.
//
// All functions are context-aware and accept a *gorm.DB handle. They follow
// the "thin repository" approach: no business logic, only CRUD persistence.
//
// Error semantics:
//   - When a session is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience). "Not found" is a
//     normal control-flow outcome for callers, not a storage failure.
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// A Session is written exactly once, right after a fresh password login, and
// is never updated afterwards. Deletion is reserved for the administrative
// invalidation endpoint; the bot itself never deletes its session.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateSession inserts the credential bundle for ownerUserID.
// CreatedAt is set to UTC. On failure, it returns a DB error.
func CreateSession(ctx context.Context, db *gorm.DB, ownerUserID, accessToken, deviceID string) (*domain.Session, error) {
	s := &domain.Session{
		OwnerUserID: ownerUserID,
		AccessToken: accessToken,
		DeviceID:    deviceID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(s).Error; err != nil {
		return nil, err
	}
	return s, nil
}

// GetSession fetches the session owned by ownerUserID, or ErrNotFound.
func GetSession(ctx context.Context, db *gorm.DB, ownerUserID string) (*domain.Session, error) {
	var s domain.Session
	if err := db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteSession removes the stored session for ownerUserID. It returns
// ErrNotFound when no session exists, so the admin API can answer 404.
func DeleteSession(ctx context.Context, db *gorm.DB, ownerUserID string) error {
	res := db.WithContext(ctx).Where("owner_user_id = ?", ownerUserID).Delete(&domain.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
