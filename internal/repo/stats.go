// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used by the
// admin health endpoint. Each function is context-aware and safe to call
// from services or handlers.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukibtc/braiinspool-matrix-bot/internal/domain"
)

// StoreStats returns row counts for the two record tables. It is exposed on
// the admin surface as a cheap liveness/consistency probe.
//
// Return values:
//   - sessions:      total stored sessions (0 or 1 in normal operation)
//   - subscriptions: total linked accounts
//   - err:           database error, if any
func StoreStats(ctx context.Context, db *gorm.DB) (sessions, subscriptions int64, err error) {
	if err = db.WithContext(ctx).Model(&domain.Session{}).Count(&sessions).Error; err != nil {
		return 0, 0, err
	}
	if err = db.WithContext(ctx).Model(&domain.Subscription{}).Count(&subscriptions).Error; err != nil {
		return 0, 0, err
	}
	return sessions, subscriptions, nil
}
