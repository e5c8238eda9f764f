// Package domain defines the persistence models for the bot: the resumable
// Matrix session and the per-user pool subscription. These types are mapped
// with GORM and form the entire data layer of the application.
package domain

import (
	"time"
)

// Session is the stored credential bundle that lets the bot resume its Matrix
// connection without re-authenticating with a password. There is at most one
// Session per owning user ID; it is written once after a successful fresh
// login and never updated afterwards.
//
// Fields:
//   - OwnerUserID: fully qualified Matrix user ID of the bot account (PK).
//   - AccessToken: opaque access token returned by the homeserver. Never logged.
//   - DeviceID: device ID associated with the token.
//   - CreatedAt: timestamp managed by GORM.
type Session struct {
	OwnerUserID string    `json:"owner_user_id" gorm:"type:varchar(255);primaryKey"`
	AccessToken string    `json:"-"             gorm:"type:text;not null"`
	DeviceID    string    `json:"device_id"     gorm:"type:varchar(64);not null"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Subscription links a Matrix user to a Braiins Pool account API token.
// The subscription is pinned to the room where it was created: a user may not
// subscribe again from a second room while already subscribed. There is at
// most one Subscription per user ID.
//
// Fields:
//   - UserID: fully qualified Matrix user ID of the subscriber (PK).
//   - RoomID: room in which the subscription was created.
//   - APIToken: opaque pool API access token. Never logged.
//   - CreatedAt: timestamp managed by GORM.
type Subscription struct {
	UserID    string    `json:"user_id"    gorm:"type:varchar(255);primaryKey"`
	RoomID    string    `json:"room_id"    gorm:"type:varchar(255);not null"`
	APIToken  string    `json:"-"          gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }
