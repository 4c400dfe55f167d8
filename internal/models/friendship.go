package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Friend request states. Cancelling a pending request deletes the row, so
// "none" is represented by absence.
const (
	FriendRequestPending  = "pending"
	FriendRequestAccepted = "accepted"
	FriendRequestRejected = "rejected"
)

// FriendRequest is a directed request from Sender to Receiver
type FriendRequest struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	SenderID   string `gorm:"not null;index;uniqueIndex:idx_friend_requests_unique" json:"sender_id"`
	ReceiverID string `gorm:"not null;index;uniqueIndex:idx_friend_requests_unique" json:"receiver_id"`
	Sender     User   `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   User   `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`

	Status string `gorm:"not null;default:pending;index" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *FriendRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// Friendship is stored once per pair with the lower UUID in UserID, and is
// visible symmetrically from either side.
type Friendship struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID   string `gorm:"not null;index;uniqueIndex:idx_friendships_unique" json:"user_id"`
	FriendID string `gorm:"not null;index;uniqueIndex:idx_friendships_unique" json:"friend_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (f *Friendship) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}

// OrderPair returns the pair in canonical storage order
func OrderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}
