package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationType enumerates the fixed set of notification kinds
type NotificationType string

const (
	NotificationReportResponse NotificationType = "report_response"
	NotificationNewReport      NotificationType = "new_report"
	NotificationFriendRequest  NotificationType = "friend_request"
	NotificationAchievement    NotificationType = "achievement"
	NotificationStoryApproved  NotificationType = "story_approved"
	NotificationStoryRejected  NotificationType = "story_rejected"
	NotificationEcoTip         NotificationType = "eco_tip"
	NotificationSystem         NotificationType = "system"
)

// ValidNotificationType reports whether t is a known notification type
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationReportResponse, NotificationNewReport, NotificationFriendRequest,
		NotificationAchievement, NotificationStoryApproved, NotificationStoryRejected,
		NotificationEcoTip, NotificationSystem:
		return true
	}
	return false
}

// Notification is a persisted per-user notification row. Rows are only
// written when the recipient's settings allow the type; live delivery is a
// best-effort reflection of the stored row.
type Notification struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`

	Type      NotificationType `gorm:"not null;index" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Link      string           `json:"link,omitempty"`
	RelatedID string           `json:"related_id,omitempty"`

	IsRead bool `gorm:"default:false;index" json:"is_read"`

	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}

// NotificationSettings holds a user's opt-outs. A missing row means
// everything enabled; the notify service creates the row on first lookup.
type NotificationSettings struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;uniqueIndex" json:"user_id"`

	Enabled bool `gorm:"default:true" json:"enabled"`

	FriendRequestsEnabled bool `gorm:"default:true" json:"friend_requests_enabled"`
	AchievementsEnabled   bool `gorm:"default:true" json:"achievements_enabled"`
	StoriesEnabled        bool `gorm:"default:true" json:"stories_enabled"`
	ReportsEnabled        bool `gorm:"default:true" json:"reports_enabled"`
	TipsEnabled           bool `gorm:"default:true" json:"tips_enabled"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *NotificationSettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Allows reports whether the settings permit a notification of type t
func (s *NotificationSettings) Allows(t NotificationType) bool {
	if !s.Enabled {
		return false
	}
	switch t {
	case NotificationFriendRequest:
		return s.FriendRequestsEnabled
	case NotificationAchievement:
		return s.AchievementsEnabled
	case NotificationStoryApproved, NotificationStoryRejected:
		return s.StoriesEnabled
	case NotificationReportResponse, NotificationNewReport:
		return s.ReportsEnabled
	case NotificationEcoTip:
		return s.TipsEnabled
	default:
		// Unknown and system types are allowed once globally enabled
		return true
	}
}

// DefaultNotificationSettings returns the all-enabled defaults for a user
func DefaultNotificationSettings(userID string) NotificationSettings {
	return NotificationSettings{
		UserID:                userID,
		Enabled:               true,
		FriendRequestsEnabled: true,
		AchievementsEnabled:   true,
		StoriesEnabled:        true,
		ReportsEnabled:        true,
		TipsEnabled:           true,
	}
}
