package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Story moderation states. Public creation always starts at pending; draft is
// accepted by validation but unreachable through the public endpoint.
const (
	StoryStatusDraft     = "draft"
	StoryStatusPending   = "pending"
	StoryStatusPublished = "published"
	StoryStatusRejected  = "rejected"
)

// StoryCategories is the allow-list for the category filter
var StoryCategories = []string{"energy", "transport", "food", "waste", "water", "community", "other"}

// ValidStoryCategory reports whether c is an accepted category
func ValidStoryCategory(c string) bool {
	for _, v := range StoryCategories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidStoryStatus reports whether s is a known moderation state
func ValidStoryStatus(s string) bool {
	switch s {
	case StoryStatusDraft, StoryStatusPending, StoryStatusPublished, StoryStatusRejected:
		return true
	}
	return false
}

// Story is a moderated success-story entry. Only published stories are
// visible or likeable to non-owners.
type Story struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Title    string `gorm:"not null" json:"title"`
	Content  string `gorm:"type:text;not null" json:"content"`
	Category string `gorm:"not null;index" json:"category"`
	Status   string `gorm:"not null;default:pending;index" json:"status"`

	LikesCount int `gorm:"default:0" json:"likes_count"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// StoryLike is the (story, user) join row behind the likes_count cache
type StoryLike struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	StoryID string `gorm:"not null;index;uniqueIndex:idx_story_likes_unique" json:"story_id"`
	UserID  string `gorm:"not null;index;uniqueIndex:idx_story_likes_unique" json:"user_id"`

	CreatedAt time.Time `json:"created_at"`
}

func (l *StoryLike) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
