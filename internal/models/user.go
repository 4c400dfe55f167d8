package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EcoLevel buckets a points total into a 1..5 level. Thresholds are shared
// with the frontend's level badges.
func EcoLevel(points int) int {
	switch {
	case points >= 5000:
		return 5
	case points >= 2000:
		return 4
	case points >= 750:
		return 3
	case points >= 250:
		return 2
	default:
		return 1
	}
}

// User represents a Greenprint account
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Username string `gorm:"uniqueIndex;not null" json:"username"`

	PasswordHash string `gorm:"type:text;not null" json:"-"`

	// Profile data
	AvatarURL string `json:"avatar_url"`
	Bio       string `gorm:"type:text" json:"bio"`

	// Gamification state
	CarbonSaved float64 `gorm:"default:0" json:"carbon_saved"` // kg CO2e accumulator
	Points      int     `gorm:"default:0" json:"points"`
	EcoLevelNum int     `gorm:"column:eco_level;default:1" json:"eco_level"`

	// Moderation flags
	IsAdmin  bool `gorm:"default:false" json:"is_admin"`
	IsBanned bool `gorm:"default:false" json:"is_banned"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate assigns a UUID primary key when the database does not
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// PublicProfile is the user shape embedded in feed/social responses
type PublicProfile struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	AvatarURL   string  `json:"avatar_url"`
	CarbonSaved float64 `json:"carbon_saved"`
	Points      int     `json:"points"`
	EcoLevel    int     `json:"eco_level"`
}

// Public returns the embeddable profile view of the user
func (u *User) Public() PublicProfile {
	return PublicProfile{
		ID:          u.ID,
		Username:    u.Username,
		AvatarURL:   u.AvatarURL,
		CarbonSaved: u.CarbonSaved,
		Points:      u.Points,
		EcoLevel:    u.EcoLevelNum,
	}
}
