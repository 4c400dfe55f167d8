package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report moderation states
const (
	ReportStatusPending   = "pending"
	ReportStatusReviewing = "reviewing"
	ReportStatusResolved  = "resolved"
	ReportStatusRejected  = "rejected"
)

// ValidReportStatus reports whether s is a known moderation state
func ValidReportStatus(s string) bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewing, ReportStatusResolved, ReportStatusRejected:
		return true
	}
	return false
}

// Report is a user-to-user complaint handled by administrators
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	TargetID   string `gorm:"not null;index" json:"target_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`
	Target     User   `gorm:"foreignKey:TargetID" json:"target,omitempty"`

	Reason  string `gorm:"not null" json:"reason"`
	Details string `gorm:"type:text" json:"details"`

	Status     string `gorm:"not null;default:pending;index" json:"status"`
	Resolution string `gorm:"type:text" json:"resolution,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
