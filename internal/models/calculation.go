package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CalculationAnswers is the questionnaire input, stored as jsonb. Units:
// km/week for travel, kWh/month for electricity, servings/week for meat,
// flights/year, kg/week for waste.
type CalculationAnswers struct {
	CarKmPerWeek        float64 `json:"car_km_per_week"`
	PublicTransitKmWeek float64 `json:"public_transit_km_per_week"`
	ElectricityKwhMonth float64 `json:"electricity_kwh_per_month"`
	MeatServingsWeek    float64 `json:"meat_servings_per_week"`
	FlightsPerYear      float64 `json:"flights_per_year"`
	WasteKgPerWeek      float64 `json:"waste_kg_per_week"`
	Recycles            bool    `json:"recycles"`
}

// Calculation is one footprint submission. The unique (user_id, date) index
// enforces the one-per-day rule at the database level.
type Calculation struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"not null;index;uniqueIndex:idx_calculations_user_date" json:"user_id"`

	// Date is the UTC day bucket, always midnight
	Date time.Time `gorm:"not null;uniqueIndex:idx_calculations_user_date" json:"date"`

	Answers CalculationAnswers `gorm:"type:jsonb;serializer:json" json:"answers"`

	FootprintKg   float64 `gorm:"not null" json:"footprint_kg"`
	SavedKg       float64 `gorm:"not null" json:"saved_kg"`
	PointsAwarded int     `gorm:"not null" json:"points_awarded"`

	CreatedAt time.Time `json:"created_at"`
}

func (c *Calculation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
