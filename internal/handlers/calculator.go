package handlers

import (
	"errors"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Emission coefficients, kg CO2e per unit. Sources are rounded IPCC/EPA
// per-activity averages; the absolute values matter less than their
// ratios since points derive from the delta against the baseline.
const (
	carKgPerKm        = 0.192
	transitKgPerKm    = 0.089
	electricityKgKwh  = 0.4
	meatKgPerServing  = 3.0
	flightKgEach      = 250.0
	wasteKgPerKg      = 0.7
	recycleWasteScale = 0.7 // recycling cuts waste emissions by 30%

	weeksPerMonth = 4.345
	weeksPerYear  = 52.18

	// baselineWeeklyKg is the average weekly footprint the savings are
	// measured against (~10 t CO2e/year).
	baselineWeeklyKg = 190.0

	basePoints              = 10
	maxPointsPerCalculation = 200
)

// ComputeFootprint converts questionnaire answers into a weekly footprint
// in kg CO2e.
func ComputeFootprint(a models.CalculationAnswers) float64 {
	footprint := a.CarKmPerWeek*carKgPerKm +
		a.PublicTransitKmWeek*transitKgPerKm +
		a.ElectricityKwhMonth/weeksPerMonth*electricityKgKwh +
		a.MeatServingsWeek*meatKgPerServing +
		a.FlightsPerYear/weeksPerYear*flightKgEach

	waste := a.WasteKgPerWeek * wasteKgPerKg
	if a.Recycles {
		waste *= recycleWasteScale
	}
	return footprint + waste
}

// pointsFor awards participation plus a savings bonus, capped per day
func pointsFor(savedKg float64) int {
	points := basePoints + int(math.Round(savedKg))
	if points > maxPointsPerCalculation {
		points = maxPointsPerCalculation
	}
	return points
}

type createCalculationRequest struct {
	Answers models.CalculationAnswers `json:"answers" binding:"required"`
}

// CreateCalculation computes a footprint from the questionnaire, enforces
// the one-per-UTC-day rule and applies the gamification rewards. A level
// crossing emits an achievement notification after the commit.
func (h *Handlers) CreateCalculation(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createCalculationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid calculation payload: "+err.Error())
		return
	}
	if err := validateAnswers(req.Answers); err != nil {
		util.RespondWithAPIError(c, err)
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	var existing models.Calculation
	err := database.DB.
		Where("user_id = ? AND date = ?", user.ID, today).
		First(&existing).Error
	if err == nil {
		util.RespondWithAPIError(c, apierrors.DailyLimit("calculation"))
		return
	}

	footprint := ComputeFootprint(req.Answers)
	saved := baselineWeeklyKg - footprint
	if saved < 0 {
		saved = 0
	}
	points := pointsFor(saved)

	calculation := models.Calculation{
		UserID:        user.ID,
		Date:          today,
		Answers:       req.Answers,
		FootprintKg:   footprint,
		SavedKg:       saved,
		PointsAwarded: points,
	}

	oldLevel := models.EcoLevel(user.Points)
	newPoints := user.Points + points
	newLevel := models.EcoLevel(newPoints)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&calculation).Error; err != nil {
			return err
		}
		return tx.Model(user).Updates(map[string]interface{}{
			"points":       newPoints,
			"carbon_saved": gorm.Expr("carbon_saved + ?", saved),
			"eco_level":    newLevel,
		}).Error
	})
	if err != nil {
		// The unique (user_id, date) index backstops a race between the
		// duplicate check and the insert.
		if isUniqueViolation(err) {
			util.RespondWithAPIError(c, apierrors.DailyLimit("calculation"))
			return
		}
		logger.ErrorWithFields("creating calculation", err, zap.String("user_id", user.ID))
		util.RespondInternalError(c, "could not save calculation")
		return
	}

	if newLevel > oldLevel {
		h.notify.Achievement(user.ID, newLevel)
	}

	c.JSON(http.StatusCreated, gin.H{
		"calculation": calculation,
		"points":      newPoints,
		"eco_level":   newLevel,
		"leveled_up":  newLevel > oldLevel,
	})
}

// ListCalculations returns the caller's footprint history, newest first
func (h *Handlers) ListCalculations(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	p := util.ParsePagination(c, 30, 100)

	var total int64
	database.DB.Model(&models.Calculation{}).Where("user_id = ?", user.ID).Count(&total)

	var calculations []models.Calculation
	err := database.DB.Where("user_id = ?", user.ID).
		Order("date DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&calculations).Error
	if err != nil {
		util.RespondInternalError(c, "could not fetch history")
		return
	}

	c.JSON(http.StatusOK, gin.H{"calculations": calculations, "meta": p.Meta(total)})
}

// validateAnswers rejects negative or absurd questionnaire values
func validateAnswers(a models.CalculationAnswers) *apierrors.APIError {
	checks := []struct {
		name  string
		value float64
		max   float64
	}{
		{"car_km_per_week", a.CarKmPerWeek, 10000},
		{"public_transit_km_per_week", a.PublicTransitKmWeek, 10000},
		{"electricity_kwh_per_month", a.ElectricityKwhMonth, 20000},
		{"meat_servings_per_week", a.MeatServingsWeek, 100},
		{"flights_per_year", a.FlightsPerYear, 500},
		{"waste_kg_per_week", a.WasteKgPerWeek, 1000},
	}
	for _, check := range checks {
		if check.value < 0 {
			return apierrors.ValidationError(check.name, "must not be negative")
		}
		if check.value > check.max {
			return apierrors.ValidationError(check.name, "value out of range")
		}
	}
	return nil
}

// isUniqueViolation detects duplicate-key failures from postgres (23505)
// and from the sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	// sqlite (tests) surfaces the violation as a plain error string
	return containsAny(err.Error(), "duplicate key", "UNIQUE constraint failed")
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
