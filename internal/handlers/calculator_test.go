package handlers

import (
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func lowImpactAnswers() map[string]interface{} {
	return map[string]interface{}{
		"answers": map[string]interface{}{
			"car_km_per_week":            10.0,
			"public_transit_km_per_week": 50.0,
			"electricity_kwh_per_month":  150.0,
			"meat_servings_per_week":     2.0,
			"flights_per_year":           0.0,
			"waste_kg_per_week":          5.0,
			"recycles":                   true,
		},
	}
}

func (s *HandlersSuite) TestCalculationAwardsPoints() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/calculations", user.ID, lowImpactAnswers())
	s.Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	calc := body["calculation"].(map[string]interface{})
	s.Greater(calc["saved_kg"].(float64), 0.0)
	s.Greater(body["points"].(float64), 0.0)

	var stored models.User
	s.Require().NoError(database.DB.First(&stored, "id = ?", user.ID).Error)
	s.Greater(stored.Points, 0)
	s.Greater(stored.CarbonSaved, 0.0)
}

func (s *HandlersSuite) TestSecondCalculationSameDayRejected() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/calculations", user.ID, lowImpactAnswers())
	s.Equal(http.StatusCreated, w.Code)

	w = s.request("POST", "/api/v1/calculations", user.ID, lowImpactAnswers())
	s.Equal(http.StatusConflict, w.Code)
	s.Equal("DAILY_LIMIT", s.decode(w)["code"])

	// Only the first submission mutated anything
	var count int64
	database.DB.Model(&models.Calculation{}).Where("user_id = ?", user.ID).Count(&count)
	s.EqualValues(1, count)
}

func (s *HandlersSuite) TestCalculationRejectsNegativeAnswers() {
	user := s.createUser("alice", false)

	payload := lowImpactAnswers()
	payload["answers"].(map[string]interface{})["car_km_per_week"] = -5.0

	w := s.request("POST", "/api/v1/calculations", user.ID, payload)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestLevelCrossingEmitsAchievement() {
	user := s.createUser("alice", false)
	// One good calculation away from level 2
	s.Require().NoError(database.DB.Model(&models.User{}).
		Where("id = ?", user.ID).Update("points", 240).Error)

	w := s.request("POST", "/api/v1/calculations", user.ID, lowImpactAnswers())
	s.Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	s.Equal(true, body["leveled_up"])
	s.EqualValues(2, body["eco_level"])

	var notification models.Notification
	err := database.DB.Where("user_id = ? AND type = ?", user.ID, models.NotificationAchievement).
		First(&notification).Error
	s.NoError(err)
}

func (s *HandlersSuite) TestCalculationHistoryPaginated() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/calculations", user.ID, lowImpactAnswers())
	s.Equal(http.StatusCreated, w.Code)

	w = s.request("GET", "/api/v1/calculations?page=1&limit=10", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Len(body["calculations"].([]interface{}), 1)
	meta := body["meta"].(map[string]interface{})
	s.EqualValues(1, meta["total"])
}
