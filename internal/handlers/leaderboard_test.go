package handlers

import (
	"net/http"
	"time"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func todayUTC() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}

func (s *HandlersSuite) TestLeaderboardRanksByPoints() {
	first := s.createUser("first", false)
	second := s.createUser("second", false)
	third := s.createUser("third", false)
	banned := s.createUser("cheater", false)

	database.DB.Model(first).Update("points", 3000)
	database.DB.Model(second).Update("points", 2000)
	database.DB.Model(third).Update("points", 100)
	database.DB.Model(banned).Updates(map[string]interface{}{"points": 9999, "is_banned": true})

	w := s.request("GET", "/api/v1/leaderboard", third.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	entries := body["leaderboard"].([]interface{})
	s.Require().Len(entries, 3)
	s.Equal("first", entries[0].(map[string]interface{})["username"])
	s.Equal("second", entries[1].(map[string]interface{})["username"])
	s.EqualValues(1, entries[0].(map[string]interface{})["rank"])

	me := body["me"].(map[string]interface{})
	s.EqualValues(3, me["rank"])
}

func (s *HandlersSuite) TestLeaderboardRejectsUnknownPeriod() {
	user := s.createUser("alice", false)

	w := s.request("GET", "/api/v1/leaderboard?period=week", user.ID, nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestMonthlyLeaderboardSumsCalculations() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	for i, points := range []int{50, 120} {
		userID := []string{alice.ID, bob.ID}[i]
		calc := models.Calculation{
			UserID: userID, Date: todayUTC(), FootprintKg: 100,
			SavedKg: 50, PointsAwarded: points,
		}
		s.Require().NoError(database.DB.Create(&calc).Error)
	}

	w := s.request("GET", "/api/v1/leaderboard?period=month", alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	entries := body["leaderboard"].([]interface{})
	s.Require().Len(entries, 2)
	s.Equal("bob", entries[0].(map[string]interface{})["username"])
	s.EqualValues(120, entries[0].(map[string]interface{})["points"])

	me := body["me"].(map[string]interface{})
	s.EqualValues(2, me["rank"])
	s.EqualValues(50, me["points"])
}
