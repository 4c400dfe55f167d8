package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/cache"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
)

const leaderboardTTL = 60 * time.Second

type leaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	Username    string  `json:"username"`
	AvatarURL   string  `json:"avatar_url,omitempty"`
	Points      int     `json:"points"`
	CarbonSaved float64 `json:"carbon_saved"`
	EcoLevel    int     `json:"eco_level"`
}

// GetLeaderboard returns the top users by points for period=all (lifetime
// totals) or period=month (points earned this calendar month). The board
// is cached in Redis for 60s; the caller's own rank is computed fresh.
func (h *Handlers) GetLeaderboard(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", "all")
	if period != "all" && period != "month" {
		util.RespondValidationError(c, "period", "must be all or month")
		return
	}

	limit := 25
	cacheKey := fmt.Sprintf("leaderboard:%s:%d", period, limit)

	var entries []leaderboardEntry
	if err := cache.GetJSON(c.Request.Context(), cacheKey, &entries); err != nil {
		var buildErr error
		entries, buildErr = buildLeaderboard(period, limit)
		if buildErr != nil {
			util.RespondInternalError(c, "could not build leaderboard")
			return
		}
		cache.SetJSON(c.Request.Context(), cacheKey, entries, leaderboardTTL)
	}

	rank, points := userRank(user, period)

	c.JSON(http.StatusOK, gin.H{
		"leaderboard": entries,
		"period":      period,
		"me": gin.H{
			"rank":   rank,
			"points": points,
		},
	})
}

func buildLeaderboard(period string, limit int) ([]leaderboardEntry, error) {
	entries := make([]leaderboardEntry, 0, limit)

	if period == "month" {
		monthStart := monthStartUTC()
		rows := []struct {
			UserID string
			Points int
		}{}
		err := database.DB.Model(&models.Calculation{}).
			Select("user_id, SUM(points_awarded) AS points").
			Where("created_at >= ?", monthStart).
			Group("user_id").
			Order("points DESC").
			Limit(limit).
			Scan(&rows).Error
		if err != nil {
			return nil, err
		}

		ids := make([]string, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.UserID)
		}
		users := map[string]models.User{}
		if len(ids) > 0 {
			var list []models.User
			if err := database.DB.Where("id IN ? AND is_banned = ?", ids, false).Find(&list).Error; err != nil {
				return nil, err
			}
			for _, u := range list {
				users[u.ID] = u
			}
		}

		for _, r := range rows {
			u, ok := users[r.UserID]
			if !ok {
				continue
			}
			entries = append(entries, leaderboardEntry{
				Rank:        len(entries) + 1,
				UserID:      u.ID,
				Username:    u.Username,
				AvatarURL:   u.AvatarURL,
				Points:      r.Points,
				CarbonSaved: u.CarbonSaved,
				EcoLevel:    u.EcoLevelNum,
			})
		}
		return entries, nil
	}

	var users []models.User
	err := database.DB.
		Where("is_banned = ?", false).
		Order("points DESC, created_at ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	for i, u := range users {
		entries = append(entries, leaderboardEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			Username:    u.Username,
			AvatarURL:   u.AvatarURL,
			Points:      u.Points,
			CarbonSaved: u.CarbonSaved,
			EcoLevel:    u.EcoLevelNum,
		})
	}
	return entries, nil
}

// userRank computes the caller's 1-based rank within the period
func userRank(user *models.User, period string) (int64, int) {
	if period == "month" {
		monthStart := monthStartUTC()
		var myPoints int64
		database.DB.Model(&models.Calculation{}).
			Select("COALESCE(SUM(points_awarded), 0)").
			Where("user_id = ? AND created_at >= ?", user.ID, monthStart).
			Scan(&myPoints)

		var ahead int64
		database.DB.Raw(`
			SELECT COUNT(*) FROM (
				SELECT user_id, SUM(points_awarded) AS pts
				FROM calculations WHERE created_at >= ?
				GROUP BY user_id HAVING SUM(points_awarded) > ?
			) ranked`, monthStart, myPoints).Scan(&ahead)
		return ahead + 1, int(myPoints)
	}

	var ahead int64
	database.DB.Model(&models.User{}).
		Where("points > ? AND is_banned = ?", user.Points, false).
		Count(&ahead)
	return ahead + 1, user.Points
}

func monthStartUTC() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}
