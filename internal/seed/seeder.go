// Package seed fills a development database with plausible fake data.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const seedPassword = "greenprint-dev"

// Run seeds users, posts, comments, likes, stories, friendships and
// calculations. Every seeded account shares the development password.
func Run(userCount int) error {
	if userCount <= 0 {
		userCount = 25
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(seedPassword), bcrypt.MinCost)
	if err != nil {
		return fmt.Errorf("hashing seed password: %w", err)
	}

	users := make([]models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		now := time.Now().UTC()
		user := models.User{
			Email:        gofakeit.Email(),
			Username:     fmt.Sprintf("%s%d", gofakeit.Username(), gofakeit.Number(10, 9999)),
			PasswordHash: string(hash),
			Bio:          gofakeit.Sentence(10),
			AvatarURL:    gofakeit.ImageURL(256, 256),
			Points:       gofakeit.Number(0, 6000),
			CarbonSaved:  gofakeit.Float64Range(0, 2000),
			LastActiveAt: &now,
		}
		user.EcoLevelNum = models.EcoLevel(user.Points)
		if err := database.DB.Create(&user).Error; err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}

	// First seeded user is the development admin
	database.DB.Model(&users[0]).Update("is_admin", true)

	for _, user := range users {
		for i := 0; i < gofakeit.Number(0, 5); i++ {
			post := models.Post{
				UserID:  user.ID,
				Content: gofakeit.Paragraph(1, 3, 12, " "),
			}
			if err := database.DB.Create(&post).Error; err != nil {
				return fmt.Errorf("seeding post: %w", err)
			}

			seedLikesAndComments(&post, users)
		}

		if gofakeit.Bool() {
			story := models.Story{
				UserID:   user.ID,
				Title:    gofakeit.Sentence(5),
				Content:  gofakeit.Paragraph(2, 4, 15, " "),
				Category: models.StoryCategories[rand.Intn(len(models.StoryCategories))],
				Status:   randomStoryStatus(),
			}
			if err := database.DB.Create(&story).Error; err != nil {
				return fmt.Errorf("seeding story: %w", err)
			}
		}

		seedCalculations(&user)
	}

	seedFriendships(users)

	logger.Log.Info("database seeded",
		zap.Int("users", len(users)),
		zap.String("password", seedPassword))
	return nil
}

func seedLikesAndComments(post *models.Post, users []models.User) {
	likers := rand.Perm(len(users))[:gofakeit.Number(0, min(8, len(users)))]
	for _, idx := range likers {
		like := models.PostLike{PostID: post.ID, UserID: users[idx].ID}
		database.DB.Create(&like)
	}

	commentCount := gofakeit.Number(0, 4)
	for i := 0; i < commentCount; i++ {
		comment := models.Comment{
			PostID:  post.ID,
			UserID:  users[rand.Intn(len(users))].ID,
			Content: gofakeit.Sentence(8),
		}
		database.DB.Create(&comment)
	}

	var likes, comments int64
	database.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	database.DB.Model(&models.Comment{}).Where("post_id = ?", post.ID).Count(&comments)
	database.DB.Model(post).Updates(map[string]interface{}{
		"likes_count":    likes,
		"comments_count": comments,
	})
}

func seedCalculations(user *models.User) {
	days := gofakeit.Number(0, 14)
	for i := 0; i < days; i++ {
		answers := models.CalculationAnswers{
			CarKmPerWeek:        gofakeit.Float64Range(0, 400),
			PublicTransitKmWeek: gofakeit.Float64Range(0, 200),
			ElectricityKwhMonth: gofakeit.Float64Range(50, 600),
			MeatServingsWeek:    gofakeit.Float64Range(0, 20),
			FlightsPerYear:      gofakeit.Float64Range(0, 10),
			WasteKgPerWeek:      gofakeit.Float64Range(1, 30),
			Recycles:            gofakeit.Bool(),
		}
		date := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, -i)
		calc := models.Calculation{
			UserID:        user.ID,
			Date:          date,
			Answers:       answers,
			FootprintKg:   gofakeit.Float64Range(50, 250),
			SavedKg:       gofakeit.Float64Range(0, 120),
			PointsAwarded: gofakeit.Number(10, 150),
		}
		database.DB.Create(&calc)
	}
}

func seedFriendships(users []models.User) {
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if rand.Float64() > 0.15 {
				continue
			}
			a, b := models.OrderPair(users[i].ID, users[j].ID)
			friendship := models.Friendship{UserID: a, FriendID: b}
			database.DB.Create(&friendship)
		}
	}
}

func randomStoryStatus() string {
	switch rand.Intn(4) {
	case 0:
		return models.StoryStatusPending
	case 1, 2:
		return models.StoryStatusPublished
	default:
		return models.StoryStatusRejected
	}
}
