package notify

import (
	"sync"
	"testing"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordingPusher captures pushes instead of a live hub
type recordingPusher struct {
	mu            sync.Mutex
	notifications []*websocket.NotificationPayload
	counts        map[string]int64
}

func (p *recordingPusher) NotifyNotification(userID string, payload *websocket.NotificationPayload) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notifications = append(p.notifications, payload)
}

func (p *recordingPusher) UpdateUnreadCount(userID string, count int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.counts == nil {
		p.counts = make(map[string]int64)
	}
	p.counts[userID] = count
}

func setupDB(t *testing.T) {
	logger.InitializeForTests()

	db, err := gorm.Open(sqlite.Open("file:notify_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Notification{}, &models.NotificationSettings{},
	))
	database.DB = db
}

func createUser(t *testing.T, username string, banned bool) *models.User {
	user := models.User{
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		IsBanned:     banned,
		EcoLevelNum:  1,
	}
	require.NoError(t, database.DB.Create(&user).Error)
	return &user
}

func TestEcoTipFanOutHonorsSettings(t *testing.T) {
	setupDB(t)

	active := createUser(t, "active", false)
	optedOut := createUser(t, "optedout", false)
	createUser(t, "banned", true)

	settings := models.DefaultNotificationSettings(optedOut.ID)
	settings.TipsEnabled = false
	require.NoError(t, database.DB.Create(&settings).Error)

	pusher := &recordingPusher{}
	svc := NewService(pusher)
	svc.EcoTip("Eco tip of the day", "Take the bus once this week")

	// Only the active, opted-in user got a row
	var rows []models.Notification
	require.NoError(t, database.DB.Where("type = ?", models.NotificationEcoTip).Find(&rows).Error)
	require.Len(t, rows, 1)
	require.Equal(t, active.ID, rows[0].UserID)
	require.Equal(t, "Eco tip of the day", rows[0].Title)

	// And exactly one live push with the recounted unread total
	require.Len(t, pusher.notifications, 1)
	require.EqualValues(t, 1, pusher.counts[active.ID])
}
