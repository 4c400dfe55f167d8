// Package notify persists notifications and pushes them to connected
// clients. Every create consults the recipient's notification settings
// first; a disabled channel means no row and no push.
package notify

import (
	"errors"
	"fmt"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Pusher is the realtime surface the service emits on. The WebSocket
// handler satisfies it; tests substitute a recorder.
type Pusher interface {
	NotifyNotification(userID string, payload *websocket.NotificationPayload)
	UpdateUnreadCount(userID string, count int64)
}

type Service struct {
	pusher Pusher
}

func NewService(pusher Pusher) *Service {
	return &Service{pusher: pusher}
}

// Option customizes an outgoing notification
type Option func(*models.Notification)

func WithLink(link string) Option {
	return func(n *models.Notification) { n.Link = link }
}

func WithRelatedID(id string) Option {
	return func(n *models.Notification) { n.RelatedID = id }
}

// Settings returns the user's notification settings, creating the enabled
// defaults if no row exists yet.
func (s *Service) Settings(userID string) (*models.NotificationSettings, error) {
	var settings models.NotificationSettings
	err := database.DB.Where("user_id = ?", userID).First(&settings).Error
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loading notification settings: %w", err)
	}

	settings = models.DefaultNotificationSettings(userID)
	// Two concurrent first-reads can race to insert; the unique index on
	// user_id makes one win and the other reload.
	err = database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&settings).Error
	if err != nil {
		return nil, fmt.Errorf("creating notification settings: %w", err)
	}
	if settings.ID == "" {
		if err := database.DB.Where("user_id = ?", userID).First(&settings).Error; err != nil {
			return nil, fmt.Errorf("reloading notification settings: %w", err)
		}
	}
	return &settings, nil
}

// UpdateSettings persists new settings values for the user
func (s *Service) UpdateSettings(userID string, apply func(*models.NotificationSettings)) (*models.NotificationSettings, error) {
	settings, err := s.Settings(userID)
	if err != nil {
		return nil, err
	}
	apply(settings)
	if err := database.DB.Save(settings).Error; err != nil {
		return nil, fmt.Errorf("saving notification settings: %w", err)
	}
	return settings, nil
}

// Create persists a notification for the user and pushes it live. If the
// user's settings disable this type the call is a silent no-op and returns
// (nil, nil).
func (s *Service) Create(userID string, typ models.NotificationType, title, message string, opts ...Option) (*models.Notification, error) {
	if !models.ValidNotificationType(typ) {
		return nil, fmt.Errorf("unknown notification type %q", typ)
	}

	settings, err := s.Settings(userID)
	if err != nil {
		return nil, err
	}
	if !settings.Allows(typ) {
		return nil, nil
	}

	notification := models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	for _, opt := range opts {
		opt(&notification)
	}

	if err := database.DB.Create(&notification).Error; err != nil {
		return nil, fmt.Errorf("creating notification: %w", err)
	}

	s.push(userID, &notification)
	return &notification, nil
}

// push delivers the new notification and the recomputed unread count. A
// push failure never fails the caller; the row is already persisted.
func (s *Service) push(userID string, n *models.Notification) {
	if s.pusher == nil {
		return
	}

	s.pusher.NotifyNotification(userID, &websocket.NotificationPayload{
		ID:        n.ID,
		Type:      string(n.Type),
		Title:     n.Title,
		Message:   n.Message,
		Link:      n.Link,
		RelatedID: n.RelatedID,
		CreatedAt: n.CreatedAt.UnixMilli(),
	})

	count, err := s.UnreadCount(userID)
	if err != nil {
		logger.Log.Warn("unread count recount failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.pusher.UpdateUnreadCount(userID, count)
}

// UnreadCount counts the user's unread notifications
func (s *Service) UnreadCount(userID string) (int64, error) {
	var count int64
	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// PushUnreadCount recounts and pushes the user's unread total, used after
// read-state mutations.
func (s *Service) PushUnreadCount(userID string) {
	if s.pusher == nil {
		return
	}
	count, err := s.UnreadCount(userID)
	if err != nil {
		logger.Log.Warn("unread count recount failed",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.pusher.UpdateUnreadCount(userID, count)
}

// AdminsNewReport fans a new-report notification out to every admin
func (s *Service) AdminsNewReport(report *models.Report, reporterName string) {
	var admins []models.User
	if err := database.DB.Where("is_admin = ? AND is_banned = ?", true, false).Find(&admins).Error; err != nil {
		logger.Log.Warn("listing admins for report fan-out", zap.Error(err))
		return
	}
	for _, admin := range admins {
		_, err := s.Create(admin.ID, models.NotificationNewReport,
			"New report filed",
			fmt.Sprintf("%s reported a user: %s", reporterName, report.Reason),
			WithRelatedID(report.ID), WithLink("/admin/reports/"+report.ID))
		if err != nil {
			logger.Log.Warn("notifying admin of report",
				zap.String("admin_id", admin.ID), zap.Error(err))
		}
	}
}

// ReportResponse tells a reporter their report was handled
func (s *Service) ReportResponse(report *models.Report) {
	_, err := s.Create(report.ReporterID, models.NotificationReportResponse,
		"Your report was reviewed",
		fmt.Sprintf("Your report is now %s: %s", report.Status, report.Resolution),
		WithRelatedID(report.ID))
	if err != nil {
		logger.Log.Warn("sending report response", zap.Error(err))
	}
}

// StoryApproved tells an author their story was published
func (s *Service) StoryApproved(story *models.Story) {
	_, err := s.Create(story.UserID, models.NotificationStoryApproved,
		"Story published",
		fmt.Sprintf("Your story %q is now live", story.Title),
		WithRelatedID(story.ID), WithLink("/stories/"+story.ID))
	if err != nil {
		logger.Log.Warn("sending story approval", zap.Error(err))
	}
}

// StoryRejected tells an author their story was turned down
func (s *Service) StoryRejected(story *models.Story) {
	_, err := s.Create(story.UserID, models.NotificationStoryRejected,
		"Story not published",
		fmt.Sprintf("Your story %q was not approved", story.Title),
		WithRelatedID(story.ID))
	if err != nil {
		logger.Log.Warn("sending story rejection", zap.Error(err))
	}
}

// Achievement congratulates the user on reaching a new eco level
func (s *Service) Achievement(userID string, level int) {
	_, err := s.Create(userID, models.NotificationAchievement,
		"Level up!",
		fmt.Sprintf("You reached eco level %d", level))
	if err != nil {
		logger.Log.Warn("sending achievement", zap.Error(err))
	}
}

// EcoTip fans a sustainability tip out to every active user. Recipients
// who disabled tips are skipped by the settings check in Create.
func (s *Service) EcoTip(title, message string) {
	var users []models.User
	if err := database.DB.Where("is_banned = ?", false).Find(&users).Error; err != nil {
		logger.Log.Warn("listing users for tip fan-out", zap.Error(err))
		return
	}
	for _, user := range users {
		if _, err := s.Create(user.ID, models.NotificationEcoTip, title, message); err != nil {
			logger.Log.Warn("sending eco tip",
				zap.String("user_id", user.ID), zap.Error(err))
		}
	}
}

// FriendRequestReceived tells a user someone wants to be their friend
func (s *Service) FriendRequestReceived(receiverID, senderName, requestID string) {
	_, err := s.Create(receiverID, models.NotificationFriendRequest,
		"New friend request",
		fmt.Sprintf("%s sent you a friend request", senderName),
		WithRelatedID(requestID), WithLink("/friends/requests"))
	if err != nil {
		logger.Log.Warn("sending friend request notification", zap.Error(err))
	}
}
