package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
)

// ListNotifications returns the caller's notifications, newest first,
// with the unread total. unread=true narrows to unread rows.
func (h *Handlers) ListNotifications(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	p := util.ParsePagination(c, 20, 100)

	query := database.DB.Model(&models.Notification{}).Where("user_id = ?", user.ID)
	if unread, set := util.ParseBoolFilter(c, "unread"); set && unread {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&notifications).Error
	if err != nil {
		util.RespondInternalError(c, "could not fetch notifications")
		return
	}

	unreadCount, err := h.notify.UnreadCount(user.ID)
	if err != nil {
		util.RespondInternalError(c, "could not fetch notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"unread_count":  unreadCount,
		"meta":          p.Meta(total),
	})
}

// MarkNotificationRead marks one of the caller's notifications as read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Update("is_read", true)
	if result.Error != nil {
		util.RespondInternalError(c, "could not update notification")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	h.notify.PushUnreadCount(user.ID)
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every unread notification as read
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true).Error
	if err != nil {
		util.RespondInternalError(c, "could not update notifications")
		return
	}

	h.notify.PushUnreadCount(user.ID)
	c.JSON(http.StatusOK, gin.H{"read": true})
}

// DeleteNotification removes one of the caller's notifications
func (h *Handlers) DeleteNotification(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	result := database.DB.
		Where("id = ? AND user_id = ?", c.Param("id"), user.ID).
		Delete(&models.Notification{})
	if result.Error != nil {
		util.RespondInternalError(c, "could not delete notification")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	h.notify.PushUnreadCount(user.ID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// GetNotificationSettings returns the caller's settings, creating the
// enabled defaults on first access.
func (h *Handlers) GetNotificationSettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	settings, err := h.notify.Settings(user.ID)
	if err != nil {
		util.RespondInternalError(c, "could not load notification settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

type updateSettingsRequest struct {
	Enabled               *bool `json:"enabled"`
	FriendRequestsEnabled *bool `json:"friend_requests_enabled"`
	AchievementsEnabled   *bool `json:"achievements_enabled"`
	StoriesEnabled        *bool `json:"stories_enabled"`
	ReportsEnabled        *bool `json:"reports_enabled"`
	TipsEnabled           *bool `json:"tips_enabled"`
}

// UpdateNotificationSettings applies partial toggle updates
func (h *Handlers) UpdateNotificationSettings(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid settings payload")
		return
	}

	settings, err := h.notify.UpdateSettings(user.ID, func(s *models.NotificationSettings) {
		if req.Enabled != nil {
			s.Enabled = *req.Enabled
		}
		if req.FriendRequestsEnabled != nil {
			s.FriendRequestsEnabled = *req.FriendRequestsEnabled
		}
		if req.AchievementsEnabled != nil {
			s.AchievementsEnabled = *req.AchievementsEnabled
		}
		if req.StoriesEnabled != nil {
			s.StoriesEnabled = *req.StoriesEnabled
		}
		if req.ReportsEnabled != nil {
			s.ReportsEnabled = *req.ReportsEnabled
		}
		if req.TipsEnabled != nil {
			s.TipsEnabled = *req.TipsEnabled
		}
	})
	if err != nil {
		util.RespondInternalError(c, "could not update notification settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
