package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
)

type updateProfileRequest struct {
	Username  *string `json:"username" binding:"omitempty,min=3,max=30"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	AvatarURL *string `json:"avatar_url" binding:"omitempty,url,max=500"`
}

// GetMe returns the authenticated user's full account
func (h *Handlers) GetMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateMe updates the authenticated user's profile fields
func (h *Handlers) UpdateMe(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid profile payload: "+err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		var existing models.User
		err := database.DB.
			Where("LOWER(username) = ? AND id != ?", strings.ToLower(username), user.ID).
			First(&existing).Error
		if err == nil {
			util.RespondConflict(c, "username")
			return
		}
		updates["username"] = username
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{"user": user})
		return
	}

	if err := database.DB.Model(user).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "could not update profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// GetUserProfile returns another user's public profile with social stats
func (h *Handlers) GetUserProfile(c *gin.Context) {
	userID := c.Param("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}
	if user.IsBanned {
		util.RespondNotFound(c, "user")
		return
	}

	var friendCount int64
	database.DB.Model(&models.Friendship{}).
		Where("user_id = ? OR friend_id = ?", userID, userID).
		Count(&friendCount)

	var postCount int64
	database.DB.Model(&models.Post{}).Where("user_id = ?", userID).Count(&postCount)

	resp := gin.H{
		"user":         user.Public(),
		"bio":          user.Bio,
		"friend_count": friendCount,
		"post_count":   postCount,
		"joined_at":    user.CreatedAt,
	}

	// When the viewer is authenticated, report the relationship state
	if viewerID, exists := c.Get(util.ContextUserIDKey); exists {
		resp["friendship_status"] = friendshipStatus(viewerID.(string), userID)
	}

	c.JSON(http.StatusOK, resp)
}

// friendshipStatus classifies viewer->target as one of
// self, friends, pending_sent, pending_received or none.
func friendshipStatus(viewerID, targetID string) string {
	if viewerID == targetID {
		return "self"
	}

	a, b := models.OrderPair(viewerID, targetID)
	var friendship models.Friendship
	if err := database.DB.Where("user_id = ? AND friend_id = ?", a, b).First(&friendship).Error; err == nil {
		return "friends"
	}

	var request models.FriendRequest
	err := database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", viewerID, targetID, models.FriendRequestPending).
		First(&request).Error
	if err == nil {
		return "pending_sent"
	}

	err = database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", targetID, viewerID, models.FriendRequestPending).
		First(&request).Error
	if err == nil {
		return "pending_received"
	}

	return "none"
}
