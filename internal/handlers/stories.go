package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type createStoryRequest struct {
	Title    string `json:"title" binding:"required,min=3,max=200"`
	Content  string `json:"content" binding:"required,min=10,max=10000"`
	Category string `json:"category" binding:"required"`
}

// CreateStory submits a success story into the moderation queue. Every
// public submission starts at pending regardless of the payload.
func (h *Handlers) CreateStory(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid story payload: "+err.Error())
		return
	}
	if !models.ValidStoryCategory(req.Category) {
		util.RespondValidationError(c, "category", "unknown category")
		return
	}

	story := models.Story{
		UserID:   user.ID,
		Title:    strings.TrimSpace(req.Title),
		Content:  strings.TrimSpace(req.Content),
		Category: req.Category,
		Status:   models.StoryStatusPending,
	}
	if err := database.DB.Create(&story).Error; err != nil {
		logger.ErrorWithFields("creating story", err, zap.String("user_id", user.ID))
		util.RespondInternalError(c, "could not submit story")
		return
	}
	story.User = *user

	c.JSON(http.StatusCreated, gin.H{"story": story})
}

// ListStories returns published stories, newest first, optionally filtered
// by category.
func (h *Handlers) ListStories(c *gin.Context) {
	p := util.ParsePagination(c, 20, 50)

	query := database.DB.Model(&models.Story{}).
		Preload("User").
		Where("status = ?", models.StoryStatusPublished)

	if category := c.Query("category"); category != "" {
		if !models.ValidStoryCategory(category) {
			util.RespondValidationError(c, "category", "unknown category")
			return
		}
		query = query.Where("category = ?", category)
	}

	var total int64
	query.Count(&total)

	var stories []models.Story
	err := query.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&stories).Error
	if err != nil {
		util.RespondInternalError(c, "could not list stories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories, "meta": p.Meta(total)})
}

// ListMyStories returns the caller's own stories in every state
func (h *Handlers) ListMyStories(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	p := util.ParsePagination(c, 20, 50)

	var total int64
	database.DB.Model(&models.Story{}).Where("user_id = ?", user.ID).Count(&total)

	var stories []models.Story
	err := database.DB.Where("user_id = ?", user.ID).
		Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&stories).Error
	if err != nil {
		util.RespondInternalError(c, "could not list stories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories, "meta": p.Meta(total)})
}

// GetStory returns a single story. Unpublished stories are visible only to
// their owner or an admin, and read as not-found to everyone else.
func (h *Handlers) GetStory(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var story models.Story
	if err := database.DB.Preload("User").First(&story, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.Status != models.StoryStatusPublished && story.UserID != user.ID && !user.IsAdmin {
		util.RespondNotFound(c, "story")
		return
	}

	var like models.StoryLike
	isLiked := database.DB.
		Where("story_id = ? AND user_id = ?", story.ID, user.ID).
		First(&like).Error == nil

	c.JSON(http.StatusOK, gin.H{"story": story, "is_liked": isLiked})
}

// ToggleStoryLike likes or unlikes a published story. Liking an
// unpublished story is forbidden even for its owner.
func (h *Handlers) ToggleStoryLike(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	storyID := c.Param("id")
	var story models.Story
	if err := database.DB.First(&story, "id = ?", storyID).Error; err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.Status != models.StoryStatusPublished {
		util.RespondForbidden(c, "story is not published")
		return
	}

	var isLiked bool
	var likesCount int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var like models.StoryLike
		err := tx.Where("story_id = ? AND user_id = ?", storyID, user.ID).First(&like).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			isLiked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			newLike := models.StoryLike{StoryID: storyID, UserID: user.ID}
			if err := tx.Create(&newLike).Error; err != nil {
				return err
			}
			isLiked = true
		default:
			return err
		}

		if err := tx.Model(&models.StoryLike{}).Where("story_id = ?", storyID).Count(&likesCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Story{}).Where("id = ?", storyID).
			Update("likes_count", likesCount).Error
	})
	if err != nil {
		logger.ErrorWithFields("toggling story like", err, zap.String("story_id", storyID))
		util.RespondInternalError(c, "could not update like")
		return
	}

	h.ws.BroadcastStoryLikeUpdate(&websocket.StoryLikeUpdatePayload{
		StoryID:    storyID,
		LikesCount: int(likesCount),
		IsLiked:    isLiked,
		LikerID:    user.ID,
	})
	if isLiked && story.UserID != user.ID {
		h.ws.NotifyLike(story.UserID, gin.H{
			"story_id": storyID,
			"liker_id": user.ID,
			"username": user.Username,
		})
	}

	c.JSON(http.StatusOK, gin.H{"is_liked": isLiked, "likes_count": likesCount})
}

// DeleteStory removes the caller's own story (admins may remove any)
func (h *Handlers) DeleteStory(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var story models.Story
	if err := database.DB.First(&story, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own stories")
		return
	}

	if err := database.DB.Delete(&story).Error; err != nil {
		util.RespondInternalError(c, "could not delete story")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
