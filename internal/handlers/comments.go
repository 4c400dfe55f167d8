package handlers

import (
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

type createCommentRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreateComment adds a comment to a post and broadcasts it with the
// recounted comment total.
func (h *Handlers) CreateComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	postID := c.Param("id")
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		util.RespondValidationError(c, "content", "content must not be empty")
		return
	}
	if len(content) > models.MaxCommentContentLength {
		util.RespondValidationError(c, "content", "content exceeds maximum length")
		return
	}

	comment := models.Comment{
		PostID:  postID,
		UserID:  user.ID,
		Content: content,
	}
	var commentsCount int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&commentsCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("comments_count", commentsCount).Error
	})
	if err != nil {
		logger.ErrorWithFields("creating comment", err, zap.String("post_id", postID))
		util.RespondInternalError(c, "could not create comment")
		return
	}
	comment.User = *user

	h.ws.BroadcastCommentAdded(&websocket.CommentPayload{
		CommentID:     comment.ID,
		PostID:        postID,
		UserID:        user.ID,
		Username:      user.Username,
		AvatarURL:     user.AvatarURL,
		Content:       comment.Content,
		CommentsCount: int(commentsCount),
		CreatedAt:     comment.CreatedAt.UnixMilli(),
	})

	c.JSON(http.StatusCreated, gin.H{"comment": comment, "comments_count": commentsCount})
}

// ListComments returns a post's comments, oldest first
func (h *Handlers) ListComments(c *gin.Context) {
	postID := c.Param("id")
	var post models.Post
	if err := database.DB.First(&post, "id = ?", postID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	p := util.ParsePagination(c, 50, 100)

	var total int64
	database.DB.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&total)

	var comments []models.Comment
	err := database.DB.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&comments).Error
	if err != nil {
		util.RespondInternalError(c, "could not list comments")
		return
	}

	c.JSON(http.StatusOK, gin.H{"comments": comments, "meta": p.Meta(total)})
}

// DeleteComment removes a comment. Allowed for the comment author, the
// post author, or an admin.
func (h *Handlers) DeleteComment(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var comment models.Comment
	if err := database.DB.First(&comment, "id = ?", c.Param("commentId")).Error; err != nil {
		util.RespondNotFound(c, "comment")
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", comment.PostID).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	if comment.UserID != user.ID && post.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you cannot delete this comment")
		return
	}

	var commentsCount int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&comment).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Comment{}).Where("post_id = ?", comment.PostID).Count(&commentsCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
			Update("comments_count", commentsCount).Error
	})
	if err != nil {
		util.RespondInternalError(c, "could not delete comment")
		return
	}

	h.ws.BroadcastCommentDeleted(&websocket.CommentDeletedPayload{
		CommentID:     comment.ID,
		PostID:        comment.PostID,
		CommentsCount: int(commentsCount),
	})

	c.JSON(http.StatusOK, gin.H{"deleted": true, "comments_count": commentsCount})
}
