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

type createPostRequest struct {
	Content string `json:"content" binding:"required"`
}

// CreatePost creates a feed post and broadcasts it
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "content is required")
		return
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		util.RespondValidationError(c, "content", "content must not be empty")
		return
	}
	if len(content) > models.MaxPostContentLength {
		util.RespondValidationError(c, "content", "content exceeds maximum length")
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Content: content,
	}
	if err := database.DB.Create(&post).Error; err != nil {
		logger.ErrorWithFields("creating post", err, zap.String("user_id", user.ID))
		util.RespondInternalError(c, "could not create post")
		return
	}
	post.User = *user

	h.ws.BroadcastPostCreated(&websocket.PostPayload{
		PostID:    post.ID,
		UserID:    user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		EcoLevel:  user.EcoLevelNum,
		Content:   post.Content,
		CreatedAt: post.CreatedAt.UnixMilli(),
	})

	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// ListPosts returns the feed, newest first. scope=friends narrows to the
// authenticated user's friends plus their own posts.
func (h *Handlers) ListPosts(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	p := util.ParsePagination(c, 20, 50)

	query := database.DB.Model(&models.Post{}).Preload("User")

	if c.Query("scope") == "friends" {
		friendIDs := friendIDsOf(user.ID)
		friendIDs = append(friendIDs, user.ID)
		query = query.Where("user_id IN ?", friendIDs)
	}
	if authorID := c.Query("user_id"); authorID != "" {
		query = query.Where("user_id = ?", authorID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "could not list posts")
		return
	}

	var posts []models.Post
	err := query.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&posts).Error
	if err != nil {
		util.RespondInternalError(c, "could not list posts")
		return
	}

	// Mark which posts the viewer has liked
	likedSet := likedPostIDs(user.ID, posts)

	items := make([]gin.H, 0, len(posts))
	for _, post := range posts {
		items = append(items, gin.H{
			"post":     post,
			"is_liked": likedSet[post.ID],
		})
	}

	c.JSON(http.StatusOK, gin.H{"posts": items, "meta": p.Meta(total)})
}

// GetPost returns a single post with its like state for the viewer
func (h *Handlers) GetPost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.Preload("User").First(&post, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}

	var like models.PostLike
	isLiked := database.DB.
		Where("post_id = ? AND user_id = ?", post.ID, user.ID).
		First(&like).Error == nil

	c.JSON(http.StatusOK, gin.H{"post": post, "is_liked": isLiked})
}

// DeletePost removes the caller's own post (admins may remove any)
func (h *Handlers) DeletePost(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var post models.Post
	if err := database.DB.First(&post, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "post")
		return
	}
	if post.UserID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "you can only delete your own posts")
		return
	}

	if err := database.DB.Delete(&post).Error; err != nil {
		util.RespondInternalError(c, "could not delete post")
		return
	}

	h.ws.BroadcastPostDeleted(post.ID)
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// ToggleLike likes or unlikes a post. The stored counter is recounted from
// the like rows inside the transaction, so repeated toggles and concurrent
// likers always converge on the true count.
func (h *Handlers) ToggleLike(c *gin.Context) {
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

	var isLiked bool
	var likesCount int64
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var like models.PostLike
		err := tx.Where("post_id = ? AND user_id = ?", postID, user.ID).First(&like).Error
		switch {
		case err == nil:
			if err := tx.Delete(&like).Error; err != nil {
				return err
			}
			isLiked = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			newLike := models.PostLike{PostID: postID, UserID: user.ID}
			if err := tx.Create(&newLike).Error; err != nil {
				return err
			}
			isLiked = true
		default:
			return err
		}

		if err := tx.Model(&models.PostLike{}).Where("post_id = ?", postID).Count(&likesCount).Error; err != nil {
			return err
		}
		return tx.Model(&models.Post{}).Where("id = ?", postID).
			Update("likes_count", likesCount).Error
	})
	if err != nil {
		logger.ErrorWithFields("toggling like", err,
			zap.String("post_id", postID), zap.String("user_id", user.ID))
		util.RespondInternalError(c, "could not update like")
		return
	}

	h.ws.BroadcastLikeUpdate(&websocket.LikeUpdatePayload{
		PostID:     postID,
		LikesCount: int(likesCount),
		IsLiked:    isLiked,
		LikerID:    user.ID,
	})
	if isLiked && post.UserID != user.ID {
		h.ws.NotifyLike(post.UserID, gin.H{
			"post_id":  postID,
			"liker_id": user.ID,
			"username": user.Username,
		})
	}

	c.JSON(http.StatusOK, gin.H{"is_liked": isLiked, "likes_count": likesCount})
}

// friendIDsOf returns the ids of everyone the user is friends with
func friendIDsOf(userID string) []string {
	var friendships []models.Friendship
	database.DB.Where("user_id = ? OR friend_id = ?", userID, userID).Find(&friendships)

	ids := make([]string, 0, len(friendships))
	for _, f := range friendships {
		if f.UserID == userID {
			ids = append(ids, f.FriendID)
		} else {
			ids = append(ids, f.UserID)
		}
	}
	return ids
}

// likedPostIDs returns the subset of posts the user has liked, as a set
func likedPostIDs(userID string, posts []models.Post) map[string]bool {
	set := make(map[string]bool)
	if len(posts) == 0 {
		return set
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	var likes []models.PostLike
	database.DB.Where("user_id = ? AND post_id IN ?", userID, ids).Find(&likes)
	for _, l := range likes {
		set[l.PostID] = true
	}
	return set
}
