package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/cache"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"go.uber.org/zap"
)

// adminUserSortColumns is the allow-list for the users listing sort
var adminUserSortColumns = []string{
	"created_at", "username", "email", "points", "carbon_saved", "last_active_at",
}

// AdminListUsers returns a paginated, filterable user listing.
// Page and limit are clamped, the sort column is checked against the
// allow-list, and search matches username or email case-insensitively.
func (h *Handlers) AdminListUsers(c *gin.Context) {
	p := util.ParsePagination(c, 20, 100)

	sortBy := util.ClampSortColumn(c.Query("sort_by"), adminUserSortColumns, "created_at")
	sortOrder := util.ClampSortOrder(c.Query("sort_order"), "DESC")

	query := database.DB.Model(&models.User{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(username) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	if isAdmin, set := util.ParseBoolFilter(c, "is_admin"); set {
		query = query.Where("is_admin = ?", isAdmin)
	}
	if isBanned, set := util.ParseBoolFilter(c, "is_banned"); set {
		query = query.Where("is_banned = ?", isBanned)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		util.RespondInternalError(c, "could not list users")
		return
	}

	var users []models.User
	err := query.Order(sortBy + " " + sortOrder).
		Limit(p.Limit).Offset(p.Offset).
		Find(&users).Error
	if err != nil {
		util.RespondInternalError(c, "could not list users")
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "pagination": p.Meta(total)})
}

type banRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason" binding:"omitempty,max=500"`
}

// AdminSetBan bans or unbans a user. Admins cannot ban themselves and
// cannot ban another admin without demoting them first. Banning kicks the
// user's live sockets.
func (h *Handlers) AdminSetBan(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == admin.ID {
		util.RespondWithAPIError(c, apierrors.SelfAction("you cannot ban yourself"))
		return
	}

	var req banRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid ban payload")
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}
	if req.Banned && target.IsAdmin {
		util.RespondForbidden(c, "demote the admin before banning them")
		return
	}

	if err := database.DB.Model(&target).Update("is_banned", req.Banned).Error; err != nil {
		util.RespondInternalError(c, "could not update user")
		return
	}

	if req.Banned {
		h.ws.DisconnectUser(target.ID)
	}

	logger.InfoWithFields("admin ban change",
		zap.String("admin_id", admin.ID),
		zap.String("target_id", target.ID),
		zap.Bool("banned", req.Banned),
		zap.String("reason", req.Reason))

	c.JSON(http.StatusOK, gin.H{"user_id": target.ID, "is_banned": req.Banned})
}

type adminToggleRequest struct {
	Admin bool `json:"admin"`
}

// AdminSetAdmin grants or revokes the admin flag. Self-demotion is
// rejected so the last admin cannot lock everyone out by accident.
func (h *Handlers) AdminSetAdmin(c *gin.Context) {
	admin, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	targetID := c.Param("id")
	if targetID == admin.ID {
		util.RespondWithAPIError(c, apierrors.SelfAction("you cannot change your own admin status"))
		return
	}

	var req adminToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid payload")
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	if err := database.DB.Model(&target).Update("is_admin", req.Admin).Error; err != nil {
		util.RespondInternalError(c, "could not update user")
		return
	}

	logger.InfoWithFields("admin role change",
		zap.String("admin_id", admin.ID),
		zap.String("target_id", target.ID),
		zap.Bool("is_admin", req.Admin))

	c.JSON(http.StatusOK, gin.H{"user_id": target.ID, "is_admin": req.Admin})
}

type adminStats struct {
	TotalUsers     int64 `json:"total_users"`
	BannedUsers    int64 `json:"banned_users"`
	TotalPosts     int64 `json:"total_posts"`
	TotalComments  int64 `json:"total_comments"`
	PendingStories int64 `json:"pending_stories"`
	PendingReports int64 `json:"pending_reports"`
	OnlineUsers    int   `json:"online_users"`
}

// AdminStats returns moderation dashboard totals, cached for 30s
func (h *Handlers) AdminStats(c *gin.Context) {
	const cacheKey = "admin:stats"

	var stats adminStats
	if err := cache.GetJSON(c.Request.Context(), cacheKey, &stats); err != nil {
		database.DB.Model(&models.User{}).Count(&stats.TotalUsers)
		database.DB.Model(&models.User{}).Where("is_banned = ?", true).Count(&stats.BannedUsers)
		database.DB.Model(&models.Post{}).Count(&stats.TotalPosts)
		database.DB.Model(&models.Comment{}).Count(&stats.TotalComments)
		database.DB.Model(&models.Story{}).Where("status = ?", models.StoryStatusPending).Count(&stats.PendingStories)
		database.DB.Model(&models.Report{}).Where("status = ?", models.ReportStatusPending).Count(&stats.PendingReports)
		cache.SetJSON(c.Request.Context(), cacheKey, stats, 30*time.Second)
	}
	// Live socket count is never cached
	stats.OnlineUsers = len(h.ws.GetHub().OnlineUsers())

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// AdminListPendingStories returns the moderation queue, oldest first so
// submissions are reviewed in order.
func (h *Handlers) AdminListPendingStories(c *gin.Context) {
	p := util.ParsePagination(c, 20, 100)

	var total int64
	database.DB.Model(&models.Story{}).Where("status = ?", models.StoryStatusPending).Count(&total)

	var stories []models.Story
	err := database.DB.Preload("User").
		Where("status = ?", models.StoryStatusPending).
		Order("created_at ASC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&stories).Error
	if err != nil {
		util.RespondInternalError(c, "could not list stories")
		return
	}

	c.JSON(http.StatusOK, gin.H{"stories": stories, "meta": p.Meta(total)})
}

// AdminApproveStory publishes a pending story and notifies the author
func (h *Handlers) AdminApproveStory(c *gin.Context) {
	h.moderateStory(c, models.StoryStatusPublished)
}

// AdminRejectStory rejects a pending story and notifies the author
func (h *Handlers) AdminRejectStory(c *gin.Context) {
	h.moderateStory(c, models.StoryStatusRejected)
}

func (h *Handlers) moderateStory(c *gin.Context, newStatus string) {
	var story models.Story
	if err := database.DB.First(&story, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "story")
		return
	}
	if story.Status != models.StoryStatusPending {
		util.RespondWithAPIError(c, apierrors.Conflict("story").
			WithDetails("story is not awaiting moderation"))
		return
	}

	story.Status = newStatus
	if err := database.DB.Save(&story).Error; err != nil {
		util.RespondInternalError(c, "could not update story")
		return
	}

	if newStatus == models.StoryStatusPublished {
		h.notify.StoryApproved(&story)
	} else {
		h.notify.StoryRejected(&story)
	}

	c.JSON(http.StatusOK, gin.H{"story": story})
}

// AdminListReports returns reports filtered by status, newest first
func (h *Handlers) AdminListReports(c *gin.Context) {
	p := util.ParsePagination(c, 20, 100)

	query := database.DB.Model(&models.Report{}).Preload("Reporter").Preload("Target")
	if status := c.Query("status"); status != "" {
		if !models.ValidReportStatus(status) {
			util.RespondValidationError(c, "status", "unknown report status")
			return
		}
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var reports []models.Report
	err := query.Order("created_at DESC").
		Limit(p.Limit).Offset(p.Offset).
		Find(&reports).Error
	if err != nil {
		util.RespondInternalError(c, "could not list reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{"reports": reports, "meta": p.Meta(total)})
}

type updateReportRequest struct {
	Status     string `json:"status" binding:"required"`
	Resolution string `json:"resolution" binding:"omitempty,max=2000"`
}

// AdminUpdateReport moves a report through its moderation states and
// notifies the reporter when it reaches a terminal state.
func (h *Handlers) AdminUpdateReport(c *gin.Context) {
	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid report payload")
		return
	}
	if !models.ValidReportStatus(req.Status) {
		util.RespondValidationError(c, "status", "unknown report status")
		return
	}

	var report models.Report
	if err := database.DB.First(&report, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "report")
		return
	}

	report.Status = req.Status
	if req.Resolution != "" {
		report.Resolution = strings.TrimSpace(req.Resolution)
	}
	if err := database.DB.Save(&report).Error; err != nil {
		util.RespondInternalError(c, "could not update report")
		return
	}

	if req.Status == models.ReportStatusResolved || req.Status == models.ReportStatusRejected {
		h.notify.ReportResponse(&report)
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
