package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"go.uber.org/zap"
)

type createReportRequest struct {
	TargetID string `json:"target_id" binding:"required"`
	Reason   string `json:"reason" binding:"required,min=3,max=200"`
	Details  string `json:"details" binding:"omitempty,max=2000"`
}

// CreateReport files a complaint against another user and fans a
// notification out to every admin.
func (h *Handlers) CreateReport(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req createReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, "invalid report payload: "+err.Error())
		return
	}
	if req.TargetID == user.ID {
		util.RespondWithAPIError(c, apierrors.SelfAction("you cannot report yourself"))
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", req.TargetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	report := models.Report{
		ReporterID: user.ID,
		TargetID:   req.TargetID,
		Reason:     strings.TrimSpace(req.Reason),
		Details:    strings.TrimSpace(req.Details),
		Status:     models.ReportStatusPending,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		logger.ErrorWithFields("creating report", err, zap.String("reporter_id", user.ID))
		util.RespondInternalError(c, "could not file report")
		return
	}

	h.notify.AdminsNewReport(&report, user.Username)

	c.JSON(http.StatusCreated, gin.H{"report": report})
}
