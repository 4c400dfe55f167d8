package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	apierrors "github.com/greenprint-app/greenprint-backend/internal/errors"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/util"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListFriends returns the caller's friends as public profiles
func (h *Handlers) ListFriends(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	ids := friendIDsOf(user.ID)
	if len(ids) == 0 {
		c.JSON(http.StatusOK, gin.H{"friends": []models.PublicProfile{}})
		return
	}

	var friends []models.User
	if err := database.DB.Where("id IN ? AND is_banned = ?", ids, false).Find(&friends).Error; err != nil {
		util.RespondInternalError(c, "could not list friends")
		return
	}

	profiles := make([]models.PublicProfile, 0, len(friends))
	for _, f := range friends {
		profiles = append(profiles, f.Public())
	}
	c.JSON(http.StatusOK, gin.H{"friends": profiles})
}

// ListFriendRequests returns pending requests addressed to the caller,
// plus the ones they have sent and not yet had answered.
func (h *Handlers) ListFriendRequests(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var incoming []models.FriendRequest
	database.DB.Preload("Sender").
		Where("receiver_id = ? AND status = ?", user.ID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&incoming)

	var outgoing []models.FriendRequest
	database.DB.Preload("Receiver").
		Where("sender_id = ? AND status = ?", user.ID, models.FriendRequestPending).
		Order("created_at DESC").
		Find(&outgoing)

	c.JSON(http.StatusOK, gin.H{"incoming": incoming, "outgoing": outgoing})
}

// SendFriendRequest creates a pending request to another user
func (h *Handlers) SendFriendRequest(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	receiverID := c.Param("id")
	if receiverID == user.ID {
		util.RespondWithAPIError(c, apierrors.SelfAction("you cannot friend yourself"))
		return
	}

	var receiver models.User
	if err := database.DB.First(&receiver, "id = ?", receiverID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}
	if receiver.IsBanned {
		util.RespondNotFound(c, "user")
		return
	}

	a, b := models.OrderPair(user.ID, receiverID)
	var friendship models.Friendship
	if err := database.DB.Where("user_id = ? AND friend_id = ?", a, b).First(&friendship).Error; err == nil {
		util.RespondWithAPIError(c, apierrors.AlreadyExists("friendship"))
		return
	}

	// An existing pending request in either direction blocks a new one.
	// A pending request FROM the receiver is accepted instead.
	var reverse models.FriendRequest
	err := database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", receiverID, user.ID, models.FriendRequestPending).
		First(&reverse).Error
	if err == nil {
		h.acceptRequest(c, user, &reverse)
		return
	}

	var existing models.FriendRequest
	err = database.DB.
		Where("sender_id = ? AND receiver_id = ? AND status = ?", user.ID, receiverID, models.FriendRequestPending).
		First(&existing).Error
	if err == nil {
		util.RespondWithAPIError(c, apierrors.AlreadyExists("friend request"))
		return
	}

	request := models.FriendRequest{
		SenderID:   user.ID,
		ReceiverID: receiverID,
		Status:     models.FriendRequestPending,
	}
	// A previously rejected request occupies the unique (sender, receiver)
	// slot; reuse it by flipping it back to pending.
	var rejected models.FriendRequest
	err = database.DB.
		Where("sender_id = ? AND receiver_id = ?", user.ID, receiverID).
		First(&rejected).Error
	if err == nil {
		rejected.Status = models.FriendRequestPending
		if err := database.DB.Save(&rejected).Error; err != nil {
			util.RespondInternalError(c, "could not send friend request")
			return
		}
		request = rejected
	} else if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := database.DB.Create(&request).Error; err != nil {
			util.RespondInternalError(c, "could not send friend request")
			return
		}
	} else {
		util.RespondInternalError(c, "could not send friend request")
		return
	}

	h.ws.NotifyFriendRequest(websocket.MessageTypeFriendRequestReceived, receiverID, &websocket.FriendRequestPayload{
		RequestID: request.ID,
		SenderID:  user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
	})
	h.notify.FriendRequestReceived(receiverID, user.Username, request.ID)

	c.JSON(http.StatusCreated, gin.H{"request": request})
}

// AcceptFriendRequest accepts a pending request addressed to the caller
func (h *Handlers) AcceptFriendRequest(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var request models.FriendRequest
	if err := database.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "friend request")
		return
	}
	if request.ReceiverID != user.ID {
		util.RespondForbidden(c, "this request is not addressed to you")
		return
	}
	if request.Status != models.FriendRequestPending {
		util.RespondWithAPIError(c, apierrors.Conflict("friend request").
			WithDetails("request is no longer pending"))
		return
	}

	h.acceptRequest(c, user, &request)
}

// acceptRequest flips the request to accepted and creates the friendship
// row, then notifies the original sender.
func (h *Handlers) acceptRequest(c *gin.Context, accepter *models.User, request *models.FriendRequest) {
	a, b := models.OrderPair(request.SenderID, request.ReceiverID)
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		request.Status = models.FriendRequestAccepted
		if err := tx.Save(request).Error; err != nil {
			return err
		}
		friendship := models.Friendship{UserID: a, FriendID: b}
		return tx.Create(&friendship).Error
	})
	if err != nil {
		logger.ErrorWithFields("accepting friend request", err,
			zap.String("request_id", request.ID))
		util.RespondInternalError(c, "could not accept friend request")
		return
	}

	h.ws.NotifyFriendRequest(websocket.MessageTypeFriendRequestAccepted, request.SenderID, &websocket.FriendRequestPayload{
		RequestID: request.ID,
		SenderID:  accepter.ID,
		Username:  accepter.Username,
		AvatarURL: accepter.AvatarURL,
	})

	c.JSON(http.StatusOK, gin.H{"request": request, "status": "accepted"})
}

// RejectFriendRequest rejects a pending request addressed to the caller
func (h *Handlers) RejectFriendRequest(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var request models.FriendRequest
	if err := database.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "friend request")
		return
	}
	if request.ReceiverID != user.ID {
		util.RespondForbidden(c, "this request is not addressed to you")
		return
	}
	if request.Status != models.FriendRequestPending {
		util.RespondWithAPIError(c, apierrors.Conflict("friend request").
			WithDetails("request is no longer pending"))
		return
	}

	request.Status = models.FriendRequestRejected
	if err := database.DB.Save(&request).Error; err != nil {
		util.RespondInternalError(c, "could not reject friend request")
		return
	}

	h.ws.NotifyFriendRequest(websocket.MessageTypeFriendRequestRejected, request.SenderID, &websocket.FriendRequestPayload{
		RequestID: request.ID,
		SenderID:  user.ID,
		Username:  user.Username,
	})

	c.JSON(http.StatusOK, gin.H{"request": request, "status": "rejected"})
}

// CancelFriendRequest withdraws the caller's own pending request. The row
// is deleted so the pair returns to the no-relationship state.
func (h *Handlers) CancelFriendRequest(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var request models.FriendRequest
	if err := database.DB.First(&request, "id = ?", c.Param("id")).Error; err != nil {
		util.RespondNotFound(c, "friend request")
		return
	}
	if request.SenderID != user.ID {
		util.RespondForbidden(c, "you can only cancel your own requests")
		return
	}
	if request.Status != models.FriendRequestPending {
		util.RespondWithAPIError(c, apierrors.Conflict("friend request").
			WithDetails("request is no longer pending"))
		return
	}

	if err := database.DB.Delete(&request).Error; err != nil {
		util.RespondInternalError(c, "could not cancel friend request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"cancelled": true})
}

// Unfriend removes an existing friendship from either side
func (h *Handlers) Unfriend(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	a, b := models.OrderPair(user.ID, c.Param("id"))
	result := database.DB.Where("user_id = ? AND friend_id = ?", a, b).Delete(&models.Friendship{})
	if result.Error != nil {
		util.RespondInternalError(c, "could not unfriend")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "friendship")
		return
	}

	// Clear the accepted request so a fresh request can be sent later
	database.DB.Where(
		"(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
		user.ID, c.Param("id"), c.Param("id"), user.ID,
	).Delete(&models.FriendRequest{})

	c.JSON(http.StatusOK, gin.H{"unfriended": true})
}

// FriendRecommendations suggests users with mutual friends, falling back
// to nearby point totals when the caller has no network yet.
func (h *Handlers) FriendRecommendations(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	friendIDs := friendIDsOf(user.ID)
	exclude := append([]string{user.ID}, friendIDs...)

	// Also exclude anyone with a pending request in either direction
	var pending []models.FriendRequest
	database.DB.
		Where("(sender_id = ? OR receiver_id = ?) AND status = ?", user.ID, user.ID, models.FriendRequestPending).
		Find(&pending)
	for _, r := range pending {
		if r.SenderID == user.ID {
			exclude = append(exclude, r.ReceiverID)
		} else {
			exclude = append(exclude, r.SenderID)
		}
	}

	var candidates []models.User
	if len(friendIDs) > 0 {
		// Friends of friends, most mutuals first
		friendsOfFriends := map[string]int{}
		var second []models.Friendship
		database.DB.Where("user_id IN ? OR friend_id IN ?", friendIDs, friendIDs).Find(&second)
		for _, f := range second {
			friendsOfFriends[f.UserID]++
			friendsOfFriends[f.FriendID]++
		}
		for _, id := range exclude {
			delete(friendsOfFriends, id)
		}
		if len(friendsOfFriends) > 0 {
			ids := make([]string, 0, len(friendsOfFriends))
			for id := range friendsOfFriends {
				ids = append(ids, id)
			}
			database.DB.Where("id IN ? AND is_banned = ?", ids, false).Limit(10).Find(&candidates)
		}
	}

	if len(candidates) == 0 {
		// Cold start: active users with similar point totals
		database.DB.
			Where("id NOT IN ? AND is_banned = ?", exclude, false).
			Order(fmt.Sprintf("ABS(points - %d) ASC", user.Points)).
			Limit(10).
			Find(&candidates)
	}

	profiles := make([]models.PublicProfile, 0, len(candidates))
	for _, u := range candidates {
		profiles = append(profiles, u.Public())
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": profiles})
}
