package websocket

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"go.uber.org/zap"
)

// Handler handles WebSocket HTTP upgrade requests and exposes the typed
// emit helpers the resource handlers call after their writes commit.
type Handler struct {
	hub       *Hub
	jwtSecret []byte
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, jwtSecret []byte) *Handler {
	return &Handler{
		hub:       hub,
		jwtSecret: jwtSecret,
	}
}

// HandleWebSocket handles WebSocket upgrade requests.
// Authentication is via JWT in query param ?token=... or Authorization header.
func (h *Handler) HandleWebSocket(c *gin.Context) {
	user, err := h.authenticateRequest(c)
	if err != nil {
		logger.Log.Warn("WebSocket auth failed", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "authentication_failed",
			"message": err.Error(),
		})
		return
	}

	conn, err := websocket.Accept(newUpgradeWriter(c.Writer), c.Request, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // origin checks are handled by the CORS layer
		CompressionMode:    websocket.CompressionContextTakeover,
	})
	if err != nil {
		logger.ErrorWithFields("WebSocket upgrade failed", err)
		return
	}

	client := NewClient(h.hub, conn, user.ID, user.Username)
	client.RemoteAddr = c.ClientIP()

	h.hub.Register(client)

	client.Send(NewMessage(MessageTypeSystem, SystemPayload{
		Event: "connected",
		Data: map[string]interface{}{
			"user_id":     user.ID,
			"username":    user.Username,
			"server_time": time.Now().UTC().UnixMilli(),
			"session_id":  fmt.Sprintf("%p", client),
		},
	}))

	go client.WritePump()
	client.ReadPump() // blocks until the client disconnects
}

// authenticateRequest extracts and validates the JWT token from the request
func (h *Handler) authenticateRequest(c *gin.Context) (*models.User, error) {
	tokenString := ""

	if token := c.Query("token"); token != "" {
		tokenString = token
	}

	if auth := c.GetHeader("Authorization"); auth != "" {
		if strings.HasPrefix(auth, "Bearer ") {
			tokenString = strings.TrimPrefix(auth, "Bearer ")
		} else {
			tokenString = auth
		}
	}

	if tokenString == "" {
		return nil, errors.New("no authentication token provided")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return h.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return nil, errors.New("token missing expiration")
	}
	if time.Unix(int64(exp), 0).Before(time.Now()) {
		return nil, errors.New("token expired")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("invalid user_id in token")
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return nil, fmt.Errorf("user not found: %w", err)
	}
	if user.IsBanned {
		return nil, errors.New("account is banned")
	}

	return &user, nil
}

// HandleMetrics returns WebSocket metrics (for monitoring)
func (h *Handler) HandleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"websocket":    h.hub.GetMetrics(),
		"online_users": h.hub.OnlineUsers(),
		"timestamp":    time.Now().UTC(),
	})
}

// HandleOnlineStatus checks if specific users are online
func (h *Handler) HandleOnlineStatus(c *gin.Context) {
	var req struct {
		UserIDs []string `json:"user_ids" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	statuses := make(map[string]bool)
	counts := make(map[string]int)
	for _, userID := range req.UserIDs {
		statuses[userID] = h.hub.IsUserOnline(userID)
		counts[userID] = h.hub.UserConnectionCount(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"statuses":    statuses,
		"connections": counts,
		"timestamp":   time.Now().UTC(),
	})
}

// BroadcastPostCreated announces a new post to every connected client
func (h *Handler) BroadcastPostCreated(payload *PostPayload) {
	h.hub.Broadcast(NewMessage(MessageTypePostCreated, payload))
}

// BroadcastPostDeleted announces a removed post to every connected client
func (h *Handler) BroadcastPostDeleted(postID string) {
	h.hub.Broadcast(NewMessage(MessageTypePostDeleted, PostDeletedPayload{PostID: postID}))
}

// BroadcastLikeUpdate announces the post's new absolute like count
func (h *Handler) BroadcastLikeUpdate(payload *LikeUpdatePayload) {
	h.hub.Broadcast(NewMessage(MessageTypePostLikeUpdate, payload))
}

// BroadcastCommentAdded announces a new comment with its author fields
func (h *Handler) BroadcastCommentAdded(payload *CommentPayload) {
	h.hub.Broadcast(NewMessage(MessageTypeCommentAdded, payload))
}

// BroadcastCommentDeleted announces a removed comment and the new count
func (h *Handler) BroadcastCommentDeleted(payload *CommentDeletedPayload) {
	h.hub.Broadcast(NewMessage(MessageTypeCommentDeleted, payload))
}

// BroadcastStoryLikeUpdate announces the story's new absolute like count
func (h *Handler) BroadcastStoryLikeUpdate(payload *StoryLikeUpdatePayload) {
	h.hub.Broadcast(NewMessage(MessageTypeStoryLikeUpdate, payload))
}

// NotifyLike sends the personal like event to a content owner, distinct from
// the public counter broadcast for the same action.
func (h *Handler) NotifyLike(ownerID string, payload interface{}) {
	h.hub.SendToUser(ownerID, NewMessage(MessageTypeNotificationLike, payload))
}

// NotifyFriendRequest unicasts a friend-request transition to the other party
func (h *Handler) NotifyFriendRequest(event string, userID string, payload *FriendRequestPayload) {
	h.hub.SendToUser(userID, NewMessage(event, payload))
}

// NotifyNotification pushes a persisted notification to its recipient
func (h *Handler) NotifyNotification(userID string, payload *NotificationPayload) {
	h.hub.SendToUser(userID, NewMessage(MessageTypeNotificationNew, payload))
}

// UpdateUnreadCount pushes the recomputed unread notification count
func (h *Handler) UpdateUnreadCount(userID string, count int64) {
	h.hub.SendToUser(userID, NewMessage(MessageTypeNotificationUnreadCount, UnreadCountPayload{Count: count}))
}

// DisconnectUser force-closes a user's connections (on ban)
func (h *Handler) DisconnectUser(userID string) {
	h.hub.DisconnectUser(userID)
}

// Shutdown gracefully shuts down the WebSocket handler
func (h *Handler) Shutdown(ctx context.Context) error {
	return h.hub.Shutdown(ctx)
}

// GetHub returns the hub for external access
func (h *Handler) GetHub() *Hub {
	return h.hub
}
