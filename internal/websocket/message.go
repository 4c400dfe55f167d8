package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// FlexibleTime handles both Unix millisecond timestamps and RFC3339 strings
type FlexibleTime struct {
	time.Time
}

// UnmarshalJSON implements custom unmarshaling for timestamps
func (ft *FlexibleTime) UnmarshalJSON(b []byte) error {
	var ms int64
	if err := json.Unmarshal(b, &ms); err == nil {
		ft.Time = time.UnixMilli(ms)
		return nil
	}

	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return fmt.Errorf("timestamp must be Unix milliseconds (integer) or RFC3339 string")
	}

	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return err
	}
	ft.Time = t
	return nil
}

// MarshalJSON implements custom marshaling (always output as RFC3339)
func (ft FlexibleTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(ft.Time)
}

// Message types for WebSocket communication
const (
	// System messages
	MessageTypeSystem = "system"
	MessageTypePing   = "ping"
	MessageTypePong   = "pong"
	MessageTypeError  = "error"
	MessageTypeJoin   = "join"
	MessageTypeLeave  = "leave"

	// Feed events
	MessageTypePostCreated    = "post:created"
	MessageTypePostDeleted    = "post:deleted"
	MessageTypePostLikeUpdate = "post:like:update"
	MessageTypeCommentAdded   = "post:comment:added"
	MessageTypeCommentDeleted = "post:comment:deleted"

	// Story events
	MessageTypeStoryLikeUpdate = "story:like:update"

	// Friend events (unicast to the other party)
	MessageTypeFriendRequestReceived = "friend:request:received"
	MessageTypeFriendRequestAccepted = "friend:request:accepted"
	MessageTypeFriendRequestRejected = "friend:request:rejected"

	// Notification events
	MessageTypeNotificationNew         = "notification:new"
	MessageTypeNotificationUnreadCount = "notification:unread_count"
	MessageTypeNotificationLike        = "notification:like"
)

// Message represents a WebSocket message
type Message struct {
	// Type identifies the message type for routing
	Type string `json:"type"`

	// Payload contains the message-specific data
	Payload interface{} `json:"payload,omitempty"`

	// ID is a unique message identifier for acknowledgment
	ID string `json:"id,omitempty"`

	// ReplyTo references the original message ID for responses
	ReplyTo string `json:"reply_to,omitempty"`

	// Timestamp when the message was created (accepts Unix ms or RFC3339)
	Timestamp FlexibleTime `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType string, payload interface{}) *Message {
	return &Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// NewErrorMessage creates an error message
func NewErrorMessage(code string, message string) *Message {
	return &Message{
		Type: MessageTypeError,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
		Timestamp: FlexibleTime{Time: time.Now().UTC()},
	}
}

// ParsePayload unmarshals the payload into a specific type
func (m *Message) ParsePayload(target interface{}) error {
	if m.Payload == nil {
		return nil
	}

	data, err := json.Marshal(m.Payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, target)
}

// ErrorPayload represents an error message payload
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PingPayload represents a ping message payload
type PingPayload struct {
	ClientTime int64 `json:"client_time"`
}

// PongPayload represents a pong message payload
type PongPayload struct {
	ClientTime int64 `json:"client_time"`
	ServerTime int64 `json:"server_time"`
	Latency    int64 `json:"latency_ms"`
}

// RoomPayload is the join/leave request payload
type RoomPayload struct {
	Room string `json:"room"`
}

// SystemPayload represents system event payloads
type SystemPayload struct {
	Event   string                 `json:"event"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}

// PostPayload carries a full post with denormalized author fields so clients
// need no follow-up fetch.
type PostPayload struct {
	PostID        string `json:"post_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	EcoLevel      int    `json:"eco_level,omitempty"`
	Content       string `json:"content"`
	LikesCount    int    `json:"likes_count"`
	CommentsCount int    `json:"comments_count"`
	CreatedAt     int64  `json:"created_at"`
}

// PostDeletedPayload identifies a removed post
type PostDeletedPayload struct {
	PostID string `json:"post_id"`
}

// LikeUpdatePayload carries the absolute counter after a like toggle.
// Clients treat it as "set counter to X" so concurrent updates commute.
type LikeUpdatePayload struct {
	PostID     string `json:"post_id"`
	LikesCount int    `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
	LikerID    string `json:"liker_id"`
}

// StoryLikeUpdatePayload is the story variant of LikeUpdatePayload
type StoryLikeUpdatePayload struct {
	StoryID    string `json:"story_id"`
	LikesCount int    `json:"likes_count"`
	IsLiked    bool   `json:"is_liked"`
	LikerID    string `json:"liker_id"`
}

// CommentPayload carries a full comment with author fields
type CommentPayload struct {
	CommentID     string `json:"comment_id"`
	PostID        string `json:"post_id"`
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	AvatarURL     string `json:"avatar_url,omitempty"`
	Content       string `json:"content"`
	CommentsCount int    `json:"comments_count"`
	CreatedAt     int64  `json:"created_at"`
}

// CommentDeletedPayload identifies a removed comment and the new count
type CommentDeletedPayload struct {
	CommentID     string `json:"comment_id"`
	PostID        string `json:"post_id"`
	CommentsCount int    `json:"comments_count"`
}

// FriendRequestPayload is unicast to the party affected by a transition
type FriendRequestPayload struct {
	RequestID string `json:"request_id"`
	SenderID  string `json:"sender_id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// NotificationPayload mirrors a persisted notification row
type NotificationPayload struct {
	ID        string `json:"id"`
	Type      string `json:"notification_type"`
	Title     string `json:"title"`
	Message   string `json:"message"`
	Link      string `json:"link,omitempty"`
	RelatedID string `json:"related_id,omitempty"`
	IsRead    bool   `json:"is_read"`
	CreatedAt int64  `json:"created_at"`
}

// UnreadCountPayload carries the recomputed unread notification count
type UnreadCountPayload struct {
	Count int64 `json:"count"`
}
