package handlers

import (
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestSettingsCreatedOnFirstAccess() {
	user := s.createUser("alice", false)

	w := s.request("GET", "/api/v1/notifications/settings", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	settings := s.decode(w)["settings"].(map[string]interface{})
	s.Equal(true, settings["enabled"])
	s.Equal(true, settings["friend_requests_enabled"])

	var count int64
	database.DB.Model(&models.NotificationSettings{}).Where("user_id = ?", user.ID).Count(&count)
	s.EqualValues(1, count)
}

func (s *HandlersSuite) TestDisabledSettingsSuppressNotifications() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("PUT", "/api/v1/notifications/settings", bob.ID,
		map[string]interface{}{"enabled": false})
	s.Equal(http.StatusOK, w.Code)

	// The triggering event fires repeatedly; nothing is persisted
	for i := 0; i < 3; i++ {
		w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
		s.Equal(http.StatusCreated, w.Code)
		requestID := s.decode(w)["request"].(map[string]interface{})["id"].(string)
		w = s.request("DELETE", "/api/v1/friends/requests/"+requestID, alice.ID, nil)
		s.Equal(http.StatusOK, w.Code)
	}

	var count int64
	database.DB.Model(&models.Notification{}).Where("user_id = ?", bob.ID).Count(&count)
	s.EqualValues(0, count)
}

func (s *HandlersSuite) TestPerTypeToggleSuppressesOnlyThatType() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("PUT", "/api/v1/notifications/settings", bob.ID,
		map[string]interface{}{"friend_requests_enabled": false})
	s.Equal(http.StatusOK, w.Code)

	w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)

	var count int64
	database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND type = ?", bob.ID, models.NotificationFriendRequest).
		Count(&count)
	s.EqualValues(0, count)
}

func (s *HandlersSuite) TestMarkReadAndUnreadCount() {
	user := s.createUser("alice", false)

	for i := 0; i < 3; i++ {
		n := models.Notification{
			UserID: user.ID, Type: models.NotificationSystem,
			Title: "hello", Message: "test",
		}
		s.Require().NoError(database.DB.Create(&n).Error)
	}

	w := s.request("GET", "/api/v1/notifications", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.EqualValues(3, body["unread_count"])
	notifications := body["notifications"].([]interface{})
	firstID := notifications[0].(map[string]interface{})["id"].(string)

	w = s.request("PUT", "/api/v1/notifications/"+firstID+"/read", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request("GET", "/api/v1/notifications?unread=true", user.ID, nil)
	body = s.decode(w)
	s.EqualValues(2, body["unread_count"])
	s.Len(body["notifications"].([]interface{}), 2)

	w = s.request("PUT", "/api/v1/notifications/read-all", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	w = s.request("GET", "/api/v1/notifications", user.ID, nil)
	s.EqualValues(0, s.decode(w)["unread_count"])
}

func (s *HandlersSuite) TestCannotTouchOthersNotifications() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	n := models.Notification{
		UserID: alice.ID, Type: models.NotificationSystem,
		Title: "private", Message: "for alice",
	}
	s.Require().NoError(database.DB.Create(&n).Error)

	w := s.request("PUT", "/api/v1/notifications/"+n.ID+"/read", bob.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	w = s.request("DELETE", "/api/v1/notifications/"+n.ID, bob.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}
