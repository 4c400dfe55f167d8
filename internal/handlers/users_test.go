package handlers

import (
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestGetMeAndUpdateProfile() {
	user := s.createUser("alice", false)

	w := s.request("GET", "/api/v1/users/me", user.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("alice", s.decode(w)["user"].(map[string]interface{})["username"])

	w = s.request("PUT", "/api/v1/users/me", user.ID, map[string]string{
		"bio": "cycling everywhere since 2024",
	})
	s.Equal(http.StatusOK, w.Code)

	var stored models.User
	s.Require().NoError(database.DB.First(&stored, "id = ?", user.ID).Error)
	s.Equal("cycling everywhere since 2024", stored.Bio)
}

func (s *HandlersSuite) TestUpdateProfileUsernameCollision() {
	s.createUser("taken", false)
	user := s.createUser("alice", false)

	w := s.request("PUT", "/api/v1/users/me", user.ID, map[string]string{
		"username": "taken",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestPublicProfileShowsFriendshipStatus() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("GET", "/api/v1/users/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Equal("none", s.decode(w)["friendship_status"])

	s.Require().NoError(database.DB.Create(&models.FriendRequest{
		SenderID: alice.ID, ReceiverID: bob.ID, Status: models.FriendRequestPending,
	}).Error)

	w = s.request("GET", "/api/v1/users/"+bob.ID, alice.ID, nil)
	s.Equal("pending_sent", s.decode(w)["friendship_status"])

	w = s.request("GET", "/api/v1/users/"+alice.ID, bob.ID, nil)
	s.Equal("pending_received", s.decode(w)["friendship_status"])

	w = s.request("GET", "/api/v1/users/"+alice.ID, alice.ID, nil)
	s.Equal("self", s.decode(w)["friendship_status"])
}

func (s *HandlersSuite) TestBannedUserProfileHidden() {
	alice := s.createUser("alice", false)
	banned := s.createUser("troll", false)
	s.Require().NoError(database.DB.Model(banned).Update("is_banned", true).Error)

	w := s.request("GET", "/api/v1/users/"+banned.ID, alice.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}
