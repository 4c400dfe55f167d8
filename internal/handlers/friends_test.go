package handlers

import (
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestFriendRequestLifecycleAccept() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)
	requestID := s.decode(w)["request"].(map[string]interface{})["id"].(string)

	// Bob got a friend_request notification
	var notification models.Notification
	err := database.DB.Where("user_id = ? AND type = ?", bob.ID, models.NotificationFriendRequest).
		First(&notification).Error
	s.NoError(err)

	w = s.request("PUT", "/api/v1/friends/requests/"+requestID+"/accept", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	// Friendship row stored once, in canonical order
	a, b := models.OrderPair(alice.ID, bob.ID)
	var friendship models.Friendship
	s.Require().NoError(database.DB.Where("user_id = ? AND friend_id = ?", a, b).First(&friendship).Error)

	// Visible from both sides
	for _, viewer := range []string{alice.ID, bob.ID} {
		w = s.request("GET", "/api/v1/friends", viewer, nil)
		s.Equal(http.StatusOK, w.Code)
		s.Len(s.decode(w)["friends"].([]interface{}), 1)
	}

	// Accepting again conflicts
	w = s.request("PUT", "/api/v1/friends/requests/"+requestID+"/accept", bob.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestFriendRequestSelfAndDuplicateRejected() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("POST", "/api/v1/friends/requests/"+alice.ID, alice.ID, nil)
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)

	w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestFriendRequestReject() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)
	requestID := s.decode(w)["request"].(map[string]interface{})["id"].(string)

	// Only the receiver may reject
	w = s.request("PUT", "/api/v1/friends/requests/"+requestID+"/reject", alice.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("PUT", "/api/v1/friends/requests/"+requestID+"/reject", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var friendships int64
	database.DB.Model(&models.Friendship{}).Count(&friendships)
	s.EqualValues(0, friendships)
}

func (s *HandlersSuite) TestFriendRequestCancelReturnsToNone() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)
	requestID := s.decode(w)["request"].(map[string]interface{})["id"].(string)

	w = s.request("DELETE", "/api/v1/friends/requests/"+requestID, alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var requests int64
	database.DB.Model(&models.FriendRequest{}).Count(&requests)
	s.EqualValues(0, requests)

	// The pair can start over
	w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlersSuite) TestReverseRequestAutoAccepts() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	w := s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)

	// Bob requesting Alice while her request is pending accepts it
	w = s.request("POST", "/api/v1/friends/requests/"+alice.ID, bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var friendships int64
	database.DB.Model(&models.Friendship{}).Count(&friendships)
	s.EqualValues(1, friendships)
}

func (s *HandlersSuite) TestUnfriendAllowsFreshRequest() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	a, b := models.OrderPair(alice.ID, bob.ID)
	s.Require().NoError(database.DB.Create(&models.Friendship{UserID: a, FriendID: b}).Error)

	w := s.request("DELETE", "/api/v1/friends/"+alice.ID, bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var friendships int64
	database.DB.Model(&models.Friendship{}).Count(&friendships)
	s.EqualValues(0, friendships)

	w = s.request("POST", "/api/v1/friends/requests/"+bob.ID, alice.ID, nil)
	s.Equal(http.StatusCreated, w.Code)
}

func (s *HandlersSuite) TestRecommendationsExcludeExistingRelations() {
	alice := s.createUser("alice", false)
	friend := s.createUser("friend", false)
	pending := s.createUser("pending", false)
	stranger := s.createUser("stranger", false)

	a, b := models.OrderPair(alice.ID, friend.ID)
	s.Require().NoError(database.DB.Create(&models.Friendship{UserID: a, FriendID: b}).Error)
	s.Require().NoError(database.DB.Create(&models.FriendRequest{
		SenderID: alice.ID, ReceiverID: pending.ID, Status: models.FriendRequestPending,
	}).Error)

	w := s.request("GET", "/api/v1/friends/recommendations", alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	recs := s.decode(w)["recommendations"].([]interface{})
	ids := map[string]bool{}
	for _, r := range recs {
		ids[r.(map[string]interface{})["id"].(string)] = true
	}
	s.False(ids[alice.ID])
	s.False(ids[friend.ID])
	s.False(ids[pending.ID])
	s.True(ids[stranger.ID])
}
