package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"time"

	cws "github.com/coder/websocket"
	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/websocket"
)

func (s *HandlersSuite) TestCreateStoryStartsPending() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/stories", user.ID, map[string]string{
		"title":    "Solar panels paid off",
		"content":  "After a year on solar our footprint dropped by a third.",
		"category": "energy",
	})
	s.Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	story := body["story"].(map[string]interface{})
	s.Equal(models.StoryStatusPending, story["status"])
}

func (s *HandlersSuite) TestCreateStoryRejectsUnknownCategory() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/stories", user.ID, map[string]string{
		"title":    "A valid title",
		"content":  "Content long enough to pass validation.",
		"category": "spaceships",
	})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestUnpublishedStoryHiddenAndUnlikeable() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	story := models.Story{
		UserID: alice.ID, Title: "Pending story", Content: "waiting for review",
		Category: "waste", Status: models.StoryStatusPending,
	}
	s.Require().NoError(database.DB.Create(&story).Error)

	// Not in the public listing
	w := s.request("GET", "/api/v1/stories", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Empty(s.decode(w)["stories"])

	// Reads as not-found for non-owners
	w = s.request("GET", "/api/v1/stories/"+story.ID, bob.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)

	// Owner can still see it
	w = s.request("GET", "/api/v1/stories/"+story.ID, alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	// Nobody can like it, owner included
	w = s.request("POST", "/api/v1/stories/"+story.ID+"/like", bob.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
	w = s.request("POST", "/api/v1/stories/"+story.ID+"/like", alice.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersSuite) TestModerationPublishesAndNotifies() {
	alice := s.createUser("alice", false)
	admin := s.createUser("mod", true)
	bob := s.createUser("bob", false)

	story := models.Story{
		UserID: alice.ID, Title: "Bike commute", Content: "Sold the car, bought a bike.",
		Category: "transport", Status: models.StoryStatusPending,
	}
	s.Require().NoError(database.DB.Create(&story).Error)

	w := s.request("PUT", "/api/v1/admin/stories/"+story.ID+"/approve", admin.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var stored models.Story
	s.Require().NoError(database.DB.First(&stored, "id = ?", story.ID).Error)
	s.Equal(models.StoryStatusPublished, stored.Status)

	// The author got a story_approved notification
	var notification models.Notification
	err := database.DB.Where("user_id = ? AND type = ?", alice.ID, models.NotificationStoryApproved).
		First(&notification).Error
	s.NoError(err)

	// Published stories are likeable
	w = s.request("POST", "/api/v1/stories/"+story.ID+"/like", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	s.EqualValues(1, s.decode(w)["likes_count"])

	// Approving twice conflicts
	w = s.request("PUT", "/api/v1/admin/stories/"+story.ID+"/approve", admin.ID, nil)
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestModerationRequiresAdmin() {
	alice := s.createUser("alice", false)

	story := models.Story{
		UserID: alice.ID, Title: "T", Content: "C", Category: "other",
		Status: models.StoryStatusPending,
	}
	s.Require().NoError(database.DB.Create(&story).Error)

	w := s.request("PUT", "/api/v1/admin/stories/"+story.ID+"/approve", alice.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersSuite) TestStoryLikeNotifiesAuthor() {
	author := s.createUser("storyteller", false)
	liker := s.createUser("fan", false)

	story := models.Story{
		UserID: author.ID, Title: "Compost works", Content: "Half our waste now composts.",
		Category: "waste", Status: models.StoryStatusPublished,
	}
	s.Require().NoError(database.DB.Create(&story).Error)

	srv := httptest.NewServer(s.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := s.dialWS(ctx, srv.URL, author)
	defer conn.Close(cws.StatusNormalClosure, "done")

	w := s.request("POST", "/api/v1/stories/"+story.ID+"/like", liker.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	// The author's connection gets the public counter broadcast and the
	// personal like event; only the latter carries the liker fields.
	var payload map[string]interface{}
	for payload == nil {
		_, data, err := conn.Read(ctx)
		s.Require().NoError(err)
		var msg websocket.Message
		s.Require().NoError(json.Unmarshal(data, &msg))
		if msg.Type == websocket.MessageTypeNotificationLike {
			s.Require().NoError(msg.ParsePayload(&payload))
		}
	}
	s.Equal(story.ID, payload["story_id"])
	s.Equal(liker.ID, payload["liker_id"])
	s.Equal(liker.Username, payload["username"])
}
