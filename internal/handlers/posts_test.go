package handlers

import (
	"net/http"
	"strings"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestCreatePost() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/posts", user.ID, map[string]string{"content": "Hello"})
	s.Equal(http.StatusCreated, w.Code)

	body := s.decode(w)
	post := body["post"].(map[string]interface{})
	s.Equal("Hello", post["content"])
	s.EqualValues(0, post["likes_count"])
	s.EqualValues(0, post["comments_count"])
}

func (s *HandlersSuite) TestCreatePostRejectsEmptyAndOversized() {
	user := s.createUser("alice", false)

	w := s.request("POST", "/api/v1/posts", user.ID, map[string]string{"content": "   "})
	s.Equal(http.StatusBadRequest, w.Code)

	huge := strings.Repeat("x", models.MaxPostContentLength+1)
	w = s.request("POST", "/api/v1/posts", user.ID, map[string]string{"content": huge})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestLikeToggleRecountsAndIsIdempotent() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	post := models.Post{UserID: alice.ID, Content: "like me"}
	s.Require().NoError(database.DB.Create(&post).Error)

	w := s.request("POST", "/api/v1/posts/"+post.ID+"/like", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	s.Equal(true, body["is_liked"])
	s.EqualValues(1, body["likes_count"])

	// Stored counter matches the row count
	var stored models.Post
	s.Require().NoError(database.DB.First(&stored, "id = ?", post.ID).Error)
	s.Equal(1, stored.LikesCount)

	// Second toggle returns to the original state
	w = s.request("POST", "/api/v1/posts/"+post.ID+"/like", bob.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	body = s.decode(w)
	s.Equal(false, body["is_liked"])
	s.EqualValues(0, body["likes_count"])

	s.Require().NoError(database.DB.First(&stored, "id = ?", post.ID).Error)
	s.Equal(0, stored.LikesCount)

	var likeRows int64
	database.DB.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likeRows)
	s.EqualValues(0, likeRows)
}

func (s *HandlersSuite) TestCommentCountTracksRows() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)

	post := models.Post{UserID: alice.ID, Content: "discuss"}
	s.Require().NoError(database.DB.Create(&post).Error)

	w := s.request("POST", "/api/v1/posts/"+post.ID+"/comments", bob.ID,
		map[string]string{"content": "first"})
	s.Equal(http.StatusCreated, w.Code)
	body := s.decode(w)
	s.EqualValues(1, body["comments_count"])
	commentID := body["comment"].(map[string]interface{})["id"].(string)

	var stored models.Post
	s.Require().NoError(database.DB.First(&stored, "id = ?", post.ID).Error)
	s.Equal(1, stored.CommentsCount)

	// Post author may delete someone else's comment on their post
	w = s.request("DELETE", "/api/v1/posts/"+post.ID+"/comments/"+commentID, alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	s.Require().NoError(database.DB.First(&stored, "id = ?", post.ID).Error)
	s.Equal(0, stored.CommentsCount)
}

func (s *HandlersSuite) TestDeletePostOwnershipEnforced() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)
	admin := s.createUser("mod", true)

	post := models.Post{UserID: alice.ID, Content: "mine"}
	s.Require().NoError(database.DB.Create(&post).Error)

	w := s.request("DELETE", "/api/v1/posts/"+post.ID, bob.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)

	w = s.request("DELETE", "/api/v1/posts/"+post.ID, admin.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	var count int64
	database.DB.Model(&models.Post{}).Where("id = ?", post.ID).Count(&count)
	s.EqualValues(0, count)
}

func (s *HandlersSuite) TestFeedScopeFriends() {
	alice := s.createUser("alice", false)
	bob := s.createUser("bob", false)
	carol := s.createUser("carol", false)

	a, b := models.OrderPair(alice.ID, bob.ID)
	s.Require().NoError(database.DB.Create(&models.Friendship{UserID: a, FriendID: b}).Error)

	for _, u := range []*models.User{alice, bob, carol} {
		s.Require().NoError(database.DB.Create(&models.Post{UserID: u.ID, Content: "post by " + u.Username}).Error)
	}

	w := s.request("GET", "/api/v1/posts?scope=friends", alice.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	body := s.decode(w)
	posts := body["posts"].([]interface{})
	s.Len(posts, 2)
	for _, item := range posts {
		post := item.(map[string]interface{})["post"].(map[string]interface{})
		s.NotEqual(carol.ID, post["user_id"])
	}
}
