package handlers

import (
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestRegisterLoginRoundTrip() {
	w := s.request("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "correct-horse",
	})
	s.Equal(http.StatusCreated, w.Code)
	body := s.decode(w)
	s.NotEmpty(body["token"])
	s.Equal("alice", body["user"].(map[string]interface{})["username"])

	w = s.request("POST", "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "correct-horse",
	})
	s.Equal(http.StatusOK, w.Code)
	s.NotEmpty(s.decode(w)["token"])

	w = s.request("POST", "/api/v1/auth/login", "", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *HandlersSuite) TestRegisterDuplicateEmailAndUsername() {
	w := s.request("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "alice@example.com", "username": "alice", "password": "correct-horse",
	})
	s.Equal(http.StatusCreated, w.Code)

	w = s.request("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "ALICE@example.com", "username": "other", "password": "correct-horse",
	})
	s.Equal(http.StatusConflict, w.Code)

	w = s.request("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "new@example.com", "username": "alice", "password": "correct-horse",
	})
	s.Equal(http.StatusConflict, w.Code)
}

func (s *HandlersSuite) TestBannedUserCannotLogin() {
	w := s.request("POST", "/api/v1/auth/register", "", map[string]string{
		"email": "troll@example.com", "username": "troll", "password": "correct-horse",
	})
	s.Equal(http.StatusCreated, w.Code)

	s.Require().NoError(database.DB.Model(&models.User{}).
		Where("username = ?", "troll").Update("is_banned", true).Error)

	w = s.request("POST", "/api/v1/auth/login", "", map[string]string{
		"email": "troll@example.com", "password": "correct-horse",
	})
	s.Equal(http.StatusForbidden, w.Code)
	s.Equal("ACCOUNT_BANNED", s.decode(w)["code"])
}
