package handlers

import (
	"fmt"
	"net/http"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/models"
)

func (s *HandlersSuite) TestAdminListUsersFiltersAndPaginates() {
	admin := s.createUser("mod", true)
	for i := 0; i < 25; i++ {
		u := s.createUser(fmt.Sprintf("banned%02d", i), false)
		s.Require().NoError(database.DB.Model(u).Update("is_banned", true).Error)
	}
	s.createUser("innocent", false)

	w := s.request("GET", "/api/v1/admin/users?is_banned=true&page=2&limit=20", admin.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	body := s.decode(w)
	users := body["users"].([]interface{})
	s.Len(users, 5)
	for _, item := range users {
		s.Equal(true, item.(map[string]interface{})["is_banned"])
	}

	pagination := body["pagination"].(map[string]interface{})
	s.EqualValues(25, pagination["total"])
	s.EqualValues(2, pagination["page"])
	s.EqualValues(2, pagination["total_pages"])
}

func (s *HandlersSuite) TestAdminListUsersClampsSortColumn() {
	admin := s.createUser("mod", true)

	// A hostile sort column falls back instead of reaching the database
	w := s.request("GET", "/api/v1/admin/users?sort_by=password_hash;DROP&sort_order=sideways", admin.ID, nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *HandlersSuite) TestAdminSearchMatchesUsernameAndEmail() {
	admin := s.createUser("mod", true)
	s.createUser("greenfinch", false)
	s.createUser("sparrow", false)

	w := s.request("GET", "/api/v1/admin/users?search=GREENF", admin.ID, nil)
	s.Equal(http.StatusOK, w.Code)
	users := s.decode(w)["users"].([]interface{})
	s.Len(users, 1)
	s.Equal("greenfinch", users[0].(map[string]interface{})["username"])
}

func (s *HandlersSuite) TestAdminCannotBanSelf() {
	admin := s.createUser("mod", true)

	w := s.request("PUT", "/api/v1/admin/users/"+admin.ID+"/ban", admin.ID,
		map[string]interface{}{"banned": true})
	s.Equal(http.StatusBadRequest, w.Code)

	// No row was mutated
	var stored models.User
	s.Require().NoError(database.DB.First(&stored, "id = ?", admin.ID).Error)
	s.False(stored.IsBanned)
}

func (s *HandlersSuite) TestAdminCannotBanAnotherAdmin() {
	admin := s.createUser("mod", true)
	other := s.createUser("mod2", true)

	w := s.request("PUT", "/api/v1/admin/users/"+other.ID+"/ban", admin.ID,
		map[string]interface{}{"banned": true})
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *HandlersSuite) TestAdminBanAndUnban() {
	admin := s.createUser("mod", true)
	target := s.createUser("troll", false)

	w := s.request("PUT", "/api/v1/admin/users/"+target.ID+"/ban", admin.ID,
		map[string]interface{}{"banned": true, "reason": "spam"})
	s.Equal(http.StatusOK, w.Code)

	var stored models.User
	s.Require().NoError(database.DB.First(&stored, "id = ?", target.ID).Error)
	s.True(stored.IsBanned)

	w = s.request("PUT", "/api/v1/admin/users/"+target.ID+"/ban", admin.ID,
		map[string]interface{}{"banned": false})
	s.Equal(http.StatusOK, w.Code)

	s.Require().NoError(database.DB.First(&stored, "id = ?", target.ID).Error)
	s.False(stored.IsBanned)
}

func (s *HandlersSuite) TestAdminCannotDemoteSelf() {
	admin := s.createUser("mod", true)

	w := s.request("PUT", "/api/v1/admin/users/"+admin.ID+"/admin", admin.ID,
		map[string]interface{}{"admin": false})
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *HandlersSuite) TestReportFlowNotifiesAdminAndReporter() {
	admin := s.createUser("mod", true)
	reporter := s.createUser("alice", false)
	target := s.createUser("troll", false)

	// Self-report rejected
	w := s.request("POST", "/api/v1/reports", reporter.ID, map[string]string{
		"target_id": reporter.ID, "reason": "testing",
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w = s.request("POST", "/api/v1/reports", reporter.ID, map[string]string{
		"target_id": target.ID, "reason": "abusive comments", "details": "see their feed",
	})
	s.Equal(http.StatusCreated, w.Code)
	reportID := s.decode(w)["report"].(map[string]interface{})["id"].(string)

	// Admin was notified
	var adminNote models.Notification
	err := database.DB.Where("user_id = ? AND type = ?", admin.ID, models.NotificationNewReport).
		First(&adminNote).Error
	s.NoError(err)

	// Resolving notifies the reporter
	w = s.request("PUT", "/api/v1/admin/reports/"+reportID, admin.ID, map[string]string{
		"status": models.ReportStatusResolved, "resolution": "user warned",
	})
	s.Equal(http.StatusOK, w.Code)

	var reporterNote models.Notification
	err = database.DB.Where("user_id = ? AND type = ?", reporter.ID, models.NotificationReportResponse).
		First(&reporterNote).Error
	s.NoError(err)
}

func (s *HandlersSuite) TestAdminEndpointsRejectNonAdmins() {
	user := s.createUser("alice", false)

	w := s.request("GET", "/api/v1/admin/users", user.ID, nil)
	s.Equal(http.StatusForbidden, w.Code)
}
