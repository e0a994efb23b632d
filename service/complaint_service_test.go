package service

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jansetu/models"
)

func TestCreateComplaintAssignsAndSchedulesEscalation(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM departments WHERE department_id = \?`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "name", "is_active", "created_at"}).
			AddRow(2, "Sanitation", true, now))
	mock.ExpectQuery(`FROM cities WHERE city_id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"city_id", "district_id", "name"}).AddRow(3, 4, "Rampur"))
	mock.ExpectQuery(`FROM authorities`).
		WithArgs(int64(2)).
		WillReturnRows(cityAuthorityRow(sqlmock.NewRows(authorityCols), 7, 2, 3, 1))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnRows(ruleRow(2, 1, 2, 5))
	// the 5-day rule window seeds the due date
	mock.ExpectExec(`INSERT INTO complaints`).
		WithArgs(sqlmock.AnyArg(), int64(100), int64(2),
			"Overflowing garbage bin", "Bin at the market corner has not been cleared for a week",
			int64(3), nil, nil, nil, "medium", "submitted", int64(7), 1,
			timeNear(now.Add(5*24*time.Hour))).
		WillReturnResult(sqlmock.NewResult(42, 1))
	mock.ExpectExec(`SET total_complaints = total_complaints \+ 1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(42), "submitted", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(42), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	resp, err := svc.CreateComplaint(&models.CreateComplaintRequest{
		Title:        "Overflowing garbage bin",
		Description:  "Bin at the market corner has not been cleared for a week",
		DepartmentID: 2,
		CityID:       3,
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(42), resp.ComplaintID)
	assert.Equal(t, models.StatusSubmitted, resp.Status)
	assert.True(t, resp.Assigned)
	assert.True(t, strings.HasPrefix(resp.TicketNumber, "COMP-"))
}

func TestCreateComplaintDefaultsEscalationWindow(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM departments WHERE department_id = \?`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "name", "is_active", "created_at"}).
			AddRow(2, "Sanitation", true, now))
	mock.ExpectQuery(`FROM cities WHERE city_id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"city_id", "district_id", "name"}).AddRow(3, 4, "Rampur"))
	mock.ExpectQuery(`FROM authorities`).
		WithArgs(int64(2)).
		WillReturnRows(cityAuthorityRow(sqlmock.NewRows(authorityCols), 7, 2, 3, 1))
	// no rule configured for the department: the due date falls back to
	// creation time plus seven days
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO complaints`).
		WithArgs(sqlmock.AnyArg(), int64(100), int64(2),
			"Overflowing garbage bin", "Bin at the market corner has not been cleared for a week",
			int64(3), nil, nil, nil, "medium", "submitted", int64(7), 1,
			timeNear(now.Add(7*24*time.Hour))).
		WillReturnResult(sqlmock.NewResult(43, 1))
	mock.ExpectExec(`SET total_complaints = total_complaints \+ 1`).
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(43), "submitted", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(43), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	resp, err := svc.CreateComplaint(&models.CreateComplaintRequest{
		Title:        "Overflowing garbage bin",
		Description:  "Bin at the market corner has not been cleared for a week",
		DepartmentID: 2,
		CityID:       3,
	}, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(43), resp.ComplaintID)
}

func TestCreateComplaintValidatesInput(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	cases := []models.CreateComplaintRequest{
		{Description: "d", DepartmentID: 2, CityID: 3},
		{Title: "t", DepartmentID: 2, CityID: 3},
		{Title: "t", Description: "d", CityID: 3},
		{Title: "t", Description: "d", DepartmentID: 2},
		{Title: "t", Description: "d", DepartmentID: 2, CityID: 3, Priority: "extreme"},
	}
	for i, req := range cases {
		_, err := svc.CreateComplaint(&req, 100)
		assert.True(t, errors.Is(err, models.ErrValidation), "case %d should fail validation", i)
	}
}

func TestUpdateStatusRejectsReservedStatuses(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())
	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}

	_, err := svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "escalated"}, admin)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "submitted"}, admin)
	assert.True(t, errors.Is(err, models.ErrValidation))

	_, err = svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "bogus"}, admin)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestUpdateStatusRejectsUnassignedAuthority(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "submitted", int64(9), 1, time.Now().UTC().Add(24*time.Hour)))
	mock.ExpectRollback()

	other := models.Identity{UserID: 50, Role: models.RoleAuthority, AuthorityID: sql.NullInt64{Int64: 8, Valid: true}}
	_, err := svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "viewed"}, other)
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestUpdateStatusRejectsIllegalTransition(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "closed", int64(9), 1, nil))
	mock.ExpectRollback()

	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}
	_, err := svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "in_progress"}, admin)
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestUpdateStatusResolveBumpsCountersAndScore(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewComplaintService(db, NewMetricsService())

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "in_progress", int64(9), 1, now.Add(24*time.Hour)))
	mock.ExpectExec(`SET status = \?, updated_at = NOW\(\)`).
		WithArgs("resolved", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET resolved_at = NOW\(\)`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET resolved_complaints = resolved_complaints \+ 1`).
		WithArgs(int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM authorities WHERE authority_id = \?`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(authorityCols).
			AddRow(9, 90, 2, nil, 3, nil, 1, true, 5, 4, 1, 0.0, now, now))
	mock.ExpectQuery(`SELECT AVG\(rating\) FROM satisfaction_ratings`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(nil))
	mock.ExpectExec(`SET performance_score = \?`).
		WithArgs(sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(1), "resolved", sqlmock.AnyArg(), int64(9)).
		WillReturnResult(sqlmock.NewResult(3, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "resolved", int64(9), 1, nil))
	mock.ExpectCommit()

	assignee := models.Identity{UserID: 90, Role: models.RoleAuthority, AuthorityID: sql.NullInt64{Int64: 9, Valid: true}}
	updated, err := svc.UpdateStatus(1, &models.UpdateStatusRequest{Status: "resolved", Notes: "Replaced the bulb"}, assignee)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, updated.Status)
}
