package service

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jansetu/models"
)

func expectDueList(mock sqlmock.Sqlmock, ids ...int64) {
	rows := sqlmock.NewRows([]string{"complaint_id"})
	for _, id := range ids {
		rows.AddRow(id)
	}
	mock.ExpectQuery(`SELECT complaint_id FROM complaints`).
		WithArgs("submitted", "viewed", "in_progress", sqlmock.AnyArg()).
		WillReturnRows(rows)
}

func TestRunSweepEscalatesOverdueComplaint(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)

	overdue := time.Now().UTC().Add(-2 * time.Hour)

	expectDueList(mock, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "submitted", int64(10), 1, overdue))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnRows(ruleRow(2, 1, 2, 3))
	mock.ExpectQuery(`FROM cities WHERE city_id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"city_id", "district_id", "name"}).AddRow(3, 4, "Rampur"))
	mock.ExpectQuery(`FROM authorities`).
		WithArgs(int64(2)).
		WillReturnRows(cityAuthorityRow(sqlmock.NewRows(authorityCols), 20, 2, 3, 2))
	mock.ExpectExec(`SET pending_complaints = GREATEST`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// no rule from the target level: the next due window is seven days
	// from the sweep
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 2).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`UPDATE complaints\s+SET status = \?, assigned_authority_id = \?`).
		WithArgs("escalated", int64(20), 2, timeNear(time.Now().UTC().Add(7*24*time.Hour)), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET total_complaints = total_complaints \+ 1`).
		WithArgs(int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(1), "escalated", sqlmock.AnyArg(), int64(20)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	result, err := svc.RunSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Escalated)
	assert.Equal(t, 0, result.Errors)
}

func TestRunSweepSchedulesNextWindowFromRule(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)

	overdue := time.Now().UTC().Add(-2 * time.Hour)

	expectDueList(mock, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "submitted", int64(10), 1, overdue))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnRows(ruleRow(2, 1, 2, 3))
	mock.ExpectQuery(`FROM cities WHERE city_id = \?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"city_id", "district_id", "name"}).AddRow(3, 4, "Rampur"))
	mock.ExpectQuery(`FROM authorities`).
		WithArgs(int64(2)).
		WillReturnRows(cityAuthorityRow(sqlmock.NewRows(authorityCols), 20, 2, 3, 2))
	mock.ExpectExec(`SET pending_complaints = GREATEST`).
		WithArgs(int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// the level-2 rule's 5-day window seeds the next due date
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 2).
		WillReturnRows(ruleRow(2, 2, 3, 5))
	mock.ExpectExec(`UPDATE complaints\s+SET status = \?, assigned_authority_id = \?`).
		WithArgs("escalated", int64(20), 2, timeNear(time.Now().UTC().Add(5*24*time.Hour)), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET total_complaints = total_complaints \+ 1`).
		WithArgs(int64(20)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(1), "escalated", sqlmock.AnyArg(), int64(20)).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	mock.ExpectCommit()

	result, err := svc.RunSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Escalated)
}

func TestRunSweepSkipsTopOfChain(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)

	overdue := time.Now().UTC().Add(-time.Hour)

	expectDueList(mock, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "in_progress", int64(10), 3, overdue))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 3).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectCommit()

	result, err := svc.RunSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Escalated)
	assert.Equal(t, 0, result.Errors)
}

func TestRunSweepIgnoresComplaintHandledConcurrently(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)

	// due date re-checked under lock is now in the future: an overlapping
	// sweep already escalated this complaint, nothing more to do
	future := time.Now().UTC().Add(48 * time.Hour)

	expectDueList(mock, 1)

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "submitted", int64(10), 2, future))
	mock.ExpectCommit()

	result, err := svc.RunSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 0, result.Escalated)
}

func TestCreateRuleLocksDepartmentAndRejectsDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)
	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}

	now := time.Now().UTC()

	// the duplicate check runs under the department row lock, so two
	// concurrent admins serialize and the second one sees the first rule
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM departments WHERE department_id = \? FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "name", "is_active", "created_at"}).
			AddRow(2, "Sanitation", true, now))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnRows(ruleRow(2, 1, 2, 5))
	mock.ExpectRollback()

	_, err := svc.CreateRule(&models.CreateEscalationRuleRequest{
		DepartmentID:   2,
		FromLevel:      1,
		ToLevel:        2,
		DaysToEscalate: 3,
	}, admin)
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestCreateRuleInsertsWhenChainSlotIsFree(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)
	admin := models.Identity{UserID: 1, Role: models.RoleAdmin}

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM departments WHERE department_id = \? FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"department_id", "name", "is_active", "created_at"}).
			AddRow(2, "Sanitation", true, now))
	mock.ExpectQuery(`FROM escalation_rules`).
		WithArgs(int64(2), 1).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO escalation_rules`).
		WithArgs(int64(2), 1, 2, 3, true).
		WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectCommit()

	rule, err := svc.CreateRule(&models.CreateEscalationRuleRequest{
		DepartmentID:   2,
		FromLevel:      1,
		ToLevel:        2,
		DaysToEscalate: 3,
	}, admin)
	require.NoError(t, err)
	assert.Equal(t, int64(11), rule.RuleID)
	assert.True(t, rule.IsActive)
}

func TestRunSweepCountsPerComplaintErrors(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewEscalationService(db)

	expectDueList(mock, 1, 2)

	// first complaint blows up, the sweep moves on to the second
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectRollback()

	future := time.Now().UTC().Add(24 * time.Hour)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(2)).
		WillReturnRows(complaintRow(2, 100, 2, 3, "viewed", int64(10), 1, future))
	mock.ExpectCommit()

	result, err := svc.RunSweep()
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 1, result.Errors)
	assert.Equal(t, 0, result.Escalated)
}
