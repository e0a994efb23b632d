package service

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlmock-backed handle; expectations are checked on
// cleanup so every test fails loudly on unmet or unexpected SQL.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

// timeNearArg matches a time argument within a minute of the expected
// value; due dates are computed from time.Now inside the services.
type timeNearArg struct {
	want time.Time
}

func (a timeNearArg) Match(v driver.Value) bool {
	got, ok := v.(time.Time)
	if !ok {
		return false
	}
	diff := got.Sub(a.want)
	if diff < 0 {
		diff = -diff
	}
	return diff < time.Minute
}

func timeNear(want time.Time) sqlmock.Argument {
	return timeNearArg{want: want}
}

var complaintCols = []string{
	"complaint_id", "ticket_number", "citizen_id", "department_id", "title", "description",
	"city_id", "ward_id", "assembly_constituency_id", "parliamentary_constituency_id",
	"priority", "status", "assigned_authority_id", "current_escalation_level",
	"escalation_due_at", "viewed_at", "resolved_at", "closed_at", "created_at", "updated_at",
}

var authorityCols = []string{
	"authority_id", "user_id", "department_id", "ward_id", "city_id", "district_id",
	"level", "is_active", "total_complaints", "resolved_complaints", "pending_complaints",
	"performance_score", "created_at", "updated_at",
}

var ruleCols = []string{
	"rule_id", "department_id", "from_level", "to_level", "days_to_escalate",
	"is_active", "created_at", "updated_at",
}

// complaintRow builds one complaint row in column order. dueAt and assigned
// may be nil for unscheduled/unassigned complaints.
func complaintRow(id int64, citizenID, departmentID, cityID int64, status string, assigned interface{}, level int, dueAt interface{}) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(complaintCols).AddRow(
		id, "COMP-20260830-abcd1234", citizenID, departmentID, "Broken streetlight", "Pole 14 is dark",
		cityID, nil, nil, nil,
		"medium", status, assigned, level,
		dueAt, nil, nil, nil, now, now,
	)
}

// cityAuthorityRow builds one city-scoped authority roster row
func cityAuthorityRow(rows *sqlmock.Rows, id, departmentID, cityID int64, level int) *sqlmock.Rows {
	now := time.Now().UTC()
	return rows.AddRow(id, id*10, departmentID, nil, cityID, nil, level, true, 0, 0, 0, 0.0, now, now)
}

func ruleRow(departmentID int64, fromLevel, toLevel, days int) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(ruleCols).AddRow(1, departmentID, fromLevel, toLevel, days, true, now, now)
}
