package schema

import (
	"database/sql"
	"log"
	"strings"
)

// RequiredColumn defines a required column for a table.
type RequiredColumn struct {
	Table  string
	Column string
}

// DefaultRequiredColumns lists the columns the escalation sweep and the
// rating gate cannot run without. If any are missing the server should not
// start; failing fast beats runtime scan errors mid-sweep.
var DefaultRequiredColumns = []RequiredColumn{
	{Table: "complaints", Column: "escalation_due_at"},
	{Table: "complaints", Column: "current_escalation_level"},
	{Table: "complaints", Column: "assigned_authority_id"},
	{Table: "authorities", Column: "pending_complaints"},
	{Table: "authorities", Column: "performance_score"},
	{Table: "satisfaction_ratings", Column: "complaint_id"},
}

// ValidateRequiredColumns checks that all required columns exist. On failure,
// logs a fatal error listing the missing columns.
func ValidateRequiredColumns(db *sql.DB, required []RequiredColumn) {
	if len(required) == 0 {
		required = DefaultRequiredColumns
	}
	var missing []string
	for _, rc := range required {
		exists, err := columnExists(db, rc.Table, rc.Column)
		if err != nil {
			log.Fatalf("[SCHEMA] Failed to check column %s.%s: %v", rc.Table, rc.Column, err)
		}
		if !exists {
			missing = append(missing, rc.Table+"."+rc.Column)
		}
	}
	if len(missing) > 0 {
		log.Fatalf("[SCHEMA] Missing required columns (run migrations to fix): %s", strings.Join(missing, ", "))
	}
	log.Println("[SCHEMA] Required columns verified")
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM information_schema.COLUMNS
		 WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? AND COLUMN_NAME = ?`,
		table, column,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
