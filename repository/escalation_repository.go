package repository

import (
	"database/sql"
	"fmt"

	"jansetu/models"
)

const ruleColumns = `
	rule_id, department_id, from_level, to_level, days_to_escalate,
	is_active, created_at, updated_at`

// EscalationRepository handles database operations for escalation rules
type EscalationRepository struct {
	db DBTX
}

// NewEscalationRepository creates a new escalation repository
func NewEscalationRepository(db DBTX) *EscalationRepository {
	return &EscalationRepository{db: db}
}

func scanRule(row interface {
	Scan(dest ...interface{}) error
}) (*models.EscalationRule, error) {
	var rule models.EscalationRule
	err := row.Scan(
		&rule.RuleID, &rule.DepartmentID, &rule.FromLevel, &rule.ToLevel,
		&rule.DaysToEscalate, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// GetActiveRule returns the active rule for (department, fromLevel), or
// nil when the level is terminal for escalation. Lowest rule_id wins if
// misconfiguration ever leaves duplicates.
func (r *EscalationRepository) GetActiveRule(departmentID int64, fromLevel int) (*models.EscalationRule, error) {
	query := `SELECT` + ruleColumns + ` FROM escalation_rules
		WHERE department_id = ? AND from_level = ? AND is_active = true
		ORDER BY rule_id ASC LIMIT 1`
	rule, err := scanRule(r.db.QueryRow(query, departmentID, fromLevel))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get escalation rule: %w", err)
	}
	return rule, nil
}

// ListByDepartment returns a department's escalation chain in level order
func (r *EscalationRepository) ListByDepartment(departmentID int64) ([]models.EscalationRule, error) {
	query := `SELECT` + ruleColumns + ` FROM escalation_rules
		WHERE department_id = ? ORDER BY from_level ASC`
	rows, err := r.db.Query(query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalation rules: %w", err)
	}
	defer rows.Close()

	var rules []models.EscalationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalation rules: %w", err)
	}
	return rules, nil
}

// List returns all escalation rules (admin view)
func (r *EscalationRepository) List() ([]models.EscalationRule, error) {
	query := `SELECT` + ruleColumns + ` FROM escalation_rules ORDER BY department_id ASC, from_level ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query escalation rules: %w", err)
	}
	defer rows.Close()

	var rules []models.EscalationRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation rule: %w", err)
		}
		rules = append(rules, *rule)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating escalation rules: %w", err)
	}
	return rules, nil
}

// Create inserts a new escalation rule and fills in its generated ID
func (r *EscalationRepository) Create(rule *models.EscalationRule) error {
	result, err := r.db.Exec(
		`INSERT INTO escalation_rules (department_id, from_level, to_level, days_to_escalate, is_active)
		 VALUES (?, ?, ?, ?, ?)`,
		rule.DepartmentID, rule.FromLevel, rule.ToLevel, rule.DaysToEscalate, rule.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create escalation rule: %w", err)
	}
	ruleID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rule ID: %w", err)
	}
	rule.RuleID = ruleID
	return nil
}

// SetActive toggles a rule in or out of the active chain
func (r *EscalationRepository) SetActive(ruleID int64, active bool) error {
	_, err := r.db.Exec(
		`UPDATE escalation_rules SET is_active = ?, updated_at = NOW() WHERE rule_id = ?`,
		active, ruleID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule active flag: %w", err)
	}
	return nil
}
