package repository

import (
	"database/sql"
	"fmt"

	"jansetu/models"
)

const authorityColumns = `
	authority_id, user_id, department_id, ward_id, city_id, district_id,
	level, is_active, total_complaints, resolved_complaints, pending_complaints,
	performance_score, created_at, updated_at`

// AuthorityRepository handles database operations for authorities.
// Counter mutations live here and nowhere else: the complaint creation
// path, the state machine and the escalation sweep are the only callers.
type AuthorityRepository struct {
	db DBTX
}

// NewAuthorityRepository creates a new authority repository
func NewAuthorityRepository(db DBTX) *AuthorityRepository {
	return &AuthorityRepository{db: db}
}

func scanAuthority(row interface {
	Scan(dest ...interface{}) error
}) (*models.Authority, error) {
	var a models.Authority
	err := row.Scan(
		&a.AuthorityID, &a.UserID, &a.DepartmentID,
		&a.WardID, &a.CityID, &a.DistrictID,
		&a.Level, &a.IsActive,
		&a.TotalComplaints, &a.ResolvedComplaints, &a.PendingComplaints,
		&a.PerformanceScore, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new authority and fills in its generated ID
func (r *AuthorityRepository) Create(a *models.Authority) error {
	query := `
		INSERT INTO authorities (
			user_id, department_id, ward_id, city_id, district_id, level, is_active
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		a.UserID, a.DepartmentID, a.WardID, a.CityID, a.DistrictID, a.Level, a.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create authority: %w", err)
	}
	authorityID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get authority ID: %w", err)
	}
	a.AuthorityID = authorityID
	return nil
}

// GetByID retrieves an authority by ID
func (r *AuthorityRepository) GetByID(authorityID int64) (*models.Authority, error) {
	query := `SELECT` + authorityColumns + ` FROM authorities WHERE authority_id = ?`
	a, err := scanAuthority(r.db.QueryRow(query, authorityID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: authority %d", models.ErrNotFound, authorityID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authority: %w", err)
	}
	return a, nil
}

// GetByUserID retrieves the authority linked 1:1 to a user account
func (r *AuthorityRepository) GetByUserID(userID int64) (*models.Authority, error) {
	query := `SELECT` + authorityColumns + ` FROM authorities WHERE user_id = ?`
	a, err := scanAuthority(r.db.QueryRow(query, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: authority for user %d", models.ErrNotFound, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get authority by user: %w", err)
	}
	return a, nil
}

// ListActiveByDepartment returns the active roster for a department, the
// snapshot the jurisdiction resolver matches against. Ordered by level
// then insertion order so tie-breaks are deterministic.
func (r *AuthorityRepository) ListActiveByDepartment(departmentID int64) ([]models.Authority, error) {
	query := `SELECT` + authorityColumns + ` FROM authorities
		WHERE department_id = ? AND is_active = true
		ORDER BY level ASC, authority_id ASC`
	rows, err := r.db.Query(query, departmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query authority roster: %w", err)
	}
	defer rows.Close()

	var roster []models.Authority
	for rows.Next() {
		a, err := scanAuthority(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan authority: %w", err)
		}
		roster = append(roster, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authority roster: %w", err)
	}
	return roster, nil
}

// List returns all authorities (admin view)
func (r *AuthorityRepository) List() ([]models.Authority, error) {
	query := `SELECT` + authorityColumns + ` FROM authorities ORDER BY department_id ASC, level ASC, authority_id ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query authorities: %w", err)
	}
	defer rows.Close()

	var authorities []models.Authority
	for rows.Next() {
		a, err := scanAuthority(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan authority: %w", err)
		}
		authorities = append(authorities, *a)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating authorities: %w", err)
	}
	return authorities, nil
}

// IncrementAssigned bumps the workload counters when a complaint lands on
// an authority (creation, escalation, manual assignment)
func (r *AuthorityRepository) IncrementAssigned(authorityID int64) error {
	_, err := r.db.Exec(
		`UPDATE authorities
		 SET total_complaints = total_complaints + 1,
		     pending_complaints = pending_complaints + 1,
		     updated_at = NOW()
		 WHERE authority_id = ?`,
		authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment assigned counters: %w", err)
	}
	return nil
}

// IncrementResolved bumps resolved and drops pending, never below zero
func (r *AuthorityRepository) IncrementResolved(authorityID int64) error {
	_, err := r.db.Exec(
		`UPDATE authorities
		 SET resolved_complaints = resolved_complaints + 1,
		     pending_complaints = GREATEST(pending_complaints - 1, 0),
		     updated_at = NOW()
		 WHERE authority_id = ?`,
		authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment resolved counters: %w", err)
	}
	return nil
}

// DecrementPending drops pending with a floor of zero; used when a
// complaint escalates away from an authority
func (r *AuthorityRepository) DecrementPending(authorityID int64) error {
	_, err := r.db.Exec(
		`UPDATE authorities
		 SET pending_complaints = GREATEST(pending_complaints - 1, 0),
		     updated_at = NOW()
		 WHERE authority_id = ?`,
		authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to decrement pending counter: %w", err)
	}
	return nil
}

// UpdatePerformanceScore writes the derived score only; counters are
// maintained incrementally elsewhere and never recomputed here
func (r *AuthorityRepository) UpdatePerformanceScore(authorityID int64, score float64) error {
	_, err := r.db.Exec(
		`UPDATE authorities SET performance_score = ?, updated_at = NOW() WHERE authority_id = ?`,
		score, authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to update performance score: %w", err)
	}
	return nil
}

// SetActive toggles an authority in or out of the active roster
func (r *AuthorityRepository) SetActive(authorityID int64, active bool) error {
	_, err := r.db.Exec(
		`UPDATE authorities SET is_active = ?, updated_at = NOW() WHERE authority_id = ?`,
		active, authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authority active flag: %w", err)
	}
	return nil
}

// UpdateLevel changes an authority's escalation level
func (r *AuthorityRepository) UpdateLevel(authorityID int64, level int) error {
	_, err := r.db.Exec(
		`UPDATE authorities SET level = ?, updated_at = NOW() WHERE authority_id = ?`,
		level, authorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to update authority level: %w", err)
	}
	return nil
}
