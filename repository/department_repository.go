package repository

import (
	"database/sql"
	"fmt"

	"jansetu/models"
)

// DepartmentRepository reads static department metadata
type DepartmentRepository struct {
	db DBTX
}

// NewDepartmentRepository creates a new department repository
func NewDepartmentRepository(db DBTX) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// GetByID retrieves a department
func (r *DepartmentRepository) GetByID(departmentID int64) (*models.Department, error) {
	var d models.Department
	err := r.db.QueryRow(
		`SELECT department_id, name, is_active, created_at FROM departments WHERE department_id = ?`,
		departmentID,
	).Scan(&d.DepartmentID, &d.Name, &d.IsActive, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: department %d", models.ErrNotFound, departmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get department: %w", err)
	}
	return &d, nil
}

// GetByIDForUpdate retrieves a department under a row lock. Call inside a
// transaction; writers that must serialize per department lock here.
func (r *DepartmentRepository) GetByIDForUpdate(departmentID int64) (*models.Department, error) {
	var d models.Department
	err := r.db.QueryRow(
		`SELECT department_id, name, is_active, created_at FROM departments WHERE department_id = ? FOR UPDATE`,
		departmentID,
	).Scan(&d.DepartmentID, &d.Name, &d.IsActive, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: department %d", models.ErrNotFound, departmentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock department: %w", err)
	}
	return &d, nil
}

// List returns all active departments
func (r *DepartmentRepository) List() ([]models.Department, error) {
	rows, err := r.db.Query(
		`SELECT department_id, name, is_active, created_at FROM departments WHERE is_active = true ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query departments: %w", err)
	}
	defer rows.Close()

	var departments []models.Department
	for rows.Next() {
		var d models.Department
		if err := rows.Scan(&d.DepartmentID, &d.Name, &d.IsActive, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		departments = append(departments, d)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating departments: %w", err)
	}
	return departments, nil
}
