package repository

import (
	"database/sql"
	"fmt"

	"jansetu/models"
)

// UserRepository handles database operations for portal accounts
type UserRepository struct {
	db DBTX
}

// NewUserRepository creates a new user repository
func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

// GetByEmail retrieves a user by email for login
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.QueryRow(
		`SELECT user_id, name, email, password_hash, role, is_active, created_at
		 FROM users WHERE email = ?`,
		email,
	).Scan(&u.UserID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: user %s", models.ErrNotFound, email)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

// Create inserts a new user account and fills in its generated ID
func (r *UserRepository) Create(u *models.User) error {
	result, err := r.db.Exec(
		`INSERT INTO users (name, email, password_hash, role, is_active) VALUES (?, ?, ?, ?, ?)`,
		u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	userID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get user ID: %w", err)
	}
	u.UserID = userID
	return nil
}
