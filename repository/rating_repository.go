package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"jansetu/models"
)

// mysqlDuplicateEntry is the MySQL error number for unique-key violations
const mysqlDuplicateEntry = 1062

// RatingRepository handles database operations for satisfaction ratings
type RatingRepository struct {
	db DBTX
}

// NewRatingRepository creates a new rating repository
func NewRatingRepository(db DBTX) *RatingRepository {
	return &RatingRepository{db: db}
}

// Create inserts a rating. The unique index on complaint_id backstops the
// one-rating-per-complaint precondition under concurrent submissions;
// duplicates surface as ErrConflict.
func (r *RatingRepository) Create(rating *models.SatisfactionRating) error {
	result, err := r.db.Exec(
		`INSERT INTO satisfaction_ratings (complaint_id, citizen_id, authority_id, rating, feedback)
		 VALUES (?, ?, ?, ?, ?)`,
		rating.ComplaintID, rating.CitizenID, rating.AuthorityID, rating.Rating, rating.Feedback,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
			return fmt.Errorf("%w: complaint %d already rated", models.ErrConflict, rating.ComplaintID)
		}
		return fmt.Errorf("failed to create rating: %w", err)
	}
	ratingID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get rating ID: %w", err)
	}
	rating.RatingID = ratingID
	return nil
}

// GetByComplaintID returns the rating for a complaint, or nil if none
func (r *RatingRepository) GetByComplaintID(complaintID int64) (*models.SatisfactionRating, error) {
	var rating models.SatisfactionRating
	err := r.db.QueryRow(
		`SELECT rating_id, complaint_id, citizen_id, authority_id, rating, feedback, created_at
		 FROM satisfaction_ratings WHERE complaint_id = ?`,
		complaintID,
	).Scan(
		&rating.RatingID, &rating.ComplaintID, &rating.CitizenID, &rating.AuthorityID,
		&rating.Rating, &rating.Feedback, &rating.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return &rating, nil
}

// GetAuthorityAverage returns the mean rating across an authority's
// resolutions, 0 when it has none
func (r *RatingRepository) GetAuthorityAverage(authorityID int64) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRow(
		`SELECT AVG(rating) FROM satisfaction_ratings WHERE authority_id = ?`,
		authorityID,
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("failed to get average rating: %w", err)
	}
	if !avg.Valid {
		return 0, nil
	}
	return avg.Float64, nil
}
