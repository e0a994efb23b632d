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

func TestSubmitRatingClosesResolvedComplaint(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db, NewMetricsService())

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "resolved", int64(10), 1, nil))
	mock.ExpectQuery(`FROM satisfaction_ratings WHERE complaint_id = \?`).
		WithArgs(int64(1)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec(`INSERT INTO satisfaction_ratings`).
		WithArgs(int64(1), int64(100), int64(10), 4, "fixed quickly").
		WillReturnResult(sqlmock.NewResult(5, 1))
	mock.ExpectExec(`SET status = \?, updated_at = NOW\(\)`).
		WithArgs("closed", int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET closed_at = NOW\(\)`).
		WithArgs(int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO complaint_status_logs`).
		WithArgs(int64(1), "closed", sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(8, 1))
	mock.ExpectExec(`INSERT INTO notifications`).
		WithArgs(int64(100), int64(1), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(9, 1))
	// score recompute inside the same transaction
	mock.ExpectQuery(`FROM authorities WHERE authority_id = \?`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows(authorityCols).
			AddRow(10, 200, 2, nil, 3, nil, 1, true, 4, 3, 1, 0.0, now, now))
	mock.ExpectQuery(`SELECT AVG\(rating\) FROM satisfaction_ratings`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"avg"}).AddRow(4.0))
	mock.ExpectExec(`SET performance_score = \?`).
		WithArgs(sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	feedback := "fixed quickly"
	rating, err := svc.SubmitRating(1, 100, &models.SubmitRatingRequest{Rating: 4, Feedback: &feedback})
	require.NoError(t, err)
	assert.Equal(t, int64(10), rating.AuthorityID)
	assert.Equal(t, 4, rating.Rating)
}

func TestSubmitRatingRejectsNonFiler(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db, NewMetricsService())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "resolved", int64(10), 1, nil))
	mock.ExpectRollback()

	_, err := svc.SubmitRating(1, 999, &models.SubmitRatingRequest{Rating: 5})
	assert.True(t, errors.Is(err, models.ErrForbidden))
}

func TestSubmitRatingRejectsUnresolvedComplaint(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db, NewMetricsService())

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "in_progress", int64(10), 1, nil))
	mock.ExpectRollback()

	_, err := svc.SubmitRating(1, 100, &models.SubmitRatingRequest{Rating: 5})
	assert.True(t, errors.Is(err, models.ErrValidation))
}

func TestSubmitRatingRejectsSecondRating(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewRatingService(db, NewMetricsService())

	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectQuery(`FROM complaints WHERE complaint_id = \? FOR UPDATE`).
		WithArgs(int64(1)).
		WillReturnRows(complaintRow(1, 100, 2, 3, "closed", int64(10), 1, nil))
	mock.ExpectQuery(`FROM satisfaction_ratings WHERE complaint_id = \?`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{
			"rating_id", "complaint_id", "citizen_id", "authority_id", "rating", "feedback", "created_at",
		}).AddRow(5, 1, 100, 10, 4, nil, now))
	mock.ExpectRollback()

	_, err := svc.SubmitRating(1, 100, &models.SubmitRatingRequest{Rating: 5})
	assert.True(t, errors.Is(err, models.ErrConflict))
}

func TestSubmitRatingValidatesRange(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewRatingService(db, NewMetricsService())

	for _, bad := range []int{0, -1, 6} {
		_, err := svc.SubmitRating(1, 100, &models.SubmitRatingRequest{Rating: bad})
		assert.True(t, errors.Is(err, models.ErrValidation), "rating %d should be rejected", bad)
	}
}
