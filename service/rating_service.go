package service

import (
	"database/sql"
	"fmt"

	"jansetu/models"
	"jansetu/repository"
)

// RatingService is the satisfaction-rating gate: one rating per complaint,
// only by the filer, only after resolution. A rating on a resolved
// complaint also closes it, and either way the assigned authority's
// performance score is recomputed in the same transaction.
type RatingService struct {
	db      *sql.DB
	metrics *MetricsService
}

// NewRatingService creates a new rating service
func NewRatingService(db *sql.DB, metrics *MetricsService) *RatingService {
	return &RatingService{db: db, metrics: metrics}
}

// SubmitRating validates the gate preconditions in order (first failure
// wins) and records the rating with its side effects atomically
func (s *RatingService) SubmitRating(complaintID, citizenID int64, req *models.SubmitRatingRequest) (*models.SatisfactionRating, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", models.ErrValidation)
	}

	rating := &models.SatisfactionRating{
		ComplaintID: complaintID,
		CitizenID:   citizenID,
		Rating:      req.Rating,
	}
	if req.Feedback != nil && *req.Feedback != "" {
		rating.Feedback = sql.NullString{String: *req.Feedback, Valid: true}
	}

	err := repository.Transact(s.db, func(tx *sql.Tx) error {
		complaintRepo := repository.NewComplaintRepository(tx)
		ratingRepo := repository.NewRatingRepository(tx)
		notificationRepo := repository.NewNotificationRepository(tx)

		complaint, err := complaintRepo.GetByIDForUpdate(complaintID)
		if err != nil {
			return err
		}
		if complaint.CitizenID != citizenID {
			return fmt.Errorf("%w: only the filer may rate complaint %d", models.ErrForbidden, complaintID)
		}
		if complaint.Status != models.StatusResolved && complaint.Status != models.StatusClosed {
			return fmt.Errorf("%w: complaint %d is not resolved yet", models.ErrValidation, complaintID)
		}
		if !complaint.AssignedAuthorityID.Valid {
			return fmt.Errorf("%w: complaint %d has no assigned authority to rate", models.ErrValidation, complaintID)
		}
		existing, err := ratingRepo.GetByComplaintID(complaintID)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: complaint %d already rated", models.ErrConflict, complaintID)
		}

		rating.AuthorityID = complaint.AssignedAuthorityID.Int64
		if err := ratingRepo.Create(rating); err != nil {
			return err
		}

		// A rating on a resolved complaint closes it through the state
		// machine's bookkeeping, status log included.
		if complaint.Status == models.StatusResolved {
			if err := complaintRepo.SetStatus(complaintID, models.StatusClosed); err != nil {
				return err
			}
			if err := complaintRepo.StampClosed(complaintID); err != nil {
				return err
			}
			if err := complaintRepo.AppendStatusLog(&models.ComplaintStatusLog{
				ComplaintID: complaintID,
				Status:      models.StatusClosed,
				Notes: sql.NullString{
					String: fmt.Sprintf("Closed by citizen after rating the resolution %d/5", req.Rating),
					Valid:  true,
				},
			}); err != nil {
				return err
			}
			if err := notificationRepo.Enqueue(&models.Notification{
				UserID:      complaint.CitizenID,
				ComplaintID: sql.NullInt64{Int64: complaintID, Valid: true},
				Message:     fmt.Sprintf("Complaint %s has been closed with your rating", complaint.TicketNumber),
			}); err != nil {
				return err
			}
		}

		return s.metrics.RecomputeAuthorityScore(tx, rating.AuthorityID)
	})
	if err != nil {
		return nil, err
	}
	return rating, nil
}
