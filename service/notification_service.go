package service

import (
	"database/sql"
	"fmt"
	"log"

	"jansetu/models"
	"jansetu/repository"
)

// NotificationService delivers queued citizen notifications. Delivery in
// this deployment is the portal's own feed plus the server log; the queue
// keeps delivery out of the transactions that enqueue.
type NotificationService struct {
	db *sql.DB
}

// NewNotificationService creates a new notification service
func NewNotificationService(db *sql.DB) *NotificationService {
	return &NotificationService{db: db}
}

// ProcessPending delivers up to batchSize pending notifications, oldest
// first. Returns how many were delivered.
func (s *NotificationService) ProcessPending(batchSize int) (int, error) {
	notificationRepo := repository.NewNotificationRepository(s.db)
	pending, err := notificationRepo.ListPending(batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, n := range pending {
		if err := deliver(n); err != nil {
			log.Printf("[notify] delivery failed for notification %d: %v", n.NotificationID, err)
			if err := notificationRepo.MarkFailed(n.NotificationID, err.Error()); err != nil {
				log.Printf("[notify] failed to mark notification %d failed: %v", n.NotificationID, err)
			}
			continue
		}
		if err := notificationRepo.MarkSent(n.NotificationID); err != nil {
			log.Printf("[notify] failed to mark notification %d sent: %v", n.NotificationID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// deliver pushes one notification to the citizen's portal feed. The feed is
// the notifications table itself, so delivery is a validation plus a log
// line; an SMS or email channel would slot in here.
func deliver(n models.Notification) error {
	if n.Message == "" {
		return fmt.Errorf("notification %d has no message", n.NotificationID)
	}
	log.Printf("[notify] user=%d complaint=%d: %s", n.UserID, n.ComplaintID.Int64, n.Message)
	return nil
}
