package repository

import (
	"fmt"

	"jansetu/models"
)

// NotificationRepository handles the queued citizen notification log
type NotificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db DBTX) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Enqueue inserts a pending notification. Called inside the transaction of
// the event it describes so the queue never references uncommitted state.
func (r *NotificationRepository) Enqueue(n *models.Notification) error {
	result, err := r.db.Exec(
		`INSERT INTO notifications (user_id, complaint_id, message, status) VALUES (?, ?, ?, 'pending')`,
		n.UserID, n.ComplaintID, n.Message,
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue notification: %w", err)
	}
	notificationID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get notification ID: %w", err)
	}
	n.NotificationID = notificationID
	n.Status = "pending"
	return nil
}

// ListPending returns the oldest pending notifications up to limit
func (r *NotificationRepository) ListPending(limit int) ([]models.Notification, error) {
	rows, err := r.db.Query(
		`SELECT notification_id, user_id, complaint_id, message, status, sent_at, error_message, created_at
		 FROM notifications WHERE status = 'pending' ORDER BY created_at ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(
			&n.NotificationID, &n.UserID, &n.ComplaintID, &n.Message,
			&n.Status, &n.SentAt, &n.ErrorMessage, &n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating notifications: %w", err)
	}
	return notifications, nil
}

// MarkSent records successful delivery
func (r *NotificationRepository) MarkSent(notificationID int64) error {
	_, err := r.db.Exec(
		`UPDATE notifications SET status = 'sent', sent_at = NOW() WHERE notification_id = ?`,
		notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification sent: %w", err)
	}
	return nil
}

// MarkFailed records a delivery failure
func (r *NotificationRepository) MarkFailed(notificationID int64, reason string) error {
	_, err := r.db.Exec(
		`UPDATE notifications SET status = 'failed', error_message = ? WHERE notification_id = ?`,
		reason, notificationID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification failed: %w", err)
	}
	return nil
}
