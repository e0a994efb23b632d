package worker

import (
	"log"
	"time"

	"jansetu/service"
)

// NotificationWorker drains the notification queue on a fixed interval
type NotificationWorker struct {
	notificationService *service.NotificationService
	interval            time.Duration
	batchSize           int
	stopChan            chan struct{}
	running             bool
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(notificationService *service.NotificationService, interval time.Duration, batchSize int) *NotificationWorker {
	return &NotificationWorker{
		notificationService: notificationService,
		interval:            interval,
		batchSize:           batchSize,
		stopChan:            make(chan struct{}),
	}
}

// Start starts the notification worker in its own goroutine
func (w *NotificationWorker) Start() {
	if w.running {
		log.Println("Notification worker is already running")
		return
	}

	w.running = true
	log.Printf("Notification worker started (interval: %v, batch: %d)", w.interval, w.batchSize)

	go w.run()
}

// Stop stops the notification worker
func (w *NotificationWorker) Stop() {
	if !w.running {
		return
	}

	log.Println("Stopping notification worker...")
	close(w.stopChan)
	w.running = false
	log.Println("Notification worker stopped")
}

func (w *NotificationWorker) run() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sent, err := w.notificationService.ProcessPending(w.batchSize)
			if err != nil {
				log.Printf("Error processing notifications: %v", err)
				continue
			}
			if sent > 0 {
				log.Printf("Delivered %d notifications", sent)
			}
		case <-w.stopChan:
			return
		}
	}
}
