package worker

import (
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"jansetu/service"
)

// EscalationWorker runs the escalation sweep on a cron schedule
type EscalationWorker struct {
	escalationService *service.EscalationService
	schedule          string
	cron              *cron.Cron
	wg                sync.WaitGroup
	running           bool
}

// NewEscalationWorker creates a new escalation worker. schedule is a cron
// expression such as "@hourly" or "*/30 * * * *".
func NewEscalationWorker(escalationService *service.EscalationService, schedule string) *EscalationWorker {
	return &EscalationWorker{
		escalationService: escalationService,
		schedule:          schedule,
		cron:              cron.New(),
	}
}

// Start schedules the sweep and runs one immediately so a restart never
// leaves overdue complaints waiting for the next tick
func (w *EscalationWorker) Start() error {
	if w.running {
		log.Println("Escalation worker is already running")
		return nil
	}

	if _, err := w.cron.AddFunc(w.schedule, w.runSweep); err != nil {
		return err
	}
	w.cron.Start()
	w.running = true
	log.Printf("Escalation worker started (schedule: %s)", w.schedule)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.runSweep()
	}()
	return nil
}

// Stop stops the worker, waiting for in-flight sweeps to finish. The cron
// context only covers scheduled runs; the initial sweep is tracked
// separately.
func (w *EscalationWorker) Stop() {
	if !w.running {
		return
	}

	log.Println("Stopping escalation worker...")
	ctx := w.cron.Stop()
	<-ctx.Done()
	w.wg.Wait()
	w.running = false
	log.Println("Escalation worker stopped")
}

func (w *EscalationWorker) runSweep() {
	startTime := time.Now()

	result, err := w.escalationService.RunSweep()
	if err != nil {
		log.Printf("Error running escalation sweep: %v", err)
		return
	}

	log.Printf("Escalation sweep completed in %v: %d processed, %d escalated, %d errors",
		time.Since(startTime), result.Processed, result.Escalated, result.Errors)
}
