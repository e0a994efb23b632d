package service

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"jansetu/models"
	"jansetu/repository"
)

// EscalationService runs the periodic sweep that promotes overdue
// complaints to the next authority level, and manages the per-department
// escalation rule chains.
type EscalationService struct {
	db *sql.DB
}

// NewEscalationService creates a new escalation service
func NewEscalationService(db *sql.DB) *EscalationService {
	return &EscalationService{db: db}
}

// RunSweep processes every complaint whose escalation due date has passed.
// Each complaint is handled in its own transaction under a row lock, so
// overlapping sweeps and concurrent manual transitions are safe: the due
// date and status are re-checked after locking, and an escalation pushes
// the due date forward, making an immediate re-run a no-op. Per-complaint
// failures are counted and never abort the sweep.
func (s *EscalationService) RunSweep() (models.SweepResult, error) {
	var result models.SweepResult
	now := time.Now().UTC()

	ids, err := repository.NewComplaintRepository(s.db).ListDueForEscalation(now)
	if err != nil {
		return result, fmt.Errorf("failed to select overdue complaints: %w", err)
	}

	for _, id := range ids {
		escalated, err := s.escalateOne(id, now)
		if err != nil {
			log.Printf("[escalation] complaint %d: %v", id, err)
			result.Errors++
			continue
		}
		result.Processed++
		if escalated {
			result.Escalated++
		}
	}

	log.Printf("[escalation] sweep done: processed=%d escalated=%d errors=%d",
		result.Processed, result.Escalated, result.Errors)
	return result, nil
}

// escalateOne promotes a single overdue complaint, if it still qualifies
// once locked. Returns false with no error for the skip cases: already
// handled by a concurrent run, top of the rule chain, or no authority at
// the target level.
func (s *EscalationService) escalateOne(complaintID int64, now time.Time) (bool, error) {
	escalated := false
	err := repository.Transact(s.db, func(tx *sql.Tx) error {
		complaintRepo := repository.NewComplaintRepository(tx)
		authorityRepo := repository.NewAuthorityRepository(tx)
		escalationRepo := repository.NewEscalationRepository(tx)
		locationRepo := repository.NewLocationRepository(tx)
		notificationRepo := repository.NewNotificationRepository(tx)

		complaint, err := complaintRepo.GetByIDForUpdate(complaintID)
		if err != nil {
			return err
		}
		// Re-check after locking: a concurrent sweep or manual transition
		// may already have moved the complaint past its due date.
		if !isEscalatable(complaint.Status) ||
			!complaint.EscalationDueAt.Valid || complaint.EscalationDueAt.Time.After(now) {
			return nil
		}

		rule, err := escalationRepo.GetActiveRule(complaint.DepartmentID, complaint.CurrentEscalationLevel)
		if err != nil {
			return err
		}
		if rule == nil {
			// Top of the chain for this department; the complaint stays put.
			return nil
		}

		city, err := locationRepo.GetCity(complaint.CityID)
		if err != nil {
			return err
		}
		roster, err := authorityRepo.ListActiveByDepartment(complaint.DepartmentID)
		if err != nil {
			return err
		}
		var wardID *int64
		if complaint.WardID.Valid {
			wardID = &complaint.WardID.Int64
		}
		next := AssignAuthorityAtLevel(roster, complaint.DepartmentID, rule.ToLevel, wardID, complaint.CityID, city.DistrictID)
		if next == nil {
			// Known gap: nobody is active at the target level, so the
			// complaint stalls with its current authority.
			log.Printf("[escalation] complaint %d: no authority at level %d for department %d",
				complaintID, rule.ToLevel, complaint.DepartmentID)
			return nil
		}

		if complaint.AssignedAuthorityID.Valid {
			if err := authorityRepo.DecrementPending(complaint.AssignedAuthorityID.Int64); err != nil {
				return err
			}
		}

		nextRule, err := escalationRepo.GetActiveRule(complaint.DepartmentID, rule.ToLevel)
		if err != nil {
			return err
		}
		nextDays := DefaultEscalationDays
		if nextRule != nil {
			nextDays = nextRule.DaysToEscalate
		}
		dueAt := now.Add(time.Duration(nextDays) * 24 * time.Hour)

		if err := complaintRepo.Escalate(complaintID, next.AuthorityID, rule.ToLevel, dueAt); err != nil {
			return err
		}
		if err := authorityRepo.IncrementAssigned(next.AuthorityID); err != nil {
			return err
		}

		notes := fmt.Sprintf("Automatically escalated from level %d to level %d after %d days without resolution",
			rule.FromLevel, rule.ToLevel, rule.DaysToEscalate)
		if err := complaintRepo.AppendStatusLog(&models.ComplaintStatusLog{
			ComplaintID: complaintID,
			Status:      models.StatusEscalated,
			Notes:       sql.NullString{String: notes, Valid: true},
			AuthorityID: sql.NullInt64{Int64: next.AuthorityID, Valid: true},
		}); err != nil {
			return err
		}

		if err := notificationRepo.Enqueue(&models.Notification{
			UserID:      complaint.CitizenID,
			ComplaintID: sql.NullInt64{Int64: complaintID, Valid: true},
			Message:     fmt.Sprintf("Complaint %s has been escalated to a level %d authority", complaint.TicketNumber, rule.ToLevel),
		}); err != nil {
			return err
		}

		escalated = true
		return nil
	})
	return escalated, err
}

func isEscalatable(status models.ComplaintStatus) bool {
	for _, s := range models.EscalatableStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

// CreateRule adds a rule to a department's escalation chain (admin)
func (s *EscalationService) CreateRule(req *models.CreateEscalationRuleRequest, actor models.Identity) (*models.EscalationRule, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may manage escalation rules", models.ErrForbidden)
	}
	if req.DepartmentID == 0 {
		return nil, fmt.Errorf("%w: department_id is required", models.ErrValidation)
	}
	if req.FromLevel < 1 || req.ToLevel <= req.FromLevel {
		return nil, fmt.Errorf("%w: to_level must be greater than from_level (both >= 1)", models.ErrValidation)
	}
	if req.DaysToEscalate < 1 {
		return nil, fmt.Errorf("%w: days_to_escalate must be at least 1", models.ErrValidation)
	}

	rule := &models.EscalationRule{
		DepartmentID:   req.DepartmentID,
		FromLevel:      req.FromLevel,
		ToLevel:        req.ToLevel,
		DaysToEscalate: req.DaysToEscalate,
		IsActive:       true,
	}
	err := repository.Transact(s.db, func(tx *sql.Tx) error {
		escalationRepo := repository.NewEscalationRepository(tx)
		// Lock the department row so concurrent admins cannot both pass the
		// duplicate check; the rules index is not unique because deactivated
		// rules may share (department, from_level).
		if _, err := repository.NewDepartmentRepository(tx).GetByIDForUpdate(req.DepartmentID); err != nil {
			return err
		}
		existing, err := escalationRepo.GetActiveRule(req.DepartmentID, req.FromLevel)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: department %d already has an active rule from level %d",
				models.ErrConflict, req.DepartmentID, req.FromLevel)
		}
		return escalationRepo.Create(rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

// ListRules returns escalation rules, optionally scoped to one department's
// chain (admin)
func (s *EscalationService) ListRules(actor models.Identity, departmentID int64) ([]models.EscalationRule, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list escalation rules", models.ErrForbidden)
	}
	escalationRepo := repository.NewEscalationRepository(s.db)
	if departmentID > 0 {
		return escalationRepo.ListByDepartment(departmentID)
	}
	return escalationRepo.List()
}

// SetRuleActive toggles a rule in or out of the active chain (admin).
// Deactivating is how a chain is shortened; rules are never deleted.
func (s *EscalationService) SetRuleActive(ruleID int64, active bool, actor models.Identity) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins may manage escalation rules", models.ErrForbidden)
	}
	return repository.NewEscalationRepository(s.db).SetActive(ruleID, active)
}
