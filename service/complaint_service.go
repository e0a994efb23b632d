package service

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"jansetu/models"
	"jansetu/repository"
	"jansetu/utils"
)

// DefaultEscalationDays seeds the escalation due date when a department
// has no rule configured for the complaint's level
const DefaultEscalationDays = 7

// ComplaintService handles complaint intake, reads and the status state
// machine. Every multi-step mutation runs in a single transaction.
type ComplaintService struct {
	db      *sql.DB
	metrics *MetricsService
}

// NewComplaintService creates a new complaint service
func NewComplaintService(db *sql.DB, metrics *MetricsService) *ComplaintService {
	return &ComplaintService{db: db, metrics: metrics}
}

// CreateComplaint files a new complaint: validates input, denormalizes the
// ward's constituencies, resolves the authority by jurisdiction, seeds the
// escalation due date and writes the initial status log. The complaint
// insert and the authority counter bump commit together or not at all.
func (s *ComplaintService) CreateComplaint(req *models.CreateComplaintRequest, citizenID int64) (*models.CreateComplaintResponse, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", models.ErrValidation)
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, fmt.Errorf("%w: description is required", models.ErrValidation)
	}
	if req.CityID == 0 {
		return nil, fmt.Errorf("%w: city_id is required", models.ErrValidation)
	}
	if req.DepartmentID == 0 {
		return nil, fmt.Errorf("%w: department_id is required", models.ErrValidation)
	}
	priority, err := models.ParsePriority(req.Priority)
	if err != nil {
		return nil, err
	}

	ticketNumber := utils.GenerateTicketNumber()

	var response *models.CreateComplaintResponse
	err = repository.Transact(s.db, func(tx *sql.Tx) error {
		complaintRepo := repository.NewComplaintRepository(tx)
		authorityRepo := repository.NewAuthorityRepository(tx)
		escalationRepo := repository.NewEscalationRepository(tx)
		locationRepo := repository.NewLocationRepository(tx)
		departmentRepo := repository.NewDepartmentRepository(tx)
		notificationRepo := repository.NewNotificationRepository(tx)

		department, err := departmentRepo.GetByID(req.DepartmentID)
		if err != nil {
			return err
		}
		if !department.IsActive {
			return fmt.Errorf("%w: department %d is not active", models.ErrValidation, req.DepartmentID)
		}

		city, err := locationRepo.GetCity(req.CityID)
		if err != nil {
			return err
		}

		complaint := &models.Complaint{
			TicketNumber:           ticketNumber,
			CitizenID:              citizenID,
			DepartmentID:           req.DepartmentID,
			Title:                  req.Title,
			Description:            req.Description,
			CityID:                 req.CityID,
			Priority:               priority,
			Status:                 models.StatusSubmitted,
			CurrentEscalationLevel: 1,
		}

		// Constituencies are denormalized from the ward once, at creation,
		// and never recomputed afterwards.
		if req.WardID != nil {
			ward, err := locationRepo.GetWard(*req.WardID)
			if err != nil {
				return err
			}
			if ward.CityID != req.CityID {
				return fmt.Errorf("%w: ward %d is not in city %d", models.ErrValidation, *req.WardID, req.CityID)
			}
			complaint.WardID = sql.NullInt64{Int64: ward.WardID, Valid: true}
			complaint.AssemblyConstituencyID = ward.AssemblyConstituencyID
			complaint.ParliamentaryConstituencyID = ward.ParliamentaryConstituencyID
		}

		roster, err := authorityRepo.ListActiveByDepartment(req.DepartmentID)
		if err != nil {
			return err
		}
		assigned := AssignAuthority(roster, req.DepartmentID, req.WardID, req.CityID, city.DistrictID)
		if assigned != nil {
			complaint.AssignedAuthorityID = sql.NullInt64{Int64: assigned.AuthorityID, Valid: true}
		}

		rule, err := escalationRepo.GetActiveRule(req.DepartmentID, 1)
		if err != nil {
			return err
		}
		days := DefaultEscalationDays
		if rule != nil {
			days = rule.DaysToEscalate
		}
		complaint.EscalationDueAt = sql.NullTime{
			Time:  time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour),
			Valid: true,
		}

		if err := complaintRepo.Create(complaint); err != nil {
			return err
		}
		if assigned != nil {
			if err := authorityRepo.IncrementAssigned(assigned.AuthorityID); err != nil {
				return err
			}
		}
		if err := complaintRepo.AddEvidence(complaint.ComplaintID, req.EvidenceURLs); err != nil {
			return err
		}

		if err := complaintRepo.AppendStatusLog(&models.ComplaintStatusLog{
			ComplaintID: complaint.ComplaintID,
			Status:      models.StatusSubmitted,
			Notes:       sql.NullString{String: "Complaint filed", Valid: true},
		}); err != nil {
			return err
		}

		if err := notificationRepo.Enqueue(&models.Notification{
			UserID:      citizenID,
			ComplaintID: sql.NullInt64{Int64: complaint.ComplaintID, Valid: true},
			Message:     fmt.Sprintf("Your complaint %s has been registered with %s", ticketNumber, department.Name),
		}); err != nil {
			return err
		}

		response = &models.CreateComplaintResponse{
			ComplaintID:  complaint.ComplaintID,
			TicketNumber: complaint.TicketNumber,
			Status:       complaint.Status,
			Assigned:     assigned != nil,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[complaint] created complaint %s (id=%d, assigned=%t)", response.TicketNumber, response.ComplaintID, response.Assigned)
	return response, nil
}

// GetComplaint returns a complaint with its evidence. Visible to the filer,
// the currently assigned authority and admins.
func (s *ComplaintService) GetComplaint(complaintID int64, actor models.Identity) (*models.Complaint, error) {
	complaintRepo := repository.NewComplaintRepository(s.db)
	complaint, err := complaintRepo.GetByID(complaintID)
	if err != nil {
		return nil, err
	}
	if err := canView(complaint, actor); err != nil {
		return nil, err
	}
	urls, err := complaintRepo.GetEvidence(complaintID)
	if err != nil {
		return nil, err
	}
	complaint.EvidenceURLs = urls
	return complaint, nil
}

// GetTimeline returns the complaint's status log, newest first
func (s *ComplaintService) GetTimeline(complaintID int64, actor models.Identity) ([]models.ComplaintStatusLog, error) {
	complaintRepo := repository.NewComplaintRepository(s.db)
	complaint, err := complaintRepo.GetByID(complaintID)
	if err != nil {
		return nil, err
	}
	if err := canView(complaint, actor); err != nil {
		return nil, err
	}
	return complaintRepo.GetStatusLogs(complaintID)
}

// ListByCitizen returns the citizen's own complaints
func (s *ComplaintService) ListByCitizen(citizenID int64) ([]models.Complaint, error) {
	return repository.NewComplaintRepository(s.db).ListByCitizen(citizenID)
}

// ListDepartments returns the active departments complaints can be filed
// against; feeds the public complaint form
func (s *ComplaintService) ListDepartments() ([]models.Department, error) {
	return repository.NewDepartmentRepository(s.db).List()
}

// GetPublicByTicket serves the shareable case page: whitelisted fields
// only, looked up by ticket number, internal ids never exposed
func (s *ComplaintService) GetPublicByTicket(ticketNumber string) (*models.PublicComplaintView, error) {
	complaint, err := repository.NewComplaintRepository(s.db).GetByTicketNumber(ticketNumber)
	if err != nil {
		return nil, err
	}
	return &models.PublicComplaintView{
		TicketNumber: complaint.TicketNumber,
		Title:        complaint.Title,
		DepartmentID: complaint.DepartmentID,
		Status:       complaint.Status,
		CreatedAt:    complaint.CreatedAt,
	}, nil
}

// UpdateStatus advances a complaint through the state machine. Only an
// admin or the currently assigned authority may transition; the transition
// table rejects everything else, and every transition appends one status
// log row. Runs under a row lock so concurrent transitions serialize.
func (s *ComplaintService) UpdateStatus(complaintID int64, req *models.UpdateStatusRequest, actor models.Identity) (*models.Complaint, error) {
	newStatus, err := models.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	if newStatus == models.StatusEscalated {
		return nil, fmt.Errorf("%w: escalated is set by the escalation sweep, not by callers", models.ErrValidation)
	}
	if newStatus == models.StatusSubmitted {
		return nil, fmt.Errorf("%w: submitted is the initial status and cannot be re-entered", models.ErrValidation)
	}

	var updated *models.Complaint
	err = repository.Transact(s.db, func(tx *sql.Tx) error {
		complaintRepo := repository.NewComplaintRepository(tx)
		authorityRepo := repository.NewAuthorityRepository(tx)
		notificationRepo := repository.NewNotificationRepository(tx)

		complaint, err := complaintRepo.GetByIDForUpdate(complaintID)
		if err != nil {
			return err
		}
		if err := canTransitionActor(complaint, actor); err != nil {
			return err
		}
		if !models.CanTransition(complaint.Status, newStatus) {
			return fmt.Errorf("%w: cannot move complaint from %s to %s", models.ErrValidation, complaint.Status, newStatus)
		}

		if err := complaintRepo.SetStatus(complaintID, newStatus); err != nil {
			return err
		}
		switch newStatus {
		case models.StatusViewed:
			if err := complaintRepo.StampViewed(complaintID); err != nil {
				return err
			}
		case models.StatusResolved:
			if err := complaintRepo.StampResolved(complaintID); err != nil {
				return err
			}
			if complaint.AssignedAuthorityID.Valid {
				authorityID := complaint.AssignedAuthorityID.Int64
				if err := authorityRepo.IncrementResolved(authorityID); err != nil {
					return err
				}
				if err := s.metrics.RecomputeAuthorityScore(tx, authorityID); err != nil {
					return err
				}
			}
		case models.StatusClosed:
			if err := complaintRepo.StampClosed(complaintID); err != nil {
				return err
			}
		}

		logEntry := &models.ComplaintStatusLog{
			ComplaintID: complaintID,
			Status:      newStatus,
			AuthorityID: actor.AuthorityID,
		}
		if req.Notes != "" {
			logEntry.Notes = sql.NullString{String: req.Notes, Valid: true}
		}
		if err := complaintRepo.AppendStatusLog(logEntry); err != nil {
			return err
		}

		if err := notificationRepo.Enqueue(&models.Notification{
			UserID:      complaint.CitizenID,
			ComplaintID: sql.NullInt64{Int64: complaintID, Valid: true},
			Message:     fmt.Sprintf("Complaint %s is now %s", complaint.TicketNumber, newStatus),
		}); err != nil {
			return err
		}

		updated, err = complaintRepo.GetByID(complaintID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AdminAssign manually assigns an unassigned complaint to an authority.
// Same single-writer counter discipline as automatic assignment.
func (s *ComplaintService) AdminAssign(complaintID int64, authorityID int64, actor models.Identity) error {
	if actor.Role != models.RoleAdmin {
		return fmt.Errorf("%w: only admins may assign complaints", models.ErrForbidden)
	}
	return repository.Transact(s.db, func(tx *sql.Tx) error {
		complaintRepo := repository.NewComplaintRepository(tx)
		authorityRepo := repository.NewAuthorityRepository(tx)

		complaint, err := complaintRepo.GetByIDForUpdate(complaintID)
		if err != nil {
			return err
		}
		if complaint.AssignedAuthorityID.Valid {
			return fmt.Errorf("%w: complaint %d is already assigned", models.ErrConflict, complaintID)
		}
		if models.IsTerminal(complaint.Status) {
			return fmt.Errorf("%w: complaint %d is already %s", models.ErrValidation, complaintID, complaint.Status)
		}
		authority, err := authorityRepo.GetByID(authorityID)
		if err != nil {
			return err
		}
		if !authority.IsActive {
			return fmt.Errorf("%w: authority %d is not active", models.ErrValidation, authorityID)
		}
		if authority.DepartmentID != complaint.DepartmentID {
			return fmt.Errorf("%w: authority %d belongs to a different department", models.ErrValidation, authorityID)
		}

		if err := complaintRepo.AssignAuthority(complaintID, authorityID); err != nil {
			return err
		}
		if err := authorityRepo.IncrementAssigned(authorityID); err != nil {
			return err
		}
		return complaintRepo.AppendStatusLog(&models.ComplaintStatusLog{
			ComplaintID: complaintID,
			Status:      complaint.Status,
			Notes:       sql.NullString{String: "Manually assigned by administrator", Valid: true},
			AuthorityID: sql.NullInt64{Int64: authorityID, Valid: true},
		})
	})
}

// ListUnassigned returns the admin queue of complaints with no authority
func (s *ComplaintService) ListUnassigned(actor models.Identity) ([]models.Complaint, error) {
	if actor.Role != models.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins may list unassigned complaints", models.ErrForbidden)
	}
	return repository.NewComplaintRepository(s.db).ListUnassigned()
}

func canView(complaint *models.Complaint, actor models.Identity) error {
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleCitizen:
		if complaint.CitizenID == actor.UserID {
			return nil
		}
	case models.RoleAuthority:
		if actor.AuthorityID.Valid && complaint.AssignedAuthorityID.Valid &&
			actor.AuthorityID.Int64 == complaint.AssignedAuthorityID.Int64 {
			return nil
		}
	}
	return fmt.Errorf("%w: no access to complaint %d", models.ErrForbidden, complaint.ComplaintID)
}

func canTransitionActor(complaint *models.Complaint, actor models.Identity) error {
	if actor.Role == models.RoleAdmin {
		return nil
	}
	if actor.Role == models.RoleAuthority && actor.AuthorityID.Valid &&
		complaint.AssignedAuthorityID.Valid &&
		actor.AuthorityID.Int64 == complaint.AssignedAuthorityID.Int64 {
		return nil
	}
	return fmt.Errorf("%w: only an admin or the assigned authority may update complaint %d", models.ErrForbidden, complaint.ComplaintID)
}
