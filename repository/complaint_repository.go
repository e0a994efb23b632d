package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"jansetu/models"
)

// complaintColumns is the canonical select list for complaints; every scan
// below follows this order.
const complaintColumns = `
	complaint_id, ticket_number, citizen_id, department_id, title, description,
	city_id, ward_id, assembly_constituency_id, parliamentary_constituency_id,
	priority, status, assigned_authority_id, current_escalation_level,
	escalation_due_at, viewed_at, resolved_at, closed_at, created_at, updated_at`

// ComplaintRepository handles database operations for complaints
type ComplaintRepository struct {
	db DBTX
}

// NewComplaintRepository creates a new complaint repository over a DB or
// transaction handle
func NewComplaintRepository(db DBTX) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

func scanComplaint(row interface {
	Scan(dest ...interface{}) error
}) (*models.Complaint, error) {
	var c models.Complaint
	err := row.Scan(
		&c.ComplaintID, &c.TicketNumber, &c.CitizenID, &c.DepartmentID,
		&c.Title, &c.Description,
		&c.CityID, &c.WardID, &c.AssemblyConstituencyID, &c.ParliamentaryConstituencyID,
		&c.Priority, &c.Status, &c.AssignedAuthorityID, &c.CurrentEscalationLevel,
		&c.EscalationDueAt, &c.ViewedAt, &c.ResolvedAt, &c.ClosedAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a new complaint and fills in its generated ID
func (r *ComplaintRepository) Create(c *models.Complaint) error {
	query := `
		INSERT INTO complaints (
			ticket_number, citizen_id, department_id, title, description,
			city_id, ward_id, assembly_constituency_id, parliamentary_constituency_id,
			priority, status, assigned_authority_id, current_escalation_level,
			escalation_due_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(
		query,
		c.TicketNumber, c.CitizenID, c.DepartmentID, c.Title, c.Description,
		c.CityID, c.WardID, c.AssemblyConstituencyID, c.ParliamentaryConstituencyID,
		c.Priority, c.Status, c.AssignedAuthorityID, c.CurrentEscalationLevel,
		c.EscalationDueAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create complaint: %w", err)
	}
	complaintID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get complaint ID: %w", err)
	}
	c.ComplaintID = complaintID
	return nil
}

// GetByID retrieves a complaint by its internal ID
func (r *ComplaintRepository) GetByID(complaintID int64) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE complaint_id = ?`
	c, err := scanComplaint(r.db.QueryRow(query, complaintID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: complaint %d", models.ErrNotFound, complaintID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return c, nil
}

// GetByIDForUpdate retrieves a complaint under a row lock. Call inside a
// transaction; concurrent writers on the same complaint serialize here.
func (r *ComplaintRepository) GetByIDForUpdate(complaintID int64) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE complaint_id = ? FOR UPDATE`
	c, err := scanComplaint(r.db.QueryRow(query, complaintID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: complaint %d", models.ErrNotFound, complaintID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock complaint: %w", err)
	}
	return c, nil
}

// GetByTicketNumber retrieves a complaint by its external ticket number
func (r *ComplaintRepository) GetByTicketNumber(ticketNumber string) (*models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE ticket_number = ?`
	c, err := scanComplaint(r.db.QueryRow(query, ticketNumber))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: ticket %s", models.ErrNotFound, ticketNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get complaint by ticket: %w", err)
	}
	return c, nil
}

// ListByCitizen retrieves all complaints filed by a citizen, newest first
func (r *ComplaintRepository) ListByCitizen(citizenID int64) ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints WHERE citizen_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, citizenID)
	if err != nil {
		return nil, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating complaints: %w", err)
	}
	return complaints, nil
}

// ListByAuthority retrieves complaints assigned to an authority with an
// optional status filter, newest first, plus a total count for pagination
func (r *ComplaintRepository) ListByAuthority(authorityID int64, statusFilter string, limit, offset int) ([]models.Complaint, int64, error) {
	countQuery := `SELECT COUNT(*) FROM complaints WHERE assigned_authority_id = ?`
	args := []interface{}{authorityID}
	if statusFilter != "" {
		countQuery += ` AND status = ?`
		args = append(args, statusFilter)
	}
	var total int64
	if err := r.db.QueryRow(countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count complaints: %w", err)
	}

	listQuery := `SELECT` + complaintColumns + ` FROM complaints WHERE assigned_authority_id = ?`
	listArgs := []interface{}{authorityID}
	if statusFilter != "" {
		listQuery += ` AND status = ?`
		listArgs = append(listArgs, statusFilter)
	}
	listQuery += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	listArgs = append(listArgs, limit, offset)

	rows, err := r.db.Query(listQuery, listArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating complaints: %w", err)
	}
	return complaints, total, nil
}

// ListUnassigned retrieves complaints without an assigned authority, for
// the admin manual-assignment queue
func (r *ComplaintRepository) ListUnassigned() ([]models.Complaint, error) {
	query := `SELECT` + complaintColumns + ` FROM complaints
		WHERE assigned_authority_id IS NULL AND status NOT IN ('resolved', 'closed')
		ORDER BY created_at ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query unassigned complaints: %w", err)
	}
	defer rows.Close()

	var complaints []models.Complaint
	for rows.Next() {
		c, err := scanComplaint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan complaint: %w", err)
		}
		complaints = append(complaints, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating unassigned complaints: %w", err)
	}
	return complaints, nil
}

// ListDueForEscalation returns the IDs of complaints whose escalation due
// date has passed while still in an escalatable status. Only IDs: each one
// is re-read under lock in its own transaction before being acted on.
func (r *ComplaintRepository) ListDueForEscalation(now time.Time) ([]int64, error) {
	statuses := models.EscalatableStatuses()
	placeholders := make([]string, len(statuses))
	args := make([]interface{}, 0, len(statuses)+1)
	for i, s := range statuses {
		placeholders[i] = "?"
		args = append(args, string(s))
	}
	args = append(args, now)

	query := fmt.Sprintf(`
		SELECT complaint_id FROM complaints
		WHERE status IN (%s) AND escalation_due_at IS NOT NULL AND escalation_due_at <= ?
		ORDER BY escalation_due_at ASC`,
		strings.Join(placeholders, ", "))

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query due complaints: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan complaint id: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating due complaints: %w", err)
	}
	return ids, nil
}

// SetStatus updates the lifecycle status only; timestamp stamps and
// escalation bookkeeping have dedicated writers below
func (r *ComplaintRepository) SetStatus(complaintID int64, status models.ComplaintStatus) error {
	_, err := r.db.Exec(
		`UPDATE complaints SET status = ?, updated_at = NOW() WHERE complaint_id = ?`,
		status, complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to update complaint status: %w", err)
	}
	return nil
}

// StampViewed sets viewed_at once; repeat transitions never re-stamp
func (r *ComplaintRepository) StampViewed(complaintID int64) error {
	_, err := r.db.Exec(
		`UPDATE complaints SET viewed_at = NOW() WHERE complaint_id = ? AND viewed_at IS NULL`,
		complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp viewed_at: %w", err)
	}
	return nil
}

// StampResolved sets resolved_at once and clears the escalation due date
func (r *ComplaintRepository) StampResolved(complaintID int64) error {
	_, err := r.db.Exec(
		`UPDATE complaints SET resolved_at = NOW(), escalation_due_at = NULL
		 WHERE complaint_id = ? AND resolved_at IS NULL`,
		complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp resolved_at: %w", err)
	}
	return nil
}

// StampClosed sets closed_at once and clears the escalation due date
func (r *ComplaintRepository) StampClosed(complaintID int64) error {
	_, err := r.db.Exec(
		`UPDATE complaints SET closed_at = NOW(), escalation_due_at = NULL
		 WHERE complaint_id = ? AND closed_at IS NULL`,
		complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to stamp closed_at: %w", err)
	}
	return nil
}

// Escalate moves a complaint to the next authority level in one statement:
// status, assignment, level and the recomputed due date change together.
func (r *ComplaintRepository) Escalate(complaintID, newAuthorityID int64, newLevel int, dueAt time.Time) error {
	_, err := r.db.Exec(
		`UPDATE complaints
		 SET status = ?, assigned_authority_id = ?, current_escalation_level = ?,
		     escalation_due_at = ?, updated_at = NOW()
		 WHERE complaint_id = ?`,
		models.StatusEscalated, newAuthorityID, newLevel, dueAt, complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to escalate complaint: %w", err)
	}
	return nil
}

// AssignAuthority sets the assigned authority on an unassigned complaint
func (r *ComplaintRepository) AssignAuthority(complaintID, authorityID int64) error {
	_, err := r.db.Exec(
		`UPDATE complaints SET assigned_authority_id = ?, updated_at = NOW() WHERE complaint_id = ?`,
		authorityID, complaintID,
	)
	if err != nil {
		return fmt.Errorf("failed to assign authority: %w", err)
	}
	return nil
}

// AppendStatusLog appends one immutable audit row. Every transition writes
// here, whether or not any other field changed.
func (r *ComplaintRepository) AppendStatusLog(logEntry *models.ComplaintStatusLog) error {
	result, err := r.db.Exec(
		`INSERT INTO complaint_status_logs (complaint_id, status, notes, authority_id)
		 VALUES (?, ?, ?, ?)`,
		logEntry.ComplaintID, logEntry.Status, logEntry.Notes, logEntry.AuthorityID,
	)
	if err != nil {
		return fmt.Errorf("failed to append status log: %w", err)
	}
	logID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get status log ID: %w", err)
	}
	logEntry.LogID = logID
	return nil
}

// GetStatusLogs retrieves the status timeline for a complaint, newest first
func (r *ComplaintRepository) GetStatusLogs(complaintID int64) ([]models.ComplaintStatusLog, error) {
	query := `
		SELECT log_id, complaint_id, status, notes, authority_id, created_at
		FROM complaint_status_logs
		WHERE complaint_id = ?
		ORDER BY created_at DESC, log_id DESC
	`
	rows, err := r.db.Query(query, complaintID)
	if err != nil {
		return nil, fmt.Errorf("failed to query status logs: %w", err)
	}
	defer rows.Close()

	var logs []models.ComplaintStatusLog
	for rows.Next() {
		var l models.ComplaintStatusLog
		if err := rows.Scan(&l.LogID, &l.ComplaintID, &l.Status, &l.Notes, &l.AuthorityID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status log: %w", err)
		}
		logs = append(logs, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status logs: %w", err)
	}
	return logs, nil
}

// AddEvidence stores evidence URLs in submission order
func (r *ComplaintRepository) AddEvidence(complaintID int64, urls []string) error {
	for i, url := range urls {
		_, err := r.db.Exec(
			`INSERT INTO complaint_evidence (complaint_id, position, url) VALUES (?, ?, ?)`,
			complaintID, i, url,
		)
		if err != nil {
			return fmt.Errorf("failed to add evidence: %w", err)
		}
	}
	return nil
}

// GetEvidence retrieves evidence URLs in submission order
func (r *ComplaintRepository) GetEvidence(complaintID int64) ([]string, error) {
	rows, err := r.db.Query(
		`SELECT url FROM complaint_evidence WHERE complaint_id = ? ORDER BY position ASC`,
		complaintID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query evidence: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan evidence: %w", err)
		}
		urls = append(urls, url)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating evidence: %w", err)
	}
	return urls, nil
}
