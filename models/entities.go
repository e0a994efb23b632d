package models

import (
	"database/sql"
	"time"
)

// Role represents the role carried by an authenticated identity
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleAuthority Role = "authority"
	RoleAdmin     Role = "admin"
)

// Identity is the authenticated caller as established by the auth middleware.
// The core trusts it as given; it never authenticates.
type Identity struct {
	UserID      int64
	Role        Role
	AuthorityID sql.NullInt64 // set only for RoleAuthority
}

// User represents a portal account (citizen, authority or admin)
type User struct {
	UserID       int64          `db:"user_id" json:"user_id"`
	Name         string         `db:"name" json:"name"`
	Email        string         `db:"email" json:"email"`
	PasswordHash sql.NullString `db:"password_hash" json:"-"`
	Role         Role           `db:"role" json:"role"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}

// Complaint represents a citizen grievance against a department
type Complaint struct {
	ComplaintID                 int64           `db:"complaint_id" json:"complaint_id"`
	TicketNumber                string          `db:"ticket_number" json:"ticket_number"`
	CitizenID                   int64           `db:"citizen_id" json:"citizen_id"`
	DepartmentID                int64           `db:"department_id" json:"department_id"`
	Title                       string          `db:"title" json:"title"`
	Description                 string          `db:"description" json:"description"`
	CityID                      int64           `db:"city_id" json:"city_id"`
	WardID                      sql.NullInt64   `db:"ward_id" json:"ward_id"`
	AssemblyConstituencyID      sql.NullInt64   `db:"assembly_constituency_id" json:"assembly_constituency_id"`
	ParliamentaryConstituencyID sql.NullInt64   `db:"parliamentary_constituency_id" json:"parliamentary_constituency_id"`
	Priority                    Priority        `db:"priority" json:"priority"`
	Status                      ComplaintStatus `db:"status" json:"status"`
	AssignedAuthorityID         sql.NullInt64   `db:"assigned_authority_id" json:"assigned_authority_id"`
	CurrentEscalationLevel      int             `db:"current_escalation_level" json:"current_escalation_level"`
	EscalationDueAt             sql.NullTime    `db:"escalation_due_at" json:"escalation_due_at"`
	ViewedAt                    sql.NullTime    `db:"viewed_at" json:"viewed_at"`
	ResolvedAt                  sql.NullTime    `db:"resolved_at" json:"resolved_at"`
	ClosedAt                    sql.NullTime    `db:"closed_at" json:"closed_at"`
	CreatedAt                   time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt                   sql.NullTime    `db:"updated_at" json:"updated_at"`

	// EvidenceURLs is loaded from complaint_evidence, ordered by position.
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

// Authority represents a government authority account for a department.
// Exactly one of WardID/CityID/DistrictID is normally set and fixes the
// granularity at which the authority operates; all NULL means unscoped
// (accepts escalations from anywhere in the department).
type Authority struct {
	AuthorityID        int64         `db:"authority_id" json:"authority_id"`
	UserID             int64         `db:"user_id" json:"user_id"`
	DepartmentID       int64         `db:"department_id" json:"department_id"`
	WardID             sql.NullInt64 `db:"ward_id" json:"ward_id"`
	CityID             sql.NullInt64 `db:"city_id" json:"city_id"`
	DistrictID         sql.NullInt64 `db:"district_id" json:"district_id"`
	Level              int           `db:"level" json:"level"`
	IsActive           bool          `db:"is_active" json:"is_active"`
	TotalComplaints    int           `db:"total_complaints" json:"total_complaints"`
	ResolvedComplaints int           `db:"resolved_complaints" json:"resolved_complaints"`
	PendingComplaints  int           `db:"pending_complaints" json:"pending_complaints"`
	PerformanceScore   float64       `db:"performance_score" json:"performance_score"`
	CreatedAt          time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt          sql.NullTime  `db:"updated_at" json:"updated_at"`
}

// EscalationRule maps a department's from-level to the next level with a
// day budget. Rules chain per department; a level with no active rule is
// terminal for escalation.
type EscalationRule struct {
	RuleID         int64        `db:"rule_id" json:"rule_id"`
	DepartmentID   int64        `db:"department_id" json:"department_id"`
	FromLevel      int          `db:"from_level" json:"from_level"`
	ToLevel        int          `db:"to_level" json:"to_level"`
	DaysToEscalate int          `db:"days_to_escalate" json:"days_to_escalate"`
	IsActive       bool         `db:"is_active" json:"is_active"`
	CreatedAt      time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt      sql.NullTime `db:"updated_at" json:"updated_at"`
}

// ComplaintStatusLog is an immutable status-change record (append only,
// displayed newest first, never mutated or deleted)
type ComplaintStatusLog struct {
	LogID       int64           `db:"log_id" json:"log_id"`
	ComplaintID int64           `db:"complaint_id" json:"complaint_id"`
	Status      ComplaintStatus `db:"status" json:"status"`
	Notes       sql.NullString  `db:"notes" json:"notes"`
	AuthorityID sql.NullInt64   `db:"authority_id" json:"authority_id"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// SatisfactionRating is the citizen's rating of a resolution. At most one
// per complaint, enforced by a unique index on complaint_id.
type SatisfactionRating struct {
	RatingID    int64          `db:"rating_id" json:"rating_id"`
	ComplaintID int64          `db:"complaint_id" json:"complaint_id"`
	CitizenID   int64          `db:"citizen_id" json:"citizen_id"`
	AuthorityID int64          `db:"authority_id" json:"authority_id"`
	Rating      int            `db:"rating" json:"rating"`
	Feedback    sql.NullString `db:"feedback" json:"feedback"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// Department is static metadata maintained outside the core
type Department struct {
	DepartmentID int64     `db:"department_id" json:"department_id"`
	Name         string    `db:"name" json:"name"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Ward belongs to a city and carries the constituency mapping that gets
// denormalized onto complaints at creation time.
type Ward struct {
	WardID                      int64         `db:"ward_id" json:"ward_id"`
	CityID                      int64         `db:"city_id" json:"city_id"`
	Name                        string        `db:"name" json:"name"`
	AssemblyConstituencyID      sql.NullInt64 `db:"assembly_constituency_id" json:"assembly_constituency_id"`
	ParliamentaryConstituencyID sql.NullInt64 `db:"parliamentary_constituency_id" json:"parliamentary_constituency_id"`
}

// City belongs to a district
type City struct {
	CityID     int64  `db:"city_id" json:"city_id"`
	DistrictID int64  `db:"district_id" json:"district_id"`
	Name       string `db:"name" json:"name"`
}

// Notification is a queued citizen notification about complaint activity.
// Written inside the same transaction as the event, delivered by a worker.
type Notification struct {
	NotificationID int64          `db:"notification_id" json:"notification_id"`
	UserID         int64          `db:"user_id" json:"user_id"`
	ComplaintID    sql.NullInt64  `db:"complaint_id" json:"complaint_id"`
	Message        string         `db:"message" json:"message"`
	Status         string         `db:"status" json:"status"` // pending | sent | failed
	SentAt         sql.NullTime   `db:"sent_at" json:"sent_at"`
	ErrorMessage   sql.NullString `db:"error_message" json:"error_message,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// SweepResult reports one escalation sweep over overdue complaints
type SweepResult struct {
	Processed int `json:"processed"`
	Escalated int `json:"escalated"`
	Errors    int `json:"errors"`
}
