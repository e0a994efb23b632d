package models

import "time"

// CreateComplaintRequest is the citizen-facing complaint submission payload
type CreateComplaintRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	DepartmentID int64    `json:"department_id"`
	CityID       int64    `json:"city_id"`
	WardID       *int64   `json:"ward_id,omitempty"`
	Priority     string   `json:"priority,omitempty"`
	EvidenceURLs []string `json:"evidence_urls,omitempty"`
}

// CreateComplaintResponse returns the created complaint's external identifiers
type CreateComplaintResponse struct {
	ComplaintID  int64           `json:"complaint_id"`
	TicketNumber string          `json:"ticket_number"`
	Status       ComplaintStatus `json:"status"`
	Assigned     bool            `json:"assigned"`
}

// UpdateStatusRequest is the authority/admin status transition payload
type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// SubmitRatingRequest is the citizen satisfaction rating payload
type SubmitRatingRequest struct {
	Rating   int     `json:"rating"`
	Feedback *string `json:"feedback,omitempty"`
}

// LoginRequest is the authority login payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token and profile basics
type LoginResponse struct {
	Token       string `json:"token"`
	UserID      int64  `json:"user_id"`
	AuthorityID int64  `json:"authority_id"`
	Level       int    `json:"level"`
}

// CreateAuthorityRequest is the admin payload for provisioning an authority
// account (user row plus authority row, created together)
type CreateAuthorityRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	DepartmentID int64  `json:"department_id"`
	WardID       *int64 `json:"ward_id,omitempty"`
	CityID       *int64 `json:"city_id,omitempty"`
	DistrictID   *int64 `json:"district_id,omitempty"`
	Level        int    `json:"level"`
}

// UpdateAuthorityRequest toggles activation or changes level
type UpdateAuthorityRequest struct {
	IsActive *bool `json:"is_active,omitempty"`
	Level    *int  `json:"level,omitempty"`
}

// CreateEscalationRuleRequest is the admin payload for a rule in a
// department's escalation chain
type CreateEscalationRuleRequest struct {
	DepartmentID   int64 `json:"department_id"`
	FromLevel      int   `json:"from_level"`
	ToLevel        int   `json:"to_level"`
	DaysToEscalate int   `json:"days_to_escalate"`
}

// UpdateEscalationRuleRequest toggles a rule's active flag
type UpdateEscalationRuleRequest struct {
	IsActive *bool `json:"is_active"`
}

// AssignComplaintRequest is the admin payload for manual assignment of an
// unassigned complaint
type AssignComplaintRequest struct {
	AuthorityID int64 `json:"authority_id"`
}

// PublicComplaintView is the whitelisted read-only projection served by the
// public case page. Internal ids are never exposed, only the ticket number.
type PublicComplaintView struct {
	TicketNumber string          `json:"ticket_number"`
	Title        string          `json:"title"`
	DepartmentID int64           `json:"department_id"`
	Status       ComplaintStatus `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}
