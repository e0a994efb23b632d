package models

import "fmt"

// ComplaintStatus represents the lifecycle status of a complaint
type ComplaintStatus string

const (
	StatusSubmitted  ComplaintStatus = "submitted"
	StatusViewed     ComplaintStatus = "viewed"
	StatusInProgress ComplaintStatus = "in_progress"
	StatusResolved   ComplaintStatus = "resolved"
	StatusClosed     ComplaintStatus = "closed"
	StatusEscalated  ComplaintStatus = "escalated"
)

// Priority represents complaint priority levels
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// statusTransitions is the closed transition table. A status maps to the
// set of statuses it may move to; anything else is rejected. The table is
// forward-only: no entry ever points back toward submitted.
var statusTransitions = map[ComplaintStatus][]ComplaintStatus{
	StatusSubmitted:  {StatusViewed, StatusInProgress, StatusResolved, StatusEscalated},
	StatusViewed:     {StatusInProgress, StatusResolved, StatusEscalated},
	StatusInProgress: {StatusResolved, StatusEscalated},
	StatusEscalated:  {StatusViewed, StatusInProgress, StatusResolved},
	StatusResolved:   {StatusClosed},
	StatusClosed:     {},
}

// ParseStatus validates a caller-supplied status string against the closed set
func ParseStatus(s string) (ComplaintStatus, error) {
	switch ComplaintStatus(s) {
	case StatusSubmitted, StatusViewed, StatusInProgress, StatusResolved, StatusClosed, StatusEscalated:
		return ComplaintStatus(s), nil
	}
	return "", fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// CanTransition reports whether from -> to is a legal transition
func CanTransition(from, to ComplaintStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status ends the escalation lifecycle.
// escalation_due_at is meaningful only while the status is escalatable.
func IsTerminal(s ComplaintStatus) bool {
	return s == StatusResolved || s == StatusClosed
}

// EscalatableStatuses are the statuses the escalation sweep considers overdue
// complaints in. Escalated complaints get a fresh due date and re-enter the
// set only after the new authority acts on them.
func EscalatableStatuses() []ComplaintStatus {
	return []ComplaintStatus{StatusSubmitted, StatusViewed, StatusInProgress}
}

// ParsePriority validates a caller-supplied priority string, defaulting to medium
func ParsePriority(s string) (Priority, error) {
	if s == "" {
		return PriorityMedium, nil
	}
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s), nil
	}
	return "", fmt.Errorf("%w: unknown priority %q", ErrValidation, s)
}
