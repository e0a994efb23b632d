package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"jansetu/service"
)

// PublicHandler serves the read-only shareable case page
type PublicHandler struct {
	complaintService *service.ComplaintService
}

// NewPublicHandler creates a new public handler
func NewPublicHandler(complaintService *service.ComplaintService) *PublicHandler {
	return &PublicHandler{complaintService: complaintService}
}

// GetDepartments handles GET /api/v1/departments. Public: the complaint
// form needs the list before the citizen is authenticated.
func (h *PublicHandler) GetDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := h.complaintService.ListDepartments()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"departments": departments,
	})
}

// GetByTicket handles GET /api/v1/public/complaints/{ticket_number}.
// No auth; the response exposes only whitelisted fields.
func (h *PublicHandler) GetByTicket(w http.ResponseWriter, r *http.Request) {
	ticketNumber := mux.Vars(r)["ticket_number"]
	if ticketNumber == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Ticket number is required")
		return
	}

	view, err := h.complaintService.GetPublicByTicket(ticketNumber)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, view)
}
