package handler

import (
	"encoding/json"
	"net/http"

	"jansetu/middleware"
	"jansetu/models"
	"jansetu/service"
)

// ComplaintHandler handles the citizen-facing complaint endpoints
type ComplaintHandler struct {
	complaintService *service.ComplaintService
	ratingService    *service.RatingService
}

// NewComplaintHandler creates a new complaint handler
func NewComplaintHandler(complaintService *service.ComplaintService, ratingService *service.RatingService) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		ratingService:    ratingService,
	}
}

// CreateComplaint handles POST /api/v1/complaints
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	if identity.Role != models.RoleCitizen {
		respondWithError(w, http.StatusForbidden, "Forbidden", "Only citizens may file complaints")
		return
	}

	var req models.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	response, err := h.complaintService.CreateComplaint(&req, identity.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, response)
}

// GetMyComplaints handles GET /api/v1/complaints
func (h *ComplaintHandler) GetMyComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	complaints, err := h.complaintService.ListByCitizen(identity.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// GetComplaint handles GET /api/v1/complaints/{id}
func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	complaintID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Complaint id must be numeric")
		return
	}

	complaint, err := h.complaintService.GetComplaint(complaintID, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}

// GetTimeline handles GET /api/v1/complaints/{id}/timeline
func (h *ComplaintHandler) GetTimeline(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	complaintID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Complaint id must be numeric")
		return
	}

	timeline, err := h.complaintService.GetTimeline(complaintID, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"timeline": timeline})
}

// SubmitRating handles POST /api/v1/complaints/{id}/rating
func (h *ComplaintHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	if identity.Role != models.RoleCitizen {
		respondWithError(w, http.StatusForbidden, "Forbidden", "Only the filing citizen may rate a complaint")
		return
	}
	complaintID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Complaint id must be numeric")
		return
	}

	var req models.SubmitRatingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	rating, err := h.ratingService.SubmitRating(complaintID, identity.UserID, &req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, rating)
}
