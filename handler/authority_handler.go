package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"jansetu/middleware"
	"jansetu/models"
	"jansetu/service"
)

// AuthorityHandler handles authority login and the authority dashboard
type AuthorityHandler struct {
	authorityService *service.AuthorityService
	complaintService *service.ComplaintService
}

// NewAuthorityHandler creates a new authority handler
func NewAuthorityHandler(authorityService *service.AuthorityService, complaintService *service.ComplaintService) *AuthorityHandler {
	return &AuthorityHandler{
		authorityService: authorityService,
		complaintService: complaintService,
	}
}

// Login handles POST /api/v1/authority/login
func (h *AuthorityHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	response, err := h.authorityService.Login(&req)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, response)
}

// Me handles GET /api/v1/authority/me
func (h *AuthorityHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	authority, err := h.authorityService.GetProfile(identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, authority)
}

// GetMyComplaints handles GET /api/v1/authority/complaints
func (h *AuthorityHandler) GetMyComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	query := r.URL.Query()
	limit, _ := strconv.Atoi(query.Get("limit"))
	offset, _ := strconv.Atoi(query.Get("offset"))

	complaints, total, err := h.authorityService.ListAssigned(identity, query.Get("status"), limit, offset)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"total":      total,
	})
}

// UpdateStatus handles POST /api/v1/authority/complaints/{id}/status
func (h *AuthorityHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
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

	var req models.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	complaint, err := h.complaintService.UpdateStatus(complaintID, &req, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, complaint)
}
