package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"jansetu/middleware"
	"jansetu/models"
	"jansetu/service"
)

// AdminHandler handles the admin surface: authority provisioning,
// escalation rules, manual assignment and the sweep trigger
type AdminHandler struct {
	authorityService  *service.AuthorityService
	escalationService *service.EscalationService
	complaintService  *service.ComplaintService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(
	authorityService *service.AuthorityService,
	escalationService *service.EscalationService,
	complaintService *service.ComplaintService,
) *AdminHandler {
	return &AdminHandler{
		authorityService:  authorityService,
		escalationService: escalationService,
		complaintService:  complaintService,
	}
}

// CreateAuthority handles POST /api/v1/admin/authorities
func (h *AdminHandler) CreateAuthority(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req models.CreateAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	authority, err := h.authorityService.CreateAuthority(&req, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, authority)
}

// GetAuthorities handles GET /api/v1/admin/authorities
func (h *AdminHandler) GetAuthorities(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	authorities, err := h.authorityService.ListAuthorities(identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"authorities": authorities,
		"count":       len(authorities),
	})
}

// UpdateAuthority handles PUT /api/v1/admin/authorities/{id}
func (h *AdminHandler) UpdateAuthority(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	authorityID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Authority id must be numeric")
		return
	}

	var req models.UpdateAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	authority, err := h.authorityService.UpdateAuthority(authorityID, &req, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, authority)
}

// CreateEscalationRule handles POST /api/v1/admin/escalation-rules
func (h *AdminHandler) CreateEscalationRule(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	var req models.CreateEscalationRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}

	rule, err := h.escalationService.CreateRule(&req, identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, rule)
}

// GetEscalationRules handles GET /api/v1/admin/escalation-rules with an
// optional department_id filter
func (h *AdminHandler) GetEscalationRules(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	departmentID, _ := strconv.ParseInt(r.URL.Query().Get("department_id"), 10, 64)
	rules, err := h.escalationService.ListRules(identity, departmentID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"rules": rules,
		"count": len(rules),
	})
}

// UpdateEscalationRule handles PUT /api/v1/admin/escalation-rules/{id}
func (h *AdminHandler) UpdateEscalationRule(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}
	ruleID, err := pathID(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Rule id must be numeric")
		return
	}

	var req models.UpdateEscalationRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.IsActive == nil {
		respondWithError(w, http.StatusBadRequest, "Validation error", "is_active is required")
		return
	}

	if err := h.escalationService.SetRuleActive(ruleID, *req.IsActive, identity); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Rule updated"})
}

// GetUnassignedComplaints handles GET /api/v1/admin/complaints/unassigned
func (h *AdminHandler) GetUnassignedComplaints(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "Unauthorized", "Authentication required")
		return
	}

	complaints, err := h.complaintService.ListUnassigned(identity)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"complaints": complaints,
		"count":      len(complaints),
	})
}

// AssignComplaint handles POST /api/v1/admin/complaints/{id}/assign
func (h *AdminHandler) AssignComplaint(w http.ResponseWriter, r *http.Request) {
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

	var req models.AssignComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request", "Failed to parse request body")
		return
	}
	if req.AuthorityID == 0 {
		respondWithError(w, http.StatusBadRequest, "Validation error", "authority_id is required")
		return
	}

	if err := h.complaintService.AdminAssign(complaintID, req.AuthorityID, identity); err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Complaint assigned"})
}

// RunEscalationSweep handles POST /api/v1/admin/escalations/sweep
func (h *AdminHandler) RunEscalationSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.escalationService.RunSweep()
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, result)
}
