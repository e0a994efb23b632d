package routes

import (
	"net/http"

	"github.com/gorilla/mux"

	"jansetu/handler"
	"jansetu/middleware"
	"jansetu/models"
	"jansetu/service"
)

// SetupRoutes configures all API routes
func SetupRoutes(
	complaintService *service.ComplaintService,
	ratingService *service.RatingService,
	escalationService *service.EscalationService,
	authorityService *service.AuthorityService,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
) *mux.Router {
	router := mux.NewRouter()

	complaintHandler := handler.NewComplaintHandler(complaintService, ratingService)
	authorityHandler := handler.NewAuthorityHandler(authorityService, complaintService)
	adminHandler := handler.NewAdminHandler(authorityService, escalationService, complaintService)
	publicHandler := handler.NewPublicHandler(complaintService)

	apiV1 := router.PathPrefix("/api/v1").Subrouter()

	// Citizen complaint routes (require auth; submission is rate limited)
	complaints := apiV1.PathPrefix("/complaints").Subrouter()
	complaints.Handle("", authMiddleware.RequireAuth(rateLimiter.Limit(http.HandlerFunc(complaintHandler.CreateComplaint)))).Methods("POST")
	complaints.Handle("", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.GetMyComplaints))).Methods("GET")
	complaints.Handle("/{id}", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.GetComplaint))).Methods("GET")
	complaints.Handle("/{id}/timeline", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.GetTimeline))).Methods("GET")
	complaints.Handle("/{id}/rating", authMiddleware.RequireAuth(http.HandlerFunc(complaintHandler.SubmitRating))).Methods("POST")

	// Authority dashboard routes
	authority := apiV1.PathPrefix("/authority").Subrouter()
	authority.HandleFunc("/login", authorityHandler.Login).Methods("POST")
	authority.Handle("/me", authMiddleware.RequireRole(models.RoleAuthority, http.HandlerFunc(authorityHandler.Me))).Methods("GET")
	authority.Handle("/complaints", authMiddleware.RequireRole(models.RoleAuthority, http.HandlerFunc(authorityHandler.GetMyComplaints))).Methods("GET")
	authority.Handle("/complaints/{id}/status", authMiddleware.RequireRole(models.RoleAuthority, http.HandlerFunc(authorityHandler.UpdateStatus))).Methods("POST")

	// Admin routes
	admin := apiV1.PathPrefix("/admin").Subrouter()
	admin.Handle("/authorities", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.GetAuthorities))).Methods("GET")
	admin.Handle("/authorities", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.CreateAuthority))).Methods("POST")
	admin.Handle("/authorities/{id}", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.UpdateAuthority))).Methods("PUT")
	admin.Handle("/escalation-rules", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.GetEscalationRules))).Methods("GET")
	admin.Handle("/escalation-rules", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.CreateEscalationRule))).Methods("POST")
	admin.Handle("/escalation-rules/{id}", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.UpdateEscalationRule))).Methods("PUT")
	admin.Handle("/complaints/unassigned", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.GetUnassignedComplaints))).Methods("GET")
	admin.Handle("/complaints/{id}/assign", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.AssignComplaint))).Methods("POST")
	admin.Handle("/escalations/sweep", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(adminHandler.RunEscalationSweep))).Methods("POST")

	// Complaint status updates are also open to admins directly
	complaints.Handle("/{id}/status", authMiddleware.RequireRole(models.RoleAdmin, http.HandlerFunc(authorityHandler.UpdateStatus))).Methods("POST")

	// Public read-only case page by ticket number (shareable; no internal ids)
	apiV1.HandleFunc("/public/complaints/{ticket_number}", publicHandler.GetByTicket).Methods("GET")
	apiV1.HandleFunc("/departments", publicHandler.GetDepartments).Methods("GET")

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	return router
}
