package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/internhub/internhub-backend/internal/application/command"
	"github.com/internhub/internhub-backend/internal/application/query"
	"github.com/internhub/internhub-backend/internal/domain/application"
	"github.com/internhub/internhub-backend/internal/domain/internship"
	"github.com/internhub/internhub-backend/internal/domain/notification"
	"github.com/internhub/internhub-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "InternHub API",
		"version":     "v1",
		"description": "REST API for the internship application lifecycle",
		"endpoints": map[string]string{
			"health":        "/health",
			"applications":  "/api/v1/applications",
			"notifications": "/api/v1/notifications",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	// Default health response
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"uptime":  s.Uptime().String(),
		"version": "v1",
	})
}

// handleReady handles the readiness probe endpoint (for Kubernetes).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not_ready",
				"reason": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness probe endpoint (for Kubernetes).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// handleMetrics handles the metrics endpoint.
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics := map[string]interface{}{
		"uptime_seconds": s.Uptime().Seconds(),
		"running":        s.IsRunning(),
	}

	writeJSON(w, http.StatusOK, metrics)
}

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type answerRequest struct {
	QuestionID      string   `json:"question_id"`
	QuestionType    string   `json:"question_type"`
	AnswerText      string   `json:"answer_text,omitempty"`
	SelectedOptions []string `json:"selected_options,omitempty"`
	FileURL         string   `json:"file_url,omitempty"`
	FileName        string   `json:"file_name,omitempty"`
}

type applyRequest struct {
	InternshipID     string          `json:"internship_id"`
	StudentID        string          `json:"student_id"`
	ResumeURL        string          `json:"resume_url"`
	ResumeUploadedAt time.Time       `json:"resume_uploaded_at,omitempty"`
	CoverLetter      string          `json:"cover_letter,omitempty"`
	Answers          []answerRequest `json:"answers,omitempty"`
}

// handleApply handles POST /api/v1/applications
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if s.deps.ApplyHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Apply handler not configured")
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	answers := make([]application.Answer, 0, len(req.Answers))
	for _, a := range req.Answers {
		answers = append(answers, application.Answer{
			QuestionID:      a.QuestionID,
			QuestionType:    internship.QuestionType(a.QuestionType),
			AnswerText:      a.AnswerText,
			SelectedOptions: a.SelectedOptions,
			FileURL:         a.FileURL,
			FileName:        a.FileName,
		})
	}

	result, err := s.deps.ApplyHandler.Handle(r.Context(), command.ApplyToInternshipCommand{
		InternshipID:     shared.InternshipID(req.InternshipID),
		StudentID:        shared.StudentID(req.StudentID),
		ResumeURL:        req.ResumeURL,
		ResumeUploadedAt: req.ResumeUploadedAt,
		CoverLetter:      req.CoverLetter,
		Answers:          answers,
		CorrelationID:    getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// handleGetApplication handles GET /api/v1/applications/{id}
func (s *Server) handleGetApplication(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetApplicationHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Get application handler not configured")
		return
	}

	q := query.GetApplicationQuery{
		ApplicationID: shared.ApplicationID(r.PathValue("id")),
		ActorUserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		ActorType:     shared.ActorType(r.Header.Get("X-Actor-Type")),
	}

	result, err := s.deps.GetApplicationHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type updateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// handleUpdateStatus handles PATCH /api/v1/applications/{id}/status
func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdateStatusHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Update status handler not configured")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	result, err := s.deps.UpdateStatusHandler.Handle(r.Context(), command.UpdateApplicationStatusCommand{
		ApplicationID: shared.ApplicationID(r.PathValue("id")),
		NewStatus:     application.Status(req.Status),
		Notes:         req.Notes,
		ActorUserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		ActorType:     shared.ActorType(r.Header.Get("X-Actor-Type")),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

type withdrawRequest struct {
	Reason string `json:"reason,omitempty"`
}

// handleWithdraw handles POST /api/v1/applications/{id}/withdraw
func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	if s.deps.WithdrawHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Withdraw handler not configured")
		return
	}

	var req withdrawRequest
	if r.Body != nil {
		// Body is optional; a bare POST withdraws without a reason.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	result, err := s.deps.WithdrawHandler.Handle(r.Context(), command.WithdrawApplicationCommand{
		ApplicationID: shared.ApplicationID(r.PathValue("id")),
		ActorUserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		Reason:        req.Reason,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// LISTING HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleStudentApplications handles GET /api/v1/students/{id}/applications
func (s *Server) handleStudentApplications(w http.ResponseWriter, r *http.Request) {
	if s.deps.StudentApplicationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Student applications handler not configured")
		return
	}

	q := query.ListStudentApplicationsQuery{
		StudentID: shared.StudentID(r.PathValue("id")),
		Page:      getQueryParamInt(r, "page", 1),
		PageSize:  getQueryParamInt(r, "page_size", 20),
	}

	result, err := s.deps.StudentApplicationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.Total,
		Page:       result.Page,
		PageSize:   q.PageSize,
		HasMore:    result.Page < result.TotalPages,
	})
}

// handleCompanyApplications handles GET /api/v1/companies/{id}/applications
func (s *Server) handleCompanyApplications(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompanyApplicationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Company applications handler not configured")
		return
	}

	q := query.ListCompanyApplicationsQuery{
		CompanyID:    shared.CompanyID(r.PathValue("id")),
		Status:       getQueryParam(r, "status", ""),
		InternshipID: shared.InternshipID(getQueryParam(r, "internship_id", "")),
		Page:         getQueryParamInt(r, "page", 1),
		PageSize:     getQueryParamInt(r, "page_size", 20),
	}

	result, err := s.deps.CompanyApplicationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.Total,
		Page:       result.Page,
		PageSize:   q.PageSize,
		HasMore:    result.Page < result.TotalPages,
	})
}

// handleCompanyStats handles GET /api/v1/companies/{id}/stats
func (s *Server) handleCompanyStats(w http.ResponseWriter, r *http.Request) {
	if s.deps.CompanyStatsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Company stats handler not configured")
		return
	}

	result, err := s.deps.CompanyStatsHandler.Handle(r.Context(), query.GetCompanyStatsQuery{
		CompanyID: shared.CompanyID(r.PathValue("id")),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleInternshipApplications handles GET /api/v1/internships/{id}/applications
func (s *Server) handleInternshipApplications(w http.ResponseWriter, r *http.Request) {
	if s.deps.InternshipApplicationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Internship applications handler not configured")
		return
	}

	q := query.ListInternshipApplicationsQuery{
		InternshipID: shared.InternshipID(r.PathValue("id")),
		ActorUserID:  shared.UserID(r.Header.Get("X-Actor-ID")),
		Page:         getQueryParamInt(r, "page", 1),
		PageSize:     getQueryParamInt(r, "page_size", 20),
	}

	result, err := s.deps.InternshipApplicationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.Total,
		Page:       result.Page,
		PageSize:   q.PageSize,
		HasMore:    result.Page < result.TotalPages,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN REVIEW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type reviewRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason,omitempty"`
}

// handleReviewInternship handles POST /api/v1/internships/{id}/review
func (s *Server) handleReviewInternship(w http.ResponseWriter, r *http.Request) {
	if s.deps.ReviewHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Review handler not configured")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	result, err := s.deps.ReviewHandler.Handle(r.Context(), command.ReviewInternshipCommand{
		InternshipID:  shared.InternshipID(r.PathValue("id")),
		Approve:       req.Approve,
		Reason:        req.Reason,
		AdminUserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleVerifyCompany handles POST /api/v1/companies/{id}/verify
func (s *Server) handleVerifyCompany(w http.ResponseWriter, r *http.Request) {
	if s.deps.VerifyHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Verify handler not configured")
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	result, err := s.deps.VerifyHandler.Handle(r.Context(), command.VerifyCompanyCommand{
		CompanyID:     shared.CompanyID(r.PathValue("id")),
		Approve:       req.Approve,
		Reason:        req.Reason,
		AdminUserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// NOTIFICATION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleListNotifications handles GET /api/v1/notifications
func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	if s.deps.NotificationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	q := query.ListNotificationsQuery{
		UserID:   shared.UserID(r.Header.Get("X-Actor-ID")),
		Page:     getQueryParamInt(r, "page", 1),
		PageSize: getQueryParamInt(r, "page_size", 20),
	}

	result, err := s.deps.NotificationsHandler.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSONWithMeta(w, r, http.StatusOK, result, &ResponseMeta{
		TotalCount: result.Total,
		Page:       result.Page,
		PageSize:   q.PageSize,
		HasMore:    result.Page < result.TotalPages,
	})
}

// handleUnreadCount handles GET /api/v1/notifications/unread-count
func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	if s.deps.NotificationsHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Notifications handler not configured")
		return
	}

	count, err := s.deps.NotificationsHandler.UnreadCount(r.Context(), shared.UserID(r.Header.Get("X-Actor-ID")))
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"unread_count": count})
}

// handleMarkRead handles POST /api/v1/notifications/{id}/read
func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Mark read handler not configured")
		return
	}

	err := s.deps.MarkReadHandler.Handle(r.Context(), command.MarkNotificationReadCommand{
		NotificationID: notification.NotificationID(r.PathValue("id")),
		UserID:         shared.UserID(r.Header.Get("X-Actor-ID")),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "read"})
}

// handleMarkAllRead handles POST /api/v1/notifications/read-all
func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if s.deps.MarkReadHandler == nil {
		writeJSONError(w, http.StatusNotImplemented, "not_implemented", "Mark read handler not configured")
		return
	}

	result, err := s.deps.MarkReadHandler.HandleAll(r.Context(), command.MarkAllNotificationsReadCommand{
		UserID: shared.UserID(r.Header.Get("X-Actor-ID")),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain errors onto HTTP status codes. Unknown errors
// are logged and reported as 500 without leaking internals.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case errors.Is(err, shared.ErrConcurrentModification):
		writeJSONError(w, http.StatusConflict, "concurrent_modification", err.Error())
	case errors.Is(err, shared.ErrStateTransition):
		writeJSONError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, shared.ErrInvalidState), errors.Is(err, shared.ErrExpired):
		writeJSONError(w, http.StatusUnprocessableEntity, "not_eligible", err.Error())
	case shared.IsUnauthorized(err):
		writeJSONError(w, http.StatusForbidden, "forbidden", err.Error())
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
