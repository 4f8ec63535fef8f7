// Package httpapi implements the HTTP handlers for the platform.
//
// All routes expect an x-user-id header forwarded by the gateway; the
// caller's role is resolved from the directory, never trusted from headers.
//
// Routes:
//
//	GET  /api/match/standard               → deterministic attribute matches (?location=&skill=)
//	POST /api/match/ai                     → AI-ranked matches for a free-text description
//	GET  /api/applications                 → list caller's applications
//	POST /api/applications                 → student submits / re-submits an application
//	PUT  /api/applications/{id}            → employer approves or denies
//	GET  /api/notifications                → caller's unread notifications
//	POST /api/notifications/{id}/read      → mark one notification read
package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Activit123/job-matching-platform/internal/apps"
	"github.com/Activit123/job-matching-platform/internal/directory"
	"github.com/Activit123/job-matching-platform/internal/match"
	"github.com/Activit123/job-matching-platform/internal/notify"
)

// Handler holds shared dependencies.
type Handler struct {
	dir           *directory.Store
	matcher       *match.Service
	applications  *apps.Service
	notifications *notify.Store
}

// NewHandler returns a configured Handler.
func NewHandler(dir *directory.Store, matcher *match.Service, applications *apps.Service, notifications *notify.Store) *Handler {
	return &Handler{
		dir:           dir,
		matcher:       matcher,
		applications:  applications,
		notifications: notifications,
	}
}

// RegisterRoutes mounts all API routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/match/standard", h.handleStandardMatch)
	mux.HandleFunc("/api/match/ai", h.handleAIMatch)
	mux.HandleFunc("/api/applications", h.handleApplications)
	mux.HandleFunc("/api/applications/", h.handleApplicationByID)
	mux.HandleFunc("/api/notifications", h.handleNotifications)
	mux.HandleFunc("/api/notifications/", h.handleNotificationAction)
}

// ─── Match routes ─────────────────────────────────────────────────────────────

func (h *Handler) handleStandardMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	filter := match.Filter{
		Location: r.URL.Query().Get("location"),
		Skill:    r.URL.Query().Get("skill"),
	}

	matches, err := h.matcher.FindStandardMatches(r.Context(), userID, filter)
	if err != nil {
		h.writeDomainError(w, "standard match", err)
		return
	}
	jsonOK(w, matches)
}

func (h *Handler) handleAIMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	var body struct {
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	results, err := h.matcher.FindAIMatches(r.Context(), profile.Role, body.Description)
	if err != nil {
		h.writeDomainError(w, "ai match", err)
		return
	}
	jsonOK(w, results)
}

// ─── Application routes ───────────────────────────────────────────────────────

func (h *Handler) handleApplications(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		list, err := h.applications.List(r.Context(), profile.ID, profile.Role)
		if err != nil {
			h.writeDomainError(w, "list applications", err)
			return
		}
		jsonOK(w, list)

	case http.MethodPost:
		var body struct {
			EmployerID string `json:"employerId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			jsonError(w, "invalid JSON body", http.StatusBadRequest)
			return
		}
		app, err := h.applications.Create(r.Context(), profile, body.EmployerID)
		if err != nil {
			h.writeDomainError(w, "create application", err)
			return
		}
		jsonWith(w, http.StatusCreated, app)

	default:
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleApplicationByID handles PUT /api/applications/{id}
func (h *Handler) handleApplicationByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	profile, ok := h.callerProfile(w, r)
	if !ok {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 3 {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}
	appID := parts[2]

	var body struct {
		Status     string `json:"status"`
		Motivation string `json:"motivation"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	app, err := h.applications.UpdateStatus(r.Context(), profile, appID, body.Status, body.Motivation)
	if err != nil {
		h.writeDomainError(w, "update application", err)
		return
	}
	jsonOK(w, app)
}

// ─── Notification routes ──────────────────────────────────────────────────────

func (h *Handler) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	list, err := h.notifications.ListUnread(r.Context(), userID)
	if err != nil {
		h.writeDomainError(w, "list notifications", err)
		return
	}
	jsonOK(w, list)
}

// handleNotificationAction handles POST /api/notifications/{id}/read
func (h *Handler) handleNotificationAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		jsonError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID, ok := callerID(w, r)
	if !ok {
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) != 4 || parts[3] != "read" {
		jsonError(w, "invalid path", http.StatusNotFound)
		return
	}

	updated, err := h.notifications.MarkRead(r.Context(), userID, parts[2])
	if err != nil {
		h.writeDomainError(w, "mark read", err)
		return
	}
	if !updated {
		jsonError(w, "notification not found", http.StatusNotFound)
		return
	}
	jsonOK(w, map[string]string{"status": "read"})
}

// ─── Caller identity ──────────────────────────────────────────────────────────

func callerID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := r.Header.Get("x-user-id")
	if userID == "" {
		jsonError(w, "missing x-user-id header", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

// callerProfile resolves the caller's full profile, rejecting unknown users.
func (h *Handler) callerProfile(w http.ResponseWriter, r *http.Request) (*directory.Profile, bool) {
	userID, ok := callerID(w, r)
	if !ok {
		return nil, false
	}
	profile, err := h.dir.GetProfile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			jsonError(w, "unknown user", http.StatusUnauthorized)
			return nil, false
		}
		log.Printf("[api] profile lookup error: %v", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return nil, false
	}
	return profile, true
}

// ─── Error mapping ────────────────────────────────────────────────────────────

// writeDomainError maps domain errors to HTTP status codes. Unexpected
// errors are logged server-side and reported generically.
func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	var matchVE *match.ValidationError
	var appsVE *apps.ValidationError

	switch {
	case errors.As(err, &matchVE):
		jsonError(w, matchVE.Msg, http.StatusBadRequest)
	case errors.As(err, &appsVE):
		jsonError(w, appsVE.Msg, http.StatusBadRequest)
	case errors.Is(err, apps.ErrForbidden):
		jsonError(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, directory.ErrNotFound), errors.Is(err, apps.ErrNotFound):
		jsonError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, match.ErrOracleUnavailable):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
	default:
		log.Printf("[api] %s error: %v", op, err)
		jsonError(w, "internal server error", http.StatusInternalServerError)
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func jsonOK(w http.ResponseWriter, v any) {
	jsonWith(w, http.StatusOK, v)
}

func jsonWith(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
