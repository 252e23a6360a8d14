package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vedran77/syncspace/internal/realtime"
	"github.com/vedran77/syncspace/internal/service"
)

// InternalHandler serves calls from other subsystems, authenticated by the
// service key middleware.
type InternalHandler struct {
	notificationService *service.NotificationService
	manager             *realtime.Manager
	logger              *slog.Logger
}

func NewInternalHandler(notificationService *service.NotificationService, manager *realtime.Manager, logger *slog.Logger) *InternalHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InternalHandler{
		notificationService: notificationService,
		manager:             manager,
		logger:              logger.With("component", "internal-api"),
	}
}

type DeliverRequest struct {
	UserID  int64   `json:"userId,omitempty"`
	UserIDs []int64 `json:"userIds,omitempty"`
	service.DeliverInput
}

// Deliver stores and pushes a notification for one user (userId) or the
// same notification for several (userIds).
func (h *InternalHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	var req DeliverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	switch {
	case len(req.UserIDs) > 0:
		ns, err := h.notificationService.DeliverMany(r.Context(), req.UserIDs, req.DeliverInput)
		if err != nil {
			writeServiceError(w, h.logger, "deliver notifications", err)
			return
		}
		writeJSON(w, http.StatusCreated, ns)

	case req.UserID > 0:
		n, err := h.notificationService.Deliver(r.Context(), req.UserID, req.DeliverInput)
		if err != nil {
			writeServiceError(w, h.logger, "deliver notification", err)
			return
		}
		writeJSON(w, http.StatusCreated, n)

	default:
		writeError(w, http.StatusBadRequest, "MISSING_RECIPIENT", "userId or userIds is required")
	}
}

func (h *InternalHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": h.manager.Count(),
		"registry": h.manager.Stats(),
	})
}
