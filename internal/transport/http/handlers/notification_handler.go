package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vedran77/syncspace/internal/repository"
	"github.com/vedran77/syncspace/internal/service"
	"github.com/vedran77/syncspace/internal/transport/http/middleware"
)

type NotificationHandler struct {
	notificationService *service.NotificationService
	logger              *slog.Logger
}

func NewNotificationHandler(notificationService *service.NotificationService, logger *slog.Logger) *NotificationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationHandler{
		notificationService: notificationService,
		logger:              logger.With("component", "notification-api"),
	}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	page := queryInt(r, "page", 1)
	pageSize := queryInt(r, "pageSize", repository.DefaultPageSize)

	ns, err := h.notificationService.List(r.Context(), userID, page, pageSize)
	if err != nil {
		writeServiceError(w, h.logger, "list notifications", err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.notificationService.UnreadCount(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "unread count", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "mark read", h.notificationService.MarkRead)
}

func (h *NotificationHandler) MarkUnread(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "mark unread", h.notificationService.MarkUnread)
}

func (h *NotificationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, "delete notification", h.notificationService.Delete)
}

func (h *NotificationHandler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.notificationService.MarkAllRead(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "mark all read", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

func (h *NotificationHandler) update(w http.ResponseWriter, r *http.Request, op string,
	fn func(ctx context.Context, userID, id int64) error) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid notification ID")
		return
	}
	if err := fn(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeServiceError(w, h.logger, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
