package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vedran77/syncspace/internal/service"
	"github.com/vedran77/syncspace/internal/transport/http/middleware"
)

type ChatHandler struct {
	chatService *service.ChatService
	access      service.AccessChecker
	logger      *slog.Logger
}

func NewChatHandler(chatService *service.ChatService, access service.AccessChecker, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{
		chatService: chatService,
		access:      access,
		logger:      logger.With("component", "chat-api"),
	}
}

// Rooms lists the caller's rooms, optionally for one project (?projectId=).
func (h *ChatHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var projectID *int64
	if s := r.URL.Query().Get("projectId"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid project ID")
			return
		}
		projectID = &id
	}

	rooms, err := h.chatService.UserRooms(r.Context(), userID, projectID)
	if err != nil {
		writeServiceError(w, h.logger, "list rooms", err)
		return
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (h *ChatHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var input service.CreateRoomInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	room, err := h.chatService.CreateRoom(r.Context(), userID, input)
	if err != nil {
		writeServiceError(w, h.logger, "create room", err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	roomID, ok := pathID(r, "roomId")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid room ID")
		return
	}

	messages, err := h.chatService.History(r.Context(), userID, roomID, queryInt(r, "limit", 0))
	if err != nil {
		writeServiceError(w, h.logger, "load history", err)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}

func (h *ChatHandler) DeleteMessage(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	messageID, ok := pathID(r, "messageId")
	if !ok {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "Invalid message ID")
		return
	}

	if err := h.chatService.DeleteMessage(r.Context(), userID, messageID); err != nil {
		writeServiceError(w, h.logger, "delete message", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Projects lists the ids of the projects the caller belongs to.
func (h *ChatHandler) Projects(w http.ResponseWriter, r *http.Request) {
	ids, err := h.access.Projects(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, "list projects", err)
		return
	}
	if ids == nil {
		ids = []int64{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projectIds": ids})
}
