package ws

import (
	"errors"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/realtime"
	"github.com/vedran77/syncspace/pkg/validator"
)

// Event types - Client → Server
const (
	EventTypeJoinGroup   = "JoinGroup"
	EventTypeLeaveGroup  = "LeaveGroup"
	EventTypeSendMessage = "SendMessage"
	EventTypePing        = "ping"
)

// Error codes carried by realtime.EventError.
const (
	CodeInvalidPayload = "INVALID_PAYLOAD"
	CodeUnknownEvent   = "UNKNOWN_EVENT"
	CodeUnauthorized   = "UNAUTHORIZED"
	CodeRoomNotFound   = "ROOM_NOT_FOUND"
	CodeValidation     = "VALIDATION_FAILED"
	CodeUnavailable    = "UNAVAILABLE"
	CodeInternal       = "INTERNAL"
)

// --- Client → Server payloads ---

type RoomPayload struct {
	RoomID int64 `json:"roomId"`
}

type SendMessagePayload struct {
	RoomID  int64  `json:"roomId"`
	Content string `json:"content"`
}

// errorPayload maps a failed operation to what the caller is told.
func errorPayload(err error) realtime.ErrorPayload {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return realtime.ErrorPayload{Code: CodeValidation, Message: verrs.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return realtime.ErrorPayload{Code: CodeUnauthorized, Message: "not authorized for this room"}
	case errors.Is(err, domain.ErrRoomNotFound):
		return realtime.ErrorPayload{Code: CodeRoomNotFound, Message: "chat room not found"}
	case errors.Is(err, domain.ErrPersistence):
		return realtime.ErrorPayload{Code: CodeUnavailable, Message: "storage unavailable, try again"}
	}
	return realtime.ErrorPayload{Code: CodeInternal, Message: "internal error"}
}
