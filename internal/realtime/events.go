package realtime

import (
	"encoding/json"
	"time"
)

// Event names pushed to clients.
const (
	EventReceiveNotification = "ReceiveNotification"
	EventReceiveMessage      = "ReceiveMessage"
	EventMessageDeleted      = "MessageDeleted"
	EventUserJoined          = "UserJoined"
	EventUserLeft            = "UserLeft"
	EventError               = "error"
	EventPong                = "pong"
)

// Event is the envelope of every frame in both directions.
type Event struct {
	Type      string          `json:"type"`
	Channel   ChannelID       `json:"channel,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"ts,omitempty"`
}

type PresencePayload struct {
	RoomID      int64  `json:"roomId"`
	UserID      int64  `json:"userId"`
	DisplayName string `json:"displayName"`
}

type MessageDeletedPayload struct {
	RoomID int64 `json:"roomId"`
	ID     int64 `json:"id"`
}

type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewEvent creates a server->client event with the current timestamp.
func NewEvent(eventType string, channel ChannelID, payload any) (*Event, error) {
	evt := &Event{
		Type:      eventType,
		Channel:   channel,
		Timestamp: time.Now().Unix(),
	}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		evt.Payload = data
	}
	return evt, nil
}

// Encode marshals a new event straight to a wire frame.
func Encode(eventType string, channel ChannelID, payload any) ([]byte, error) {
	evt, err := NewEvent(eventType, channel, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(evt)
}
