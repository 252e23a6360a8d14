package domain

import "time"

type ChatMessage struct {
	ID         int64     `json:"id"`
	RoomID     int64     `json:"roomId"`
	SenderID   int64     `json:"senderId"`
	SenderName string    `json:"senderName"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	IsDeleted  bool      `json:"-"`
}

// Before reports whether m sorts before other in room history order.
func (m *ChatMessage) Before(other *ChatMessage) bool {
	if m.Timestamp.Equal(other.Timestamp) {
		return m.ID < other.ID
	}
	return m.Timestamp.Before(other.Timestamp)
}
