package service

import "github.com/vedran77/syncspace/internal/domain"

// Notifier broadcasts real-time events to connected clients. Calls must not
// block on slow recipients.
type Notifier interface {
	NotifyNewMessage(msg *domain.ChatMessage)
	NotifyDeletedMessage(roomID, messageID int64)
	NotifyNotification(n *domain.Notification)
}
