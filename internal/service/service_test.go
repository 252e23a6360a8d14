package service

import (
	"sync"

	"github.com/vedran77/syncspace/internal/domain"
)

// recordingNotifier keeps every event it is asked to broadcast.
type recordingNotifier struct {
	mu            sync.Mutex
	messages      []domain.ChatMessage
	deleted       [][2]int64
	notifications []domain.Notification
}

func (n *recordingNotifier) NotifyNewMessage(msg *domain.ChatMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, *msg)
}

func (n *recordingNotifier) NotifyDeletedMessage(roomID, messageID int64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.deleted = append(n.deleted, [2]int64{roomID, messageID})
}

func (n *recordingNotifier) NotifyNotification(notification *domain.Notification) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notifications = append(n.notifications, *notification)
}
