package ws

import (
	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/realtime"
)

// HubNotifier implements service.Notifier on top of the realtime dispatcher.
type HubNotifier struct {
	dispatcher *realtime.Dispatcher
}

func NewHubNotifier(dispatcher *realtime.Dispatcher) *HubNotifier {
	return &HubNotifier{dispatcher: dispatcher}
}

func (n *HubNotifier) NotifyNewMessage(msg *domain.ChatMessage) {
	n.dispatcher.PublishToRoom(msg.RoomID, realtime.EventReceiveMessage, msg)
}

func (n *HubNotifier) NotifyDeletedMessage(roomID, messageID int64) {
	n.dispatcher.PublishToRoom(roomID, realtime.EventMessageDeleted, realtime.MessageDeletedPayload{
		RoomID: roomID,
		ID:     messageID,
	})
}

func (n *HubNotifier) NotifyNotification(notification *domain.Notification) {
	n.dispatcher.PublishToUser(notification.UserID, realtime.EventReceiveNotification, notification)
}
