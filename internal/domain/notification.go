package domain

import "time"

type NotificationType string

const (
	NotificationSystem         NotificationType = "System"
	NotificationTaskAssigned   NotificationType = "TaskAssigned"
	NotificationTaskUpdated    NotificationType = "TaskUpdated"
	NotificationProjectUpdate  NotificationType = "ProjectUpdate"
	NotificationTeamUpdate     NotificationType = "TeamUpdate"
	NotificationDocumentShared NotificationType = "DocumentShared"
)

var notificationTypes = map[NotificationType]struct{}{
	NotificationSystem:         {},
	NotificationTaskAssigned:   {},
	NotificationTaskUpdated:    {},
	NotificationProjectUpdate:  {},
	NotificationTeamUpdate:     {},
	NotificationDocumentShared: {},
}

func (t NotificationType) Valid() bool {
	_, ok := notificationTypes[t]
	return ok
}

type Notification struct {
	ID          int64            `json:"id"`
	UserID      int64            `json:"userId"`
	Message     string           `json:"message"`
	Type        NotificationType `json:"type"`
	ReferenceID *string          `json:"referenceId,omitempty"`
	IsRead      bool             `json:"isRead"`
	CreatedAt   time.Time        `json:"createdAt"`
}
