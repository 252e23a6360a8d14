package domain

import "time"

type ChatRoom struct {
	ID        int64     `json:"id"`
	ProjectID int64     `json:"projectGroupId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
