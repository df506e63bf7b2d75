package models

import "time"

// Notification is an upstream user notification.
type Notification struct {
	ID            int64     `json:"id"`
	Title         string    `json:"titulo"`
	Body          string    `json:"mensagem"`
	Kind          string    `json:"tipo"`
	Read          bool      `json:"lida"`
	CreatedAt     time.Time `json:"criada_em"`
	ReferenceLink string    `json:"link_referencia,omitempty"`
}

// UnreadCount wraps the unread notification counter.
type UnreadCount struct {
	Count int `json:"count"`
}
