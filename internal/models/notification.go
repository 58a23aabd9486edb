package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	NotificationWelcome = "welcome"
	NotificationMessage = "message"
	NotificationProject = "project"
	NotificationBid     = "bid"
)

type Notification struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

type Subscriber struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

type Message struct {
	ID         uuid.UUID `json:"id"`
	SenderID   uuid.UUID `json:"sender"`
	ReceiverID uuid.UUID `json:"receiver"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}
