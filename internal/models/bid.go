package models

import (
	"time"

	"github.com/google/uuid"
)

type Bid struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project"`
	UserID    uuid.UUID `json:"user"`
	Proposal  *string   `json:"proposal,omitempty"`
	Amount    int       `json:"amount"`
	Duration  int       `json:"duration"`
	CreatedAt time.Time `json:"created_at"`
}
