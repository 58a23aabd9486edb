package models

import (
	"time"

	"github.com/google/uuid"
)

// Project status enums. "completed" is terminal and only feeds the
// client-history counter; the other three drive lifecycle display.
const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusClosed     = "closed"
	ProjectStatusCompleted  = "completed"
)

const (
	ProjectTypeExchange   = "exchange"
	ProjectTypeFreelancer = "freelancer"
)

const (
	ExperienceBeginner     = "beginner"
	ExperienceIntermediate = "intermediate"
	ExperienceExpert       = "expert"
)

// Bounds enforced at create and update time (and by CHECK constraints).
const (
	MinDuration  = 1
	MaxDuration  = 365
	MaxBidAmount = 40
)

type Project struct {
	ID              uuid.UUID  `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	SkillsNeeded    []string   `json:"skills_needed"`
	Budget          int        `json:"budget"`
	Duration        int        `json:"duration"`
	BidAmount       int        `json:"bid_amount"`
	Status          string     `json:"status"`
	Type            string     `json:"type"`
	ExchangeFor     *string    `json:"exchange_for,omitempty"`
	ExperienceLevel *string    `json:"experience_level,omitempty"`
	OwnerID         uuid.UUID  `json:"owner"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func ValidProjectType(t string) bool {
	return t == ProjectTypeExchange || t == ProjectTypeFreelancer
}

func ValidExperienceLevel(l string) bool {
	return l == ExperienceBeginner || l == ExperienceIntermediate || l == ExperienceExpert
}
