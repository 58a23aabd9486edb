package models

import (
	"time"

	"github.com/google/uuid"
)

// NewUserSparks is the spark balance granted on registration.
const NewUserSparks = 100

// Gender options accepted on profile update.
var GenderOptions = []string{"Male", "Female", "Prefer not to say"}

type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	UserTitle    *string    `json:"user_title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Gender       *string    `json:"gender,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	CountryCode  *string    `json:"country_code,omitempty"`
	Country      *string    `json:"country,omitempty"`
	State        *string    `json:"state,omitempty"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Skills       []string   `json:"skills"`
	Interests    []string   `json:"interests"`
	Credits      int        `json:"credits"`
	Sparks       int        `json:"sparks"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FullName is the display name used in notifications.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	return u.FirstName + " " + u.LastName
}
