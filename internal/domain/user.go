package domain

import "time"

// User es el titular de una libreta de contactos.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	AvatarURL    *string   `json:"avatar_url"`
}
