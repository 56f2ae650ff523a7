package models

import (
	"strings"
	"time"
)

// User represents an account inside a tenant schema
type User struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	Username  string `json:"username" db:"username"`
	Email     string `json:"email" db:"email"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`

	PasswordHash string `json:"-" db:"password_hash"`

	// New users start inactive and are flipped exactly once by the
	// activation workflow.
	IsActive bool `json:"is_active" db:"is_active"`
}

// Profile extends a user with application fields, linked one-to-one
type Profile struct {
	ID     int64 `json:"id" db:"id"`
	UserID int64 `json:"-" db:"user_id"`

	PhoneNo    *string `json:"phone_no" db:"phone_no"`
	ProfilePic *string `json:"profile_pic" db:"profile_pic"`

	// Populated on read, not stored on the profile row
	User *User `json:"user,omitempty" db:"-"`
}

// FullName joins the linked user's first and last name
func (p *Profile) FullName() string {
	if p.User == nil {
		return ""
	}
	return strings.TrimSpace(p.User.FirstName + " " + p.User.LastName)
}
