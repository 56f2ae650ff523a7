package models

import "time"

// Workspace groups teams inside a tenant
type Workspace struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Name string `json:"name" db:"name"`
}
