package models

import "time"

// Team groups profiles and workspaces, many-to-many on both sides.
// Users and Workspaces are expanded on read; writes go through the
// storage membership methods.
type Team struct {
	ID        int64     `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`

	Users      []*Profile   `json:"users" db:"-"`
	Workspaces []*Workspace `json:"workspaces" db:"-"`
}
