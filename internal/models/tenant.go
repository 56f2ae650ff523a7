package models

import (
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated customer account backed by its own
// database schema
type Tenant struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	SchemaName string `json:"schema_name" db:"schema_name"`
	Name       string `json:"name" db:"name"`

	// Billing
	PaidUntil *time.Time `json:"paid_until,omitempty" db:"paid_until"`
	OnTrail   bool       `json:"on_trail" db:"on_trail"`

	// Populated on retrieve, not stored on the tenant row
	Domains []*Domain `json:"domains,omitempty" db:"-"`
}

// Domain routes a hostname to a tenant. Exactly one domain per tenant
// is marked primary.
type Domain struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`

	TenantID  uuid.UUID `json:"tenantId" db:"tenant_id"`
	Domain    string    `json:"domain" db:"domain"`
	IsPrimary bool      `json:"is_primary" db:"is_primary"`
}
