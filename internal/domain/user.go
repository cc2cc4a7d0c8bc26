package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is the acting identity attached to every mutating call. The ledger
// core only inspects Role; who may reach which endpoint at all is decided
// outside it.
type User struct {
	ID        uuid.UUID
	TenantID  string
	Email     string
	Name      string
	Role      Role
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Role is a user's access level within a tenant.
type Role string

const (
	// RoleOwner is the highest tenant role. Owners may unlock periods and
	// post into locked periods without unlocking them.
	RoleOwner Role = "owner"

	// RoleAccountant can manage accounts and post entries.
	RoleAccountant Role = "accountant"

	// RoleViewer can only read ledger state.
	RoleViewer Role = "viewer"
)

var validRoles = map[Role]bool{
	RoleOwner:      true,
	RoleAccountant: true,
	RoleViewer:     true,
}

// IsValid checks if the role is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanPost checks if the role may create journal entries.
func (r Role) CanPost() bool {
	return r == RoleOwner || r == RoleAccountant
}

// CanManageAccounts checks if the role may create or delete accounts.
func (r Role) CanManageAccounts() bool {
	return r == RoleOwner || r == RoleAccountant
}

// CanOverrideLock reports whether the role may post into a locked period and
// unlock periods. The period stays locked after an override posting; the
// override is a capability, not a state change.
func (r Role) CanOverrideLock() bool {
	return r == RoleOwner
}

// Authentication errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)
