// Package identity resolves who is driving the client: a registered session
// from the auth provider, a guest identity persisted locally, or nobody. It
// also owns the admin privilege check and the startup/auth-event routing
// rules.
package identity

import (
	"github.com/google/uuid"
)

// Role is the account role assigned at signup.
type Role string

const (
	RoleJobSeeker Role = "job_seeker"
	RoleRecruiter Role = "recruiter"
)

// Session is a resolved registered user.
type Session struct {
	UserID      uuid.UUID
	Email       string
	Name        string
	Role        Role
	AccessToken string
}

// AuthEvent is a change notification from the auth provider.
type AuthEvent string

const (
	EventSignedIn  AuthEvent = "SIGNED_IN"
	EventSignedOut AuthEvent = "SIGNED_OUT"
)
