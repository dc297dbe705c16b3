package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles
const (
	RoleStudent    = "student"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Subscription states
const (
	SubscriptionNone    = "none"
	SubscriptionPending = "pending"
	SubscriptionActive  = "active"
	SubscriptionExpired = "expired"
)

type User struct {
	ID                    uuid.UUID  `json:"id"`
	Email                 string     `json:"email"`
	PasswordHash          string     `json:"-"`
	FullName              string     `json:"full_name"`
	Role                  string     `json:"role"`
	IsActive              bool       `json:"is_active"`
	SubscriptionStatus    string     `json:"subscription_status"`
	SubscriptionPlan      *string    `json:"subscription_plan"`
	SubscriptionStartedAt *time.Time `json:"subscription_started_at"`
	SubscriptionExpiresAt *time.Time `json:"subscription_expires_at"`
	CreatedAt             time.Time  `json:"created_at"`
	LastLoginAt           *time.Time `json:"last_login_at"`
}

// HasActiveSubscription reports whether the user may open subscriber-only content.
// Admins always pass.
func (u *User) HasActiveSubscription(now time.Time) bool {
	if u.Role == RoleAdmin || u.Role == RoleSuperadmin {
		return true
	}
	if u.SubscriptionStatus != SubscriptionActive {
		return false
	}
	if u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.Before(now) {
		return false
	}
	return true
}

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
