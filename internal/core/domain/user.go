package domain

import "time"

// AuthProvider identifies how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "LOCAL"
	ProviderGoogle AuthProvider = "GOOGLE"
)

// User represents a registered user of the application.
type User struct {
	UserID       string       `json:"userID" db:"user_id"` // Primary Key (UUID)
	Email        string       `json:"email" db:"email"`
	FullName     string       `json:"fullName" db:"full_name"`
	AvatarURL    *string      `json:"avatarURL,omitempty" db:"avatar_url"`
	PasswordHash string       `json:"-" db:"password_hash"` // Empty for external-provider users
	AuthProvider AuthProvider `json:"authProvider" db:"auth_provider"`

	// Refresh token state; only the SHA-256 hash of the opaque token is stored.
	RefreshTokenHash       string     `json:"-" db:"refresh_token_hash"`
	RefreshTokenExpiryTime *time.Time `json:"-" db:"refresh_token_expiry_time"`

	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty" db:"deleted_at"` // Used for soft delete
}

// GoogleUserInfo holds the subset of Google's userinfo payload we consume.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}
