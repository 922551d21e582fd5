package domain

import "time"

// Account is the identity record for a single user. The password credential
// is owned by the credential store and never appears on this struct; the
// store keeps the hash next to the document it persists.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	PhoneNumber string `json:"phone_number,omitempty"`

	// EmailNotificationsEnabled defaults to true at registration time.
	EmailNotificationsEnabled bool `json:"email_notifications_enabled"`

	// Lockout state. AccessFailedCount is incremented on every wrong
	// password; once the store's threshold is reached, LockoutEndTime is
	// set and logins are refused until it passes.
	LockoutEnabled    bool       `json:"-"`
	AccessFailedCount int        `json:"-"`
	LockoutEndTime    *time.Time `json:"-"`

	// Current refresh token. Only the latest issued value is live; both
	// fields are nil/empty until the first successful login.
	RefreshToken       string     `json:"-"`
	RefreshTokenExpiry *time.Time `json:"-"`

	// SecurityStamp is an opaque per-account random value rotated by the
	// store on credential changes.
	SecurityStamp string `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Version backs the store's optimistic concurrency check on updates.
	Version int64 `json:"-"`
}

// TokenPair is the value object returned by login and refresh. The access
// token is a signed JWT; the refresh token is an opaque random value that is
// never decoded, only compared against the stored copy.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AccessClaims is the claim set carried by every minted access token.
type AccessClaims struct {
	Subject     string
	DisplayName string
	Email       string
	TokenID     string
	Roles       []string
}
