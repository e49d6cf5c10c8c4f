package auth

import "time"

// Config drives authentication behavior.
type Config struct {
	Secret          string
	TokenTTL        time.Duration
	RefreshTokenTTL time.Duration
	Google          GoogleConfig
}

// GoogleConfig holds OAuth settings for Google sign-in.
type GoogleConfig struct {
	ClientID             string
	ClientSecret         string
	RedirectURL          string
	TokenEncryptionKey   string
	PostLoginRedirectURL string
}

// User represents a persisted account.
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Nickname     string    `json:"nickname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Identity represents an external auth provider linkage.
type Identity struct {
	ID              int64
	UserID          int64
	Provider        string
	ProviderSubject string
	ProviderEmail   string
	RefreshToken    string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// RegisterRequest captures the registration payload.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// LoginRequest captures login details.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries a token pair. ExpiresIn is the access token
// lifetime in seconds.
type LoginResponse struct {
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	TokenType    string   `json:"tokenType"`
	ExpiresIn    int64    `json:"expiresIn"`
	User         UserView `json:"user"`
}

// UserView is the public profile; the owner key is what history,
// preferences and notifications are stored under.
type UserView struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Nickname  string    `json:"nickname"`
	OwnerKey  string    `json:"ownerKey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Claims are what a verified token says about its bearer.
type Claims struct {
	UserID    int64
	Email     string
	TokenType string
	ExpiresAt time.Time
}

// CheckRequest asks whether an email and/or nickname is still free.
type CheckRequest struct {
	Email    string `json:"email" form:"email"`
	Nickname string `json:"nickname" form:"nickname"`
}

// Availability reports one checked field. Reason is set when the value is
// malformed rather than taken.
type Availability struct {
	Value     string `json:"value"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// CheckResponse carries the result for each field that was asked about.
type CheckResponse struct {
	Email    *Availability `json:"email,omitempty"`
	Nickname *Availability `json:"nickname,omitempty"`
}

// ProfileUpdate changes mutable profile fields.
type ProfileUpdate struct {
	Nickname string `json:"nickname"`
}

// RefreshRequest encapsulates refresh token payload.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
