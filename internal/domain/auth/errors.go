package auth

import "errors"

// Error codes surfaced by the auth workflows.
const (
	CodeEmailExists        = "email_exists"
	CodeNicknameExists     = "nickname_exists"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeUserNotFound       = "user_not_found"
	CodeNotConfigured      = "auth_not_configured"
	CodeOAuthExchange      = "oauth_exchange_failed"
	CodeLinkingDisabled    = "account_linking_disabled"
	codeAuthError          = "auth_error"
)

var (
	// ErrEmailExists indicates a duplicate email address.
	ErrEmailExists = errors.New("email already exists")
	// ErrNicknameExists indicates a duplicate nickname.
	ErrNicknameExists = errors.New("nickname already exists")
)
