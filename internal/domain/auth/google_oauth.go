package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

const (
	googleProviderName = "google"
	googleIssuerURL    = "https://accounts.google.com"
	googleRevokeURL    = "https://oauth2.googleapis.com/revoke"

	maxNicknameAttempts = 50
)

type googleClaims struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	GivenName     string `json:"given_name"`
}

// NewOAuthState returns a random state value and a PKCE code verifier.
func NewOAuthState() (state, verifier string, err error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), oauth2.GenerateVerifier(), nil
}

func (s *service) GoogleAuthURL(_ context.Context, state, verifier string) (string, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return "", err
	}
	if state == "" || verifier == "" {
		return "", apperrors.Wrap(apperrors.CodeInvalidInput, "state and verifier are required", nil)
	}
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.S256ChallengeOption(verifier),
	), nil
}

func (s *service) GoogleCallback(ctx context.Context, code, verifier string) (LoginResponse, error) {
	cfg, err := s.googleOAuthConfig()
	if err != nil {
		return LoginResponse{}, err
	}
	if strings.TrimSpace(code) == "" || strings.TrimSpace(verifier) == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "missing oauth code or verifier", nil)
	}
	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeOAuthExchange, "failed to exchange oauth code", err)
	}
	rawIDToken, _ := token.Extra("id_token").(string)
	if rawIDToken == "" {
		return LoginResponse{}, apperrors.Wrap(CodeOAuthExchange, "missing id_token in oauth response", nil)
	}
	claims, err := s.verifyGoogleIDToken(ctx, rawIDToken)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.signInWithGoogle(ctx, claims, token.RefreshToken)
}

// signInWithGoogle logs in the user bound to the Google subject, creating
// one on first sight. An email already owned by a password account is
// refused rather than silently linked.
func (s *service) signInWithGoogle(ctx context.Context, claims googleClaims, refreshToken string) (LoginResponse, error) {
	if claims.Subject == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidToken, "missing google subject", nil)
	}
	if !claims.EmailVerified {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "google account email not verified", nil)
	}
	email, err := normalizeEmail(claims.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}

	identity, linked, err := s.repo.GetIdentity(ctx, googleProviderName, claims.Subject)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(codeAuthError, "failed to fetch identity", err)
	}

	var user User
	if linked {
		if user, err = s.loadUser(ctx, identity.UserID); err != nil {
			return LoginResponse{}, err
		}
	} else {
		_, taken, err := s.repo.GetByEmail(ctx, email)
		if err != nil {
			return LoginResponse{}, apperrors.Wrap(codeAuthError, "failed to check existing user", err)
		}
		if taken {
			return LoginResponse{}, apperrors.Wrap(CodeLinkingDisabled, "account linking by email is not enabled", nil)
		}
		if user, err = s.createGoogleUser(ctx, email, claims); err != nil {
			return LoginResponse{}, err
		}
	}

	// A repeat consent may omit the refresh token; keep the stored one then.
	if !linked || refreshToken != "" {
		if err := s.storeGoogleIdentity(ctx, user.ID, claims, refreshToken); err != nil {
			return LoginResponse{}, err
		}
	}
	return s.buildLoginResponse(user)
}

func (s *service) createGoogleUser(ctx context.Context, email string, claims googleClaims) (User, error) {
	nickname, err := s.freeNickname(ctx, googleNickname(claims))
	if err != nil {
		return User{}, err
	}
	// Google users never log in with a password; store an unguessable hash.
	secret, _, err := NewOAuthState()
	if err != nil {
		return User{}, apperrors.Wrap(codeAuthError, "failed to generate password", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return User{}, apperrors.Wrap(codeAuthError, "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, email, nickname, string(hash))
	if err != nil {
		return User{}, s.mapCreateError(err)
	}
	s.logger.Info("user registered via google", "userId", user.ID, "nickname", nickname)
	return user, nil
}

func (s *service) Logout(ctx context.Context, userID int64) error {
	identity, found, err := s.repo.GetIdentityByUser(ctx, userID, googleProviderName)
	if err != nil {
		return apperrors.Wrap(codeAuthError, "failed to fetch identity", err)
	}
	if !found || identity.RefreshToken == "" {
		return nil
	}
	refreshToken, err := openToken(s.cfg.Google.TokenEncryptionKey, googleProviderName, identity.RefreshToken)
	if err != nil || refreshToken == "" {
		s.logger.Warn("stored google refresh token unreadable", "userId", userID, "error", err)
		return nil
	}
	// Revocation is best effort; logout itself never fails on it.
	if err := s.revokeGoogleToken(ctx, refreshToken); err != nil {
		s.logger.Warn("failed to revoke google refresh token", "userId", userID, "error", err)
		return nil
	}
	s.logger.Info("google grant revoked", "userId", userID)
	return nil
}

func (s *service) googleOAuthConfig() (*oauth2.Config, error) {
	g := s.cfg.Google
	switch {
	case strings.TrimSpace(g.ClientID) == "", strings.TrimSpace(g.ClientSecret) == "", strings.TrimSpace(g.RedirectURL) == "":
		return nil, apperrors.Wrap(CodeNotConfigured, "google oauth is not configured", nil)
	case strings.TrimSpace(g.TokenEncryptionKey) == "":
		return nil, apperrors.Wrap(CodeNotConfigured, "google token encryption key is missing", nil)
	}
	return &oauth2.Config{
		ClientID:     g.ClientID,
		ClientSecret: g.ClientSecret,
		RedirectURL:  g.RedirectURL,
		Scopes:       []string{oidc.ScopeOpenID, "email", "profile"},
		Endpoint:     google.Endpoint,
	}, nil
}

// idTokenVerifier discovers Google's keys once and reuses the verifier.
func (s *service) idTokenVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	s.oidcMu.Lock()
	defer s.oidcMu.Unlock()
	if s.oidcVerifier != nil {
		return s.oidcVerifier, nil
	}
	provider, err := oidc.NewProvider(ctx, googleIssuerURL)
	if err != nil {
		return nil, err
	}
	s.oidcVerifier = provider.Verifier(&oidc.Config{ClientID: s.cfg.Google.ClientID})
	return s.oidcVerifier, nil
}

func (s *service) verifyGoogleIDToken(ctx context.Context, rawToken string) (googleClaims, error) {
	verifier, err := s.idTokenVerifier(ctx)
	if err != nil {
		return googleClaims{}, apperrors.Wrap(CodeOAuthExchange, "failed to initialize oidc provider", err)
	}
	idToken, err := verifier.Verify(ctx, rawToken)
	if err != nil {
		return googleClaims{}, apperrors.Wrap(CodeInvalidToken, "failed to verify id token", err)
	}
	var claims googleClaims
	if err := idToken.Claims(&claims); err != nil {
		return googleClaims{}, apperrors.Wrap(CodeInvalidToken, "failed to parse id token claims", err)
	}
	return claims, nil
}

func (s *service) storeGoogleIdentity(ctx context.Context, userID int64, claims googleClaims, refreshToken string) error {
	sealed, err := sealToken(s.cfg.Google.TokenEncryptionKey, googleProviderName, refreshToken)
	if err != nil {
		return apperrors.Wrap(codeAuthError, "failed to seal refresh token", err)
	}
	if _, err := s.repo.UpsertIdentity(ctx, Identity{
		UserID:          userID,
		Provider:        googleProviderName,
		ProviderSubject: claims.Subject,
		ProviderEmail:   claims.Email,
		RefreshToken:    sealed,
	}); err != nil {
		return apperrors.Wrap(codeAuthError, "failed to persist identity", err)
	}
	return nil
}

func (s *service) revokeGoogleToken(ctx context.Context, refreshToken string) error {
	form := url.Values{"token": {refreshToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("google revoke returned status %d", resp.StatusCode)
	}
	return nil
}

// googleNickname derives a nickname candidate from the profile: given
// name, then full name, then the email local part, keeping letters and
// digits only.
func googleNickname(claims googleClaims) string {
	for _, candidate := range []string{claims.GivenName, claims.Name, localPart(claims.Email)} {
		var b strings.Builder
		n := 0
		for _, r := range candidate {
			if n == maxNicknameRunes {
				break
			}
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
				n++
			}
		}
		if nickname, err := normalizeNickname(b.String()); err == nil {
			return nickname
		}
	}
	return "User"
}

func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

// freeNickname appends a numeric suffix until the nickname is unused.
func (s *service) freeNickname(ctx context.Context, base string) (string, error) {
	candidate := base
	for attempt := 2; attempt <= maxNicknameAttempts+1; attempt++ {
		_, exists, err := s.repo.GetByNickname(ctx, candidate)
		if err != nil {
			return "", apperrors.Wrap(codeAuthError, "failed to check nickname", err)
		}
		if !exists {
			return candidate, nil
		}
		suffix := strconv.Itoa(attempt)
		runes := []rune(base)
		if keep := maxNicknameRunes - len(suffix); len(runes) > keep {
			runes = runes[:keep]
		}
		candidate = string(runes) + suffix
	}
	return "", apperrors.Wrap(CodeNicknameExists, "could not derive a free nickname", nil)
}

var defaultGoogleHTTPClient = &http.Client{Timeout: 10 * time.Second}
