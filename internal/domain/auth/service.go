package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/mail"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
)

// Service exposes authentication workflows.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (UserView, error)
	Login(ctx context.Context, req LoginRequest) (LoginResponse, error)
	Check(ctx context.Context, req CheckRequest) (CheckResponse, error)
	GoogleAuthURL(ctx context.Context, state, verifier string) (string, error)
	GoogleCallback(ctx context.Context, code, verifier string) (LoginResponse, error)
	ValidateToken(ctx context.Context, token string) (Claims, error)
	Refresh(ctx context.Context, refreshToken string) (LoginResponse, error)
	Profile(ctx context.Context, userID int64) (UserView, error)
	UpdateProfile(ctx context.Context, userID int64, req ProfileUpdate) (UserView, error)
	Logout(ctx context.Context, userID int64) error
}

type service struct {
	cfg        Config
	repo       Repository
	logger     *slog.Logger
	now        func() time.Time
	httpClient *http.Client

	oidcMu       sync.Mutex
	oidcVerifier *oidc.IDTokenVerifier
}

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"

	maxNicknameRunes = 10
	minPasswordLen   = 8
)

// NewService constructs a Service instance.
func NewService(cfg Config, repo Repository, logger *slog.Logger) Service {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = time.Hour
	}
	if cfg.RefreshTokenTTL <= 0 {
		cfg.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	return &service{
		cfg:        cfg,
		repo:       repo,
		logger:     logger.With("component", "auth.service"),
		now:        time.Now,
		httpClient: defaultGoogleHTTPClient,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserView, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	nickname, err := normalizeNickname(req.Nickname)
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	if err := validatePassword(req.Password); err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	if _, exists, err := s.repo.GetByEmail(ctx, email); err != nil {
		return UserView{}, apperrors.Wrap(codeAuthError, "failed to check user", err)
	} else if exists {
		return UserView{}, apperrors.Wrap(CodeEmailExists, "email already registered", nil)
	}
	if _, exists, err := s.repo.GetByNickname(ctx, nickname); err != nil {
		return UserView{}, apperrors.Wrap(codeAuthError, "failed to check nickname", err)
	} else if exists {
		return UserView{}, apperrors.Wrap(CodeNicknameExists, "nickname already taken", nil)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return UserView{}, apperrors.Wrap(codeAuthError, "failed to hash password", err)
	}
	user, err := s.repo.Create(ctx, email, nickname, string(hashed))
	if err != nil {
		return UserView{}, s.mapCreateError(err)
	}
	s.logger.Info("user registered", "userId", user.ID)
	return toView(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid email address", err)
	}
	if strings.TrimSpace(req.Password) == "" {
		return LoginResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "password cannot be empty", nil)
	}
	user, found, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return LoginResponse{}, apperrors.Wrap(codeAuthError, "failed to fetch user", err)
	}
	if !found {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidCredentials, "invalid email or password", nil)
	}
	return s.buildLoginResponse(user)
}

// Check reports availability for whichever of email and nickname is set.
// Malformed values are reported as unavailable with a reason instead of
// failing the whole request.
func (s *service) Check(ctx context.Context, req CheckRequest) (CheckResponse, error) {
	rawEmail := strings.TrimSpace(req.Email)
	rawNickname := strings.TrimSpace(req.Nickname)
	if rawEmail == "" && rawNickname == "" {
		return CheckResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "email or nickname is required", nil)
	}
	var resp CheckResponse
	if rawEmail != "" {
		result := &Availability{Value: rawEmail}
		if email, err := normalizeEmail(rawEmail); err != nil {
			result.Reason = "invalid email address"
		} else {
			result.Value = email
			_, exists, err := s.repo.GetByEmail(ctx, email)
			if err != nil {
				return CheckResponse{}, apperrors.Wrap(codeAuthError, "failed to check email", err)
			}
			result.Available = !exists
		}
		resp.Email = result
	}
	if rawNickname != "" {
		result := &Availability{Value: rawNickname}
		if nickname, err := normalizeNickname(rawNickname); err != nil {
			result.Reason = err.Error()
		} else {
			_, exists, err := s.repo.GetByNickname(ctx, nickname)
			if err != nil {
				return CheckResponse{}, apperrors.Wrap(codeAuthError, "failed to check nickname", err)
			}
			result.Available = !exists
		}
		resp.Nickname = result
	}
	return resp, nil
}

func (s *service) ValidateToken(ctx context.Context, token string) (Claims, error) {
	if strings.TrimSpace(token) == "" {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing", nil)
	}
	claims, err := s.parseToken(token)
	if err != nil {
		return Claims{}, err
	}
	if claims.TokenType != tokenTypeAccess {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token type mismatch", nil)
	}
	return claims, nil
}

func (s *service) Profile(ctx context.Context, userID int64) (UserView, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	return toView(user), nil
}

func (s *service) UpdateProfile(ctx context.Context, userID int64, req ProfileUpdate) (UserView, error) {
	nickname, err := normalizeNickname(req.Nickname)
	if err != nil {
		return UserView{}, apperrors.Wrap(apperrors.CodeInvalidInput, err.Error(), nil)
	}
	current, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserView{}, err
	}
	if current.Nickname == nickname {
		return toView(current), nil
	}
	if other, exists, err := s.repo.GetByNickname(ctx, nickname); err != nil {
		return UserView{}, apperrors.Wrap(codeAuthError, "failed to check nickname", err)
	} else if exists && other.ID != userID {
		return UserView{}, apperrors.Wrap(CodeNicknameExists, "nickname already taken", nil)
	}
	updated, err := s.repo.UpdateNickname(ctx, userID, nickname)
	if err != nil {
		if errors.Is(err, ErrNicknameExists) {
			return UserView{}, apperrors.Wrap(CodeNicknameExists, "nickname already taken", err)
		}
		return UserView{}, apperrors.Wrap(codeAuthError, "failed to update profile", err)
	}
	return toView(updated), nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (LoginResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidToken, "refresh token missing", nil)
	}
	claims, err := s.parseToken(refreshToken)
	if err != nil {
		return LoginResponse{}, err
	}
	if claims.TokenType != tokenTypeRefresh {
		return LoginResponse{}, apperrors.Wrap(CodeInvalidToken, "token type mismatch", nil)
	}
	user, err := s.loadUser(ctx, claims.UserID)
	if err != nil {
		return LoginResponse{}, err
	}
	return s.buildLoginResponse(user)
}

func (s *service) loadUser(ctx context.Context, userID int64) (User, error) {
	user, found, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return User{}, apperrors.Wrap(codeAuthError, "failed to load user", err)
	}
	if !found {
		return User{}, apperrors.Wrap(CodeUserNotFound, "user not found", nil)
	}
	return user, nil
}

func (s *service) mapCreateError(err error) error {
	switch {
	case errors.Is(err, ErrEmailExists):
		return apperrors.Wrap(CodeEmailExists, "email already registered", err)
	case errors.Is(err, ErrNicknameExists):
		return apperrors.Wrap(CodeNicknameExists, "nickname already taken", err)
	default:
		return apperrors.Wrap(codeAuthError, "failed to create user", err)
	}
}

func (s *service) buildLoginResponse(user User) (LoginResponse, error) {
	access, err := s.generateToken(user, tokenTypeAccess, s.cfg.TokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	refresh, err := s.generateToken(user, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return LoginResponse{}, err
	}
	return LoginResponse{
		Token:        access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.TokenTTL / time.Second),
		User:         toView(user),
	}, nil
}

func (s *service) generateToken(user User, tokenType string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := tokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			ID:        newTokenID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return "", apperrors.Wrap(codeAuthError, "failed to sign token", err)
	}
	return signed, nil
}

func (s *service) parseToken(token string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %s", t.Method.Alg())
		}
		return []byte(s.cfg.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token validation failed", err)
	}
	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token invalid", nil)
	}
	if claims.ExpiresAt == nil {
		return Claims{}, apperrors.Wrap(CodeInvalidToken, "token missing expiry", nil)
	}
	return Claims{
		UserID:    claims.UserID,
		Email:     claims.Email,
		TokenType: claims.TokenType,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func toView(user User) UserView {
	return UserView{
		ID:        user.ID,
		Email:     user.Email,
		Nickname:  user.Nickname,
		OwnerKey:  OwnerKey(user.ID),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// OwnerKey is the storage owner for an authenticated user.
func OwnerKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}

func normalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(strings.ToLower(raw))
	if email == "" {
		return "", errors.New("email cannot be empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return "", err
	}
	if addr.Address != email {
		return "", errors.New("email must be a bare address")
	}
	return email, nil
}

// normalizeNickname accepts Hangul and other letters plus digits.
func normalizeNickname(raw string) (string, error) {
	nickname := strings.TrimSpace(raw)
	if nickname == "" {
		return "", errors.New("nickname cannot be empty")
	}
	if len([]rune(nickname)) > maxNicknameRunes {
		return "", fmt.Errorf("nickname cannot exceed %d characters", maxNicknameRunes)
	}
	for _, r := range nickname {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", errors.New("nickname must contain only letters or digits")
		}
	}
	return nickname, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"userId"`
	Email     string `json:"email"`
	TokenType string `json:"type"`
}

func newTokenID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return strconv.FormatInt(time.Now().UnixNano(), 10)
	}
	return hex.EncodeToString(buf)
}
