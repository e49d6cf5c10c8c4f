package auth

import (
	"context"
	"encoding/base64"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/seoulfit/seoulfit-api/pkg/errors"
	"github.com/seoulfit/seoulfit-api/pkg/logger"
)

func newTestService(repo Repository) *service {
	return NewService(Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, repo, logger.Discard()).(*service)
}

func TestService_RegisterLoginAndRefresh(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	view, err := svc.Register(ctx, RegisterRequest{
		Email:    "User@Example.com",
		Password: "pass1234",
		Nickname: "서울산책",
	})
	require.NoError(t, err)
	require.Equal(t, "user@example.com", view.Email)
	require.Equal(t, "서울산책", view.Nickname)
	require.NotZero(t, view.ID)

	resp, err := svc.Login(ctx, LoginRequest{Email: "user@example.com", Password: "pass1234"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Token)
	require.NotEmpty(t, resp.RefreshToken)
	require.Equal(t, view.Email, resp.User.Email)

	claims, err := svc.ValidateToken(ctx, resp.Token)
	require.NoError(t, err)
	require.Equal(t, view.ID, claims.UserID)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, time.Minute)

	_, err = svc.ValidateToken(ctx, resp.RefreshToken)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))

	refreshed, err := svc.Refresh(ctx, resp.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, resp.Token, refreshed.Token)
	require.Equal(t, "서울산책", refreshed.User.Nickname)

	_, err = svc.Refresh(ctx, resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestService_LoginRejectsWrongPassword(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pass1234", Nickname: "alpha"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "wrongpass"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
	_, err = svc.Login(ctx, LoginRequest{Email: "missing@example.com", Password: "pass1234"})
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))
}

func TestService_DuplicateEmailAndNickname(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "user@example.com", Password: "pass1234", Nickname: "NickOne"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "user@example.com", Password: "pass12345", Nickname: "NickTwo"})
	require.True(t, apperrors.IsCode(err, CodeEmailExists))

	_, err = svc.Register(ctx, RegisterRequest{Email: "other@example.com", Password: "pass12345", Nickname: "NickOne"})
	require.True(t, apperrors.IsCode(err, CodeNicknameExists))
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	cases := []RegisterRequest{
		{Email: "not-an-email", Password: "pass1234", Nickname: "nick"},
		{Email: "a@example.com", Password: "short", Nickname: "nick"},
		{Email: "a@example.com", Password: "pass1234", Nickname: "bad name"},
		{Email: "a@example.com", Password: "pass1234", Nickname: strings.Repeat("가", 11)},
	}
	for _, req := range cases {
		_, err := svc.Register(ctx, req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "%+v", req)
	}
}

func TestService_Check(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "taken@example.com", Password: "pass1234", Nickname: "taken"})
	require.NoError(t, err)

	resp, err := svc.Check(ctx, CheckRequest{Email: "Taken@Example.com", Nickname: "fresh1"})
	require.NoError(t, err)
	require.NotNil(t, resp.Email)
	require.False(t, resp.Email.Available)
	require.Equal(t, "taken@example.com", resp.Email.Value)
	require.NotNil(t, resp.Nickname)
	require.True(t, resp.Nickname.Available)

	resp, err = svc.Check(ctx, CheckRequest{Nickname: "no spaces"})
	require.NoError(t, err)
	require.Nil(t, resp.Email)
	require.False(t, resp.Nickname.Available)
	require.NotEmpty(t, resp.Nickname.Reason)

	_, err = svc.Check(ctx, CheckRequest{})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestService_UpdateProfile(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	first, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pass1234", Nickname: "first"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Email: "b@example.com", Password: "pass1234", Nickname: "second"})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, first.ID, ProfileUpdate{Nickname: "새이름"})
	require.NoError(t, err)
	require.Equal(t, "새이름", updated.Nickname)

	profile, err := svc.Profile(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "새이름", profile.Nickname)

	_, err = svc.UpdateProfile(ctx, first.ID, ProfileUpdate{Nickname: "second"})
	require.True(t, apperrors.IsCode(err, CodeNicknameExists))

	_, err = svc.UpdateProfile(ctx, 999, ProfileUpdate{Nickname: "ghost"})
	require.True(t, apperrors.IsCode(err, CodeUserNotFound))
}

func TestService_ExpiredToken(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Register(ctx, RegisterRequest{Email: "a@example.com", Password: "pass1234", Nickname: "alpha"})
	require.NoError(t, err)
	resp, err := svc.Login(ctx, LoginRequest{Email: "a@example.com", Password: "pass1234"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.ValidateToken(ctx, resp.Token)
	require.True(t, apperrors.IsCode(err, CodeInvalidToken))
}

func TestGoogleNickname(t *testing.T) {
	require.Equal(t, "길동", googleNickname(googleClaims{GivenName: "길동", Name: "홍길동"}))
	require.Equal(t, "janedoe", googleNickname(googleClaims{Email: "jane.doe@example.com"}))
	require.Equal(t, "User", googleNickname(googleClaims{Name: "!!!"}))
}

func TestService_FreeNickname(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	_, err := repo.Create(ctx, "a@example.com", "abcdefghij", "x")
	require.NoError(t, err)
	_, err = repo.Create(ctx, "b@example.com", "abcdefghi2", "x")
	require.NoError(t, err)

	name, err := svc.freeNickname(ctx, "abcdefghij")
	require.NoError(t, err)
	require.Equal(t, "abcdefghi3", name)
}

func TestSealToken(t *testing.T) {
	key := "0123456789abcdef0123456789abcdef"
	sealed, err := sealToken(key, "google", "refresh-token")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(sealed, sealedPrefix))

	opened, err := openToken(key, "google", sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-token", opened)

	_, err = openToken(key, "kakao", sealed)
	require.Error(t, err, "provider is bound as additional data")

	b64Key := base64.StdEncoding.EncodeToString([]byte(key))
	opened, err = openToken(b64Key, "google", sealed)
	require.NoError(t, err)
	require.Equal(t, "refresh-token", opened)

	_, err = sealToken("short", "google", "refresh-token")
	require.Error(t, err)

	_, err = openToken(key, "google", "plain-text")
	require.ErrorIs(t, err, errSealedToken)

	empty, err := sealToken(key, "google", "")
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestGoogleAuthURLRequiresConfig(t *testing.T) {
	svc := newTestService(newMemoryRepo())
	_, err := svc.GoogleAuthURL(context.Background(), "state", "challenge")
	require.True(t, apperrors.IsCode(err, CodeNotConfigured))

	svc.cfg.Google = GoogleConfig{
		ClientID:           "client",
		ClientSecret:       "secret",
		RedirectURL:        "http://localhost:8080/api/v1/auth/google/callback",
		TokenEncryptionKey: "0123456789abcdef",
	}
	url, err := svc.GoogleAuthURL(context.Background(), "state", "verifier-value")
	require.NoError(t, err)
	require.Contains(t, url, "code_challenge_method=S256")
	require.NotContains(t, url, "verifier-value")
	require.Contains(t, url, "access_type=offline")
	require.Contains(t, url, "state=state")
}

func TestSignInWithGoogle(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	svc.cfg.Google.TokenEncryptionKey = "0123456789abcdef"
	ctx := context.Background()
	claims := googleClaims{Subject: "sub-1", Email: "Hong@Example.com", EmailVerified: true, GivenName: "길동"}

	first, err := svc.signInWithGoogle(ctx, claims, "google-refresh")
	require.NoError(t, err)
	require.Equal(t, "hong@example.com", first.User.Email)
	require.Equal(t, "길동", first.User.Nickname)
	stored := repo.identities["sub-1"]
	require.Equal(t, first.User.ID, stored.UserID)
	require.NotEqual(t, "google-refresh", stored.RefreshToken)

	again, err := svc.signInWithGoogle(ctx, claims, "")
	require.NoError(t, err)
	require.Equal(t, first.User.ID, again.User.ID)
	require.Equal(t, stored.RefreshToken, repo.identities["sub-1"].RefreshToken, "empty refresh token keeps the stored grant")

	_, err = svc.signInWithGoogle(ctx, googleClaims{Subject: "sub-2", Email: "hong@example.com", EmailVerified: true}, "")
	require.True(t, apperrors.IsCode(err, CodeLinkingDisabled))

	_, err = svc.signInWithGoogle(ctx, googleClaims{Subject: "sub-3", Email: "new@example.com"}, "")
	require.True(t, apperrors.IsCode(err, CodeInvalidCredentials))

	clone, err := svc.signInWithGoogle(ctx, googleClaims{Subject: "sub-4", Email: "other@example.com", EmailVerified: true, GivenName: "길동"}, "")
	require.NoError(t, err)
	require.Equal(t, "길동2", clone.User.Nickname)
}

type memoryRepo struct {
	users      map[int64]User
	identities map[string]Identity
	seq        int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{users: make(map[int64]User), identities: make(map[string]Identity)}
}

func (m *memoryRepo) Create(_ context.Context, email, nickname, passwordHash string) (User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return User{}, ErrEmailExists
		}
		if user.Nickname == nickname {
			return User{}, ErrNicknameExists
		}
	}
	m.seq++
	user := User{ID: m.seq, Email: email, Nickname: nickname, PasswordHash: passwordHash, CreatedAt: time.Now()}
	m.users[user.ID] = user
	return user, nil
}

func (m *memoryRepo) GetByEmail(_ context.Context, email string) (User, bool, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByNickname(_ context.Context, nickname string) (User, bool, error) {
	for _, user := range m.users {
		if user.Nickname == nickname {
			return user, true, nil
		}
	}
	return User{}, false, nil
}

func (m *memoryRepo) GetByID(_ context.Context, id int64) (User, bool, error) {
	user, ok := m.users[id]
	return user, ok, nil
}

func (m *memoryRepo) UpdateNickname(_ context.Context, id int64, nickname string) (User, error) {
	user := m.users[id]
	user.Nickname = nickname
	m.users[id] = user
	return user, nil
}

func (m *memoryRepo) GetIdentity(_ context.Context, _ string, subject string) (Identity, bool, error) {
	identity, ok := m.identities[subject]
	return identity, ok, nil
}

func (m *memoryRepo) GetIdentityByUser(_ context.Context, userID int64, _ string) (Identity, bool, error) {
	for _, identity := range m.identities {
		if identity.UserID == userID {
			return identity, true, nil
		}
	}
	return Identity{}, false, nil
}

func (m *memoryRepo) UpsertIdentity(_ context.Context, identity Identity) (Identity, error) {
	if prev, ok := m.identities[identity.ProviderSubject]; ok && identity.RefreshToken == "" {
		identity.RefreshToken = prev.RefreshToken
	}
	m.identities[identity.ProviderSubject] = identity
	return identity, nil
}
