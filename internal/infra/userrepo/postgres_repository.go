package userrepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
)

const (
	userColumns     = `id, email, nickname, password_hash, created_at, updated_at`
	identityColumns = `id, user_id, provider, provider_subject, provider_email, refresh_token, created_at, updated_at`
	uniqueViolation = "23505"
)

// PostgresRepository persists users and their provider identities.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new user row.
func (r *PostgresRepository) Create(ctx context.Context, email, nickname, passwordHash string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (email, nickname, password_hash)
		VALUES ($1, $2, $3)
		RETURNING `+userColumns, email, nickname, passwordHash)
	user, err := scanUser(row)
	if err != nil {
		return auth.User{}, mapUniqueViolation(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (auth.User, bool, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 LIMIT 1`, email)
}

func (r *PostgresRepository) GetByNickname(ctx context.Context, nickname string) (auth.User, bool, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = $1 LIMIT 1`, nickname)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (auth.User, bool, error) {
	return r.getUser(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 LIMIT 1`, id)
}

func (r *PostgresRepository) UpdateNickname(ctx context.Context, id int64, nickname string) (auth.User, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE users SET nickname = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, nickname)
	user, err := scanUser(row)
	if err != nil {
		return auth.User{}, mapUniqueViolation(err)
	}
	return user, nil
}

func (r *PostgresRepository) GetIdentity(ctx context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM user_identities
		WHERE provider = $1 AND provider_subject = $2
	`, provider, providerSubject)
	return scanIdentityRow(row)
}

func (r *PostgresRepository) GetIdentityByUser(ctx context.Context, userID int64, provider string) (auth.Identity, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+identityColumns+`
		FROM user_identities
		WHERE user_id = $1 AND provider = $2
		ORDER BY updated_at DESC
		LIMIT 1
	`, userID, provider)
	return scanIdentityRow(row)
}

// UpsertIdentity inserts the identity or refreshes its email and token. An
// empty refresh token keeps the stored one.
func (r *PostgresRepository) UpsertIdentity(ctx context.Context, identity auth.Identity) (auth.Identity, error) {
	if identity.UserID == 0 {
		return auth.Identity{}, errors.New("userID is required")
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO user_identities (user_id, provider, provider_subject, provider_email, refresh_token)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (provider, provider_subject) DO UPDATE SET
			provider_email = COALESCE(NULLIF(EXCLUDED.provider_email, ''), user_identities.provider_email),
			refresh_token = COALESCE(NULLIF(EXCLUDED.refresh_token, ''), user_identities.refresh_token),
			updated_at = now()
		RETURNING `+identityColumns,
		identity.UserID, identity.Provider, identity.ProviderSubject, identity.ProviderEmail, identity.RefreshToken)
	stored, _, err := scanIdentityRow(row)
	return stored, err
}

func (r *PostgresRepository) getUser(ctx context.Context, query string, arg any) (auth.User, bool, error) {
	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.User{}, false, nil
	}
	if err != nil {
		return auth.User{}, false, err
	}
	return user, true, nil
}

func scanUser(row pgx.Row) (auth.User, error) {
	var user auth.User
	var created, updated time.Time
	if err := row.Scan(&user.ID, &user.Email, &user.Nickname, &user.PasswordHash, &created, &updated); err != nil {
		return auth.User{}, err
	}
	user.CreatedAt = created.UTC()
	user.UpdatedAt = updated.UTC()
	return user, nil
}

func scanIdentityRow(row pgx.Row) (auth.Identity, bool, error) {
	var identity auth.Identity
	var email, token *string
	err := row.Scan(&identity.ID, &identity.UserID, &identity.Provider, &identity.ProviderSubject,
		&email, &token, &identity.CreatedAt, &identity.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return auth.Identity{}, false, nil
	}
	if err != nil {
		return auth.Identity{}, false, err
	}
	if email != nil {
		identity.ProviderEmail = *email
	}
	if token != nil {
		identity.RefreshToken = *token
	}
	identity.CreatedAt = identity.CreatedAt.UTC()
	identity.UpdatedAt = identity.UpdatedAt.UTC()
	return identity, true, nil
}

// mapUniqueViolation turns constraint failures into domain errors based on
// the violated constraint name.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != uniqueViolation {
		return err
	}
	if strings.Contains(pgErr.ConstraintName, "nickname") {
		return auth.ErrNicknameExists
	}
	return auth.ErrEmailExists
}

var _ auth.Repository = (*PostgresRepository)(nil)
