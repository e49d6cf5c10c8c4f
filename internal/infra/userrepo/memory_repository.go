package userrepo

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/seoulfit/seoulfit-api/internal/domain/auth"
)

// MemoryRepository keeps accounts in process memory for local runs and tests.
type MemoryRepository struct {
	mu            sync.RWMutex
	users         map[int64]auth.User
	emailIndex    map[string]int64
	nicknameIndex map[string]int64
	identities    map[string]auth.Identity
	userIndex     map[string]auth.Identity
	seq           int64
	identityID    int64
}

// NewMemoryRepository constructs a new in-memory repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:         make(map[int64]auth.User),
		emailIndex:    make(map[string]int64),
		nicknameIndex: make(map[string]int64),
		identities:    make(map[string]auth.Identity),
		userIndex:     make(map[string]auth.Identity),
	}
}

// Create stores the user record.
func (r *MemoryRepository) Create(_ context.Context, email, nickname, passwordHash string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.emailIndex[email]; exists {
		return auth.User{}, auth.ErrEmailExists
	}
	if _, exists := r.nicknameIndex[nickname]; exists {
		return auth.User{}, auth.ErrNicknameExists
	}
	r.seq++
	now := time.Now().UTC()
	user := auth.User{
		ID:           r.seq,
		Email:        email,
		Nickname:     nickname,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.users[user.ID] = user
	r.emailIndex[email] = user.ID
	r.nicknameIndex[nickname] = user.ID
	return user, nil
}

func (r *MemoryRepository) GetByEmail(_ context.Context, email string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.emailIndex[email]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByNickname(_ context.Context, nickname string) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if id, ok := r.nicknameIndex[nickname]; ok {
		return r.users[id], true, nil
	}
	return auth.User{}, false, nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id int64) (auth.User, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	return user, ok, nil
}

// UpdateNickname renames a user, keeping the nickname index unique.
func (r *MemoryRepository) UpdateNickname(_ context.Context, id int64, nickname string) (auth.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return auth.User{}, errors.New("user not found")
	}
	if owner, taken := r.nicknameIndex[nickname]; taken && owner != id {
		return auth.User{}, auth.ErrNicknameExists
	}
	delete(r.nicknameIndex, user.Nickname)
	user.Nickname = nickname
	user.UpdatedAt = time.Now().UTC()
	r.users[id] = user
	r.nicknameIndex[nickname] = id
	return user, nil
}

func (r *MemoryRepository) GetIdentity(_ context.Context, provider, providerSubject string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.identities[identityKey(provider, providerSubject)]
	return identity, ok, nil
}

func (r *MemoryRepository) GetIdentityByUser(_ context.Context, userID int64, provider string) (auth.Identity, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	identity, ok := r.userIndex[userIdentityKey(provider, userID)]
	return identity, ok, nil
}

// UpsertIdentity stores or updates the identity mapping. An empty refresh
// token keeps the stored one.
func (r *MemoryRepository) UpsertIdentity(_ context.Context, identity auth.Identity) (auth.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if identity.UserID == 0 {
		return auth.Identity{}, errors.New("userID is required")
	}
	now := time.Now().UTC()
	key := identityKey(identity.Provider, identity.ProviderSubject)
	if existing, ok := r.identities[key]; ok {
		if identity.RefreshToken != "" {
			existing.RefreshToken = identity.RefreshToken
		}
		if identity.ProviderEmail != "" {
			existing.ProviderEmail = identity.ProviderEmail
		}
		existing.UpdatedAt = now
		identity = existing
	} else {
		r.identityID++
		identity.ID = r.identityID
		identity.CreatedAt = now
		identity.UpdatedAt = now
	}
	r.identities[key] = identity
	r.userIndex[userIdentityKey(identity.Provider, identity.UserID)] = identity
	return identity, nil
}

var _ auth.Repository = (*MemoryRepository)(nil)

func identityKey(provider, subject string) string {
	return provider + ":" + subject
}

func userIdentityKey(provider string, userID int64) string {
	return provider + ":" + strconv.FormatInt(userID, 10)
}
