package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// UserRepository defines the interface for account storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// InMemoryUserRepository is a UserRepository for tests.
type InMemoryUserRepository struct {
	mu    sync.RWMutex
	users map[string]*User // keyed by normalized email
}

// NewInMemoryUserRepository creates an empty in-memory user repository.
func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{users: make(map[string]*User)}
}

// Create stores a new user, assigning an id if absent.
func (r *InMemoryUserRepository) Create(ctx context.Context, user *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := NormalizeEmail(user.Email)
	if _, ok := r.users[email]; ok {
		return ErrEmailTaken
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	cp := *user
	r.users[email] = &cp
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *InMemoryUserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[NormalizeEmail(email)]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

// TouchLastLogin records the last login instant.
func (r *InMemoryUserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.ID == id {
			t := at
			user.LastLoggedIn = &t
			return nil
		}
	}
	return ErrUserNotFound
}
