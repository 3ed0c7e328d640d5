package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"reputation-leaderboard/internal/application/ports"
	"reputation-leaderboard/internal/domain/models"
	"reputation-leaderboard/internal/domain/services"
)

// UserStore implements the UserRepository interface over an in-memory map.
// Insertion order is kept so that ranking ties resolve deterministically.
type UserStore struct {
	mutex   sync.RWMutex
	users   map[string]models.LeaderboardUser
	order   []string
	wallets map[string]string
}

var _ ports.UserRepository = (*UserStore)(nil)

// NewUserStore creates a store holding users in the given order
func NewUserStore(users ...models.LeaderboardUser) *UserStore {
	store := &UserStore{
		users:   make(map[string]models.LeaderboardUser, len(users)),
		order:   make([]string, 0, len(users)),
		wallets: make(map[string]string, len(users)),
	}
	for _, user := range users {
		store.insert(user)
	}
	return store
}

// insert adds or replaces a user. Seed data is trusted, so wallet
// uniqueness is only checked by CreateUser.
func (s *UserStore) insert(user models.LeaderboardUser) {
	if previous, exists := s.users[user.ID]; exists {
		delete(s.wallets, strings.ToLower(previous.WalletAddress))
	} else {
		s.order = append(s.order, user.ID)
	}
	s.users[user.ID] = user
	s.wallets[strings.ToLower(user.WalletAddress)] = user.ID
}

// Load appends a batch of seed users
func (s *UserStore) Load(users []models.LeaderboardUser) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for _, user := range users {
		s.insert(user)
	}
}

// GetUser retrieves a user by id
func (s *UserStore) GetUser(ctx context.Context, id string) (*models.LeaderboardUser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", services.ErrUserNotFound, id)
	}
	return &user, nil
}

// GetUserByUsername retrieves the earliest inserted user with username
func (s *UserStore) GetUserByUsername(ctx context.Context, username string) (*models.LeaderboardUser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	for _, id := range s.order {
		if user := s.users[id]; user.Username == username {
			return &user, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", services.ErrUserNotFound, username)
}

// ListUsers returns a snapshot of every user in insertion order
func (s *UserStore) ListUsers(ctx context.Context) ([]models.LeaderboardUser, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]models.LeaderboardUser, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users, nil
}

// SearchUsers returns the users matching query in insertion order
func (s *UserStore) SearchUsers(ctx context.Context, query string) ([]models.LeaderboardUser, error) {
	term := services.NormalizeSearch(query)

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	users := make([]models.LeaderboardUser, 0)
	for _, id := range s.order {
		user := s.users[id]
		if term == "" || services.MatchesSearch(user, term) {
			users = append(users, user)
		}
	}
	return users, nil
}

// CreateUser inserts a new user, rejecting duplicate ids and wallets
func (s *UserStore) CreateUser(ctx context.Context, user *models.LeaderboardUser) error {
	if user == nil || user.ID == "" {
		return fmt.Errorf("%w: id is required", services.ErrInvalidUser)
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return fmt.Errorf("%w: duplicate id %s", services.ErrInvalidUser, user.ID)
	}
	if _, taken := s.wallets[strings.ToLower(user.WalletAddress)]; taken {
		return fmt.Errorf("%w: %s", services.ErrDuplicateWallet, user.WalletAddress)
	}

	s.insert(*user)
	return nil
}

// DeleteUser removes a user and releases its wallet address
func (s *UserStore) DeleteUser(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	user, ok := s.users[id]
	if !ok {
		return fmt.Errorf("%w: %s", services.ErrUserNotFound, id)
	}

	delete(s.users, id)
	delete(s.wallets, strings.ToLower(user.WalletAddress))
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	return nil
}

// Count returns the number of stored users
func (s *UserStore) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return len(s.order), nil
}
