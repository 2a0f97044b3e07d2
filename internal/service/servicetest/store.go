// Package servicetest provides an in-memory UserStore for tests.
package servicetest

import (
	"context"
	"sort"
	"sync"

	"github.com/user-management-api/internal/model"
	"github.com/user-management-api/internal/storage"
)

// Store keeps users in a map and enforces the same uniqueness rules as the
// users table. Err, when set, is returned from every call.
type Store struct {
	mu     sync.Mutex
	users  map[int64]model.User
	nextID int64

	Err error
}

func NewStore() *Store {
	return &Store{users: map[int64]model.User{}, nextID: 1}
}

func (s *Store) List(context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) ExistsUsername(_ context.Context, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}

	for _, u := range s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) ExistsEmail(_ context.Context, email string, excludeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}
	return s.emailTaken(email, excludeID), nil
}

func (s *Store) emailTaken(email string, excludeID int64) bool {
	for _, u := range s.users {
		if u.Email == email && u.ID != excludeID {
			return true
		}
	}
	return false
}

func (s *Store) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	for _, u := range s.users {
		if u.Username == user.Username {
			return storage.ErrDuplicateUsername
		}
	}
	if s.emailTaken(user.Email, 0) {
		return storage.ErrDuplicateEmail
	}

	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = *user
	return nil
}

func (s *Store) Update(_ context.Context, user *model.User) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}

	if _, ok := s.users[user.ID]; !ok {
		return false, nil
	}
	if s.emailTaken(user.Email, user.ID) {
		return false, storage.ErrDuplicateEmail
	}
	s.users[user.ID] = *user
	return true, nil
}

func (s *Store) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return false, s.Err
	}

	if _, ok := s.users[id]; !ok {
		return false, nil
	}
	delete(s.users, id)
	return true, nil
}

func (s *Store) Count(context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return 0, s.Err
	}
	return len(s.users), nil
}
