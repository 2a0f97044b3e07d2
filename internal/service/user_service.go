// Package service holds the user management rules that sit between the
// HTTP handlers and the store.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/user-management-api/internal/events"
	"github.com/user-management-api/internal/metrics"
	"github.com/user-management-api/internal/model"
	"github.com/user-management-api/internal/password"
	"github.com/user-management-api/internal/storage"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")
)

// Administrator seeded into an empty store.
const (
	AdminUsername  = "admin"
	AdminEmail     = "admin@example.com"
	AdminFirstName = "Admin"
	AdminLastName  = "User"
)

// UserStore is implemented by storage.UserRepository. Finders return
// nil, nil when nothing matches.
type UserStore interface {
	List(ctx context.Context) ([]model.User, error)
	FindByID(ctx context.Context, id int64) (*model.User, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	ExistsEmail(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int, error)
}

// UserService implements user management on top of a UserStore.
type UserService struct {
	store     UserStore
	hasher    password.Hasher
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewUserService creates a new user service
func NewUserService(store UserStore, hasher password.Hasher, publisher events.Publisher, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		hasher:    hasher,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "users")),
		now:       time.Now,
	}
}

func (s *UserService) List(ctx context.Context) ([]model.User, error) {
	return s.store.List(ctx)
}

// Get returns ErrUserNotFound when no user has the id.
func (s *UserService) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// Create hashes the password and stores a new user.
func (s *UserService) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	taken, err := s.store.ExistsUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	taken, err = s.store.ExistsEmail(ctx, req.Email, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	digest, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = model.UserRoleUser
	}

	user := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         role,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, mapDuplicate(err)
	}

	s.emit(ctx, events.UserCreated, user.ID, user)
	return user, nil
}

// Update replaces email, names and role. The username never changes and the
// digest changes only when a new password is given.
func (s *UserService) Update(ctx context.Context, id int64, req *model.UpdateUserRequest) (*model.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	taken, err := s.store.ExistsEmail(ctx, req.Email, id)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}

	user.Email = req.Email
	user.FirstName = req.FirstName
	user.LastName = req.LastName
	user.Role = req.Role
	if req.Password != "" {
		digest, err := s.hasher.Hash(req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		user.PasswordHash = digest
	}
	now := s.now().UTC()
	user.UpdatedAt = &now

	ok, err := s.store.Update(ctx, user)
	if err != nil {
		return nil, mapDuplicate(err)
	}
	if !ok {
		return nil, ErrUserNotFound
	}

	s.emit(ctx, events.UserUpdated, user.ID, user)
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	ok, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotFound
	}

	s.emit(ctx, events.UserDeleted, id, nil)
	return nil
}

// SeedAdmin creates the administrator when the store is empty. It reports
// whether a user was created.
func (s *UserService) SeedAdmin(ctx context.Context, secret string) (bool, error) {
	n, err := s.store.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	digest, err := s.hasher.Hash(secret)
	if err != nil {
		return false, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Username:     AdminUsername,
		Email:        AdminEmail,
		FirstName:    AdminFirstName,
		LastName:     AdminLastName,
		Role:         model.UserRoleAdmin,
		PasswordHash: digest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.Create(ctx, admin); err != nil {
		// another instance seeded first
		if errors.Is(err, storage.ErrDuplicateUsername) || errors.Is(err, storage.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("failed to seed admin: %w", err)
	}

	s.logger.InfoContext(ctx, "seeded administrator", slog.Int64("id", admin.ID), slog.String("username", admin.Username))
	return true, nil
}

func (s *UserService) emit(ctx context.Context, typ events.EventType, id int64, user *model.User) {
	metrics.UserMutations.WithLabelValues(string(typ)).Inc()

	if err := s.publisher.Publish(ctx, events.NewUserEvent(typ, id, user, s.now().UTC())); err != nil {
		s.logger.WarnContext(ctx, "failed to publish user event",
			slog.String("type", string(typ)),
			slog.Int64("user_id", id),
			slog.Any("error", err),
		)
	}
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, storage.ErrDuplicateUsername):
		return ErrUsernameTaken
	case errors.Is(err, storage.ErrDuplicateEmail):
		return ErrEmailTaken
	}
	return err
}
