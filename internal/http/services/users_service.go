package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dropDatabas3/comandero/internal/auth"
	"github.com/dropDatabas3/comandero/internal/domain/repository"
	"github.com/dropDatabas3/comandero/internal/domain/types"
	"github.com/dropDatabas3/comandero/internal/http/dto"
	"github.com/dropDatabas3/comandero/internal/observability/logger"
	"github.com/dropDatabas3/comandero/internal/security/password"
)

// =================================================================================
// USERS SERVICE (admin)
// =================================================================================

var (
	ErrEmailTaken   = fmt.Errorf("email already registered")
	ErrUserNotFound = fmt.Errorf("user not found")
)

// UsersService es el CRUD de usuarios. Sólo accesible para admins; el
// gating por rol vive en el router, no acá.
type UsersService interface {
	List(ctx context.Context, page repository.Page) ([]types.User, error)
	Get(ctx context.Context, id string) (*types.User, error)
	Create(ctx context.Context, in dto.CreateUserRequest) (*types.User, error)
	Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*types.User, error)
	Delete(ctx context.Context, id string) error
}

type UsersDeps struct {
	Users repository.UserRepository
}

type usersService struct {
	deps UsersDeps
}

func NewUsersService(deps UsersDeps) UsersService {
	return &usersService{deps: deps}
}

func (s *usersService) List(ctx context.Context, page repository.Page) ([]types.User, error) {
	return s.deps.Users.List(ctx, page)
}

func (s *usersService) Get(ctx context.Context, id string) (*types.User, error) {
	u, err := s.deps.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *usersService) Create(ctx context.Context, in dto.CreateUserRequest) (*types.User, error) {
	log := logger.From(ctx).With(
		logger.Layer("service"),
		logger.Component("users"),
		logger.Op("Create"),
	)

	// Paso 0: Normalización y validación
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if in.Email == "" || in.Name == "" || in.Password == "" {
		return nil, ErrMissingFields
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrWeakPassword
	}

	// Paso 1: Email único
	if _, err := s.deps.Users.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	}

	// Paso 2: Roles. Vacío = USER; se normalizan a mayúsculas.
	roles := in.Roles
	if len(roles) == 0 {
		roles = []string{auth.RoleUser}
	}
	for i, r := range roles {
		roles[i] = strings.ToUpper(strings.TrimSpace(r))
	}

	// Paso 3: Hash y alta
	hash, err := password.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &types.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := s.deps.Users.Create(ctx, u); err != nil {
		log.Error("user create failed", logger.Err(err))
		return nil, err
	}

	log.Info("user created", logger.UserEmail(u.Email), logger.Roles(u.Roles))
	return u, nil
}

func (s *usersService) Update(ctx context.Context, id string, in dto.UpdateUserRequest) (*types.User, error) {
	u, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		u.Name = strings.TrimSpace(*in.Name)
	}
	if in.Roles != nil {
		roles := *in.Roles
		if len(roles) == 0 {
			roles = []string{auth.RoleUser}
		}
		for i, r := range roles {
			roles[i] = strings.ToUpper(strings.TrimSpace(r))
		}
		u.Roles = roles
	}

	if err := s.deps.Users.Update(ctx, u); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *usersService) Delete(ctx context.Context, id string) error {
	if err := s.deps.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
