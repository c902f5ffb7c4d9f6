package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const minPasswordLength = 10

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string, ttl time.Duration) *Service {
	return &Service{store: store, secret: secret, ttl: ttl}
}

// Login checks credentials and issues a bearer token. Unknown emails and bad
// passwords return the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, User, error) {
	user, err := s.store.FindActiveUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, ErrUserNotFound) {
		return "", User{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", User{}, err
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return "", User{}, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.secret, Claims{UserID: user.ID, Role: user.Role, Email: user.Email}, s.ttl)
	if err != nil {
		return "", User{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("last login update failed", "userId", user.ID, "err", err)
	}
	return token, user, nil
}

func (s *Service) CreateUser(ctx context.Context, in NewUser) (User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := strings.TrimSpace(in.Role)
	if role == "" {
		role = RoleTechnician
	}
	if !ValidRole(role) {
		return User{}, ErrInvalidRole
	}
	if len(in.Password) < minPasswordLength {
		return User{}, ErrWeakPassword
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return User{}, err
	}
	user := User{Email: email, Name: strings.TrimSpace(in.Name), Role: role, Active: true, PasswordHash: hash}
	id, err := s.store.CreateUser(ctx, user)
	if err != nil {
		return User{}, err
	}
	user.ID = id
	return user, nil
}

// EnsureUser creates the account when the email is not yet registered.
func (s *Service) EnsureUser(ctx context.Context, in NewUser) (bool, error) {
	if _, err := s.CreateUser(ctx, in); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.store.GetUser(ctx, id)
}

func (s *Service) ListUsers(ctx context.Context, role string) ([]User, error) {
	return s.store.ListUsers(ctx, role)
}

func (s *Service) SetActive(ctx context.Context, id string, active bool) error {
	return s.store.SetActive(ctx, id, active)
}

func (s *Service) ResetPassword(ctx context.Context, id, password string) error {
	if len(password) < minPasswordLength {
		return ErrWeakPassword
	}
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.UpdatePassword(ctx, id, hash)
}
