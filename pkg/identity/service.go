package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/authgate/authgate/pkg/crypto"
	"github.com/authgate/authgate/pkg/storage"
)

var (
	ErrNilUserStore      = errors.New("identity: user store is required")
	ErrNilHasher         = errors.New("identity: hasher is required")
	ErrEmptyCredential   = errors.New("identity: email and password are required")
	ErrEmailTaken        = errors.New("identity: email is already registered")
	ErrUserNotFound      = errors.New("identity: user not found")
	ErrInvalidResetToken = errors.New("identity: invalid reset token")
)

// Service manages user accounts over a storage.UserStore and implements
// Directory for the authenticators.
type Service struct {
	users  storage.UserStore
	hasher crypto.Hasher
	logger logr.Logger
}

var _ Directory = (*Service)(nil)

func NewService(users storage.UserStore, hasher crypto.Hasher, logger logr.Logger) (*Service, error) {
	if users == nil {
		return nil, ErrNilUserStore
	}
	if hasher == nil {
		return nil, ErrNilHasher
	}
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	return &Service{
		users:  users,
		hasher: hasher,
		logger: logger,
	}, nil
}

// Register creates a new user with a hashed password. The plaintext is
// never stored.
func (s *Service) Register(ctx context.Context, email string, password string) (User, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return User{}, ErrEmptyCredential
	}

	_, err := s.users.GetUserByEmail(ctx, email)
	if err == nil {
		return User{}, ErrEmailTaken
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return User{}, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return User{}, err
	}

	record := storage.UserRecord{
		ID:           uuid.NewString(),
		DateAdded:    time.Now().UTC(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.PutUser(ctx, record); err != nil {
		return User{}, err
	}

	s.logger.V(1).Info("registered user", "user_id", record.ID)
	return User{ID: record.ID, Email: record.Email}, nil
}

// Unregister deletes the user with the given email.
func (s *Service) Unregister(ctx context.Context, email string) error {
	record, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	return s.users.DeleteUser(ctx, record.ID)
}

func (s *Service) FindUserByEmail(ctx context.Context, email string) (User, bool, error) {
	record, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return User{ID: record.ID, Email: record.Email}, true, nil
}

func (s *Service) FindUserByID(ctx context.Context, id string) (User, bool, error) {
	if id == "" {
		return User{}, false, nil
	}

	record, err := s.users.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return User{ID: record.ID, Email: record.Email}, true, nil
}

// VerifyPassword checks the plaintext against the stored hash. A malformed
// stored hash counts as a failed verification, not an error.
func (s *Service) VerifyPassword(ctx context.Context, user User, password string) (bool, error) {
	if user.ID == "" || password == "" {
		return false, nil
	}

	record, err := s.users.GetUser(ctx, user.ID)
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	ok, err := s.hasher.Verify(password, record.PasswordHash)
	if err != nil {
		s.logger.V(1).Info("password verification rejected stored hash", "user_id", user.ID)
		return false, nil
	}
	return ok, nil
}

// CreateResetToken issues a single-use password reset token for the user
// with the given email.
func (s *Service) CreateResetToken(ctx context.Context, email string) (string, error) {
	record, err := s.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", err
	}

	token := uuid.NewString()
	record.ResetToken = &token
	if err := s.users.PutUser(ctx, record); err != nil {
		return "", err
	}

	s.logger.V(1).Info("issued password reset token", "user_id", record.ID)
	return token, nil
}

// ResetPassword redeems a reset token, replacing the password hash and
// invalidating the token.
func (s *Service) ResetPassword(ctx context.Context, resetToken string, password string) error {
	if resetToken == "" || password == "" {
		return ErrInvalidResetToken
	}

	record, err := s.users.GetUserByResetToken(ctx, resetToken)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrInvalidResetToken
	}
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return err
	}

	record.PasswordHash = hash
	record.ResetToken = nil
	if err := s.users.PutUser(ctx, record); err != nil {
		return err
	}

	s.logger.V(1).Info("password reset", "user_id", record.ID)
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
