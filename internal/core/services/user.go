package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/contracts"
	"github.com/sidharthhcj/Real-time-chat-Call-application/internal/core/domain"
)

// UserService owns the account lifecycle and the user directory.
type UserService struct {
	log      *slog.Logger
	repo     domain.UserRepository
	mirror   contracts.PresenceMirror
	txRunner contracts.TxRunner
}

func NewUserService(
	log *slog.Logger,
	repo domain.UserRepository,
	mirror contracts.PresenceMirror,
	txRunner contracts.TxRunner,
) *UserService {
	return &UserService{
		log:      log,
		repo:     repo,
		mirror:   mirror,
		txRunner: txRunner,
	}
}

// Signup creates a new account with a bcrypt-hashed password.
func (s *UserService) Signup(ctx context.Context, username, email, password string) (*domain.User, error) {
	if username == "" || email == "" || password == "" {
		return nil, errors.New("username, email and password are required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}
	if err := s.txRunner.WithTx(ctx, func(txCtx context.Context) error {
		return s.repo.CreateUser(txCtx, user)
	}); err != nil {
		s.log.ErrorContext(ctx, "user - signup - create user failed", "email", email, "err", err)
		return nil, err
	}
	s.log.InfoContext(ctx, "user - signup - user created", "user_id", user.ID.String())
	return user, nil
}

// Login checks the password against the stored hash.
func (s *UserService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		s.log.ErrorContext(ctx, "user - login - lookup failed", "email", email, "err", err)
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Profile returns the caller's own directory entry.
func (s *UserService) Profile(ctx context.Context, callerID string) (*domain.PublicUser, error) {
	id, err := uuid.Parse(callerID)
	if err != nil {
		return nil, domain.ErrInvalidUserID
	}
	u, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			s.log.ErrorContext(ctx, "user - profile - lookup failed", "user_id", callerID, "err", err)
		}
		return nil, err
	}
	online, err := s.mirror.Online(ctx, u.ID.String())
	if err != nil {
		online = false
	}
	return &domain.PublicUser{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
		Online:   online,
	}, nil
}

// Directory lists every other user, annotated with the online flag from the
// presence mirror. A mirror read failure degrades to offline rather than
// failing the listing.
func (s *UserService) Directory(ctx context.Context, callerID string) ([]domain.PublicUser, error) {
	caller, err := uuid.Parse(callerID)
	if err != nil {
		return nil, domain.ErrInvalidUserID
	}
	users, err := s.repo.ListUsers(ctx, caller)
	if err != nil {
		s.log.ErrorContext(ctx, "user - directory - list failed", "err", err)
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		online, err := s.mirror.Online(ctx, u.ID.String())
		if err != nil {
			online = false
		}
		out = append(out, domain.PublicUser{
			ID:       u.ID.String(),
			Username: u.Username,
			Email:    u.Email,
			Online:   online,
		})
	}
	return out, nil
}
