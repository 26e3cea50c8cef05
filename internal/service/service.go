// Package service implements the account store: registration and user lookups
// on top of a pluggable storage backend.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/patric-chuzhbe/arrowflix/internal/apperror"
	"github.com/patric-chuzhbe/arrowflix/internal/logger"
	"github.com/patric-chuzhbe/arrowflix/internal/models"
	"github.com/patric-chuzhbe/arrowflix/internal/passwords"
	"github.com/patric-chuzhbe/arrowflix/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) error
	GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
}

type pinger interface {
	Ping(ctx context.Context) error
}

type storage interface {
	userKeeper
	pinger
}

type authRecorder interface {
	AuthAttempt(operation, outcome string)
}

// Client-facing messages.
const (
	MsgCredentialsRequired = "Email and password required"
	MsgEmailInUse          = "Email already in use"
	MsgPasswordTooLong     = "Password must be at most 72 bytes"
)

type Service struct {
	db       storage
	hasher   passwords.Hasher
	recorder authRecorder
	now      func() time.Time
}

type Option func(*Service)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithRecorder attaches a metrics recorder for registration outcomes.
func WithRecorder(recorder authRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

func New(db storage, hasher passwords.Hasher, options ...Option) *Service {
	s := &Service{
		db:       db,
		hasher:   hasher,
		recorder: nopRecorder{},
		now:      time.Now,
	}
	for _, option := range options {
		option(s)
	}

	return s
}

// Register creates an account. The email is normalized before the
// uniqueness check; the password is stored only as a bcrypt digest.
func (s *Service) Register(ctx context.Context, name, email, password string) (*user.User, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		s.recorder.AuthAttempt("register", "invalid")
		return nil, apperror.NewValidation(MsgCredentialsRequired)
	}

	_, found, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		s.recorder.AuthAttempt("register", "error")
		return nil, err
	}
	if found {
		s.recorder.AuthAttempt("register", "conflict")
		return nil, apperror.NewConflict(MsgEmailInUse)
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, passwords.ErrPasswordTooLong) {
			s.recorder.AuthAttempt("register", "invalid")
			return nil, apperror.NewValidation(MsgPasswordTooLong)
		}
		s.recorder.AuthAttempt("register", "error")
		return nil, err
	}

	usr := &user.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.db.CreateUser(ctx, usr); err != nil {
		if errors.Is(err, models.ErrUserAlreadyExists) {
			s.recorder.AuthAttempt("register", "conflict")
			return nil, apperror.NewConflict(MsgEmailInUse)
		}
		s.recorder.AuthAttempt("register", "error")
		return nil, err
	}

	logger.Log.Infow("user registered", "user_id", usr.ID, zap.String("email", usr.Email))
	s.recorder.AuthAttempt("register", "success")

	return usr, nil
}

// FindByEmail looks up an account case-insensitively.
func (s *Service) FindByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	return s.db.GetUserByEmail(ctx, user.NormalizeEmail(email))
}

func (s *Service) FindByID(ctx context.Context, userID string) (*user.User, bool, error) {
	return s.db.GetUserByID(ctx, userID)
}

// Ping checks the health of the storage layer.
func (s *Service) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

type nopRecorder struct{}

func (nopRecorder) AuthAttempt(string, string) {}
