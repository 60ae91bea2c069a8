package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"carnival-tracker/internal/logger"
	"carnival-tracker/internal/models"
)

// ErrInvalidCredentials is deliberately generic: callers must not reveal
// whether the username or the password was wrong.
var ErrInvalidCredentials = errors.New("invalid username or password")

type UserLookup interface {
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
}

type Service struct {
	Users UserLookup
	Store Store
	Log   *logger.Logger
}

func NewService(users UserLookup, store Store, log *logger.Logger) *Service {
	return &Service{Users: users, Store: store, Log: log}
}

// Login verifies the credentials and creates a server-side session. The role
// is resolved once here and carried in the session for the rest of its life.
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.Users.GetUserByUsername(ctx, username)
	if err != nil {
		if s.Log != nil {
			s.Log.LogAuth("LOGIN_FAILED", username, "unknown user")
		}
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		if s.Log != nil {
			s.Log.LogAuth("LOGIN_FAILED", username, "bad password")
		}
		return nil, ErrInvalidCredentials
	}

	sess, err := s.Store.Create(ctx, user.Username, user.ResolveRole())
	if err != nil {
		return nil, err
	}
	if s.Log != nil {
		s.Log.LogAuth("LOGIN", username, "session created")
	}
	return sess, nil
}

// Logout drops the server-side session. Unknown IDs are not an error.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	return s.Store.Delete(ctx, sessionID)
}
