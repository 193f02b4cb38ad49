package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/Skotchmaster/storefront/internal/auth"
	"github.com/Skotchmaster/storefront/internal/events"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/pkg/hash"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/pkg/tokens"
)

const (
	MinUsernameLen = 4
	MaxUsernameLen = 150
	MinPasswordLen = 6
	// bcrypt rejects longer input.
	MaxPasswordBytes = 72
)

type AuthService struct {
	Repo   *repo.GormRepo
	Secret []byte
	TTL    time.Duration
	Events events.Publisher
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

func (s *AuthService) Register(ctx context.Context, username, password string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	username = strings.TrimSpace(username)
	ve := &ValidationError{}
	if n := utf8.RuneCountInString(username); n < MinUsernameLen || n > MaxUsernameLen {
		ve.Add("username", fmt.Sprintf("O nome de usuário deve ter entre %d e %d caracteres.", MinUsernameLen, MaxUsernameLen))
	}
	if utf8.RuneCountInString(password) < MinPasswordLen {
		ve.Add("password", fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", MinPasswordLen))
	} else if len(password) > MaxPasswordBytes {
		ve.Add("password", fmt.Sprintf("A senha deve ter no máximo %d bytes.", MaxPasswordBytes))
	}
	if !ve.Empty() {
		return nil, ve
	}

	taken, err := s.Repo.UsernameTaken(ctx, username)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "db error", "error", err)
		return nil, err
	}
	if taken {
		l.Warn("register_error", "status", 409, "reason", "user already exist")
		return nil, fmt.Errorf("%w: %w", ErrConflict, Invalid("username", "Esse nome de usuário já existe. Por favor, escolha outro."))
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{Username: username, PasswordHash: pwHash}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot create user", "error", err)
		return nil, err
	}

	events.Emit(ctx, s.Events, events.TopicUser, events.Key(user.ID), events.Event{Type: events.UserRegistered, UserID: user.ID})
	l.Info("user_registered", "user_id", user.ID)
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	user, err := s.Repo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if repo.IsNotFound(err) {
			l.Warn("login failed", "status", 401, "reason", "unknown user")
			return nil, ErrInvalidCredentials
		}
		l.Error("login failed", "status", 500, "error", err)
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login failed", "status", 401, "reason", "wrong password")
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.TTL)
	jti := uuid.NewString()
	if err := s.Repo.CreateSession(ctx, &models.Session{JTI: jti, UserID: user.ID, ExpiresAt: exp.Unix()}); err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot store session", "error", err)
		return nil, err
	}

	token, err := tokens.SignSession(tokens.NewSessionClaims(user.ID, user.Username, jti, exp), s.Secret)
	if err != nil {
		l.Error("login failed", "status", 500, "reason", "cannot sign session", "error", err)
		return nil, err
	}

	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Repo.RevokeSession(ctx, sessionID)
}

// ResolveSession turns a session cookie value into the identity it names.
// It fails for bad signatures, expired tokens and revoked or unknown sessions.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (auth.Identity, error) {
	claims, err := tokens.SessionClaimsFromToken(token, s.Secret)
	if err != nil {
		return auth.Identity{}, fmt.Errorf("session token: %w", err)
	}
	userID, err := claims.UserID()
	if err != nil {
		return auth.Identity{}, err
	}

	sess, ok, err := s.Repo.SessionActive(ctx, claims.ID, time.Now())
	if err != nil {
		return auth.Identity{}, err
	}
	if !ok || sess.UserID != userID {
		return auth.Identity{}, errors.New("session expired or revoked")
	}

	return auth.Identity{UserID: userID, Username: claims.Username, SessionID: claims.ID}, nil
}

// DeleteAccount removes the user with its cart and sessions.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uint) error {
	if err := s.Repo.DeleteUser(ctx, userID); err != nil {
		return notFound(err, "user")
	}
	events.Emit(ctx, s.Events, events.TopicUser, events.Key(userID), events.Event{Type: events.UserDeleted, UserID: userID})
	logging.FromContext(ctx).Info("user_deleted", "user_id", userID)
	return nil
}
