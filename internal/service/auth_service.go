package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
)

// AuthService handles login, logout and resolving bearer tokens to users.
type AuthService struct {
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	tokens      *auth.TokenManager
	now         func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
	tokens *auth.TokenManager,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		tokens:      tokens,
		now:         time.Now,
	}
}

// Login verifies credentials and issues an access token backed by a session row.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req request.LoginRequest) (*model.LoginResponse, error) {
	user, err := s.userRepo.GetUserByUsername(ctx, req.Username)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		auth.CheckMissingUserPassword(req.Password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, apperrors.ErrUserInactive
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	session := &model.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessionRepo.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	logger.L.Info("user logged in", "userId", user.ID)
	return &model.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   session.ExpiresAt,
		User:        user,
	}, nil
}

// Logout revokes the session of the token with the given ID.
func (s *AuthService) Logout(ctx context.Context, tokenID string) error {
	if err := s.sessionRepo.DeleteSessionByTokenID(ctx, tokenID); err != nil {
		return err
	}
	logger.L.Info("user logged out", "tokenId", tokenID)
	return nil
}

// Authenticate resolves a bearer token to its active user.
// Fails with ErrInvalidToken, ErrSessionNotFound or ErrUserInactive.
func (s *AuthService) Authenticate(ctx context.Context, token string) (model.User, *auth.Claims, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return model.User{}, nil, err
	}

	if _, err := s.sessionRepo.GetSessionByTokenID(ctx, claims.ID, s.now().UTC()); err != nil {
		return model.User{}, nil, err
	}

	user, err := s.userRepo.GetUser(ctx, claims.Subject)
	if err != nil {
		return model.User{}, nil, err
	}
	if !user.IsActive {
		return model.User{}, nil, apperrors.ErrUserInactive
	}
	return user, claims, nil
}

// BootstrapAdmin creates an ADMIN account when the user table is empty and
// credentials are configured. It reports whether a user was created.
func (s *AuthService) BootstrapAdmin(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	count, err := s.userRepo.CountUsers(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	user, err := newUser(request.CreateUserRequest{
		Username: username,
		Role:     string(model.RoleAdmin),
		Password: password,
	})
	if err != nil {
		return false, err
	}
	if err := s.userRepo.InsertUser(ctx, user); err != nil {
		return false, fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.L.Info("bootstrap admin created", "userId", user.ID, "username", user.Username)
	return true, nil
}

// PurgeExpiredSessions removes sessions whose tokens have expired.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessionRepo.DeleteExpiredSessions(ctx, s.now().UTC())
}
