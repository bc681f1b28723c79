package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sidesales/sidesales-backend/internal/api/request"
	"github.com/sidesales/sidesales-backend/internal/apperrors"
	"github.com/sidesales/sidesales-backend/internal/auth"
	"github.com/sidesales/sidesales-backend/internal/logger"
	"github.com/sidesales/sidesales-backend/internal/model"
	"github.com/sidesales/sidesales-backend/internal/repository"
	"github.com/sidesales/sidesales-backend/internal/validation"
)

// UserService manages user accounts. Users are deactivated, never deleted,
// because ledger rows keep referencing them.
type UserService struct {
	db          *sql.DB
	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
}

// NewUserService creates a new UserService with the provided repository dependencies.
func NewUserService(
	db *sql.DB,
	userRepo *repository.UserRepository,
	sessionRepo *repository.SessionRepository,
) *UserService {
	return &UserService{
		db:          db,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
	}
}

// ListUsers returns all users ordered by username, inactive ones included when asked.
func (s *UserService) ListUsers(ctx context.Context, actor auth.Actor, includeInactive bool) ([]model.User, error) {
	if err := auth.Require(actor, auth.ActionManageUsers); err != nil {
		return nil, err
	}
	return s.userRepo.ListUsers(ctx, includeInactive)
}

// GetUser retrieves a single user.
func (s *UserService) GetUser(ctx context.Context, actor auth.Actor, userID string) (model.User, error) {
	if err := auth.Require(actor, auth.ActionManageUsers); err != nil {
		return model.User{}, err
	}
	return s.userRepo.GetUser(ctx, userID)
}

// CreateUser creates a user with a bcrypt-hashed password.
// Returns ErrDuplicateEntry when the username is taken.
func (s *UserService) CreateUser(ctx context.Context, actor auth.Actor, req request.CreateUserRequest) (*model.User, error) {
	if err := auth.Require(actor, auth.ActionManageUsers); err != nil {
		return nil, err
	}

	user, err := newUser(req)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.InsertUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.L.Info("user created", "userId", user.ID, "role", user.Role, "actorId", actor.UserID)
	return user, nil
}

// UpdateUser applies the provided profile fields. Deactivating a user revokes
// every session it holds. Demoting or deactivating the only active admin
// returns ErrLastAdmin.
func (s *UserService) UpdateUser(ctx context.Context, actor auth.Actor, userID string, req request.UpdateUserRequest) (*model.User, error) {
	if err := auth.Require(actor, auth.ActionManageUsers); err != nil {
		return nil, err
	}

	var user model.User
	err := withTx(ctx, s.db, func(tx *sql.Tx) error {
		userRepo := s.userRepo.WithTx(tx)

		var err error
		user, err = userRepo.GetUser(ctx, userID)
		if err != nil {
			return err
		}
		wasAdmin := user.IsActive && user.Role == model.RoleAdmin

		if req.Email != nil {
			user.Email = validation.Sanitize(*req.Email)
		}
		if req.FirstName != nil {
			user.FirstName = validation.Sanitize(*req.FirstName)
		}
		if req.LastName != nil {
			user.LastName = validation.Sanitize(*req.LastName)
		}
		if req.Role != nil {
			user.Role = model.Role(*req.Role)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}

		if wasAdmin && !(user.IsActive && user.Role == model.RoleAdmin) {
			admins, err := userRepo.CountActiveAdmins(ctx)
			if err != nil {
				return err
			}
			if admins <= 1 {
				return apperrors.ErrLastAdmin
			}
		}
		user.UpdatedAt = time.Now().UTC()

		return userRepo.UpdateUser(ctx, &user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if !user.IsActive {
		revoked, err := s.sessionRepo.DeleteSessionsForUser(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		logger.L.Info("user deactivated", "userId", user.ID, "revokedSessions", revoked, "actorId", actor.UserID)
	} else {
		logger.L.Info("user updated", "userId", user.ID, "actorId", actor.UserID)
	}
	return &user, nil
}

// SetPassword replaces a user's password and revokes its sessions.
func (s *UserService) SetPassword(ctx context.Context, actor auth.Actor, userID string, req request.SetPasswordRequest) error {
	if err := auth.Require(actor, auth.ActionManageUsers); err != nil {
		return err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePasswordHash(ctx, userID, hash, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to set password: %w", err)
	}
	if _, err := s.sessionRepo.DeleteSessionsForUser(ctx, userID); err != nil {
		return err
	}

	logger.L.Info("password changed", "userId", userID, "actorId", actor.UserID)
	return nil
}

// newUser builds a user record from a validated create request.
func newUser(req request.CreateUserRequest) (*model.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	role := model.RoleManager
	if req.Role != "" {
		role = model.Role(req.Role)
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now().UTC()
	return &model.User{
		ID:           uuid.New().String(),
		Username:     validation.Sanitize(req.Username),
		Email:        validation.Sanitize(req.Email),
		FirstName:    validation.Sanitize(req.FirstName),
		LastName:     validation.Sanitize(req.LastName),
		Role:         role,
		IsActive:     active,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}
