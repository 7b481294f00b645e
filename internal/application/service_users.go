package application

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
)

// CreateUser adds a backoffice account. Admin only.
func (s *Service) CreateUser(ctx context.Context, actor Actor, req CreateUserRequest) (UserView, error) {
	if err := requireAdmin(actor); err != nil {
		return UserView{}, err
	}
	user, err := s.createUser(ctx, req)
	if err != nil {
		return UserView{}, err
	}
	s.logInfo(ctx, "create_user", "user created", "user_id", user.UserID, "created_by", actor.UserID)
	return toUserView(user), nil
}

func (s *Service) createUser(ctx context.Context, req CreateUserRequest) (domain.User, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return domain.User{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.User{}, fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	role, err := domain.ParseRole(req.Role)
	if err != nil {
		return domain.User{}, err
	}
	if err := domain.ValidatePassword(req.Password); err != nil {
		return domain.User{}, err
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return domain.User{}, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := s.nowFn()
	return s.users.Create(ctx, domain.User{
		UserID:       uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

func (s *Service) ListUsers(ctx context.Context, actor Actor, page, pageSize int) (Page[UserView], error) {
	if err := requireAdmin(actor); err != nil {
		return Page[UserView]{}, err
	}
	page, pageSize = normalizePaging(page, pageSize, 50)
	users, total, err := s.users.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return Page[UserView]{}, err
	}
	items := make([]UserView, 0, len(users))
	for _, u := range users {
		items = append(items, toUserView(u))
	}
	return newPage(items, page, pageSize, total), nil
}

// SetUserActive enables or disables an account. Disabling revokes its sessions.
func (s *Service) SetUserActive(ctx context.Context, actor Actor, userID uuid.UUID, active bool) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if userID == actor.UserID && !active {
		return fmt.Errorf("%w: cannot deactivate your own account", domain.ErrInvalidInput)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}
	now := s.nowFn()
	if err := s.users.SetActive(ctx, userID, active, now); err != nil {
		return err
	}
	if !active {
		revoked, err := s.sessions.RevokeAllByUser(ctx, userID, nil, now)
		if err != nil {
			return err
		}
		for _, id := range revoked {
			s.markRevoked(ctx, id, now.Add(s.cfg.SessionTTL))
		}
	}
	s.logInfo(ctx, "set_user_active", "user activation changed", "user_id", userID, "active", active)
	return nil
}

// UnlockUser clears the failed-login counter and lockout timestamp.
func (s *Service) UnlockUser(ctx context.Context, actor Actor, userID uuid.UUID) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	user.ResetFailures()
	user.UpdatedAt = s.nowFn()
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return err
	}
	s.logInfo(ctx, "unlock_user", "user unlocked", "user_id", userID, "unlocked_by", actor.UserID)
	return nil
}
