package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prof-ramos/asof-site/internal/domain"
	"github.com/prof-ramos/asof-site/internal/ports"
)

// Login authenticates a backoffice user. Bad passwords count against the
// user row; reaching the threshold locks the account for LockoutDuration.
func (s *Service) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	email, err := normalizeEmail(req.Email)
	if err != nil {
		return LoginResponse{}, err
	}
	if req.Password == "" {
		return LoginResponse{}, fmt.Errorf("%w: password is required", domain.ErrInvalidInput)
	}

	if err := s.enforceLoginRateLimit(ctx, req.IPAddress); err != nil {
		return LoginResponse{}, err
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return LoginResponse{}, fmt.Errorf("load user: %w", err)
		}
		s.recordAttempt(ctx, nil, email, req, domain.LoginStatusFailed, "USER_NOT_FOUND")
		return LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		s.recordAttempt(ctx, &user.UserID, email, req, domain.LoginStatusFailed, "ACCOUNT_INACTIVE")
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	now := s.nowFn()
	if user.IsLocked(now) {
		s.recordAttempt(ctx, &user.UserID, email, req, domain.LoginStatusFailed, "ACCOUNT_LOCKED")
		slog.Default().WarnContext(ctx, "account lockout active",
			"service", serviceName,
			"module", "application",
			"layer", "application",
			"operation", "login",
			"outcome", "blocked",
			"user_id", user.UserID,
			"locked_until", user.LockedUntil,
		)
		return LoginResponse{}, domain.ErrAccountLocked
	}

	if err := s.hasher.Compare(user.PasswordHash, req.Password); err != nil {
		s.recordAttempt(ctx, &user.UserID, email, req, domain.LoginStatusFailed, "INVALID_PASSWORD")
		user.RegisterFailure(now, s.cfg.FailedLoginThreshold, s.cfg.LockoutDuration)
		if err := s.users.UpdateLoginState(ctx, user); err != nil {
			return LoginResponse{}, fmt.Errorf("persist lockout state: %w", err)
		}
		if user.IsLocked(now) {
			slog.Default().WarnContext(ctx, "account lockout triggered",
				"service", serviceName,
				"module", "application",
				"layer", "application",
				"operation", "login",
				"outcome", "blocked",
				"user_id", user.UserID,
				"locked_until", user.LockedUntil,
			)
			s.enqueueEvent(ctx, EventTypeUserLocked, user.UserID.String(), map[string]any{
				"user_id":      user.UserID,
				"locked_until": user.LockedUntil,
				"ip_address":   req.IPAddress,
			})
			return LoginResponse{}, domain.ErrAccountLocked
		}
		return LoginResponse{}, domain.ErrInvalidCredentials
	}

	user.ResetFailures()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		return LoginResponse{}, fmt.Errorf("persist login state: %w", err)
	}
	if s.lockouts != nil && req.IPAddress != "" {
		_ = s.lockouts.Clear(ctx, loginIPKey(req.IPAddress))
	}

	session, err := s.sessions.Create(ctx, ports.SessionCreateParams{
		UserID:         user.UserID,
		IPAddress:      req.IPAddress,
		UserAgent:      req.UserAgent,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
		LastActivityAt: now,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("create session: %w", err)
	}
	s.recordAttempt(ctx, &user.UserID, email, req, domain.LoginStatusSuccess, "")

	expiresAt := now.Add(s.cfg.TokenTTL)
	if session.ExpiresAt.Before(expiresAt) {
		expiresAt = session.ExpiresAt
	}
	token, err := s.tokenSigner.Sign(ports.AuthClaims{
		UserID:    user.UserID,
		Email:     user.Email,
		Role:      string(user.Role),
		SessionID: session.SessionID,
		IssuedAt:  now,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("sign token: %w", err)
	}

	return LoginResponse{
		Token:     token,
		SessionID: session.SessionID,
		ExpiresAt: expiresAt,
		ExpiresIn: int64(expiresAt.Sub(now).Seconds()),
		User:      toUserView(user),
	}, nil
}

// ValidateToken resolves a bearer/cookie token into an Actor, checking the
// revocation marker first and the session row second.
func (s *Service) ValidateToken(ctx context.Context, token string) (Actor, error) {
	claims, err := s.tokenSigner.ParseAndValidate(strings.TrimSpace(token))
	if err != nil {
		return Actor{}, domain.ErrUnauthorized
	}
	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.SessionID)
		if err == nil && revoked {
			return Actor{}, domain.ErrSessionRevoked
		}
	}
	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Actor{}, domain.ErrUnauthorized
		}
		return Actor{}, err
	}
	now := s.nowFn()
	if session.RevokedAt != nil {
		return Actor{}, domain.ErrSessionRevoked
	}
	if !session.ExpiresAt.After(now) {
		return Actor{}, domain.ErrSessionExpired
	}
	role, err := domain.ParseRole(claims.Role)
	if err != nil {
		return Actor{}, domain.ErrUnauthorized
	}
	return Actor{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Role:      role,
		SessionID: claims.SessionID,
	}, nil
}

// Logout revokes the caller's session.
func (s *Service) Logout(ctx context.Context, actor Actor) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	now := s.nowFn()
	session, err := s.sessions.GetByID(ctx, actor.SessionID)
	if err != nil {
		return err
	}
	if err := s.sessions.RevokeByID(ctx, actor.SessionID, now); err != nil {
		return err
	}
	s.markRevoked(ctx, actor.SessionID, session.ExpiresAt)
	return nil
}

// Me returns the caller's account.
func (s *Service) Me(ctx context.Context, actor Actor) (UserView, error) {
	if err := requireActor(actor); err != nil {
		return UserView{}, err
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return UserView{}, err
	}
	return toUserView(user), nil
}

// ChangePassword verifies the current password and revokes every other session.
func (s *Service) ChangePassword(ctx context.Context, actor Actor, req ChangePasswordRequest) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	if err := domain.ValidatePassword(req.NewPassword); err != nil {
		return err
	}
	user, err := s.users.GetByID(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return domain.ErrInvalidCredentials
	}
	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	now := s.nowFn()
	if err := s.users.UpdatePassword(ctx, user.UserID, hash, now); err != nil {
		return err
	}
	except := actor.SessionID
	revoked, err := s.sessions.RevokeAllByUser(ctx, user.UserID, &except, now)
	if err != nil {
		return err
	}
	for _, id := range revoked {
		s.markRevoked(ctx, id, now.Add(s.cfg.SessionTTL))
	}
	return nil
}

// BootstrapAdmin creates the first admin account when the users table is empty.
// It returns false when accounts already exist.
func (s *Service) BootstrapAdmin(ctx context.Context, email, password, name string) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	if name == "" {
		name = "Administrador"
	}
	if _, err := s.createUser(ctx, CreateUserRequest{
		Email:    email,
		Name:     name,
		Password: password,
		Role:     string(domain.RoleAdmin),
	}); err != nil {
		return false, err
	}
	s.logInfo(ctx, "bootstrap_admin", "bootstrap admin created", "email", strings.ToLower(strings.TrimSpace(email)))
	return true, nil
}

func (s *Service) enforceLoginRateLimit(ctx context.Context, ip string) error {
	if s.lockouts == nil || s.cfg.LoginIPThreshold <= 0 || s.cfg.LoginIPWindow <= 0 {
		return nil
	}
	if strings.TrimSpace(ip) == "" {
		return nil
	}
	key := loginIPKey(ip)
	now := s.nowFn()
	state, err := s.lockouts.Get(ctx, key)
	if err == nil && state.LockedUntil != nil && state.LockedUntil.After(now) {
		return domain.ErrRateLimited
	}
	updated, err := s.lockouts.RecordFailure(ctx, key, now, s.cfg.LoginIPThreshold, s.cfg.LoginIPWindow)
	if err != nil {
		s.logWarn(ctx, "rate_limit", "rate-limit state unavailable", err, "key", key)
		return nil
	}
	if updated.LockedUntil != nil && updated.LockedUntil.After(now) {
		return domain.ErrRateLimited
	}
	return nil
}

func (s *Service) recordAttempt(ctx context.Context, userID *uuid.UUID, email string, req LoginRequest, status, reason string) {
	if s.loginAttempts == nil {
		return
	}
	if err := s.loginAttempts.Insert(ctx, domain.LoginAttempt{
		UserID:        userID,
		Email:         email,
		AttemptAt:     s.nowFn(),
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
		Status:        status,
		FailureReason: reason,
	}); err != nil {
		s.logWarn(ctx, "record_login_attempt", "failed to persist login attempt", err, "reason", reason)
	}
}

func (s *Service) markRevoked(ctx context.Context, sessionID uuid.UUID, expiresAt time.Time) {
	if s.revocations == nil {
		return
	}
	if err := s.revocations.MarkRevoked(ctx, sessionID, expiresAt); err != nil {
		s.logWarn(ctx, "mark_revoked", "session revocation marker failed", err, "session_id", sessionID)
	}
}

func loginIPKey(ip string) string { return "login-ip:" + strings.TrimSpace(ip) }

func toUserView(u domain.User) UserView {
	return UserView{
		UserID:      u.UserID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        string(u.Role),
		IsActive:    u.IsActive,
		LockedUntil: u.LockedUntil,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
