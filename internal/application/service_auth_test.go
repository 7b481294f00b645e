package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prof-ramos/asof-site/internal/application"
	"github.com/prof-ramos/asof-site/internal/domain"
)

func TestLoginValidateLogout(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	user := f.seedUser("editor@asof.org.br", domain.RoleEditor)

	res, err := f.service.Login(ctx, application.LoginRequest{
		Email:     " Editor@ASOF.org.br ",
		Password:  "Senha123",
		IPAddress: "10.0.0.1",
		UserAgent: "unit-test",
	})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" || res.User.UserID != user.UserID {
		t.Fatalf("unexpected login response: %+v", res)
	}
	if res.ExpiresIn != int64(time.Hour.Seconds()) {
		t.Fatalf("expected token ttl of one hour, got %d", res.ExpiresIn)
	}

	actor, err := f.service.ValidateToken(ctx, res.Token)
	if err != nil {
		t.Fatalf("validate token failed: %v", err)
	}
	if actor.UserID != user.UserID || actor.SessionID != res.SessionID || actor.Role != domain.RoleEditor {
		t.Fatalf("unexpected actor: %+v", actor)
	}

	stored, _ := f.users.GetByID(ctx, user.UserID)
	if stored.LastLoginAt == nil {
		t.Fatalf("expected last login timestamp on user row")
	}

	if err := f.service.Logout(ctx, actor); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, err := f.service.ValidateToken(ctx, res.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected revoked session after logout, got %v", err)
	}
}

func TestLoginLocksAccountAfterThreshold(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	user := f.seedUser("admin@asof.org.br", domain.RoleAdmin)
	bad := application.LoginRequest{Email: user.Email, Password: "errada123", IPAddress: "10.0.0.2"}

	for i := 0; i < 2; i++ {
		if _, err := f.service.Login(ctx, bad); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i+1, err)
		}
	}
	stored, _ := f.users.GetByID(ctx, user.UserID)
	if stored.FailedLoginCount != 2 {
		t.Fatalf("expected counter 2 on the row, got %d", stored.FailedLoginCount)
	}

	if _, err := f.service.Login(ctx, bad); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected lockout on third failure, got %v", err)
	}
	if f.outbox.count(application.EventTypeUserLocked) != 1 {
		t.Fatalf("expected one user.locked event")
	}

	good := application.LoginRequest{Email: user.Email, Password: "Senha123", IPAddress: "10.0.0.2"}
	if _, err := f.service.Login(ctx, good); !errors.Is(err, domain.ErrAccountLocked) {
		t.Fatalf("expected correct password to be refused while locked, got %v", err)
	}

	f.clock.Advance(16 * time.Minute)
	if _, err := f.service.Login(ctx, good); err != nil {
		t.Fatalf("expected login after lockout window, got %v", err)
	}
	stored, _ = f.users.GetByID(ctx, user.UserID)
	if stored.FailedLoginCount != 0 || stored.LockedUntil != nil {
		t.Fatalf("expected lockout state cleared, got count=%d until=%v", stored.FailedLoginCount, stored.LockedUntil)
	}
}

func TestLoginRejectsUnknownAndInactiveUsers(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	user := f.seedUser("inativo@asof.org.br", domain.RoleEditor)
	if err := f.users.SetActive(ctx, user.UserID, false, f.clock.Now()); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tests := []struct {
		name  string
		email string
	}{
		{name: "unknown", email: "ninguem@asof.org.br"},
		{name: "inactive", email: "inativo@asof.org.br"},
	}
	for _, tc := range tests {
		_, err := f.service.Login(ctx, application.LoginRequest{Email: tc.email, Password: "Senha123"})
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("%s: expected invalid credentials, got %v", tc.name, err)
		}
	}
}

func TestLoginRateLimitedByIP(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.LoginIPThreshold = 3
	cfg.FailedLoginThreshold = 100
	f := newFixtureWithConfig(cfg)
	ctx := context.Background()
	f.seedUser("editor@asof.org.br", domain.RoleEditor)

	req := application.LoginRequest{Email: "editor@asof.org.br", Password: "errada123", IPAddress: "203.0.113.9"}
	for i := 0; i < 2; i++ {
		if _, err := f.service.Login(ctx, req); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("attempt %d: expected invalid credentials, got %v", i+1, err)
		}
	}
	if _, err := f.service.Login(ctx, req); !errors.Is(err, domain.ErrRateLimited) {
		t.Fatalf("expected rate limit, got %v", err)
	}

	other := req
	other.IPAddress = "203.0.113.10"
	if _, err := f.service.Login(ctx, other); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected other IP to be unaffected, got %v", err)
	}
}

func TestLoginRateLimitFailsOpen(t *testing.T) {
	t.Parallel()

	f := newFixture()
	f.lockouts.down = true
	f.seedUser("editor@asof.org.br", domain.RoleEditor)

	_, err := f.service.Login(context.Background(), application.LoginRequest{
		Email:     "editor@asof.org.br",
		Password:  "Senha123",
		IPAddress: "10.0.0.3",
	})
	if err != nil {
		t.Fatalf("expected login to proceed without limiter, got %v", err)
	}
}

func TestValidateTokenExpiredSession(t *testing.T) {
	t.Parallel()

	cfg := defaultTestConfig()
	cfg.SessionTTL = 30 * time.Minute
	f := newFixtureWithConfig(cfg)
	ctx := context.Background()
	f.seedUser("editor@asof.org.br", domain.RoleEditor)

	res, err := f.service.Login(ctx, application.LoginRequest{Email: "editor@asof.org.br", Password: "Senha123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if !res.ExpiresAt.Equal(f.clock.Now().Add(30 * time.Minute)) {
		t.Fatalf("expected token expiry capped by session, got %v", res.ExpiresAt)
	}
	f.clock.Advance(31 * time.Minute)
	if _, err := f.service.ValidateToken(ctx, res.Token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected expired session, got %v", err)
	}
	if _, err := f.service.ValidateToken(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for unknown token, got %v", err)
	}
}

func TestChangePasswordRevokesOtherSessions(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	f.seedUser("editor@asof.org.br", domain.RoleEditor)
	login := application.LoginRequest{Email: "editor@asof.org.br", Password: "Senha123"}

	first, err := f.service.Login(ctx, login)
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := f.service.Login(ctx, login)
	if err != nil {
		t.Fatalf("second login: %v", err)
	}
	actor, err := f.service.ValidateToken(ctx, second.Token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}

	err = f.service.ChangePassword(ctx, actor, application.ChangePasswordRequest{CurrentPassword: "errada", NewPassword: "NovaSenha9"})
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected wrong current password to fail, got %v", err)
	}
	err = f.service.ChangePassword(ctx, actor, application.ChangePasswordRequest{CurrentPassword: "Senha123", NewPassword: "curta"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected weak password to fail, got %v", err)
	}
	if err := f.service.ChangePassword(ctx, actor, application.ChangePasswordRequest{CurrentPassword: "Senha123", NewPassword: "NovaSenha9"}); err != nil {
		t.Fatalf("change password: %v", err)
	}

	if _, err := f.service.ValidateToken(ctx, first.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected other session revoked, got %v", err)
	}
	if _, err := f.service.ValidateToken(ctx, second.Token); err != nil {
		t.Fatalf("expected current session to survive, got %v", err)
	}
	if _, err := f.service.Login(ctx, application.LoginRequest{Email: "editor@asof.org.br", Password: "NovaSenha9"}); err != nil {
		t.Fatalf("login with new password: %v", err)
	}
}

func TestBootstrapAdminOnlyOnEmptyTable(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()

	created, err := f.service.BootstrapAdmin(ctx, "root@asof.org.br", "Admin1234", "")
	if err != nil || !created {
		t.Fatalf("expected bootstrap admin, created=%v err=%v", created, err)
	}
	created, err = f.service.BootstrapAdmin(ctx, "outro@asof.org.br", "Admin1234", "")
	if err != nil || created {
		t.Fatalf("expected no second bootstrap, created=%v err=%v", created, err)
	}
	u, err := f.users.GetByEmail(ctx, "root@asof.org.br")
	if err != nil || u.Role != domain.RoleAdmin {
		t.Fatalf("expected admin row, got %+v err=%v", u, err)
	}
}

func TestUserAdministration(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	admin := actorFor(f.seedUser("admin@asof.org.br", domain.RoleAdmin))
	editor := actorFor(f.seedUser("editor@asof.org.br", domain.RoleEditor))

	_, err := f.service.CreateUser(ctx, editor, application.CreateUserRequest{Email: "novo@asof.org.br", Name: "Novo", Password: "Senha123"})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected editor to be forbidden, got %v", err)
	}
	created, err := f.service.CreateUser(ctx, admin, application.CreateUserRequest{Email: "novo@asof.org.br", Name: "Novo", Password: "Senha123"})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Role != string(domain.RoleEditor) || !created.IsActive {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if _, err := f.service.CreateUser(ctx, admin, application.CreateUserRequest{Email: "novo@asof.org.br", Name: "Novo", Password: "Senha123"}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected duplicate email conflict, got %v", err)
	}

	page, err := f.service.ListUsers(ctx, admin, 1, 2)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if page.Total != 3 || len(page.Items) != 2 || !page.HasMore {
		t.Fatalf("unexpected page: %+v", page)
	}

	if err := f.service.SetUserActive(ctx, admin, admin.UserID, false); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected self-deactivation to be refused, got %v", err)
	}

	locked := f.seedUser("bloqueado@asof.org.br", domain.RoleEditor)
	until := f.clock.Now().Add(time.Hour)
	locked.FailedLoginCount = 2
	locked.LockedUntil = &until
	if err := f.users.UpdateLoginState(ctx, locked); err != nil {
		t.Fatalf("seed lockout: %v", err)
	}
	if err := f.service.UnlockUser(ctx, admin, locked.UserID); err != nil {
		t.Fatalf("unlock: %v", err)
	}
	if _, err := f.service.Login(ctx, application.LoginRequest{Email: "bloqueado@asof.org.br", Password: "Senha123"}); err != nil {
		t.Fatalf("expected login after unlock, got %v", err)
	}
}

func TestDeactivatedUserSessionsAreRevoked(t *testing.T) {
	t.Parallel()

	f := newFixture()
	ctx := context.Background()
	admin := actorFor(f.seedUser("admin@asof.org.br", domain.RoleAdmin))
	editor := f.seedUser("editor@asof.org.br", domain.RoleEditor)

	res, err := f.service.Login(ctx, application.LoginRequest{Email: editor.Email, Password: "Senha123"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if err := f.service.SetUserActive(ctx, admin, editor.UserID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := f.service.ValidateToken(ctx, res.Token); !errors.Is(err, domain.ErrSessionRevoked) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}
