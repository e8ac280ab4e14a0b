package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/storerate/storerate/internal/domain"
	"github.com/storerate/storerate/internal/repository"
)

type fakeUserSource struct {
	users map[int64]domain.User
}

func (f *fakeUserSource) GetByID(_ context.Context, id int64) (domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserSource) GetByEmail(_ context.Context, email string) (domain.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return domain.User{}, repository.ErrNotFound
}

func newTestService(users map[int64]domain.User, ttl time.Duration) *Service {
	return New("test-secret", ttl, bcrypt.MinCost, &fakeUserSource{users: users})
}

func TestIssueResolveRoundTrip(t *testing.T) {
	user := domain.User{ID: 42, Name: "Arlene", Email: "arlene@example.com", Role: domain.RoleNormalUser, IsActive: true}
	svc := newTestService(map[int64]domain.User{42: user}, time.Hour)

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	identity, err := svc.Resolve(context.Background(), token)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if identity.ID != 42 {
		t.Fatalf("identity.ID = %d, want 42", identity.ID)
	}
	if identity.Role != domain.RoleNormalUser {
		t.Fatalf("identity.Role = %s, want normal_user", identity.Role)
	}
}

func TestResolveFailures(t *testing.T) {
	active := domain.User{ID: 1, Role: domain.RoleNormalUser, IsActive: true}
	inactive := domain.User{ID: 2, Role: domain.RoleNormalUser, IsActive: false}
	svc := newTestService(map[int64]domain.User{1: active, 2: inactive}, time.Hour)

	t.Run("empty token", func(t *testing.T) {
		if _, err := svc.Resolve(context.Background(), ""); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		if _, err := svc.Resolve(context.Background(), "not.a.token"); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("wrong signing key", func(t *testing.T) {
		other := New("other-secret", time.Hour, bcrypt.MinCost, &fakeUserSource{users: map[int64]domain.User{1: active}})
		token, err := other.Issue(active)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := svc.Resolve(context.Background(), token); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		expired := newTestService(map[int64]domain.User{1: active}, -time.Minute)
		token, err := expired.Issue(active)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := svc.Resolve(context.Background(), token); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("deactivated user", func(t *testing.T) {
		token, err := svc.Issue(inactive)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := svc.Resolve(context.Background(), token); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		ghost := domain.User{ID: 99, Role: domain.RoleNormalUser, IsActive: true}
		token, err := svc.Issue(ghost)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		if _, err := svc.Resolve(context.Background(), token); err != ErrUnauthenticated {
			t.Fatalf("error = %v, want ErrUnauthenticated", err)
		}
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("Sup3rSecret!"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := domain.User{ID: 7, Email: "user@example.com", PasswordHash: string(hash), Role: domain.RoleNormalUser, IsActive: true}
	svc := newTestService(map[int64]domain.User{7: user}, time.Hour)

	token, got, err := svc.Login(context.Background(), "user@example.com", "Sup3rSecret!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("user.ID = %d, want 7", got.ID)
	}
	if _, err := svc.Resolve(context.Background(), token); err != nil {
		t.Fatalf("Resolve(login token): %v", err)
	}

	if _, _, err := svc.Login(context.Background(), "user@example.com", "wrong"); err != ErrInvalidCredentials {
		t.Fatalf("wrong password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(context.Background(), "missing@example.com", "whatever"); err != ErrInvalidCredentials {
		t.Fatalf("unknown email error = %v, want ErrInvalidCredentials", err)
	}
}
