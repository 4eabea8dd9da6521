package services

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/velotrack/go-ride-backend/internal/apierr"
	"github.com/velotrack/go-ride-backend/internal/auth"
	"github.com/velotrack/go-ride-backend/internal/domain"
)

func newAccountService(t *testing.T) *AccountService {
	t.Helper()
	db := newServiceDB(t)
	a := auth.NewAuthenticator("account-test-secret", time.Hour)
	// MinCost keeps the hashing fast in tests.
	return NewAccountService(db, a, bcrypt.MinCost)
}

func TestRegister_CreatesUserWithToken(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	user, token, aerr := s.Register(ctx, "new@example.com", "s3cretpass")
	if aerr != nil {
		t.Fatalf("Register: %v", aerr)
	}
	if user.ID == 0 || user.Role != domain.RoleUser {
		t.Fatalf("user = %+v", user)
	}
	if token == "" {
		t.Fatal("expected a signed token")
	}
	if user.Password == "s3cretpass" {
		t.Fatal("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cretpass")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}

	// Token must verify back to the same principal.
	p, verr := s.Auth.Verify(token)
	if verr != nil {
		t.Fatalf("Verify issued token: %v", verr)
	}
	if p.ID != user.ID || p.Role != domain.RoleUser {
		t.Errorf("principal = %+v", p)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	if _, _, aerr := s.Register(ctx, "dup@example.com", "password1"); aerr != nil {
		t.Fatalf("first Register: %v", aerr)
	}
	_, _, aerr := s.Register(ctx, "dup@example.com", "password2")
	if aerr == nil || aerr.Kind != apierr.KindValidation {
		t.Fatalf("duplicate Register = %v, want validation", aerr)
	}
}

func TestLogin(t *testing.T) {
	s := newAccountService(t)
	ctx := context.Background()

	if _, _, aerr := s.Register(ctx, "login@example.com", "correct-horse"); aerr != nil {
		t.Fatalf("Register: %v", aerr)
	}

	user, token, aerr := s.Login(ctx, "login@example.com", "correct-horse")
	if aerr != nil {
		t.Fatalf("Login: %v", aerr)
	}
	if user.Email != "login@example.com" || token == "" {
		t.Errorf("user=%+v token=%q", user, token)
	}

	// Wrong password and unknown email fail identically.
	for _, tc := range []struct{ email, pass string }{
		{"login@example.com", "wrong"},
		{"ghost@example.com", "correct-horse"},
	} {
		_, _, aerr := s.Login(ctx, tc.email, tc.pass)
		if aerr == nil || aerr.Code != apierr.CodeInvalidCredentials {
			t.Errorf("Login(%s) = %v, want invalid_credentials", tc.email, aerr)
		}
		if aerr.Status() != 401 {
			t.Errorf("status = %d, want 401", aerr.Status())
		}
	}
}

func TestRegister_NoSecretPropagatesUnavailable(t *testing.T) {
	db := newServiceDB(t)
	s := NewAccountService(db, auth.NewAuthenticator("", time.Hour), bcrypt.MinCost)

	_, _, aerr := s.Register(context.Background(), "x@example.com", "password")
	if aerr == nil || aerr.Code != apierr.CodeServiceUnavailable {
		t.Fatalf("Register without secret = %v, want service_unavailable", aerr)
	}
}
