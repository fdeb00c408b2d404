package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quizbd/exam-portal/internal/config"
	"github.com/quizbd/exam-portal/internal/model"
	"github.com/quizbd/exam-portal/internal/store"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService() (*AuthService, *store.Store) {
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpiry:          time.Hour,
		BcryptCost:         bcrypt.MinCost,
		BootstrapAdminUser: "admin",
		BootstrapAdminPass: "bootstrap-pass",
	}
	st := store.New(store.NewMemoryKV(), zerolog.Nop())
	return NewAuthService(cfg, st), st
}

func TestLoginBootstrapFallback(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuthService()

	token, admin, err := svc.Login(ctx, "admin", "bootstrap-pass")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token == "" || admin == nil || admin.Username != "admin" {
		t.Fatalf("unexpected login result: token=%q admin=%+v", token, admin)
	}

	if _, _, err := svc.Login(ctx, "admin", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
	if _, _, err := svc.Login(ctx, "other", "bootstrap-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong username: err = %v", err)
	}
}

func TestLoginStoredAdminTakesPrecedence(t *testing.T) {
	ctx := context.Background()
	svc, st := newAuthService()

	hash, err := svc.HashPassword("real-pass")
	if err != nil {
		t.Fatal(err)
	}
	if err := st.SaveAdmin(ctx, &model.Admin{Username: "root", Name: "Root", PasswordHash: hash}); err != nil {
		t.Fatal(err)
	}

	token, admin, err := svc.Login(ctx, "root", "real-pass")
	if err != nil {
		t.Fatalf("Login with stored admin: %v", err)
	}
	if token == "" || admin.Name != "Root" {
		t.Fatalf("unexpected login result: %+v", admin)
	}

	// Bootstrap credentials stop working once an admin is provisioned.
	if _, _, err := svc.Login(ctx, "admin", "bootstrap-pass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("bootstrap login after provisioning: err = %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	svc, _ := newAuthService()

	token, err := svc.GenerateAdminToken("root")
	if err != nil {
		t.Fatalf("GenerateAdminToken: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Username != "root" || claims.TokenType != TokenTypeAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.ValidateToken(token + "tampered"); err == nil {
		t.Fatal("tampered token must not validate")
	}
	if _, err := svc.ValidateToken("not.a.jwt"); err == nil {
		t.Fatal("garbage token must not validate")
	}
}

func TestCheckPassword(t *testing.T) {
	svc, _ := newAuthService()

	hash, err := svc.HashPassword("s3cret")
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.CheckPassword(hash, "s3cret"); err != nil {
		t.Fatalf("CheckPassword: %v", err)
	}
	if err := svc.CheckPassword(hash, "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: err = %v", err)
	}
}
