package services

import (
	"context"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mukhoplus/Masked-StarCraft/models"
)

var testSecret = []byte("test-secret")

func newAuthFixture() (*fakePlayerRepo, *AuthService) {
	players := newFakePlayerRepo()
	return players, NewAuthService(players, testSecret, discardLogger())
}

func TestApplyRegistersPlayer(t *testing.T) {
	players, auth := newAuthFixture()

	player, err := auth.Apply(context.Background(), ApplyInput{
		Name:     "Lee Jaedong",
		Nickname: "Tyrant",
		Password: "hunter2",
		Race:     "z",
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if player.Role != models.RolePlayer || player.Race != "Z" {
		t.Fatalf("unexpected player: %+v", player)
	}

	stored := players.players[player.ID]
	if err = bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter2")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestApplyValidation(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	if _, err := auth.Apply(ctx, ApplyInput{Nickname: "X", Password: "p", Race: "T"}); err == nil {
		t.Fatal("expected error for missing name")
	}
	if _, err := auth.Apply(ctx, ApplyInput{Name: "X", Nickname: "X", Password: "p", Race: "Random"}); err == nil {
		t.Fatal("expected error for invalid race")
	}
}

func TestApplyRejectsTakenNickname(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()
	input := ApplyInput{Name: "One", Nickname: "Boxer", Password: "p", Race: "T"}

	if _, err := auth.Apply(ctx, input); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	input.Name = "Two"
	if _, err := auth.Apply(ctx, input); !errors.Is(err, ErrNicknameTaken) {
		t.Fatalf("expected ErrNicknameTaken, got %v", err)
	}
}

func TestLoginIssuesToken(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	if _, err := auth.Apply(ctx, ApplyInput{Name: "One", Nickname: "Boxer", Password: "marine", Race: "T"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	token, player, err := auth.Login(ctx, "Boxer", "marine")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if player.PasswordHash != "" {
		t.Fatal("login response must not carry the password hash")
	}

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) { return testSecret, nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token does not verify: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != string(models.RolePlayer) || claims["name"] != "Boxer" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if int(claims["user_id"].(float64)) != player.ID {
		t.Fatalf("expected user_id %d, got %v", player.ID, claims["user_id"])
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	_, auth := newAuthFixture()
	ctx := context.Background()

	if _, err := auth.Apply(ctx, ApplyInput{Name: "One", Nickname: "Boxer", Password: "marine", Race: "T"}); err != nil {
		t.Fatalf("Apply: %v", err)
	}

	if _, _, err := auth.Login(ctx, "Boxer", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, _, err := auth.Login(ctx, "Nobody", "marine"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown nickname, got %v", err)
	}
}

func TestEnsureAdminIsIdempotent(t *testing.T) {
	players, auth := newAuthFixture()
	ctx := context.Background()

	if err := auth.EnsureAdmin(ctx, "Operator", "admin", "secret"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := auth.EnsureAdmin(ctx, "Operator", "admin", "secret"); err != nil {
		t.Fatalf("EnsureAdmin again: %v", err)
	}

	admins := 0
	for _, p := range players.players {
		if p.Role == models.RoleAdmin {
			admins++
		}
	}
	if admins != 1 {
		t.Fatalf("expected exactly one admin, got %d", admins)
	}
}
