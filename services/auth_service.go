package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/mukhoplus/Masked-StarCraft/models"
	"github.com/mukhoplus/Masked-StarCraft/repositories"
)

const tokenTTL = 24 * time.Hour

type ApplyInput struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Password string `json:"password"`
	Race     string `json:"race"`
}

type AuthService struct {
	players   repositories.PlayerRepository
	jwtSecret []byte
	logger    *slog.Logger
}

func NewAuthService(players repositories.PlayerRepository, jwtSecret []byte, logger *slog.Logger) *AuthService {
	return &AuthService{
		players:   players,
		jwtSecret: jwtSecret,
		logger:    logger,
	}
}

// Apply registers a contestant. The nickname must be unique among active
// players; a retired nickname can be reused.
func (s *AuthService) Apply(ctx context.Context, input ApplyInput) (*models.Player, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Nickname = strings.TrimSpace(input.Nickname)
	input.Race = strings.ToUpper(strings.TrimSpace(input.Race))
	if input.Name == "" || input.Nickname == "" || input.Password == "" {
		return nil, errors.New("name, nickname and password are required")
	}
	if !validRace(input.Race) {
		return nil, errors.New("race must be one of T, P, Z")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	player := &models.Player{
		Name:         input.Name,
		Nickname:     input.Nickname,
		PasswordHash: string(hashedPassword),
		Race:         input.Race,
		Role:         models.RolePlayer,
		Status:       models.PlayerActive,
	}
	if err = s.players.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerNicknameConflict) {
			return nil, ErrNicknameTaken
		}
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	s.logger.Info("player applied", slog.Int("player_id", player.ID), slog.String("nickname", player.Nickname))
	return player, nil
}

// Login checks credentials and issues a signed token. Unknown nickname and
// wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, nickname, password string) (string, *models.Player, error) {
	player, err := s.players.GetActiveByNickname(ctx, nickname)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to find player by nickname: %w", err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to compare password hash: %w", err)
	}

	token, err := s.generateToken(player)
	if err != nil {
		return "", nil, err
	}

	player.PasswordHash = ""
	return token, player, nil
}

// EnsureAdmin seeds the administrator account on startup. A no-op when an
// active player already holds the nickname.
func (s *AuthService) EnsureAdmin(ctx context.Context, name, nickname, password string) error {
	taken, err := s.players.NicknameTaken(ctx, nickname)
	if err != nil {
		return err
	}
	if taken {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &models.Player{
		Name:         name,
		Nickname:     nickname,
		PasswordHash: string(hashedPassword),
		Race:         "T",
		Role:         models.RoleAdmin,
		Status:       models.PlayerActive,
	}
	if err = s.players.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	s.logger.Info("admin account seeded", slog.String("nickname", nickname))
	return nil
}

func (s *AuthService) generateToken(player *models.Player) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": player.ID,
		"role":    string(player.Role),
		"name":    player.Nickname,
		"iat":     now.Unix(),
		"exp":     now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func validRace(race string) bool {
	switch race {
	case "T", "P", "Z":
		return true
	}
	return false
}
