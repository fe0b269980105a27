package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Bekzat04/sportsfest-system/models"
	"github.com/Bekzat04/sportsfest-system/repositories"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type RegisterInput struct {
	RegNumber     string        `json:"reg_number"`
	FullName      string        `json:"full_name"`
	Gender        models.Gender `json:"gender"`
	AdmissionYear int           `json:"admission_year"`
	Department    string        `json:"department"`
	Password      string        `json:"password"`
}

type LoginInput struct {
	RegNumber string `json:"reg_number"`
	Password  string `json:"password"`
}

type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*models.Player, error)
	Login(ctx context.Context, input LoginInput) (*models.Player, error)
}

type authService struct {
	playerRepo repositories.PlayerRepository
}

func NewAuthService(playerRepo repositories.PlayerRepository) AuthService {
	return &authService{playerRepo: playerRepo}
}

func (s *authService) Register(ctx context.Context, input RegisterInput) (*models.Player, error) {
	if input.RegNumber == "" || input.FullName == "" {
		return nil, newValidationError(RuleCompleteness, "registration number and full name are required")
	}
	if input.Gender != models.GenderMale && input.Gender != models.GenderFemale {
		return nil, newValidationError(RuleCompleteness, "gender must be %q or %q", models.GenderMale, models.GenderFemale)
	}
	if input.AdmissionYear <= 0 {
		return nil, newValidationError(RuleCompleteness, "admission year is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	player := &models.Player{
		RegNumber:     input.RegNumber,
		FullName:      input.FullName,
		Gender:        input.Gender,
		AdmissionYear: input.AdmissionYear,
		Department:    input.Department,
		Role:          models.RolePlayer,
		PasswordHash:  string(hashedPassword),
	}

	if err = s.playerRepo.Create(ctx, player); err != nil {
		if errors.Is(err, repositories.ErrPlayerRegNumConflict) {
			return nil, ErrRegNumberTaken
		}
		return nil, err
	}

	player.PasswordHash = ""
	return player, nil
}

func (s *authService) Login(ctx context.Context, input LoginInput) (*models.Player, error) {
	player, err := s.playerRepo.GetByRegNumber(ctx, input.RegNumber)
	if err != nil {
		if errors.Is(err, repositories.ErrPlayerNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find player by registration number: %w", err)
	}

	err = bcrypt.CompareHashAndPassword([]byte(player.PasswordHash), []byte(input.Password))
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("compare password hash: %w", err)
	}

	player.PasswordHash = ""
	return player, nil
}
