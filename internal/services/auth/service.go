// Package auth handles registration, login, and token lifecycle. A JWT
// issued here is the cryptographic authorization behind every escrow
// operation: the service layer trusts the claims' user id as the caller
// identity.
package auth

import (
	"errors"
	"log"

	"habitstake/internal/ledger"
	"habitstake/internal/models"
	"habitstake/internal/repositories"
	"habitstake/internal/utils"
	"habitstake/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("user with this email already exists")
	ErrInvalidInput       = errors.New("invalid registration input")
)

type Service interface {
	Register(input *models.CreateUserInput) (*models.User, error)
	Login(email, password string) (*models.User, string, string, error)
	RefreshTokens(refreshToken string) (string, string, error)
	Logout(userID uint) error
	GetUserByID(userID uint) (*models.User, error)
	GetUserTokenVersion(userID uint) (int, error)
}

type service struct {
	users  repositories.UserRepository
	ledger repositories.LedgerRepository
}

func NewService(users repositories.UserRepository, ledgerRepo repositories.LedgerRepository) Service {
	if users == nil {
		panic("user repository is required")
	}
	if ledgerRepo == nil {
		panic("ledger repository is required")
	}
	return &service{
		users:  users,
		ledger: ledgerRepo,
	}
}

// Register creates the auth identity and its funding account. The
// account address is derived from the user id, so it is recomputable and
// unique per user.
func (s *service) Register(input *models.CreateUserInput) (*models.User, error) {
	v := validation.New()
	v.RegisterInput(input)
	if !v.Valid() {
		return nil, ErrInvalidInput
	}

	if existing, _ := s.users.GetByEmail(input.Email); existing != nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	user := &models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Role:     "user",
		Status:   "active",
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}

	address := ledger.DeriveAccount(ledger.UserSeed(user.ID)...).String()
	ownerID := user.ID
	err = s.ledger.CreateAccount(&models.Account{
		Address: address,
		OwnerID: &ownerID,
		Status:  "active",
		Kind:    models.AccountKindUser,
	})
	if err != nil {
		return nil, err
	}

	user.AccountAddress = address
	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) Login(email, password string) (*models.User, string, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		log.Printf("login failed: user not found for %s", email)
		return nil, "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Printf("login failed: wrong password for user %d", user.ID)
		return nil, "", "", ErrInvalidCredentials
	}

	accessToken, refreshToken, err := utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
	if err != nil {
		log.Println("error generating tokens:", err)
		return nil, "", "", errors.New("error generating tokens")
	}

	return user, accessToken, refreshToken, nil
}

func (s *service) RefreshTokens(refreshToken string) (string, string, error) {
	_, claims, err := utils.ParseToken(refreshToken)
	if err != nil {
		return "", "", errors.New("invalid refresh token")
	}

	user, err := s.users.GetByID(claims.UserID)
	if err != nil {
		return "", "", errors.New("user not found")
	}

	if user.TokenVersion != claims.TokenVersion {
		return "", "", errors.New("token version mismatch")
	}

	return utils.GenerateTokens(&models.UserClaims{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		Permissions:  models.GetDefaultPermissions(user.Role),
	})
}

// Logout invalidates every outstanding token by bumping the version.
func (s *service) Logout(userID uint) error {
	return s.users.IncrementTokenVersion(userID)
}

func (s *service) GetUserByID(userID uint) (*models.User, error) {
	return s.users.GetByID(userID)
}

func (s *service) GetUserTokenVersion(userID uint) (int, error) {
	return s.users.GetTokenVersion(userID)
}
