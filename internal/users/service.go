package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/belaychat/belay/backend/internal/ids"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUnknownUser indicates the display name did not resolve to any account.
	ErrUnknownUser = errors.New("users: unknown user")
	// ErrBadPassword indicates the supplied password did not match the stored hash.
	ErrBadPassword = errors.New("users: bad password")
	// ErrInvalidToken indicates the bearer token did not resolve to any account.
	ErrInvalidToken = errors.New("users: invalid token")
)

// ServiceConfig describes the dependencies required by the credential store.
type ServiceConfig struct {
	Database   *gorm.DB
	BcryptCost int
	Logger     *zap.Logger
}

// Service manages accounts and resolves bearer tokens to user identities.
type Service struct {
	db     *gorm.DB
	cost   int
	logger *zap.Logger
}

// NewService constructs the credential store service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, fmt.Errorf("users: database connection required")
	}
	cost := cfg.BcryptCost
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     cfg.Database,
		cost:   cost,
		logger: logger,
	}, nil
}

// Signup creates an account with generated credentials and returns only the
// api key. The generated password is never exposed to the caller.
func (s *Service) Signup(ctx context.Context) (string, error) {
	name, err := randomDisplayName()
	if err != nil {
		return "", err
	}
	password, err := randomPassword()
	if err != nil {
		return "", err
	}
	apiKey, err := randomAPIKey()
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("users: password hashing failed: %w", err)
	}

	account := User{
		Name:         name,
		PasswordHash: string(hash),
		APIKey:       apiKey,
	}
	if err := s.db.WithContext(ctx).Create(&account).Error; err != nil {
		s.logger.Error("user insert failed", zap.Error(err))
		return "", err
	}

	s.logger.Info("user created", zap.Int64("user_id", account.ID))
	return apiKey, nil
}

// Authenticate resolves a display name and password to the stored api key.
// Display names are not unique; the lowest user id wins, preserving the
// first-match behaviour callers already depend on.
func (s *Service) Authenticate(ctx context.Context, name, password string) (string, error) {
	var account User
	err := s.db.WithContext(ctx).
		Where("name = ?", name).
		Order("id ASC").
		First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return "", ErrBadPassword
	}
	return account.APIKey, nil
}

// ResolveAPIKey maps a bearer token to a user identity. Unknown tokens yield
// ErrInvalidToken; there is no expiry or revocation.
func (s *Service) ResolveAPIKey(ctx context.Context, token string) (ids.UserID, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}
	var account User
	err := s.db.WithContext(ctx).
		Where("api_key = ?", token).
		Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrInvalidToken
	}
	if err != nil {
		return 0, err
	}
	return ids.NewUserID(account.ID)
}

// Rename overwrites the display name. Names are not unique and no check is made.
func (s *Service) Rename(ctx context.Context, userID ids.UserID, newName string) error {
	return s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID.Int64()).
		Update("name", newName).Error
}

// ChangePassword re-hashes and overwrites the stored password.
func (s *Service) ChangePassword(ctx context.Context, userID ids.UserID, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return fmt.Errorf("users: password hashing failed: %w", err)
	}
	return s.db.WithContext(ctx).
		Model(&User{}).
		Where("id = ?", userID.Int64()).
		Update("password_hash", string(hash)).Error
}

// DisplayName returns the current display name for the user.
func (s *Service) DisplayName(ctx context.Context, userID ids.UserID) (string, error) {
	var account User
	err := s.db.WithContext(ctx).
		Select("name").
		Where("id = ?", userID.Int64()).
		Take(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrUnknownUser
	}
	if err != nil {
		return "", err
	}
	return account.Name, nil
}
