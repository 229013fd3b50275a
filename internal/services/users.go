package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const minPasswordLength = 6

// SignupInput registers a new agency owner.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

type UserService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewUserService(db *gorm.DB, logger *zap.Logger) *UserService {
	return &UserService{db: db, logger: logger}
}

// Signup creates the user with a bcrypt-hashed password.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	v := validation.Violations{}
	validation.Required("email", email, v)
	if _, bad := v["email"]; !bad {
		if _, err := mail.ParseAddress(email); err != nil {
			v["email"] = "invalid_email"
		}
	}
	validation.Required("password", in.Password, v)
	if _, bad := v["password"]; !bad && len(in.Password) < minPasswordLength {
		v["password"] = "too_short"
	}
	if err := invalid(v); err != nil {
		return models.User{}, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if count > 0 {
		return models.User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Email: email, Password: hash, Name: strings.TrimSpace(in.Name)}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("user signed up", zap.Uint("user_id", user.ID))
	return user, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords are
// indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, ErrBadCredentials
	}
	return user, nil
}

// Exists reports whether uid is a registered user. It backs the session verifier.
func (s *UserService) Exists(ctx context.Context, uid uint) bool {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", uid).Count(&count).Error; err != nil {
		s.logger.Warn("user lookup failed", zap.Uint("user_id", uid), zap.Error(err))
		return false
	}
	return count > 0
}
