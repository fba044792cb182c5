package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/katuripu/katuripu/backend/models"
	"github.com/katuripu/katuripu/backend/utils"
)

type UserService struct {
	DB  *gorm.DB
	Log *utils.Logger
}

func NewUserService(db *gorm.DB, log *utils.Logger) *UserService {
	return &UserService{DB: db, Log: log}
}

type RegisterInput struct {
	Username          string
	Email             string
	Password          string
	PreferredLanguage string
	Role              string
}

func hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Register creates a learner (or an admin when Role says so).
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Role == "" {
		in.Role = models.RoleUser
	}
	if in.Role != models.RoleUser && in.Role != models.RoleAdmin {
		return nil, invalid("role", "must be user or admin")
	}
	if !utils.IsSupportedLanguage(in.PreferredLanguage) {
		in.PreferredLanguage = "fr"
	}

	if err := s.ensureAvailable(ctx, 0, in.Username, in.Email); err != nil {
		return nil, err
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:          in.Username,
		Email:             in.Email,
		PasswordHash:      hash,
		Role:              in.Role,
		PreferredLanguage: in.PreferredLanguage,
	}
	if err := s.DB.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// ensureAvailable fails with ErrConflict when another user owns the username or email.
func (s *UserService) ensureAvailable(ctx context.Context, selfID uint, username, email string) error {
	q := s.DB.WithContext(ctx).Model(&models.User{}).Where("(username = ? OR email = ?)", username, email)
	if selfID != 0 {
		q = q.Where("id <> ?", selfID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return ErrConflict
	}
	return nil
}

// Authenticate checks a username (or email) and password pair and records
// the login.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	var user models.User
	err := s.DB.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	entry := models.LoginHistory{UserID: user.ID, LoginTime: timeNow()}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		s.Log.Warn("could not record login", "user_id", user.ID, "error", err)
	}
	return &user, nil
}

func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

// ProfileInput carries optional profile changes. A new password needs the
// current one.
type ProfileInput struct {
	Username          *string
	Email             *string
	PreferredLanguage *string
	OldPassword       string
	NewPassword       string
}

func (s *UserService) UpdateProfile(ctx context.Context, id uint, in ProfileInput) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		user.Username = strings.TrimSpace(*in.Username)
	}
	if in.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.PreferredLanguage != nil {
		if !utils.IsSupportedLanguage(*in.PreferredLanguage) {
			return nil, invalid("preferred_language", "must be one of ar fr en")
		}
		user.PreferredLanguage = *in.PreferredLanguage
	}
	if in.NewPassword != "" {
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.OldPassword)) != nil {
			return nil, invalid("old_password", "is incorrect")
		}
		if user.PasswordHash, err = hashPassword(in.NewPassword); err != nil {
			return nil, err
		}
	}

	if err := s.ensureAvailable(ctx, user.ID, user.Username, user.Email); err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Save(user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}
	return user, nil
}

// SetPassword replaces a user's password without checking the old one.
// login is a username or an email.
func (s *UserService) SetPassword(ctx context.Context, login, password string) error {
	hash, err := hashPassword(password)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		Update("password_hash", hash)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
