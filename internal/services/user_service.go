package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/storage"
	"gorm.io/gorm"
)

// AvatarFolder is the storage folder of user avatars
const AvatarFolder = "users"

// RegisterInput is a sign-up payload
type RegisterInput struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
}

type UserService interface {
	CreateUser(ctx context.Context, in RegisterInput) (*models.User, error)
	// Authenticate returns ErrInvalidCredentials for an unknown email or a wrong password
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, page Page) ([]models.User, int64, error)
	SetAvatar(ctx context.Context, userID uint, payload string) (*models.User, error)
	DeleteAvatar(ctx context.Context, userID uint) error
	SetPassword(ctx context.Context, userID uint, current, next string) error
}

type userService struct {
	db      *gorm.DB
	storage storage.Storage
}

func NewUserService(db *gorm.DB, store storage.Storage) UserService {
	return &userService{db: db, storage: store}
}

func (s *userService) CreateUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if err := ValidateUsername(in.Username); err != nil {
		return nil, err
	}
	if err := ValidatePassword(in.Password); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var existing models.User
	err := db.Where("email = ?", email).Or("username = ?", in.Username).First(&existing).Error
	if err == nil {
		if existing.Email == email {
			return nil, &ConflictError{Message: "a user with this email already exists"}
		}
		return nil, &ConflictError{Message: "a user with this username already exists"}
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Email:     email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Password:  in.Password,
		Role:      models.RoleUser,
	}
	if err := user.HashPassword(); err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	if err := db.Create(&user).Error; err != nil {
		return nil, conflictOr(err, "a user with this email or username already exists")
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return &user, nil
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetUserByEmail(ctx, email)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}
	return &user, nil
}

func (s *userService) ListUsers(ctx context.Context, page Page) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{})
	return paginate[models.User](q, page, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("users.id")
	})
}

func (s *userService) SetAvatar(ctx context.Context, userID uint, payload string) (*models.User, error) {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload == "" {
		return nil, newValidationError("avatar", ReasonEmpty, "avatar is required")
	}
	img, err := storage.DecodeImage(payload)
	if err != nil {
		return nil, imageError("avatar", err)
	}

	url, err := s.storage.Save(ctx, AvatarFolder, img)
	if err != nil {
		return nil, fmt.Errorf("store avatar: %w", err)
	}
	previous := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", url).Error; err != nil {
		s.removeFile(ctx, url)
		return nil, err
	}
	user.Avatar = url
	s.removeFile(ctx, previous)
	return user, nil
}

func (s *userService) DeleteAvatar(ctx context.Context, userID uint) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Avatar == "" {
		return nil
	}
	previous := user.Avatar
	if err := s.db.WithContext(ctx).Model(user).Update("avatar", "").Error; err != nil {
		return err
	}
	s.removeFile(ctx, previous)
	return nil
}

func (s *userService) SetPassword(ctx context.Context, userID uint, current, next string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !user.CheckPassword(current) {
		return newValidationError("current_password", ReasonInvalid, "current password is incorrect")
	}
	if err := ValidatePassword(next); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Field = "new_password"
		}
		return err
	}

	user.Password = next
	if err := user.HashPassword(); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", user.Password).Error; err != nil {
		return err
	}
	log.WithField("user_id", userID).Info("Password changed")
	return nil
}

func (s *userService) removeFile(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.storage.Delete(ctx, url); err != nil {
		log.WithError(err).WithField("avatar", url).Warn("Failed to remove avatar")
	}
}
