package services

import (
	"context"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SubscriptionService manages follower relations between users
type SubscriptionService interface {
	// Subscribe makes userID follow authorID and returns the author
	Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error)
	Unsubscribe(ctx context.Context, userID, authorID uint) error
	// ListAuthors returns the authors userID follows, ordered by username
	ListAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error)
}

type subscriptionService struct {
	db *gorm.DB
}

func NewSubscriptionService(db *gorm.DB) SubscriptionService {
	return &subscriptionService{db: db}
}

func checkSelfSubscription(userID, authorID uint) error {
	if userID == authorID {
		return newValidationError("author", ReasonSelfReference, "you cannot subscribe to yourself")
	}
	return nil
}

func (s *subscriptionService) Subscribe(ctx context.Context, userID, authorID uint) (*models.User, error) {
	if err := checkSelfSubscription(userID, authorID); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var author models.User
	if err := db.First(&author, authorID).Error; err != nil {
		return nil, notFoundOr(err, "user")
	}

	var n int64
	if err := db.Model(&models.Subscription{}).
		Where("user_id = ? AND author_id = ?", userID, authorID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, &ConflictError{Message: "already subscribed to " + author.Username}
	}

	sub := models.Subscription{UserID: userID, AuthorID: authorID}
	if err := db.Create(&sub).Error; err != nil {
		return nil, conflictOr(err, "already subscribed to "+author.Username)
	}

	log.WithFields(logrus.Fields{"user_id": userID, "author_id": authorID}).Info("Subscription created")
	return &author, nil
}

func (s *subscriptionService) Unsubscribe(ctx context.Context, userID, authorID uint) error {
	if err := checkSelfSubscription(userID, authorID); err != nil {
		return err
	}

	db := s.db.WithContext(ctx)
	var author models.User
	if err := db.Select("id").First(&author, authorID).Error; err != nil {
		return notFoundOr(err, "user")
	}

	res := db.Where("user_id = ? AND author_id = ?", userID, authorID).Delete(&models.Subscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Resource: "subscription"}
	}

	log.WithFields(logrus.Fields{"user_id": userID, "author_id": authorID}).Info("Subscription removed")
	return nil
}

func (s *subscriptionService) ListAuthors(ctx context.Context, userID uint, page Page) ([]models.User, int64, error) {
	q := s.db.WithContext(ctx).Model(&models.User{}).
		Where("users.id IN (?)",
			s.db.Model(&models.Subscription{}).Select("author_id").Where("user_id = ?", userID))

	return paginate[models.User](q, page, func(tx *gorm.DB) *gorm.DB {
		return tx.Order("users.username").Order("users.id")
	})
}
