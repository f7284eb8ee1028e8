package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

// TagService provides read access to tags plus admin creation
type TagService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uint) (*models.Tag, error)
	CreateTag(ctx context.Context, name, slug string) (*models.Tag, error)
}

type tagService struct {
	db *gorm.DB
}

func NewTagService(db *gorm.DB) TagService {
	return &tagService{db: db}
}

func (s *tagService) ListTags(ctx context.Context) ([]models.Tag, error) {
	tags := make([]models.Tag, 0)
	if err := s.db.WithContext(ctx).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (s *tagService) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	if err := s.db.WithContext(ctx).First(&tag, id).Error; err != nil {
		return nil, notFoundOr(err, "tag")
	}
	return &tag, nil
}

func (s *tagService) CreateTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, newValidationError("name", ReasonEmpty, "name is required")
	}
	if err := ValidateSlug(slug); err != nil {
		return nil, err
	}

	tag := models.Tag{Name: name, Slug: slug}
	if err := s.db.WithContext(ctx).Create(&tag).Error; err != nil {
		return nil, conflictOr(err, fmt.Sprintf("tag %q or slug %q already exists", name, slug))
	}
	log.WithField("tag_id", tag.ID).Info("Tag created")
	return &tag, nil
}
