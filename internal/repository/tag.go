package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/unitychat/unitychat/internal/model"
)

type ITagRepository interface {
	List(ctx context.Context) ([]model.Tag, error)
	Count(ctx context.Context) (int64, error)
	CreateBatch(ctx context.Context, tags []model.Tag) error
}

type TagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) ITagRepository {
	return &TagRepository{db: db}
}

func (r *TagRepository) List(ctx context.Context) ([]model.Tag, error) {
	var tags []model.Tag
	err := r.db.WithContext(ctx).
		Order("required_level ASC").
		Find(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *TagRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Tag{}).Count(&count).Error
	return count, err
}

func (r *TagRepository) CreateBatch(ctx context.Context, tags []model.Tag) error {
	return r.db.WithContext(ctx).Create(&tags).Error
}
