package mysql

import (
	"context"

	"Confizz/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{DB: db}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}

// ListByConfession 按时间正序，方便拼接成讨论串
func (r *CommentRepository) ListByConfession(ctx context.Context, confessionID uint64) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("confession_id = ?", confessionID).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}
