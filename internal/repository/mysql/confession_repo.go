package mysql

import (
	"context"
	"strings"

	"Confizz/internal/model"

	"gorm.io/gorm"
)

// LIKE 转义字符，mysql 和 sqlite 都支持 ESCAPE 子句
const likeEscape = "!"

var likeReplacer = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

type ConfessionRepository struct {
	DB *gorm.DB
}

func NewConfessionRepository(db *gorm.DB) *ConfessionRepository {
	return &ConfessionRepository{DB: db}
}

func (r *ConfessionRepository) Create(ctx context.Context, confession *model.Confession) error {
	return r.DB.WithContext(ctx).Create(confession).Error
}

func (r *ConfessionRepository) FindByID(ctx context.Context, id uint64) (*model.Confession, error) {
	var confession model.Confession
	if err := r.DB.WithContext(ctx).First(&confession, id).Error; err != nil {
		return nil, err
	}
	return &confession, nil
}

// List 按 created_at DESC, id DESC 返回，过滤条件之间是 AND
func (r *ConfessionRepository) List(ctx context.Context, f model.ConfessionFilter) ([]model.Confession, error) {
	q := r.DB.WithContext(ctx).Model(&model.Confession{})
	if f.AuthorID != 0 {
		q = q.Where("author_id = ?", f.AuthorID)
	}
	if f.CommunityID != 0 {
		q = q.Where("community_id = ?", f.CommunityID)
	}
	if f.Search != "" {
		pattern := "%" + likeReplacer.Replace(strings.ToLower(f.Search)) + "%"
		q = q.Where("LOWER(content) LIKE ? ESCAPE '"+likeEscape+"'", pattern)
	}
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since)
	}

	var list []model.Confession
	err := q.Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}
