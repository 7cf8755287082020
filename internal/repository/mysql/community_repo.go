package mysql

import (
	"context"

	"Confizz/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

func NewCommunityRepository(db *gorm.DB) *CommunityRepository {
	return &CommunityRepository{DB: db}
}

func (r *CommunityRepository) Create(ctx context.Context, c *model.Community) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *CommunityRepository) FindBySlug(ctx context.Context, slug string) (*model.Community, error) {
	var community model.Community
	err := r.DB.WithContext(ctx).Where("slug = ?", slug).First(&community).Error
	if err != nil {
		return nil, err
	}
	return &community, nil
}

func (r *CommunityRepository) NameExists(ctx context.Context, name string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).Where("name = ?", name).Count(&count).Error
	return count > 0, err
}

func (r *CommunityRepository) SlugExists(ctx context.Context, slug string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).Where("slug = ?", slug).Count(&count).Error
	return count > 0, err
}

// List 最新创建的在前，不分页
func (r *CommunityRepository) List(ctx context.Context) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.WithContext(ctx).Order("created_at DESC, id DESC").Find(&list).Error
	return list, err
}

// DeleteCascade 同一事务内按 评论 -> 告白 -> 社区 的顺序删除，读者不会看到孤儿数据
func (r *CommunityRepository) DeleteCascade(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var confessionIDs []uint64
		if err := tx.Model(&model.Confession{}).
			Where("community_id = ?", id).
			Pluck("id", &confessionIDs).Error; err != nil {
			return err
		}

		if len(confessionIDs) > 0 {
			if err := tx.Where("confession_id IN ?", confessionIDs).
				Delete(&model.Comment{}).Error; err != nil {
				return err
			}
			if err := tx.Where("id IN ?", confessionIDs).
				Delete(&model.Confession{}).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&model.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		// 并发删除时可能已不存在
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
