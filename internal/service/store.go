package service

import (
	"context"
	"errors"
	"time"

	"Confizz/internal/model"

	"gorm.io/gorm"
)

// 以下接口由 repository/mysql 和 repository/redis 实现

type CommunityStore interface {
	Create(ctx context.Context, c *model.Community) error
	FindBySlug(ctx context.Context, slug string) (*model.Community, error)
	NameExists(ctx context.Context, name string) (bool, error)
	SlugExists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]model.Community, error)
	DeleteCascade(ctx context.Context, id uint64) error
}

type ConfessionStore interface {
	Create(ctx context.Context, confession *model.Confession) error
	FindByID(ctx context.Context, id uint64) (*model.Confession, error)
	List(ctx context.Context, f model.ConfessionFilter) ([]model.Confession, error)
}

type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByConfession(ctx context.Context, confessionID uint64) ([]model.Comment, error)
}

type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByLogin(ctx context.Context, login string) (*model.User, error)
	FindByID(ctx context.Context, id uint64) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	Exists(ctx context.Context, username, email string) (bool, error)
	UpdatePassword(ctx context.Context, userID uint64, hash string) error
}

type TokenStore interface {
	Save(ctx context.Context, userID uint64, token string) error
	Get(ctx context.Context, userID uint64) (string, error)
	Extend(ctx context.Context, userID uint64) error
	SaveRefresh(ctx context.Context, userID uint64, token string) error
	GetRefresh(ctx context.Context, userID uint64) (string, error)
	Delete(ctx context.Context, userID uint64) error
}

type ResetCodeStore interface {
	TTL() time.Duration
	SavePending(ctx context.Context, email, code string) error
	Confirm(ctx context.Context, email string) error
	DeletePending(ctx context.Context, email string) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

// SummaryGateway 外部摘要服务
type SummaryGateway interface {
	Summarize(ctx context.Context, text string) (string, error)
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

// optionalID 0 表示没有身份
func optionalID(id uint64) *uint64 {
	if id == 0 {
		return nil
	}
	return &id
}
