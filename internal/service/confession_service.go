package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Confizz/internal/model"
	"Confizz/internal/pkg"
)

// date_filter 取值
const (
	DateFilterAll   = "all"
	DateFilterToday = "today"
	DateFilterWeek  = "week"
	DateFilterMonth = "month"
)

type ConfessionService struct {
	repo        ConfessionStore
	communities CommunityStore
	loc         *time.Location
	now         func() time.Time
}

// NewConfessionService loc 决定 "today" 的日历边界
func NewConfessionService(repo ConfessionStore, communities CommunityStore, loc *time.Location) *ConfessionService {
	if loc == nil {
		loc = time.UTC
	}
	return &ConfessionService{
		repo:        repo,
		communities: communities,
		loc:         loc,
		now:         time.Now,
	}
}

// CreateConfession authorID 为 0 即匿名；communitySlug 为空即不属于任何社区
func (s *ConfessionService) CreateConfession(ctx context.Context, content string, authorID uint64, communitySlug string) (*model.Confession, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validation("confession content required")
	}

	confession := &model.Confession{
		Content:   content,
		AuthorID:  optionalID(authorID),
		CreatedAt: s.now().UTC(),
	}

	if slug := strings.TrimSpace(communitySlug); slug != "" {
		community, err := s.communities.FindBySlug(ctx, slug)
		if err != nil {
			if isNotFound(err) {
				return nil, pkg.NotFound("community not found")
			}
			return nil, fmt.Errorf("find community: %w", err)
		}
		confession.CommunityID = &community.ID
	}

	if err := s.repo.Create(ctx, confession); err != nil {
		return nil, fmt.Errorf("create confession: %w", err)
	}
	return confession, nil
}

func (s *ConfessionService) GetConfession(ctx context.Context, id uint64) (*model.Confession, error) {
	confession, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("confession not found")
		}
		return nil, fmt.Errorf("find confession: %w", err)
	}
	return confession, nil
}

// ListGlobal 全站流：文本过滤和时间段过滤可以叠加
func (s *ConfessionService) ListGlobal(ctx context.Context, search, dateFilter string) ([]model.Confession, error) {
	since, err := s.since(dateFilter)
	if err != nil {
		return nil, err
	}
	list, err := s.repo.List(ctx, model.ConfessionFilter{
		Search: strings.TrimSpace(search),
		Since:  since,
	})
	if err != nil {
		return nil, fmt.Errorf("list confessions: %w", err)
	}
	return list, nil
}

// ListForUser callerID 只能来自登录态，不接受请求参数
func (s *ConfessionService) ListForUser(ctx context.Context, callerID uint64) ([]model.Confession, error) {
	if callerID == 0 {
		return nil, pkg.Permission("login required")
	}
	list, err := s.repo.List(ctx, model.ConfessionFilter{AuthorID: callerID})
	if err != nil {
		return nil, fmt.Errorf("list user confessions: %w", err)
	}
	return list, nil
}

// ListForCommunity 没有社区的告白永远不会出现在这里
func (s *ConfessionService) ListForCommunity(ctx context.Context, slug string) (*model.Community, []model.Confession, error) {
	community, err := s.communities.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, nil, pkg.NotFound("community not found")
		}
		return nil, nil, fmt.Errorf("find community: %w", err)
	}
	list, err := s.repo.List(ctx, model.ConfessionFilter{CommunityID: community.ID})
	if err != nil {
		return nil, nil, fmt.Errorf("list community confessions: %w", err)
	}
	return community, list, nil
}

func (s *ConfessionService) since(dateFilter string) (time.Time, error) {
	now := s.now().In(s.loc)
	switch strings.TrimSpace(dateFilter) {
	case "", DateFilterAll:
		return time.Time{}, nil
	case DateFilterToday:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc).UTC(), nil
	case DateFilterWeek:
		return now.AddDate(0, 0, -7).UTC(), nil
	case DateFilterMonth:
		return now.AddDate(0, 0, -30).UTC(), nil
	default:
		return time.Time{}, pkg.Validation("date_filter must be one of today, week, month, all")
	}
}
