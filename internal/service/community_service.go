package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"Confizz/internal/model"
	"Confizz/internal/pkg"
)

const (
	maxCommunityNameLen = 100
	maxSlugAttempts     = 100
	maxCreateAttempts   = 2
)

type CommunityService struct {
	repo CommunityStore
	now  func() time.Time
}

func NewCommunityService(repo CommunityStore) *CommunityService {
	return &CommunityService{repo: repo, now: time.Now}
}

func (s *CommunityService) CreateCommunity(ctx context.Context, creatorID uint64, name, desc string) (*model.Community, error) {
	if creatorID == 0 {
		return nil, pkg.Permission("login required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, pkg.Validation("community name required")
	}
	if utf8.RuneCountInString(name) > maxCommunityNameLen {
		return nil, pkg.Validation("community name must be at most %d characters", maxCommunityNameLen)
	}

	if err := s.checkName(ctx, name); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	community := &model.Community{
		Name:        name,
		Description: strings.TrimSpace(desc),
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// 唯一索引兜底：并发创建时 name 或 slug 可能被抢先占用，slug 冲突重新取一次
	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, pkg.Slugify(name))
		if err != nil {
			return nil, err
		}
		community.Slug = slug

		err = s.repo.Create(ctx, community)
		if err == nil {
			return community, nil
		}
		if !isDuplicate(err) {
			return nil, fmt.Errorf("create community: %w", err)
		}
		if err := s.checkName(ctx, name); err != nil {
			return nil, err
		}
		if attempt >= maxCreateAttempts {
			return nil, pkg.Validation("community slug %q is already taken, please try again", slug)
		}
	}
}

func (s *CommunityService) checkName(ctx context.Context, name string) error {
	taken, err := s.repo.NameExists(ctx, name)
	if err != nil {
		return fmt.Errorf("check community name: %w", err)
	}
	if taken {
		return pkg.Validation("community with this name already exists")
	}
	return nil
}

// uniqueSlug 冲突时依次尝试 base-2、base-3 ...
func (s *CommunityService) uniqueSlug(ctx context.Context, base string) (string, error) {
	for n := 1; n <= maxSlugAttempts; n++ {
		candidate := pkg.SlugCandidate(base, n)
		exists, err := s.repo.SlugExists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("check community slug: %w", err)
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", pkg.Validation("too many communities share this name's slug")
}

func (s *CommunityService) ListCommunities(ctx context.Context) ([]model.Community, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list communities: %w", err)
	}
	return list, nil
}

func (s *CommunityService) GetCommunity(ctx context.Context, slug string) (*model.Community, error) {
	community, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, pkg.NotFound("community not found")
		}
		return nil, fmt.Errorf("find community: %w", err)
	}
	return community, nil
}

// ConfirmDelete 只做存在性和权限检查，不修改数据
func (s *CommunityService) ConfirmDelete(ctx context.Context, slug string, requesterID uint64) (*model.Community, error) {
	community, err := s.GetCommunity(ctx, slug)
	if err != nil {
		return nil, err
	}
	if err := authorizeDelete(community, requesterID); err != nil {
		return nil, err
	}
	return community, nil
}

// DeleteCommunity 仅创建者可删，连带删除社区内告白及其评论
func (s *CommunityService) DeleteCommunity(ctx context.Context, slug string, requesterID uint64) error {
	community, err := s.ConfirmDelete(ctx, slug, requesterID)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, community.ID); err != nil {
		if isNotFound(err) {
			return pkg.NotFound("community not found")
		}
		return fmt.Errorf("delete community: %w", err)
	}
	return nil
}

func authorizeDelete(community *model.Community, requesterID uint64) error {
	if requesterID == 0 || requesterID != community.CreatorID {
		return pkg.Permission("You do not have permission to delete this community.")
	}
	return nil
}
