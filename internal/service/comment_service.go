package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Confizz/internal/model"
	"Confizz/internal/pkg"
)

type CommentService struct {
	repo        CommentStore
	confessions ConfessionStore
	now         func() time.Time
}

func NewCommentService(repo CommentStore, confessions ConfessionStore) *CommentService {
	return &CommentService{repo: repo, confessions: confessions, now: time.Now}
}

func (s *CommentService) CreateComment(ctx context.Context, confessionID uint64, content string, authorID uint64) (*model.Comment, error) {
	if err := s.ensureConfession(ctx, confessionID); err != nil {
		return nil, err
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validation("comment content required")
	}

	comment := &model.Comment{
		ConfessionID: confessionID,
		Content:      content,
		AuthorID:     optionalID(authorID),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	return comment, nil
}

func (s *CommentService) ListComments(ctx context.Context, confessionID uint64) ([]model.Comment, error) {
	if err := s.ensureConfession(ctx, confessionID); err != nil {
		return nil, err
	}
	list, err := s.repo.ListByConfession(ctx, confessionID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return list, nil
}

func (s *CommentService) ensureConfession(ctx context.Context, confessionID uint64) error {
	if confessionID == 0 {
		return pkg.NotFound("confession not found")
	}
	if _, err := s.confessions.FindByID(ctx, confessionID); err != nil {
		if isNotFound(err) {
			return pkg.NotFound("confession not found")
		}
		return fmt.Errorf("find confession: %w", err)
	}
	return nil
}
