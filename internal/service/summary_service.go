package service

import (
	"context"
	"strings"

	"Confizz/internal/pkg"
)

type SummaryService struct {
	gateway SummaryGateway
}

func NewSummaryService(gateway SummaryGateway) *SummaryService {
	return &SummaryService{gateway: gateway}
}

// Summarize 空文本在本地拦截，不调用外部服务；网关错误原样透传
func (s *SummaryService) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", pkg.Validation("No comments provided.")
	}
	return s.gateway.Summarize(ctx, text)
}
