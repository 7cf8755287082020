package pkg

import (
	"context"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const summaryInstruction = "Please provide a concise, one-paragraph summary of the following user comments for a confession:"

type LLMConfig struct {
	APIKey    string
	Model     string
	BaseURL   string
	Timeout   time.Duration
	MaxTokens int64
}

// Summarizer 外部大模型网关：单次调用，不重试不缓存
type Summarizer struct {
	cfg    LLMConfig
	client *anthropic.Client
}

func NewSummarizer(cfg LLMConfig) *Summarizer {
	s := &Summarizer{cfg: cfg}
	if cfg.APIKey == "" {
		return s
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)
	s.client = &client
	return s
}

func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	if s.client == nil {
		return "", External("LLM API key not configured. Please set LLM_API_KEY in your environment.")
	}
	if s.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
	}

	msg, err := s.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(s.cfg.Model),
		MaxTokens: s.cfg.MaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(text))),
		},
	})
	if err != nil {
		return "", External("%s", err.Error())
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", External("The response from the AI was empty. This might be due to safety settings or an issue with the prompt.")
	}
	return b.String(), nil
}

func buildSummaryPrompt(text string) string {
	return summaryInstruction + "\n\n---\n" + text + "\n---"
}
