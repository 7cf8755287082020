package service

import (
	"context"
	"fmt"
	"strings"

	"Confizz/internal/pkg"

	"go.uber.org/zap"
)

type EmailService struct {
	users  UserStore
	codes  ResetCodeStore
	mailer pkg.Mailer
	logger *zap.Logger
}

func NewEmailService(users UserStore, codes ResetCodeStore, mailer pkg.Mailer, logger *zap.Logger) *EmailService {
	return &EmailService{users: users, codes: codes, mailer: mailer, logger: logger}
}

// SendResetCode 邮箱未注册时不发送，也不告诉调用方
func (s *EmailService) SendResetCode(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return pkg.Validation("email required")
	}
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if isNotFound(err) {
			s.logger.Debug("reset code requested for unknown email")
			return nil
		}
		return fmt.Errorf("find user: %w", err)
	}

	code, err := pkg.RandDigits(6)
	if err != nil {
		return err
	}

	// 先写入 pending 键
	if err := s.codes.SavePending(ctx, email, code); err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}

	if err := s.mailer.Send(email, "Confizz password reset code", pkg.ResetCodeHTML(code, s.codes.TTL())); err != nil {
		_ = s.codes.DeletePending(ctx, email)
		return pkg.External("send reset email: %s", err.Error())
	}

	// 邮件发出后再转为 confirmed
	if err := s.codes.Confirm(ctx, email); err != nil {
		_ = s.codes.DeletePending(ctx, email)
		return fmt.Errorf("confirm reset code: %w", err)
	}
	return nil
}
