package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"Confizz/internal/model"
	"Confizz/internal/pkg"
	"Confizz/internal/repository/redis"

	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLen = 8
	maxUsernameLen = 150
)

type UserService struct {
	repo   UserStore
	tokens TokenStore
	codes  ResetCodeStore
	issuer *pkg.TokenIssuer
}

func NewUserService(repo UserStore, tokens TokenStore, codes ResetCodeStore, issuer *pkg.TokenIssuer) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		codes:  codes,
		issuer: issuer,
	}
}

func (s *UserService) Register(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" {
		return nil, pkg.Validation("username and email required")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return nil, pkg.Validation("username must be at most %d characters", maxUsernameLen)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkg.Validation("invalid email address")
	}
	if err := checkPassword(password); err != nil {
		return nil, err
	}

	exists, err := s.repo.Exists(ctx, username, email)
	if err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if exists {
		return nil, pkg.Validation("username or email already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if isDuplicate(err) {
			return nil, pkg.Validation("username or email already registered")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// Login 签发 token 并写入 redis，旧登录随之失效
func (s *UserService) Login(ctx context.Context, login, password string) (*model.User, *pkg.Pair, error) {
	user, err := s.repo.FindByLogin(ctx, strings.TrimSpace(login))
	if err != nil {
		if isNotFound(err) {
			return nil, nil, pkg.Permission("invalid credentials")
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return nil, nil, pkg.Permission("invalid credentials")
	}

	pair, err := s.issue(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}
	return user, pair, nil
}

func (s *UserService) Logout(ctx context.Context, userID uint64) error {
	return s.tokens.Delete(ctx, userID)
}

// Refresh 用 refresh token 换新的一对 token；只认 redis 里当前那一个，换完即作废
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*pkg.Pair, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return nil, pkg.Permission("%s", err.Error())
	}

	current, err := s.tokens.GetRefresh(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			return nil, pkg.Permission("refresh token revoked, please log in again")
		}
		return nil, err
	}
	if current != refreshToken {
		return nil, pkg.Permission("refresh token revoked, please log in again")
	}
	return s.issue(ctx, claims.UserID)
}

// Authenticate 校验 access token，且必须是 redis 中当前登录的那一个
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (uint64, error) {
	claims, err := s.issuer.ParseAccess(accessToken)
	if err != nil {
		return 0, pkg.Permission("invalid or expired token")
	}

	current, err := s.tokens.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, redis.ErrTokenNotFound) {
			return 0, pkg.Permission("session expired, please log in again")
		}
		return 0, err
	}
	if current != accessToken {
		return 0, pkg.Permission("account has been logged in elsewhere")
	}

	if err := s.tokens.Extend(ctx, claims.UserID); err != nil {
		return 0, err
	}
	return claims.UserID, nil
}

// ChangePassword 修改成功后强制重新登录
func (s *UserService) ChangePassword(ctx context.Context, userID uint64, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if isNotFound(err) {
			return pkg.NotFound("user not found")
		}
		return fmt.Errorf("find user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(oldPassword)) != nil {
		return pkg.Validation("old password is incorrect")
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

// ResetPassword 邮件验证码一次性有效
func (s *UserService) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}
	email = strings.TrimSpace(email)
	ok, err := s.codes.Consume(ctx, email, strings.TrimSpace(code))
	if err != nil && !errors.Is(err, redis.ErrCodeNotFound) {
		return fmt.Errorf("check reset code: %w", err)
	}
	if !ok {
		return pkg.Validation("verification failed")
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return pkg.Validation("verification failed")
		}
		return fmt.Errorf("find user: %w", err)
	}
	if err := s.setPassword(ctx, user.ID, newPassword); err != nil {
		return err
	}
	return s.Logout(ctx, user.ID)
}

func (s *UserService) setPassword(ctx context.Context, userID uint64, password string) error {
	if err := checkPassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	if err := s.repo.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *UserService) issue(ctx context.Context, userID uint64) (*pkg.Pair, error) {
	pair, err := s.issuer.GeneratePair(userID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Save(ctx, userID, pair.AccessToken); err != nil {
		return nil, err
	}
	if err := s.tokens.SaveRefresh(ctx, userID, pair.RefreshToken); err != nil {
		return nil, err
	}
	return pair, nil
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return pkg.Validation("password must be at least %d characters", minPasswordLen)
	}
	// bcrypt 只取前 72 字节
	if len(password) > 72 {
		return pkg.Validation("password must be at most 72 bytes")
	}
	return nil
}
