package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultResetCodeTTL = 5 * time.Minute
	ResetCodePrefix     = "email:code:reset"

	// 两阶段键：邮件发出去之前是 pending，发出后才转成 confirmed 可被校验
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
	AttemptsSuffix  = "attempts"

	// 输错次数达到上限验证码直接作废，只能重新申请
	MaxResetAttempts = 5
)

var (
	ErrCodeNotFound  = errors.New("code not found or expired")
	ErrCodeNotMarked = errors.New("code confirm failed")
)

// 取值 + 写入目标 + 设置 TTL + 删除源，原子执行
var promoteScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1], KEYS[3])
return 1
`)

// 比对成功删除，保证验证码只能用一次；比对失败计数，到上限一并删除
var consumeScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if not val then
  return -1
end
if val == ARGV[1] then
  redis.call("DEL", KEYS[1], KEYS[2])
  return 1
end
local n = redis.call("INCR", KEYS[2])
if n == 1 then
  local ttl = redis.call("PTTL", KEYS[1])
  if ttl > 0 then
    redis.call("PEXPIRE", KEYS[2], ttl)
  end
end
if n >= tonumber(ARGV[2]) then
  redis.call("DEL", KEYS[1], KEYS[2])
end
return 0
`)

type ResetCodeRepository struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewResetCodeRepository(rdb *redis.Client) *ResetCodeRepository {
	return &ResetCodeRepository{rdb: rdb, ttl: DefaultResetCodeTTL}
}

func (r *ResetCodeRepository) TTL() time.Duration {
	return r.ttl
}

func (r *ResetCodeRepository) key(suffix, email string) string {
	return fmt.Sprintf("%s:%s:%s", ResetCodePrefix, suffix, email)
}

func (r *ResetCodeRepository) SavePending(ctx context.Context, email, code string) error {
	return r.rdb.Set(ctx, r.key(PendingSuffix, email), code, r.ttl).Err()
}

// Confirm pending -> confirmed，并重置 TTL 和输错计数
func (r *ResetCodeRepository) Confirm(ctx context.Context, email string) error {
	keys := []string{r.key(PendingSuffix, email), r.key(ConfirmedSuffix, email), r.key(AttemptsSuffix, email)}
	ok, err := promoteScript.Run(ctx, r.rdb, keys, r.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if ok != 1 {
		return ErrCodeNotMarked
	}
	return nil
}

// DeletePending 幂等
func (r *ResetCodeRepository) DeletePending(ctx context.Context, email string) error {
	return r.rdb.Del(ctx, r.key(PendingSuffix, email)).Err()
}

// Consume 校验 confirmed 验证码，匹配则删除并返回 true；
// 连续输错 MaxResetAttempts 次后验证码失效
func (r *ResetCodeRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	keys := []string{r.key(ConfirmedSuffix, email), r.key(AttemptsSuffix, email)}
	res, err := consumeScript.Run(ctx, r.rdb, keys, code, MaxResetAttempts).Int()
	if err != nil {
		return false, err
	}
	switch res {
	case -1:
		return false, ErrCodeNotFound
	case 1:
		return true, nil
	default:
		return false, nil
	}
}
