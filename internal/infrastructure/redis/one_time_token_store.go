package redis

import (
	"context"
	"errors"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/domain"
)

// OneTimeTokenStore keeps purpose-tagged single-use tokens. The purpose is
// part of the key, so a verify token can never redeem a reset and the two
// flows cannot invalidate each other.
type OneTimeTokenStore struct {
	rdb    *goredis.Client
	prefix string // e.g. "ott:"
}

func NewOneTimeTokenStore(c *Client) *OneTimeTokenStore {
	var rdb *goredis.Client
	if c != nil {
		rdb = c.rdb
	}
	return &OneTimeTokenStore{
		rdb:    rdb,
		prefix: "ott:",
	}
}

func (s *OneTimeTokenStore) Save(ctx context.Context, kind auth.OneTimeTokenKind, token string, userID string, ttl time.Duration) error {
	token = strings.TrimSpace(token)
	userID = strings.TrimSpace(userID)
	if token == "" {
		return domain.ErrMissingField("token")
	}
	if userID == "" {
		return domain.ErrMissingField("user_id")
	}
	if ttl <= 0 {
		return domain.ErrMissingField("ttl")
	}
	if s.rdb == nil {
		return errors.New("redis one-time-token store not configured")
	}

	key := s.key(kind, token)
	// overwrite is fine (new request generates new token anyway)
	if err := s.rdb.Set(ctx, key, userID, ttl).Err(); err != nil {
		return domain.ErrRedisUnavailable(err)
	}
	return nil
}

func (s *OneTimeTokenStore) Consume(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	key := s.key(kind, token)

	// Atomic GET + DEL: two concurrent redemptions of the same token
	// resolve to exactly one winner.
	const lua = `
local v = redis.call("GET", KEYS[1])
if not v then
  return nil
end
redis.call("DEL", KEYS[1])
return v
`
	res, err := s.rdb.Eval(ctx, lua, []string{key}).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			// Eval surfaces a nil script result as goredis.Nil
			return "", domain.ErrOneTimeTokenInvalid()
		}
		return "", domain.ErrRedisUnavailable(err)
	}
	if res == nil {
		return "", domain.ErrOneTimeTokenInvalid()
	}

	uid, ok := res.(string)
	if !ok || strings.TrimSpace(uid) == "" {
		return "", domain.ErrOneTimeTokenInvalid()
	}

	return uid, nil
}

func (s *OneTimeTokenStore) Peek(ctx context.Context, kind auth.OneTimeTokenKind, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", domain.ErrMissingField("token")
	}
	if s.rdb == nil {
		return "", errors.New("redis one-time-token store not configured")
	}

	uid, err := s.rdb.Get(ctx, s.key(kind, token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domain.ErrOneTimeTokenInvalid()
		}
		return "", domain.ErrRedisUnavailable(err)
	}

	uid = strings.TrimSpace(uid)
	if uid == "" {
		return "", domain.ErrOneTimeTokenInvalid()
	}
	return uid, nil
}

func (s *OneTimeTokenStore) key(kind auth.OneTimeTokenKind, token string) string {
	// kind is a controlled constant ("verify_email"/"password_reset")
	return s.prefix + string(kind) + ":" + token
}
