package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList tracks token ids (jti) that must no longer be accepted,
// backed by Redis. Entries live for the token TTL, an upper bound on how
// long the token itself stays valid, so the list never needs sweeping.
type RevocationList struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRevocationList(rdb *redis.Client, ttl time.Duration) *RevocationList {
	return &RevocationList{rdb: rdb, ttl: ttl}
}

// Revoke marks a token id as rejected.
func (l *RevocationList) Revoke(ctx context.Context, jti string) error {
	if jti == "" {
		return nil
	}
	return l.rdb.Set(ctx, "revoked:"+jti, "1", l.ttl).Err()
}

// IsRevoked reports whether the token id has been revoked.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	_, err := l.rdb.Get(ctx, "revoked:"+jti).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
