package auth

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

const otpKeyPrefix = "otp:"

// OTPStore holds one-time sign-in codes in Redis. A code is bound to one
// identifier (phone number), expires with the TTL, and is consumed by the
// first successful verify.
type OTPStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewOTPStore returns a new OTPStore.
func NewOTPStore(rdb *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPStore{rdb: rdb, ttl: ttl}
}

// Issue generates a 6-digit code for the identifier, replacing any previous
// one, and returns it for delivery.
func (s *OTPStore) Issue(ctx context.Context, identifier string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("rand: %w", err)
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.rdb.Set(ctx, otpKeyPrefix+identifier, code, s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks the code for the identifier and consumes it on success.
func (s *OTPStore) Verify(ctx context.Context, identifier, code string) (bool, error) {
	key := otpKeyPrefix + identifier
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if v != code {
		return false, nil
	}
	_ = s.rdb.Del(ctx, key).Err()
	return true, nil
}
