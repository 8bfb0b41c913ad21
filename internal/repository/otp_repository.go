// otp_repository.go holds the short-lived phone verification ledger. It
// lives in Redis rather than MySQL: the key TTL garbage-collects expired
// codes and SET gives the upsert-per-phone semantics the flows rely on
// (requesting a new code silently replaces the pending one).
package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTPRecord is a pending one-time code for a phone number. ExpiresAt is
// stored inside the value as well as via the key TTL so verification can
// re-check the absolute expiry instant explicitly.
type OTPRecord struct {
	Phone     string
	Code      string
	ExpiresAt time.Time
}

// ErrOTPNotFound is returned when no pending code exists for a phone,
// either because none was requested or because the TTL already reaped it.
var ErrOTPNotFound = errors.New("otp not found")

// ErrOTPStoreDown is returned when the ledger has no Redis connection.
var ErrOTPStoreDown = errors.New("otp store unavailable")

// OTPRepo stores one pending code per phone.
type OTPRepo struct {
	rdb *redis.Client
}

func NewOTPRepo(rdb *redis.Client) *OTPRepo { return &OTPRepo{rdb: rdb} }

func otpKey(phone string) string { return "otp:" + phone }

// Put creates or replaces the pending code for a phone. The key expires at
// rec.ExpiresAt; a later Put for the same phone overwrites code and expiry
// in one write.
func (r *OTPRepo) Put(ctx context.Context, rec OTPRecord) error {
	if r.rdb == nil {
		return ErrOTPStoreDown
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("otp expiry %v is in the past", rec.ExpiresAt)
	}
	val := rec.Code + "|" + strconv.FormatInt(rec.ExpiresAt.UnixMilli(), 10)
	return r.rdb.Set(ctx, otpKey(rec.Phone), val, ttl).Err()
}

// Get returns the pending code for a phone, or ErrOTPNotFound.
func (r *OTPRepo) Get(ctx context.Context, phone string) (OTPRecord, error) {
	if r.rdb == nil {
		return OTPRecord{}, ErrOTPStoreDown
	}
	val, err := r.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return OTPRecord{}, ErrOTPNotFound
	}
	if err != nil {
		return OTPRecord{}, err
	}
	code, expStr, ok := strings.Cut(val, "|")
	if !ok {
		return OTPRecord{}, fmt.Errorf("malformed otp value for %s", phone)
	}
	ms, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil {
		return OTPRecord{}, fmt.Errorf("malformed otp expiry for %s: %w", phone, err)
	}
	return OTPRecord{Phone: phone, Code: code, ExpiresAt: time.UnixMilli(ms).UTC()}, nil
}

// Delete consumes the pending code. Deleting an absent key is not an error;
// duplicate consumption attempts are harmless.
func (r *OTPRepo) Delete(ctx context.Context, phone string) error {
	if r.rdb == nil {
		return ErrOTPStoreDown
	}
	return r.rdb.Del(ctx, otpKey(phone)).Err()
}
