package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type Ceremony string

const (
	CeremonyRegistration   Ceremony = "registration"
	CeremonyAuthentication Ceremony = "authentication"
)

// StoredChallenge is the single pending ceremony of a user.
type StoredChallenge struct {
	Ceremony Ceremony             `json:"ceremony"`
	Session  webauthn.SessionData `json:"session"`

	raw string
}

type IChallengeStore interface {
	Save(ctx context.Context, userID uuid.UUID, ceremony Ceremony, session webauthn.SessionData) error
	Load(ctx context.Context, userID uuid.UUID, ceremony Ceremony) (*StoredChallenge, error)
	Consume(ctx context.Context, userID uuid.UUID, stored *StoredChallenge) error
	MarkVerified(ctx context.Context, userID uuid.UUID, ttl time.Duration) error
	ConsumeVerified(ctx context.Context, userID uuid.UUID) (time.Duration, error)
}

// consumeScript deletes the key only if it still holds the value that was
// verified, so a challenge replaced or consumed in between is never consumed twice.
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// takeScript deletes the verified marker and returns the milliseconds it had
// left, or 0 when there was none.
var takeScript = redis.NewScript(`
local ttl = redis.call("PTTL", KEYS[1])
if ttl > 0 and redis.call("DEL", KEYS[1]) == 1 then
	return ttl
end
return 0
`)

type RedisChallengeStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisChallengeStore(rdb *redis.Client, ttl time.Duration) *RedisChallengeStore {
	return &RedisChallengeStore{rdb: rdb, ttl: ttl}
}

func challengeKey(userID uuid.UUID) string {
	return fmt.Sprintf("webauthn:challenge:%s", userID)
}

func verifiedKey(userID uuid.UUID) string {
	return fmt.Sprintf("webauthn:verified:%s", userID)
}

// Save replaces whatever ceremony the user had pending.
func (s *RedisChallengeStore) Save(ctx context.Context, userID uuid.UUID, ceremony Ceremony, session webauthn.SessionData) error {
	data, err := json.Marshal(StoredChallenge{Ceremony: ceremony, Session: session})
	if err != nil {
		return fmt.Errorf("encode challenge: %w", err)
	}
	if err := s.rdb.Set(ctx, challengeKey(userID), data, s.ttl).Err(); err != nil {
		return storeUnavailable("save challenge", err)
	}
	return nil
}

func (s *RedisChallengeStore) Load(ctx context.Context, userID uuid.UUID, ceremony Ceremony) (*StoredChallenge, error) {
	val, err := s.rdb.Get(ctx, challengeKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ceremonyError("load challenge", ErrChallengeExpiredOrMissing, "no pending ceremony")
	}
	if err != nil {
		return nil, storeUnavailable("load challenge", err)
	}

	var stored StoredChallenge
	if err := json.Unmarshal([]byte(val), &stored); err != nil {
		return nil, ceremonyError("load challenge", ErrChallengeExpiredOrMissing, "unreadable challenge record")
	}
	if stored.Ceremony != ceremony {
		return nil, ceremonyError("load challenge", ErrChallengeExpiredOrMissing,
			fmt.Sprintf("pending ceremony is %s, not %s", stored.Ceremony, ceremony))
	}
	stored.raw = val
	return &stored, nil
}

func (s *RedisChallengeStore) Consume(ctx context.Context, userID uuid.UUID, stored *StoredChallenge) error {
	n, err := consumeScript.Run(ctx, s.rdb, []string{challengeKey(userID)}, stored.raw).Int()
	if err != nil {
		return storeUnavailable("consume challenge", err)
	}
	if n == 0 {
		return ceremonyError("consume challenge", ErrChallengeExpiredOrMissing, "challenge already consumed or replaced")
	}
	return nil
}

func (s *RedisChallengeStore) MarkVerified(ctx context.Context, userID uuid.UUID, ttl time.Duration) error {
	if err := s.rdb.Set(ctx, verifiedKey(userID), "1", ttl).Err(); err != nil {
		return storeUnavailable("mark verified", err)
	}
	return nil
}

// ConsumeVerified removes the marker and reports the window it had left, zero
// when the user was not verified. MarkVerified with that window puts it back.
func (s *RedisChallengeStore) ConsumeVerified(ctx context.Context, userID uuid.UUID) (time.Duration, error) {
	ms, err := takeScript.Run(ctx, s.rdb, []string{verifiedKey(userID)}).Int64()
	if err != nil {
		return 0, storeUnavailable("consume verification", err)
	}
	return time.Duration(ms) * time.Millisecond, nil
}
