package services

import (
	"context"
	"testing"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChallengeStore_SingleUse(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, CeremonyRegistration, webauthn.SessionData{Challenge: "abc"}))

	stored, err := store.Load(ctx, userID, CeremonyRegistration)
	require.NoError(t, err)
	assert.Equal(t, "abc", stored.Session.Challenge)

	require.NoError(t, store.Consume(ctx, userID, stored))
	assert.ErrorIs(t, store.Consume(ctx, userID, stored), ErrChallengeExpiredOrMissing)

	_, err = store.Load(ctx, userID, CeremonyRegistration)
	assert.ErrorIs(t, err, ErrChallengeExpiredOrMissing)
}

func TestChallengeStore_CeremonyKindMismatch(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, CeremonyAuthentication, webauthn.SessionData{Challenge: "abc"}))

	_, err := store.Load(ctx, userID, CeremonyRegistration)
	assert.ErrorIs(t, err, ErrChallengeExpiredOrMissing)
}

func TestChallengeStore_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	_, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, CeremonyRegistration, webauthn.SessionData{Challenge: "first"}))
	first, err := store.Load(ctx, userID, CeremonyRegistration)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, userID, CeremonyRegistration, webauthn.SessionData{Challenge: "second"}))

	assert.ErrorIs(t, store.Consume(ctx, userID, first), ErrChallengeExpiredOrMissing)

	second, err := store.Load(ctx, userID, CeremonyRegistration)
	require.NoError(t, err)
	assert.Equal(t, "second", second.Session.Challenge)
	assert.NoError(t, store.Consume(ctx, userID, second))
}

func TestChallengeStore_Expires(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	userID := uuid.New()

	require.NoError(t, store.Save(ctx, userID, CeremonyRegistration, webauthn.SessionData{Challenge: "abc"}))
	mr.FastForward(5*time.Minute + time.Second)

	_, err := store.Load(ctx, userID, CeremonyRegistration)
	assert.ErrorIs(t, err, ErrChallengeExpiredOrMissing)
}

func TestChallengeStore_VerifiedMarker(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	userID := uuid.New()

	left, err := store.ConsumeVerified(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, left)

	require.NoError(t, store.MarkVerified(ctx, userID, 2*time.Minute))
	mr.FastForward(30 * time.Second)
	left, err = store.ConsumeVerified(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 90*time.Second, left)

	left, _ = store.ConsumeVerified(ctx, userID)
	assert.Zero(t, left, "marker is single use")

	require.NoError(t, store.MarkVerified(ctx, userID, 2*time.Minute))
	mr.FastForward(3 * time.Minute)
	left, _ = store.ConsumeVerified(ctx, userID)
	assert.Zero(t, left, "marker expires")
}

func TestChallengeStore_RedisDown(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newTestRedis(t)
	store := NewRedisChallengeStore(rdb, 5*time.Minute)
	mr.Close()

	err := store.Save(ctx, uuid.New(), CeremonyRegistration, webauthn.SessionData{Challenge: "abc"})
	assert.ErrorIs(t, err, ErrStoreUnavailable)
}
