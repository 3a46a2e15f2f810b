package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/parley/pkg/adapters/redis"
)

func TestRedisLocker_LockUnlock(t *testing.T) {
	mr, client := newTestClient(t)

	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()
	key := "session-1"

	// 1. Acquire lock
	unlock, err := locker.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock)

	// Verify key set in redis
	assert.True(t, mr.Exists("test:lock:session-1"), "Lock key should be set in Redis")

	// 2. Release lock
	err = unlock(ctx)
	assert.NoError(t, err)

	// Verify key removed
	assert.False(t, mr.Exists("test:lock:session-1"), "Lock key should be removed after unlock")
}

func TestRedisLocker_Contention(t *testing.T) {
	mr, client := newTestClient(t)

	locker1 := redis.NewLocker(client, "test:")
	locker2 := redis.NewLocker(client, "test:") // Same prefix -> contention
	ctx := context.Background()
	key := "shared-session"

	// 1. Client 1 acquires lock
	unlock1, err := locker1.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	assert.NotNil(t, unlock1)

	// 2. Client 2 tries to acquire; the polling loop must block until its
	// context times out.
	ctxTimeout, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = locker2.Lock(ctxTimeout, key, 5*time.Second)

	assert.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.WithinDuration(t, start.Add(500*time.Millisecond), time.Now(), 100*time.Millisecond, "Should block until timeout")

	// 3. Client 1 unlocks
	err = unlock1(ctx)
	assert.NoError(t, err)

	// 4. Client 2 tries again (should succeed)
	unlock2, err := locker2.Lock(ctx, key, 5*time.Second)
	assert.NoError(t, err)
	defer unlock2(ctx)

	assert.True(t, mr.Exists("test:lock:shared-session"))
}

func TestRedisLocker_StaleUnlockIsNoop(t *testing.T) {
	mr, client := newTestClient(t)

	locker := redis.NewLocker(client, "test:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "s1", 1*time.Second)
	assert.NoError(t, err)

	// The lock expires and a second holder takes it.
	mr.FastForward(2 * time.Second)
	unlock2, err := locker.Lock(ctx, "s1", 5*time.Second)
	assert.NoError(t, err)
	defer unlock2(ctx)

	// The stale holder's unlock must not release the new holder's lock.
	err = unlock(ctx)
	assert.NoError(t, err)
	assert.True(t, mr.Exists("test:lock:s1"), "stale unlock must not delete the new lock")
}
