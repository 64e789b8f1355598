package lock

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryLock(t *testing.T) {
	ctx := context.Background()
	client, redisMock := redismock.NewClientMock()

	redisMock.ExpectSetNX("test:lock", "holder-1", 10*time.Second).SetVal(true)

	l := NewDistributedLock(client, "test:lock", "holder-1", 10*time.Second)
	ok, err := l.TryLock(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	// key 已存在，第二次拿不到
	redisMock.ExpectSetNX("test:lock", "holder-2", 10*time.Second).SetVal(false)

	other := NewDistributedLock(client, "test:lock", "holder-2", 10*time.Second)
	ok, err = other.TryLock(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLockRetryExhausted(t *testing.T) {
	ctx := context.Background()
	client, redisMock := redismock.NewClientMock()

	for i := 0; i < 3; i++ {
		redisMock.ExpectSetNX("test:lock", "holder-1", 10*time.Second).SetVal(false)
	}

	l := NewDistributedLock(client, "test:lock", "holder-1", 10*time.Second)
	err := l.Lock(ctx, time.Millisecond, 3)
	assert.ErrorIs(t, err, ErrLockFailed)
}

func TestLockRetrySucceeds(t *testing.T) {
	ctx := context.Background()
	client, redisMock := redismock.NewClientMock()

	redisMock.ExpectSetNX("test:lock", "holder-1", 10*time.Second).SetVal(false)
	redisMock.ExpectSetNX("test:lock", "holder-1", 10*time.Second).SetVal(true)

	l := NewDistributedLock(client, "test:lock", "holder-1", 10*time.Second)
	require.NoError(t, l.Lock(ctx, time.Millisecond, 3))
}

func TestUnlock(t *testing.T) {
	ctx := context.Background()
	client, redisMock := redismock.NewClientMock()

	// 只有持有者的 value 匹配时才会删 key
	redisMock.Regexp().ExpectEval(`(?s).*`, []string{"test:lock"}, "holder-1").SetVal(int64(1))

	l := NewDistributedLock(client, "test:lock", "holder-1", 10*time.Second)
	assert.NoError(t, l.Unlock(ctx))
}

func TestNewBidLockKey(t *testing.T) {
	client, _ := redismock.NewClientMock()

	l := NewBidLock(client, "ITM-1001", "req-abc")
	assert.Equal(t, "bid:lock:item:ITM-1001", l.key)
	assert.Equal(t, "req-abc", l.value)
	assert.Equal(t, 30*time.Second, l.expiration)
}
