package redislock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedToken() string { return "token-1" }

func TestLock_AcquireAndRelease(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db, "lock:order:", 30*time.Second, WithTokenFunc(fixedToken))

	key := "lock:order:TRADOORA-ORDER-1"
	mock.ExpectSetNX(key, "token-1", 30*time.Second).SetVal(true)
	mock.ExpectEvalSha(releaseScript.Hash(), []string{key}, "token-1").SetVal(int64(1))

	unlock, err := l.Lock(context.Background(), "TRADOORA-ORDER-1")
	require.NoError(t, err)
	unlock()

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_Contended(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db, "lock:order:", time.Second, WithTokenFunc(fixedToken))

	mock.ExpectSetNX("lock:order:A", "token-1", time.Second).SetVal(false)

	unlock, err := l.Lock(context.Background(), "A")
	assert.ErrorIs(t, err, ErrNotAcquired)
	assert.Nil(t, unlock)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 待ち時間内に相手が解放すれば取れる
func TestLock_RetryUntilAcquired(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db, "", time.Second, WithTokenFunc(fixedToken), WithWait(time.Second, time.Millisecond))

	mock.ExpectSetNX("A", "token-1", time.Second).SetVal(false)
	mock.ExpectSetNX("A", "token-1", time.Second).SetVal(true)

	_, err := l.Lock(context.Background(), "A")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLock_RedisError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	l := New(db, "", time.Second, WithTokenFunc(fixedToken))

	mock.ExpectSetNX("A", "token-1", time.Second).SetErr(errors.New("connection refused"))

	_, err := l.Lock(context.Background(), "A")
	assert.EqualError(t, err, "connection refused")
}
