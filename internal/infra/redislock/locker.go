package redislock

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 他のインスタンスがロック中
var ErrNotAcquired = errors.New("redislock: lock not acquired")

// 自分のトークンの時だけ消す
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker は SET NX PX による注文単位のロック。
type Locker struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	token  func() string
	logger *slog.Logger
}

type Option func(*Locker)

// ロック取得を待つ最大時間。0なら1回だけ試す
func WithWait(wait, retry time.Duration) Option {
	return func(l *Locker) {
		l.wait = wait
		if retry > 0 {
			l.retry = retry
		}
	}
}

func WithTokenFunc(fn func() string) Option {
	return func(l *Locker) { l.token = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Locker) { l.logger = logger }
}

func New(client redis.UniversalClient, prefix string, ttl time.Duration, opts ...Option) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	l := &Locker{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		retry:  50 * time.Millisecond,
		token:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Lock はキーを取る。返した unlock は必ず呼ぶこと。
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	fullKey := l.prefix + key
	token := l.token()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, fullKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(fullKey, token) }, nil
		}
		if l.wait <= 0 || time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}

func (l *Locker) release(key, token string) {
	// リクエストのctxがキャンセル済みでも解放する
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
		// TTL で自然に消えるので握りつぶす
		l.logger.Warn("redis lock release failed", "key", key, "err", err)
	}
}
