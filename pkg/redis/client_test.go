package redis

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cableflow/cableflow-backend/pkg/config"
)

func newTestClient() (*Client, *fakeCommands) {
	fake := &fakeCommands{values: map[string]string{}, counters: map[string]int64{}, ttls: map[string]time.Duration{}}
	return &Client{cmd: fake}, fake
}

func TestFixedWindowAllowStartsTTLOnce(t *testing.T) {
	ctx := context.Background()
	client, fake := newTestClient()

	var results []bool
	for i := 0; i < 3; i++ {
		allowed, count, err := client.FixedWindowAllow(ctx, "quote-requests:user-1", 2, time.Hour)
		require.NoError(t, err)
		assert.EqualValues(t, i+1, count)
		results = append(results, allowed)
	}

	assert.Equal(t, []bool{true, true, false}, results)
	assert.Equal(t, 1, fake.expires)
	assert.Equal(t, time.Hour, fake.ttls["cf:rate_limit:quote-requests:user-1"])
}

func TestTokenRevocation(t *testing.T) {
	ctx := context.Background()
	client, fake := newTestClient()

	revoked, err := client.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, client.RevokeToken(ctx, "jti-1", 0))
	assert.Equal(t, time.Minute, fake.ttls["cf:revoked_token:jti-1"], "ttl is floored")

	revoked, err = client.IsTokenRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Error(t, client.RevokeToken(ctx, "  ", time.Hour))
}

func TestSetNXAndGet(t *testing.T) {
	ctx := context.Background()
	client, _ := newTestClient()

	_, err := client.Get(ctx, "missing")
	assert.ErrorIs(t, err, Nil)

	ok, err := client.SetNX(ctx, "k", "first", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = client.SetNX(ctx, "k", "second", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "first", got)

	require.NoError(t, client.Del(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, Nil)
}

func TestUnconnectedClient(t *testing.T) {
	var client *Client
	assert.ErrorIs(t, client.Ping(context.Background()), errNotConnected)
	assert.NoError(t, client.Close())
	assert.ErrorIs(t, (&Client{}).Set(context.Background(), "k", "v", 0), errNotConnected)
}

func TestKeys(t *testing.T) {
	client := &Client{}
	tests := map[string]string{
		client.IdempotencyKey("user|POST|/api/cart", "abc"): "cf:idempotency:user|POST|/api/cart:abc",
		client.RateLimitKey("scope"):                        "cf:rate_limit:scope",
		client.RevokedTokenKey("jti"):                       "cf:revoked_token:jti",
		client.LockKey(" "):                                 "cf:lock",
		(&Client{keys: "staging"}).LockKey("cron"):          "staging:lock:cron",
	}
	for got, want := range tests {
		assert.Equal(t, want, got)
	}
}

func TestBuildOptions(t *testing.T) {
	_, err := buildOptions(config.RedisConfig{})
	assert.Error(t, err)

	opts, err := buildOptions(config.RedisConfig{URL: "redis://localhost:6379/2", DB: 5, PoolSize: 7, DialTimeout: time.Second})
	require.NoError(t, err)
	assert.Equal(t, 2, opts.DB, "url db wins")
	assert.Equal(t, 7, opts.PoolSize)
	assert.Equal(t, time.Second, opts.DialTimeout)

	opts, err = buildOptions(config.RedisConfig{Address: "cache:6379", Password: "pw", DB: 3})
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, 3, opts.DB)
}

type fakeCommands struct {
	values   map[string]string
	counters map[string]int64
	ttls     map[string]time.Duration
	expires  int
}

func (f *fakeCommands) Ping(context.Context) *redis.StatusCmd {
	return redis.NewStatusResult("PONG", nil)
}

func (f *fakeCommands) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.values[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeCommands) Set(_ context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	f.values[key] = fmt.Sprint(value)
	f.ttls[key] = ttl
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeCommands) SetNX(ctx context.Context, key string, value any, ttl time.Duration) *redis.BoolCmd {
	if _, ok := f.values[key]; ok {
		return redis.NewBoolResult(false, nil)
	}
	f.Set(ctx, key, value, ttl)
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCommands) Incr(_ context.Context, key string) *redis.IntCmd {
	f.counters[key]++
	return redis.NewIntResult(f.counters[key], nil)
}

func (f *fakeCommands) Expire(_ context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires++
	f.ttls[key] = ttl
	return redis.NewBoolResult(true, nil)
}

func (f *fakeCommands) Exists(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, key := range keys {
		if _, ok := f.values[key]; ok {
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (f *fakeCommands) Del(_ context.Context, keys ...string) *redis.IntCmd {
	for _, key := range keys {
		delete(f.values, key)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}
