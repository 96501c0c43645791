package cron

import (
	"context"
	"strings"
	"testing"
	"time"
)

type memoryRedis struct {
	values map[string]string
}

func (m *memoryRedis) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := m.values[key]; ok {
		return false, nil
	}
	m.values[key] = value.(string)
	return true, nil
}

func (m *memoryRedis) DelIfValue(_ context.Context, key, value string) (bool, error) {
	if m.values[key] != value {
		return false, nil
	}
	delete(m.values, key)
	return true, nil
}

func TestRedisLockExclusive(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	a, err := NewRedisLock(store, "cableflow:cron:lock", time.Minute, "worker-a")
	if err != nil {
		t.Fatalf("new lock: %v", err)
	}
	b, _ := NewRedisLock(store, "cableflow:cron:lock", time.Minute, "worker-b")
	ctx := context.Background()

	if ok, err := a.Acquire(ctx); err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}
	if !strings.HasPrefix(a.Owner(), "worker-a:") {
		t.Fatalf("unexpected owner %q", a.Owner())
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Fatal("second worker must not acquire a held lock")
	}
	if err := b.Release(ctx); err != nil {
		t.Fatalf("release by non-owner: %v", err)
	}
	if _, ok := store.values["cableflow:cron:lock"]; !ok {
		t.Fatal("non-owner release must not delete the lock")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Fatal("lock should be free after release")
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "k", time.Minute, ""); err == nil {
		t.Fatal("expected client requirement")
	}
	if _, err := NewRedisLock(&memoryRedis{}, "", time.Minute, ""); err == nil {
		t.Fatal("expected key requirement")
	}
}

func TestRedisLockReleaseAfterTakeover(t *testing.T) {
	store := &memoryRedis{values: map[string]string{}}
	a, _ := NewRedisLock(store, "lock", time.Minute, "worker-a")
	ctx := context.Background()

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("acquire failed")
	}
	store.values["lock"] = "worker-b:other"
	if err := a.Release(ctx); err != nil {
		t.Fatalf("release: %v", err)
	}
	if store.values["lock"] != "worker-b:other" {
		t.Fatal("release must not delete a lock taken over by another worker")
	}
	if a.Owner() != "" {
		t.Fatal("owner should reset after release")
	}
}
