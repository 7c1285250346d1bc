package cache

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type recordingKeyStore struct {
	mu        sync.Mutex
	keys      []string
	keysErr   error
	deleteErr error
	patterns  []string
	deleted   [][]string
}

func (s *recordingKeyStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns = append(s.patterns, pattern)
	return s.keys, s.keysErr
}

func (s *recordingKeyStore) DeleteKeys(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, keys)
	return s.deleteErr
}

func seedStore(t *testing.T, keys ...string) Store {
	t.Helper()
	store, err := NewCacheService(DefaultConfig())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	for _, key := range keys {
		if _, err := GetOrFetch(context.Background(), store, key, func(ctx context.Context) (string, error) {
			return "cached", nil
		}); err != nil {
			t.Fatalf("seed %s: %v", key, err)
		}
	}
	return store
}

func remainingKeys(t *testing.T, store Store) []string {
	t.Helper()
	keys, err := store.Keys(context.Background(), "*")
	if err != nil {
		t.Fatalf("list keys: %v", err)
	}
	sort.Strings(keys)
	return keys
}

func TestInvalidator_NarrowAndBroad(t *testing.T) {
	ctx := context.Background()

	t.Run("narrow removes one key", func(t *testing.T) {
		store := seedStore(t, "catalog_7", "catalog_8", "catalog_70")
		inv := NewInvalidator(store)

		deleted, err := inv.Narrow(ctx, "catalog", 7)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 1 {
			t.Errorf("expected 1 deleted key, got %d", deleted)
		}
		keys := remainingKeys(t, store)
		if len(keys) != 2 || keys[0] != "catalog_70" || keys[1] != "catalog_8" {
			t.Errorf("unexpected remaining keys %v", keys)
		}
	})

	t.Run("broad removes the namespace", func(t *testing.T) {
		store := seedStore(t, "catalog_7", "catalog_8", "setmeal_7")
		inv := NewInvalidator(store)

		deleted, err := inv.Broad(ctx, "catalog")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if deleted != 2 {
			t.Errorf("expected 2 deleted keys, got %d", deleted)
		}
		keys := remainingKeys(t, store)
		if len(keys) != 1 || keys[0] != "setmeal_7" {
			t.Errorf("unexpected remaining keys %v", keys)
		}
	})

	t.Run("no match is a no-op", func(t *testing.T) {
		store := &recordingKeyStore{}
		inv := NewInvalidator(store)

		deleted, err := inv.Invalidate(ctx, "dish_*")
		if err != nil || deleted != 0 {
			t.Errorf("expected no-op, got %d %v", deleted, err)
		}
		if len(store.deleted) != 0 {
			t.Error("delete must not be called without matches")
		}
	})
}

func TestInvalidator_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty pattern", func(t *testing.T) {
		inv := NewInvalidator(&recordingKeyStore{})
		if _, err := inv.Invalidate(ctx, ""); !errors.Is(err, ErrEmptyPattern) {
			t.Errorf("expected ErrEmptyPattern, got %v", err)
		}
		if _, err := inv.Broad(ctx, ""); !errors.Is(err, ErrEmptyPattern) {
			t.Errorf("expected ErrEmptyPattern, got %v", err)
		}
		if _, err := inv.Narrow(ctx, "", 1); !errors.Is(err, ErrEmptyPattern) {
			t.Errorf("expected ErrEmptyPattern, got %v", err)
		}
	})

	t.Run("keys failure", func(t *testing.T) {
		want := errors.New("scan failed")
		inv := NewInvalidator(&recordingKeyStore{keysErr: want})
		if _, err := inv.Broad(ctx, "dish"); !errors.Is(err, want) {
			t.Errorf("expected wrapped %v, got %v", want, err)
		}
	})

	t.Run("delete failure", func(t *testing.T) {
		want := errors.New("del failed")
		inv := NewInvalidator(&recordingKeyStore{keys: []string{"dish_1"}, deleteErr: want})
		deleted, err := inv.Broad(ctx, "dish")
		if !errors.Is(err, want) {
			t.Errorf("expected wrapped %v, got %v", want, err)
		}
		if deleted != 0 {
			t.Errorf("expected 0 deleted, got %d", deleted)
		}
	})
}

func TestInvalidator_Hook(t *testing.T) {
	store := &recordingKeyStore{keys: []string{"dish_1", "dish_2"}}

	var gotPattern string
	var gotDeleted int
	inv := NewInvalidator(store, WithInvalidationHook(func(ctx context.Context, pattern string, deleted int, err error) {
		gotPattern, gotDeleted = pattern, deleted
	}))

	if _, err := inv.Broad(context.Background(), "dish"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPattern != "dish_*" || gotDeleted != 2 {
		t.Errorf("unexpected hook call %q %d", gotPattern, gotDeleted)
	}
	if len(store.deleted) != 1 || len(store.deleted[0]) != 2 {
		t.Errorf("expected a single batched delete, got %v", store.deleted)
	}
}

func TestInvalidator_PanickingHook(t *testing.T) {
	store := &recordingKeyStore{keys: []string{"dish_1"}}
	logger, logs := logtest.NewNullLogger()

	inv := NewInvalidator(store,
		WithInvalidationLogger(logger),
		WithInvalidationHook(func(ctx context.Context, pattern string, deleted int, err error) {
			panic("counter vector mismatch")
		}))

	deleted, err := inv.Narrow(context.Background(), "dish", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted key, got %d", deleted)
	}

	entry := logs.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning, got %v", logs.AllEntries())
	}
	if entry.Message != "invalidation hook panicked" {
		t.Errorf("unexpected message %q", entry.Message)
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{Key("dish", 7), "dish_7"},
		{NarrowPattern("dish", "a*b"), `dish_a\*b`},
		{BroadPattern("dish"), "dish_*"},
		{BroadPattern("odd[ns]"), `odd\[ns\]_*`},
		{EscapePattern(`a?b\c`), `a\?b\\c`},
		{EscapePattern("plain"), "plain"},
		{NarrowPattern("dish", "{1,2}"), `dish_\{1\,2\}`},
	}

	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
