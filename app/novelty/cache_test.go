package novelty

import (
	"context"
	"errors"
	"reflect"
	"sort"
	"testing"
)

type MockStore struct {
	keys       []string
	loadErr    error
	replaceErr error
	replaced   int
}

func (m *MockStore) LoadKeys(ctx context.Context) ([]string, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return append([]string(nil), m.keys...), nil
}

func (m *MockStore) ReplaceKeys(ctx context.Context, keys []string) error {
	m.replaced++
	if m.replaceErr != nil {
		return m.replaceErr
	}
	m.keys = append([]string(nil), keys...)
	return nil
}

func TestCache_ReplaceNotUnion(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{}

	cache, err := Open(ctx, store)
	if err != nil {
		t.Fatal(err)
	}

	cycle1 := []string{"A", "B", "C"}
	if fresh := cache.Diff(cycle1); !reflect.DeepEqual(fresh, []string{"A", "B", "C"}) {
		t.Errorf("Expected cycle 1 delta [A B C], got %v", fresh)
	}
	if err := cache.Commit(ctx, cycle1); err != nil {
		t.Fatal(err)
	}

	cycle2 := []string{"B", "C", "D"}
	if fresh := cache.Diff(cycle2); !reflect.DeepEqual(fresh, []string{"D"}) {
		t.Errorf("Expected cycle 2 delta [D], got %v", fresh)
	}
	if err := cache.Commit(ctx, cycle2); err != nil {
		t.Fatal(err)
	}

	persisted := append([]string(nil), store.keys...)
	sort.Strings(persisted)
	if !reflect.DeepEqual(persisted, []string{"B", "C", "D"}) {
		t.Errorf("Expected persisted cache [B C D], got %v", persisted)
	}
	if cache.Contains("A") {
		t.Error("Expected A to be forgotten after cycle 2")
	}

	// A resurfaces and is treated as new again
	if fresh := cache.Diff([]string{"A", "B"}); !reflect.DeepEqual(fresh, []string{"A"}) {
		t.Errorf("Expected resurfaced key to be new, got %v", fresh)
	}
}

func TestCache_OpenLoadsSnapshot(t *testing.T) {
	store := &MockStore{keys: []string{"X", "Y"}}

	cache, err := Open(context.Background(), store)
	if err != nil {
		t.Fatal(err)
	}

	if cache.Len() != 2 {
		t.Errorf("Expected 2 keys, got %d", cache.Len())
	}
	if fresh := cache.Diff([]string{"X", "Z", "Z"}); !reflect.DeepEqual(fresh, []string{"Z"}) {
		t.Errorf("Expected [Z], got %v", fresh)
	}
}

func TestCache_OpenError(t *testing.T) {
	_, err := Open(context.Background(), &MockStore{loadErr: errors.New("disk gone")})
	if err == nil {
		t.Fatal("Expected error when snapshot cannot be loaded")
	}
}

func TestCache_PersistFailureKeepsMemoryState(t *testing.T) {
	ctx := context.Background()
	store := &MockStore{keys: []string{"A"}}

	cache, err := Open(ctx, store)
	if err != nil {
		t.Fatal(err)
	}

	store.replaceErr = errors.New("read-only database")
	err = cache.Commit(ctx, []string{"B", "B"})
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Expected ErrPersist, got %v", err)
	}

	if cache.Contains("A") || !cache.Contains("B") {
		t.Error("Expected in-memory snapshot to be replaced despite persist failure")
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 key after de-duplication, got %d", cache.Len())
	}
}
