package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bft-labs/repokit/pkg/repository"
)

type kv struct{ K, V string }

func kvKey(e kv) string { return e.K }

func TestStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvKey)

	s.Save(ctx, kv{"a", "1"})
	s.Save(ctx, kv{"b", "2"})
	s.Save(ctx, kv{"a", "3"})

	all, _ := s.GetAll(ctx)
	if len(all) != 2 || all[0] != (kv{"a", "3"}) || all[1] != (kv{"b", "2"}) {
		t.Errorf("GetAll() = %v", all)
	}

	s.Delete(ctx, "a")
	if _, err := s.GetByID(ctx, "a"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("GetByID(a) error = %v, want ErrNotFound", err)
	}

	s.SaveAll(ctx, []kv{{"x", "9"}})
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}
}

func TestStore_GetAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvKey)
	s.Save(ctx, kv{"a", "1"})

	all, _ := s.GetAll(ctx)
	all[0].V = "mutated"

	got, _ := s.GetByID(ctx, "a")
	if got.V != "1" {
		t.Error("caller mutation leaked into the store")
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := NewStore(kvKey)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			s.Save(ctx, kv{K: string(rune('a' + i%26)), V: "v"})
		}(i)
		go func() {
			defer wg.Done()
			s.GetAll(ctx)
		}()
	}
	wg.Wait()

	if s.Len() != 26 {
		t.Errorf("Len() = %d, want 26", s.Len())
	}
}
