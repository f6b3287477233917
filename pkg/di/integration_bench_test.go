package di

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/goliatone/go-kaizen/kaizen"
	"github.com/goliatone/go-kaizen/pkg/testsupport"
)

// TestConcurrentAccess mixes reads and writes from many goroutines and checks
// that every cached record ends up equal to the stored one.
func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	base := testsupport.NewMemoryRepository()
	container, err := NewContainer(ctx, testConfig(t), WithLogger(quietLogger()), WithRepository(base))
	if err != nil {
		t.Fatalf("Failed to create DI container: %v", err)
	}
	repo := container.Repository()

	var ids []string
	for i := 0; i < 20; i++ {
		created, err := repo.Create(ctx, kaizen.Kaizen{Title: fmt.Sprintf("Kaizen %d", i)})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		ids = append(ids, created.ID)
	}

	const numGoroutines = 16
	const operationsPerGoroutine = 50

	var wg sync.WaitGroup
	errs := make(chan error, numGoroutines*operationsPerGoroutine)

	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < operationsPerGoroutine; j++ {
				id := ids[(worker+j)%len(ids)]
				switch j % 4 {
				case 0:
					if _, err := repo.List(ctx); err != nil {
						errs <- err
					}
				case 1:
					if _, err := repo.Update(ctx, id, kaizen.ImpactPatch(fmt.Sprintf("w%d-%d", worker, j))); err != nil {
						errs <- err
					}
				default:
					if _, err := repo.GetByID(ctx, id); err != nil {
						errs <- err
					}
				}
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("operation failed: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, id := range ids {
		stored, _ := base.Stored(id)
		got, err := repo.GetByID(ctx, id)
		if err != nil {
			t.Fatalf("get %s: %v", id, err)
		}
		if got.Impact != stored.Impact {
			t.Errorf("item %s: cached impact %q, stored %q", id, got.Impact, stored.Impact)
		}
	}
	for _, k := range list {
		stored, _ := base.Stored(k.ID)
		if k.Impact != stored.Impact {
			t.Errorf("list %s: cached impact %q, stored %q", k.ID, k.Impact, stored.Impact)
		}
	}
}

func BenchmarkCachedVsBaseRepository(b *testing.B) {
	ctx := context.Background()
	base := testsupport.NewMemoryRepository()
	created, err := base.Create(ctx, kaizen.Kaizen{Title: "bench"})
	if err != nil {
		b.Fatal(err)
	}

	container, err := NewContainer(ctx, benchConfig(b), WithLogger(quietLogger()), WithRepository(base))
	if err != nil {
		b.Fatal(err)
	}
	cached := container.Repository()

	b.Run("Base", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = base.GetByID(ctx, created.ID)
		}
	})

	b.Run("Cached", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = cached.GetByID(ctx, created.ID)
		}
	})

	b.Run("CachedList", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = cached.List(ctx)
		}
	})
}

func BenchmarkConcurrentCacheAccess(b *testing.B) {
	ctx := context.Background()
	base := testsupport.NewMemoryRepository()
	container, err := NewContainer(ctx, benchConfig(b), WithLogger(quietLogger()), WithRepository(base))
	if err != nil {
		b.Fatal(err)
	}
	repo := container.Repository()

	var ids []string
	for i := 0; i < 100; i++ {
		created, _ := repo.Create(ctx, kaizen.Kaizen{Title: fmt.Sprintf("k%d", i)})
		ids = append(ids, created.ID)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			_, _ = repo.GetByID(ctx, ids[i%len(ids)])
			i++
		}
	})
}
