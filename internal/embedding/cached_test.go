package embedding

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestCachedEmbedder_RepeatedTextHitsCache(t *testing.T) {
	mock := NewMockEmbedder(8)
	c := NewCachedEmbedder(mock, NewEmbeddingCache(10))
	ctx := context.Background()

	first, err := c.Embed(ctx, "Luxury hotel with pool")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := c.Embed(ctx, "Luxury hotel with pool")
		if err != nil {
			t.Fatal(err)
		}
		if &again[0] != &first[0] {
			t.Error("expected the identical cached slice")
		}
	}
	if mock.Calls() != 1 {
		t.Errorf("provider calls: got %d, want 1", mock.Calls())
	}
	st := c.Stats()
	if st.Hits != 5 || st.Misses != 1 || st.Size != 1 || st.Capacity != 10 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestCachedEmbedder_EvictionCausesRefetch(t *testing.T) {
	mock := NewMockEmbedder(4)
	c := NewCachedEmbedder(mock, NewEmbeddingCache(2))
	ctx := context.Background()
	for _, text := range []string{"a", "b", "c", "a"} {
		if _, err := c.Embed(ctx, text); err != nil {
			t.Fatal(err)
		}
	}
	if got := mock.CallsFor("a"); got != 2 {
		t.Errorf("calls for evicted key: got %d, want 2", got)
	}
}

func TestCachedEmbedder_ErrorsNotCached(t *testing.T) {
	mock := NewMockEmbedder(4)
	boom := &ProviderError{Kind: KindStatus, StatusCode: 503, Err: errors.New("unavailable")}
	mock.FailOn("flaky", boom)
	c := NewCachedEmbedder(mock, NewEmbeddingCache(4))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := c.Embed(ctx, "flaky")
		if !errors.Is(err, boom) {
			t.Fatalf("expected provider error, got %v", err)
		}
	}
	if got := mock.CallsFor("flaky"); got != 2 {
		t.Errorf("failed text should be retried upstream each time, calls = %d", got)
	}
	if c.Stats().Size != 0 {
		t.Error("failed embeddings must not be stored")
	}
}

type slowEmbedder struct {
	calls   atomic.Int64
	release chan struct{}
}

func (s *slowEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	<-s.release
	return []float32{1, 2}, nil
}

func TestCachedEmbedder_ConcurrentMissesShareCall(t *testing.T) {
	slow := &slowEmbedder{release: make(chan struct{})}
	c := NewCachedEmbedder(slow, NewEmbeddingCache(4))

	const n = 10
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Embed(context.Background(), "same text"); err != nil {
				errs <- err
			}
		}()
	}
	// Give the goroutines time to join the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(slow.release)
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if got := slow.calls.Load(); got != 1 {
		t.Errorf("upstream calls: got %d, want 1", got)
	}
}

func TestCachedEmbedder_CanceledCallerDoesNotFailOthers(t *testing.T) {
	slow := &slowEmbedder{release: make(chan struct{})}
	c := NewCachedEmbedder(slow, NewEmbeddingCache(4))

	ctx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Embed(ctx, "shared text")
		leaderErr <- err
	}()
	// Let the first caller start the shared call before the second joins.
	time.Sleep(50 * time.Millisecond)

	follower := make(chan error, 1)
	go func() {
		_, err := c.Embed(context.Background(), "shared text")
		follower <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancel()
	select {
	case err := <-leaderErr:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("canceled caller: got %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("canceled caller kept waiting")
	}

	close(slow.release)
	select {
	case err := <-follower:
		if err != nil {
			t.Errorf("other caller failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("other caller did not finish")
	}

	if got := slow.calls.Load(); got != 1 {
		t.Errorf("upstream calls: got %d, want 1", got)
	}
	if _, err := c.Embed(context.Background(), "shared text"); err != nil {
		t.Fatal(err)
	}
	if got := slow.calls.Load(); got != 1 {
		t.Errorf("result should be cached after the shared call, upstream calls = %d", got)
	}
}
