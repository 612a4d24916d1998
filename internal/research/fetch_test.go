package research

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
)

type memCache struct {
	data map[string]string
	sets int
}

func (m *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	m.sets++
	m.data[key] = value
	return nil
}

func newTestFetcher(cache Cache, sources ...string) *Fetcher {
	logger, _ := test.NewNullLogger()
	f := NewFetcher(cache, time.Hour, logger)
	f.Sources = sources
	return f
}

func TestSummarySkipsFailedSources(t *testing.T) {
	long := strings.Repeat("é", SnippetRunes+200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			w.Write([]byte("dengue info"))
		case "/long":
			w.Write([]byte(long))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := newTestFetcher(nil, srv.URL+"/ok", srv.URL+"/missing", "http://127.0.0.1:0/unreachable", srv.URL+"/long")
	got := f.Summary(context.Background())

	want := "Sumber: " + srv.URL + "/ok\nCuplikan: dengue info\n\n" +
		"Sumber: " + srv.URL + "/long\nCuplikan: " + strings.Repeat("é", SnippetRunes) + "\n\n"
	if got != want {
		t.Fatalf("unexpected summary:\n%q\nwant\n%q", got, want)
	}
}

func TestSummaryFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cache := &memCache{data: map[string]string{}}
	f := newTestFetcher(cache, srv.URL)
	if got := f.Summary(context.Background()); got != Fallback {
		t.Fatalf("expected fallback, got %q", got)
	}
	if cache.sets != 0 {
		t.Fatal("fallback text should not be cached")
	}
}

func TestSummaryTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	f := newTestFetcher(nil, srv.URL)
	f.Timeout = 50 * time.Millisecond
	if got := f.Summary(context.Background()); got != Fallback {
		t.Fatalf("expected fallback after timeout, got %q", got)
	}
}

func TestSummaryUsesCache(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("malaria"))
	}))
	defer srv.Close()

	cache := &memCache{data: map[string]string{}}
	f := newTestFetcher(cache, srv.URL)
	first := f.Summary(context.Background())
	second := f.Summary(context.Background())
	if n := atomic.LoadInt32(&hits); first != second || n != 1 || cache.sets != 1 {
		t.Fatalf("expected one fetch and one cache write, hits=%d sets=%d", n, cache.sets)
	}
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	c, err := NewRedisCache(ctx, url)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer c.Close()

	key := "test:" + time.Now().Format(time.RFC3339Nano)
	if _, ok, err := c.Get(ctx, key); err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}
	if err := c.Set(ctx, key, "ringkasan", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := c.Get(ctx, key)
	if err != nil || !ok || v != "ringkasan" {
		t.Fatalf("unexpected get: %q %v %v", v, ok, err)
	}
}
