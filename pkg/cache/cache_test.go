package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	// Get always returns miss
	data, hit, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit {
		t.Error("NullCache.Get should always return miss")
	}
	if data != nil {
		t.Error("NullCache.Get should return nil data")
	}

	if err := c.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = c.Get(ctx, "key"); hit {
		t.Error("NullCache should not store data")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	if _, hit, err := c.Get(ctx, "msa:1"); hit || err != nil {
		t.Fatalf("Get on empty cache = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "msa:1", []byte("ACGT"), time.Hour); err != nil {
		t.Fatal(err)
	}
	data, hit, err := c.Get(ctx, "msa:1")
	if err != nil || !hit || string(data) != "ACGT" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Delete(ctx, "msa:1"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "msa:1"); hit {
		t.Error("entry survived Delete")
	}
	if err := c.Delete(ctx, "msa:1"); err != nil {
		t.Errorf("Delete of missing key: %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())

	if err := c.Set(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(2 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(c.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}

	if err := c.Set(ctx, "forever", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := c.Get(ctx, "forever"); !hit {
		t.Error("entry without ttl missing")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry: hit %v, err %v", hit, err)
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, _ := NewFileCache(t.TempDir())
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}
	n, err := c.Clear()
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestInputHash(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		same bool
	}{
		{"identical", []string{"AC", "GT"}, []string{"AC", "GT"}, true},
		{"split point", []string{"AC", "G"}, []string{"A", "CG"}, false},
		{"order", []string{"AC", "GT"}, []string{"GT", "AC"}, false},
		{"empty sequence", []string{""}, nil, false},
		{"case", []string{"ac"}, []string{"AC"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := InputHash(tt.a) == InputHash(tt.b); got != tt.same {
				t.Errorf("InputHash equal = %v, want %v", got, tt.same)
			}
		})
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	h := InputHash([]string{"ACGT"})

	m1 := k.MSAKey(h, ResultKeyOpts{Params: "a"})
	m2 := k.MSAKey(h, ResultKeyOpts{Params: "b"})
	if m1 == m2 {
		t.Error("Different params should produce different keys")
	}
	if m1 == k.MSAKey(h, ResultKeyOpts{Params: "a", IncludeConsensus: true}) {
		t.Error("IncludeConsensus should change the MSA key")
	}
	if c := k.ConsensusKey(h, ResultKeyOpts{Params: "a"}); c == m1 || c[:10] != "consensus:" {
		t.Errorf("ConsensusKey unexpected: %s", c)
	}
}

func TestScopedKeyer(t *testing.T) {
	scoped := NewScopedKeyer(nil, "tenant:1:")
	inner := NewDefaultKeyer()
	opts := ResultKeyOpts{Params: "p"}
	if got, want := scoped.MSAKey("h", opts), "tenant:1:"+inner.MSAKey("h", opts); got != want {
		t.Errorf("MSAKey = %s, want %s", got, want)
	}
	if got, want := scoped.ConsensusKey("h", opts), "tenant:1:"+inner.ConsensusKey("h", opts); got != want {
		t.Errorf("ConsensusKey = %s, want %s", got, want)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	c, err := Open(ctx, "", dir)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != dir {
		t.Errorf("Open(\"\") = %T", c)
	}

	c, err = Open(ctx, "file://"+filepath.Join(dir, "alt"), dir)
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := c.(*FileCache); !ok || fc.Dir() != filepath.Join(dir, "alt") {
		t.Errorf("Open(file://) = %T", c)
	}

	if c, err = Open(ctx, "none", dir); err != nil {
		t.Fatal(err)
	} else if _, ok := c.(*NullCache); !ok {
		t.Errorf("Open(none) = %T", c)
	}

	if _, err := Open(ctx, "memcached://localhost", dir); !errors.Is(err, ErrUnsupportedURL) {
		t.Errorf("Open(memcached) error = %v", err)
	}
}

func TestRemoteBackendsRejectBadURLs(t *testing.T) {
	ctx := context.Background()
	if _, err := NewRedisCache(ctx, "http://localhost:6379"); err == nil {
		t.Error("NewRedisCache accepted an http URL")
	}
	if _, err := NewMongoCache(ctx, "mongodb://"); err == nil {
		t.Error("NewMongoCache accepted a URL without hosts")
	}
}

func TestBackendRetry(t *testing.T) {
	old := backoff
	backoff.Delay = time.Millisecond
	defer func() { backoff = old }()
	ctx := context.Background()

	calls := 0
	err := backoff.Retry(ctx, func() error {
		calls++
		if calls < 2 {
			return unavailable(errors.New("connection refused"))
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Errorf("retry once: err %v, calls %d", err, calls)
	}

	calls = 0
	err = backoff.Retry(ctx, func() error { calls++; return unavailable(errors.New("timeout")) })
	if !errors.Is(err, ErrUnavailable) || calls != 3 {
		t.Errorf("exhausted: err %v, calls %d", err, calls)
	}

	calls = 0
	err = backoff.Retry(ctx, func() error { calls++; return ErrUnsupportedURL })
	if err != ErrUnsupportedURL || calls != 1 {
		t.Errorf("permanent: err %v, calls %d", err, calls)
	}
}
