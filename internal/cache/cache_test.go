package cache

import (
	"testing"
	"time"
)

func TestSetThenGetReturnsSameETag(t *testing.T) {
	c := New(true)
	etag := c.Set("schools", []byte(`[{"id":1}]`), time.Minute)

	data, got, ok := c.Get("schools")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != etag {
		t.Fatalf("etag mismatch: %q vs %q", got, etag)
	}
	if string(data) != `[{"id":1}]` {
		t.Fatalf("data = %s", data)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(true)
	c.Set("games", []byte(`[]`), 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	if _, _, ok := c.Get("games"); ok {
		t.Fatal("expired entry served")
	}
}

func TestDisabledCacheNeverHitsButStillHashes(t *testing.T) {
	c := New(false)
	etag := c.Set("schools", []byte(`[]`), time.Minute)
	if etag == "" {
		t.Fatal("disabled cache must still compute the ETag")
	}
	if _, _, ok := c.Get("schools"); ok {
		t.Fatal("disabled cache returned a hit")
	}
}

func TestInvalidateByPrefix(t *testing.T) {
	c := New(true)
	c.Set("games?sportId=1", []byte(`[]`), time.Minute)
	c.Set("games?sportId=2", []byte(`[]`), time.Minute)
	c.Set("schools", []byte(`[]`), time.Minute)

	c.Invalidate("games")

	if _, _, ok := c.Get("games?sportId=1"); ok {
		t.Fatal("prefixed entry survived invalidation")
	}
	if _, _, ok := c.Get("schools"); !ok {
		t.Fatal("unrelated entry was dropped")
	}
}

func TestETagIsContentDerived(t *testing.T) {
	a := ComputeETag([]byte(`[]`))
	b := ComputeETag([]byte(`[]`))
	if a != b {
		t.Fatal("equal payloads must hash equal")
	}
	if a == ComputeETag([]byte(`[1]`)) {
		t.Fatal("different payloads must hash different")
	}
	if a[0] != '"' || a[len(a)-1] != '"' {
		t.Fatalf("etag must be quoted, got %s", a)
	}
}
