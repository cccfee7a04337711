package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"metascrub/internal/domain/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "summary.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	f := model.MediaFile{Path: "/m/b.jpg", SizeBytes: 42, LastModified: time.Unix(1700000000, 123)}
	want := model.MetadataSummary{HasGPS: true, HasAuthor: true}

	if err := c.Put(ctx, f, want); err != nil {
		t.Fatal(err)
	}
	got, ok := c.Get(ctx, f)
	if !ok || got != want {
		t.Fatalf("unexpected cache hit: %+v %v", got, ok)
	}
}

func TestGetMissesOnChangedFile(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	f := model.MediaFile{Path: "/m/b.jpg", SizeBytes: 42, LastModified: time.Unix(1700000000, 0)}
	if err := c.Put(ctx, f, model.MetadataSummary{HasGPS: true}); err != nil {
		t.Fatal(err)
	}

	resized := f
	resized.SizeBytes = 43
	if _, ok := c.Get(ctx, resized); ok {
		t.Fatal("expected miss after size change")
	}
	touched := f
	touched.LastModified = f.LastModified.Add(time.Second)
	if _, ok := c.Get(ctx, touched); ok {
		t.Fatal("expected miss after mtime change")
	}
}

func TestPutReplacesEntry(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	f := model.MediaFile{Path: "/m/c.mp4", SizeBytes: 1, LastModified: time.Unix(1, 0)}
	_ = c.Put(ctx, f, model.MetadataSummary{HasGPS: true})
	_ = c.Put(ctx, f, model.MetadataSummary{HasAIMarker: true})

	got, ok := c.Get(ctx, f)
	if !ok || got != (model.MetadataSummary{HasAIMarker: true}) {
		t.Fatalf("expected replaced entry, got %+v %v", got, ok)
	}
}

func TestPruneDropsMissingFiles(t *testing.T) {
	c := openTemp(t)
	ctx := context.Background()
	dir := t.TempDir()
	kept := filepath.Join(dir, "kept.jpg")
	if err := os.WriteFile(kept, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	epoch := time.Unix(0, 0)
	_ = c.Put(ctx, model.MediaFile{Path: kept, LastModified: epoch}, model.MetadataSummary{})
	_ = c.Put(ctx, model.MediaFile{Path: filepath.Join(dir, "gone.jpg"), LastModified: epoch}, model.MetadataSummary{})

	n, err := c.Prune(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected one stale entry, got %d", n)
	}
	if _, ok := c.Get(ctx, model.MediaFile{Path: kept, LastModified: epoch}); !ok {
		t.Fatal("expected existing file to stay cached")
	}
}

type fakeRows struct {
	paths  []string
	next   int
	err    error
	closed bool
}

func (r *fakeRows) Next() bool {
	if r.next >= len(r.paths) {
		return false
	}
	r.next++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.paths[r.next-1]
	return nil
}

func (r *fakeRows) Err() error { return r.err }

func (r *fakeRows) Close() error {
	r.closed = true
	return nil
}

func TestStalePathsReportsIterationError(t *testing.T) {
	dir := t.TempDir()
	interrupted := errors.New("interrupted")
	rows := &fakeRows{paths: []string{filepath.Join(dir, "gone.jpg")}, err: interrupted}

	stale, err := stalePaths(rows)
	if !errors.Is(err, interrupted) {
		t.Fatalf("expected iteration error, got %v", err)
	}
	if stale != nil {
		t.Fatalf("expected no stale paths from a partial listing, got %v", stale)
	}
	if !rows.closed {
		t.Fatal("rows not closed")
	}

	rows = &fakeRows{paths: []string{filepath.Join(dir, "gone.jpg")}}
	stale, err = stalePaths(rows)
	if err != nil || len(stale) != 1 {
		t.Fatalf("stale = %v, err = %v", stale, err)
	}
}
