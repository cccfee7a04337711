package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"metascrub/internal/domain/model"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func pathSet(items []model.MediaFile) map[string]model.MediaFile {
	out := make(map[string]model.MediaFile, len(items))
	for _, it := range items {
		out[it.Path] = it
	}
	return out
}

func TestScanFiltersSupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.JPG"))
	writeFile(t, filepath.Join(root, "nested", "b.mp4"))
	writeFile(t, filepath.Join(root, "nested", "c.flac"))
	writeFile(t, filepath.Join(root, "notes.txt"))

	items, err := Scan(context.Background(), root, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 media files, got %d", len(items))
	}
	got := pathSet(items)
	jpg, ok := got[filepath.Join(root, "a.JPG")]
	if !ok {
		t.Fatalf("expected upper-case extension to match")
	}
	if jpg.Ext != ".jpg" || jpg.Kind != model.KindImage || jpg.SizeBytes != 1 {
		t.Fatalf("unexpected media file: %+v", jpg)
	}
	if got[filepath.Join(root, "nested", "c.flac")].Kind != model.KindAudio {
		t.Fatalf("expected flac to be audio")
	}
}

func TestScanPrunesCleanTrees(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "keep", "ok.jpg"))
	writeFile(t, filepath.Join(root, "project_clean", "skip.jpg"))
	writeFile(t, filepath.Join(root, "project_clean", "deep", "skip.png"))
	writeFile(t, filepath.Join(root, "keep", "file_clean.jpg"))

	items, err := Scan(context.Background(), root, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	got := pathSet(items)
	if len(got) != 2 {
		t.Fatalf("expected 2 files, got %d: %v", len(got), items)
	}
	for p := range got {
		if filepath.Base(filepath.Dir(p)) == "project_clean" || filepath.Base(filepath.Dir(p)) == "deep" {
			t.Fatalf("excluded tree item found: %s", p)
		}
	}
}

func TestScanRootNamedCleanIsStillWalked(t *testing.T) {
	root := filepath.Join(t.TempDir(), "photos_clean")
	writeFile(t, filepath.Join(root, "a.jpg"))

	items, err := Scan(context.Background(), root, ScanOptions{})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected explicit root to be walked, got %d items", len(items))
	}
}

func TestScanHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	skipDir := filepath.Join(root, "out")
	writeFile(t, filepath.Join(root, "keep.jpg"))
	writeFile(t, filepath.Join(skipDir, "no.jpg"))

	items, err := Scan(context.Background(), root, ScanOptions{Excludes: []string{skipDir}})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	for _, it := range items {
		if filepath.Dir(it.Path) == skipDir {
			t.Fatalf("excluded directory item found: %s", it.Path)
		}
	}
}

func TestScanMissingRootFails(t *testing.T) {
	_, err := Scan(context.Background(), filepath.Join(t.TempDir(), "missing"), ScanOptions{})
	if err == nil {
		t.Fatalf("expected enumeration error for missing root")
	}
}

func TestScanStopsWhenContextCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := Scan(ctx, root, ScanOptions{}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestCountFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.jpg"))
	writeFile(t, filepath.Join(root, "x", "b.txt"))

	n, err := CountFiles(root)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("expected 2 files, got %d", n)
	}
	n, err = CountFiles(filepath.Join(root, "missing"))
	if err != nil || n != 0 {
		t.Fatalf("expected missing root to count zero, got %d %v", n, err)
	}
}
