package clean

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"metascrub/internal/app/common"
	"metascrub/internal/domain/model"
	"metascrub/internal/infra/logging"
)

func TestRunDryRunGoldenJSON(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "photos")
	writeFile(t, filepath.Join(src, "a.jpg"), "aaa")
	writeFile(t, filepath.Join(src, "sub", "b.png"), "bb")
	writeFile(t, filepath.Join(src, "notes.txt"), "ignored")

	cleaner := &fakeCleaner{}
	app := &common.AppContext{Options: common.GlobalOptions{DryRun: true}, Logger: logging.NewNoopLogger(), Cleaner: cleaner}
	res, err := NewService().Run(context.Background(), app, src, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(cleaner.calls) != 0 {
		t.Fatalf("dry-run must not clean, got %v", cleaner.calls)
	}
	if _, err := os.Stat(filepath.Join(root, "photos_clean")); !os.IsNotExist(err) {
		t.Fatalf("dry-run must not create the destination: %v", err)
	}

	normalizeResult(&res, root)
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		t.Fatal(err)
	}

	want, err := os.ReadFile(filepath.Join("testdata", "clean_dry_run.golden.json"))
	if err != nil {
		t.Fatal(err)
	}

	got := strings.TrimSpace(string(b))
	w := strings.TrimSpace(string(want))
	if got != w {
		t.Fatalf("golden mismatch\n--- got ---\n%s\n--- want ---\n%s", got, w)
	}
}

func normalizeResult(res *model.CleanCommandResult, root string) {
	res.Timestamp = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	res.DurationMS = 0
	norm := func(p string) string { return strings.ReplaceAll(p, root, "$ROOT") }
	res.Plan.SourceRoot = norm(res.Plan.SourceRoot)
	res.Plan.DestRoot = norm(res.Plan.DestRoot)
	for i := range res.Plan.Pairs {
		res.Plan.Pairs[i].Source = norm(res.Plan.Pairs[i].Source)
		res.Plan.Pairs[i].Dest = norm(res.Plan.Pairs[i].Dest)
	}
	for i := range res.Results {
		res.Results[i].Source = norm(res.Results[i].Source)
		res.Results[i].Dest = norm(res.Results[i].Dest)
	}
}
