package common

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"metascrub/internal/infra/system"
)

func TestNewAppContextWiresDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("METASCRUB_NO_OPLOG", "")
	t.Setenv("METASCRUB_FFMPEG", "")
	t.Setenv("METASCRUB_FFPROBE", "")

	orig := locateTools
	locateTools = func(string, string) system.Tools { return system.Tools{} }
	t.Cleanup(func() { locateTools = orig })

	app, err := NewAppContext(context.Background(), GlobalOptions{})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if app.Inspector == nil || app.Cleaner == nil || app.Logger == nil || app.Log == nil {
		t.Fatalf("expected wired context: %+v", app)
	}
	if app.Cache != nil {
		t.Fatal("cache must stay off by default")
	}
	if app.Config.JPEGQuality != 95 {
		t.Fatalf("expected default config, got %+v", app.Config)
	}
}

func TestNewAppContextOpensCacheAndHonorsNoOpLogEnv(t *testing.T) {
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("METASCRUB_NO_OPLOG", "1")
	t.Setenv("METASCRUB_FFMPEG", "")
	t.Setenv("METASCRUB_FFPROBE", "")
	cfgPath := filepath.Join(home, "cfg.yaml")
	cachePath := filepath.Join(home, "c", "summary.db")
	if err := os.WriteFile(cfgPath, []byte("cache: true\ncache_path: "+cachePath+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	orig := locateTools
	locateTools = func(string, string) system.Tools { return system.Tools{} }
	t.Cleanup(func() { locateTools = orig })

	app, err := NewAppContext(context.Background(), GlobalOptions{ConfigPath: cfgPath})
	if err != nil {
		t.Fatal(err)
	}
	defer app.Close()

	if !app.Options.NoOpLog {
		t.Fatal("expected env to disable the operation log")
	}
	if app.Cache == nil {
		t.Fatal("expected cache to be opened")
	}
	if _, err := os.Stat(filepath.Join(home, "metascrub", "operations.log")); !os.IsNotExist(err) {
		t.Fatalf("expected no operation log file, got %v", err)
	}
}

func TestNilContextAccessors(t *testing.T) {
	var app *AppContext
	if app.L() == nil || app.OpLog() == nil {
		t.Fatal("accessors must never return nil")
	}
	if err := app.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestFromContextRoundTrip(t *testing.T) {
	if _, err := FromContext(context.Background()); err == nil {
		t.Fatal("expected missing context error")
	}
	app := &AppContext{Options: GlobalOptions{JSON: true}}
	got, err := FromContext(WithApp(context.Background(), app))
	if err != nil || got != app {
		t.Fatalf("unexpected lookup: %v %v", got, err)
	}
}
