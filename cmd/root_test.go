package cmd

import (
	"os"
	"testing"
)

func TestTerminalDetection(t *testing.T) {
	if !isCharDevice(os.ModeCharDevice) || isCharDevice(0) {
		t.Fatalf("char device detection is wrong")
	}
	for _, term := range []string{"", "dumb", " DUMB "} {
		if !isDumbTerm(term) {
			t.Fatalf("expected %q to be treated as a dumb terminal", term)
		}
	}
	if isDumbTerm("xterm-256color") {
		t.Fatalf("xterm-256color treated as dumb")
	}
}

func TestShouldUseInteractive(t *testing.T) {
	tests := []struct {
		name     string
		stdin    os.FileMode
		stdout   os.FileMode
		term     string
		expected bool
	}{
		{name: "interactive tty", stdin: os.ModeCharDevice, stdout: os.ModeCharDevice, term: "xterm-256color", expected: true},
		{name: "stdin piped", stdin: 0, stdout: os.ModeCharDevice, term: "xterm-256color", expected: false},
		{name: "output redirected", stdin: os.ModeCharDevice, stdout: 0, term: "xterm-256color", expected: false},
		{name: "dumb term", stdin: os.ModeCharDevice, stdout: os.ModeCharDevice, term: "dumb", expected: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := shouldUseInteractive(tc.stdin, tc.stdout, tc.term); got != tc.expected {
				t.Fatalf("got %v want %v", got, tc.expected)
			}
		})
	}
}

func TestProgressInteractiveDisabledForJSON(t *testing.T) {
	saved := opts
	t.Cleanup(func() { opts = saved })
	t.Setenv("TERM", "xterm-256color")

	opts.JSON = true
	if progressInteractive() {
		t.Fatalf("progress view must stay off when --json is set")
	}
}

func TestRootRegistersCommandsAndFlags(t *testing.T) {
	for _, name := range []string{"scan", "clean", "dump", "compare", "diagnose"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Fatalf("command %q not registered: %v", name, err)
		}
	}
	for _, flag := range []string{"config", "json", "dry-run", "debug", "no-oplog", "yes"} {
		if rootCmd.PersistentFlags().Lookup(flag) == nil {
			t.Fatalf("persistent flag --%s missing", flag)
		}
	}
}

func TestFolderArgDefaultsToWorkingDir(t *testing.T) {
	if got := folderArg(nil); got != "." {
		t.Fatalf("folderArg(nil) = %q", got)
	}
	if got := folderArg([]string{""}); got != "." {
		t.Fatalf("folderArg(empty) = %q", got)
	}
	if got := folderArg([]string{"photos"}); got != "photos" {
		t.Fatalf("folderArg(photos) = %q", got)
	}
}
