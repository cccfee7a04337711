package cmd

import (
	"os"
	"os/exec"
	"strings"
)

func isCharDevice(mode os.FileMode) bool {
	return mode&os.ModeCharDevice != 0
}

func isDumbTerm(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	return term == "" || term == "dumb"
}

func shouldUseInteractive(stdin, stdout os.FileMode, term string) bool {
	return isCharDevice(stdin) && isCharDevice(stdout) && !isDumbTerm(term)
}

func fileMode(f *os.File) os.FileMode {
	info, err := f.Stat()
	if err != nil {
		return 0
	}
	return info.Mode()
}

// stdinInteractive reports whether the menu can be shown.
func stdinInteractive() bool {
	return shouldUseInteractive(fileMode(os.Stdin), fileMode(os.Stdout), os.Getenv("TERM"))
}

// progressInteractive reports whether a progress view can be drawn on
// stderr without corrupting machine-readable output.
func progressInteractive() bool {
	if opts.JSON {
		return false
	}
	return shouldUseInteractive(fileMode(os.Stdin), fileMode(os.Stderr), os.Getenv("TERM"))
}

// runSelf re-executes the binary with args so a menu choice behaves exactly
// like the equivalent command line.
func runSelf(args ...string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	c := exec.Command(exe, args...)
	c.Stdin = os.Stdin
	c.Stdout = os.Stdout
	c.Stderr = os.Stderr
	return c.Run()
}
