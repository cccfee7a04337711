package safety

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

var blockedPaths = []string{
	"/",
	"/boot",
	"/bin",
	"/sbin",
	"/lib",
	"/lib64",
	"/usr",
	"/etc",
	"/proc",
	"/sys",
	"/dev",
	"/run",
	"/var",
}

// ValidatePath rejects malformed paths and paths that resolve into a
// blocked system location unless whitelisted.
func ValidatePath(path string, whitelist []string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", errors.New("PATH_INVALID: empty path")
	}
	if strings.ContainsRune(path, rune(0)) {
		return "", errors.New("PATH_INVALID: null byte")
	}
	for _, r := range path {
		if r < 32 {
			return "", errors.New("PATH_INVALID: control character")
		}
	}

	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("PATH_INVALID: %w", err)
	}
	if home, err := os.UserHomeDir(); err == nil && abs == filepath.Clean(home) {
		return "", fmt.Errorf("PATH_BLOCKED: %s", abs)
	}
	if isBlocked(abs) && !isWhitelisted(abs, whitelist) {
		return "", fmt.Errorf("PATH_BLOCKED: %s", abs)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		if isBlocked(resolved) && !isWhitelisted(resolved, whitelist) {
			return "", fmt.Errorf("SYMLINK_ESCAPE: %s", resolved)
		}
	}
	return abs, nil
}

// ValidateDestination checks an output tree before it is cleared: it must
// be a valid path and must neither be nor contain the source tree.
func ValidateDestination(dest, source string, whitelist []string) (string, error) {
	abs, err := ValidatePath(dest, whitelist)
	if err != nil {
		return "", err
	}
	src, err := filepath.Abs(filepath.Clean(source))
	if err != nil {
		return "", fmt.Errorf("PATH_INVALID: %w", err)
	}
	if withinRoot(src, abs) {
		return "", fmt.Errorf("PATH_BLOCKED: destination %s contains source %s", abs, src)
	}
	return abs, nil
}

// RemoveTree deletes path and everything below it. Entries that refuse
// deletion because they are read-only get their write bits restored and
// the removal is retried once.
func RemoveTree(path string, whitelist []string, dryRun bool) error {
	abs, err := ValidatePath(path, whitelist)
	if err != nil {
		return err
	}
	if dryRun {
		return nil
	}
	if err := removeAll(abs); err == nil {
		return nil
	}
	if err := makeWritable(abs); err != nil {
		return fmt.Errorf("clear read-only %s: %w", abs, err)
	}
	if err := removeAll(abs); err != nil {
		return fmt.Errorf("remove %s: %w", abs, err)
	}
	return nil
}

var removeAll = os.RemoveAll

func makeWritable(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		mode := info.Mode().Perm() | 0o200
		if d.IsDir() {
			mode |= 0o700
		}
		return os.Chmod(path, mode)
	})
}

func isBlocked(path string) bool {
	for _, p := range blockedPaths {
		if path == p || (p != "/" && strings.HasPrefix(path, p+"/")) {
			return true
		}
	}
	return false
}

func isWhitelisted(path string, whitelist []string) bool {
	for _, w := range whitelist {
		if withinRoot(path, filepath.Clean(w)) {
			return true
		}
	}
	return false
}

func withinRoot(path, root string) bool {
	if path == root {
		return true
	}
	if root == string(filepath.Separator) {
		return true
	}
	return strings.HasPrefix(path, root+string(filepath.Separator))
}
