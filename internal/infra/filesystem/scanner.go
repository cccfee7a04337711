package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"metascrub/internal/domain/model"
	"metascrub/internal/domain/rules"
)

type ScanOptions struct {
	// Excludes are absolute paths pruned in addition to "_clean" trees.
	Excludes []string
}

// Scan walks root and returns every supported media file in walk order.
// Directories whose path below root contains the clean marker are pruned
// with all their descendants. Any walk error aborts the scan.
func Scan(ctx context.Context, root string, opts ScanOptions) ([]model.MediaFile, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	items := make([]model.MediaFile, 0, 128)
	err = filepath.Walk(rootAbs, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if info.IsDir() {
			if path != rootAbs && (rules.IsExcluded(relative(rootAbs, path)) || shouldSkip(path, opts.Excludes)) {
				return filepath.SkipDir
			}
			return nil
		}
		if !info.Mode().IsRegular() || !rules.IsSupported(path) {
			return nil
		}

		items = append(items, model.MediaFile{
			Path:         path,
			Ext:          rules.Ext(path),
			Kind:         rules.KindOf(path),
			SizeBytes:    info.Size(),
			LastModified: info.ModTime().UTC(),
		})
		return nil
	})

	return items, err
}

func relative(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}

func shouldSkip(path string, excludes []string) bool {
	for _, ex := range excludes {
		if ex == "" {
			continue
		}
		if path == ex || strings.HasPrefix(path, ex+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// CountFiles returns the number of regular files below root.
func CountFiles(root string) (int, error) {
	n := 0
	err := filepath.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			n++
		}
		return nil
	})
	if os.IsNotExist(err) {
		return 0, nil
	}
	return n, err
}
