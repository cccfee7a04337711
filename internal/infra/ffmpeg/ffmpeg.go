package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"metascrub/internal/infra/filesystem"
)

var (
	ErrToolUnavailable = errors.New("ffmpeg: tool unavailable")
	ErrNoOutput        = errors.New("ffmpeg: no output produced")
)

var (
	runOutput = commandOutput
	runCmd    = commandRun
)

func commandOutput(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

func commandRun(ctx context.Context, name string, args ...string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Prober reads container-level tags with ffprobe.
type Prober struct {
	Path string
}

func NewProber(path string) Prober { return Prober{Path: path} }

func (p Prober) Available() bool { return p.Path != "" }

type probeOutput struct {
	Format struct {
		Tags map[string]any `json:"tags"`
	} `json:"format"`
}

// Probe returns the format tags of path. The caller bounds the run with ctx.
func (p Prober) Probe(ctx context.Context, path string) (map[string]string, error) {
	if !p.Available() {
		return nil, ErrToolUnavailable
	}
	out, err := runOutput(ctx, p.Path, "-v", "quiet", "-print_format", "json", "-show_format", path)
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}
	return ParseTags(out)
}

// ParseTags extracts format.tags from ffprobe JSON output. Non-string tag
// values are rendered with fmt.
func ParseTags(out []byte) (map[string]string, error) {
	var parsed probeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	tags := make(map[string]string, len(parsed.Format.Tags))
	for k, v := range parsed.Format.Tags {
		switch val := v.(type) {
		case string:
			tags[k] = val
		default:
			tags[k] = fmt.Sprint(val)
		}
	}
	return tags, nil
}

// Remuxer rewrites media files without their global metadata.
type Remuxer struct {
	Path string
}

func NewRemuxer(path string) Remuxer { return Remuxer{Path: path} }

func (r Remuxer) Available() bool { return r.Path != "" }

// TempPath is the scratch file used while producing dst.
func TempPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "temp_"+filepath.Base(dst))
}

// Strip writes src to dst with all metadata maps dropped. With copyStreams
// the streams are copied as-is; otherwise they are re-encoded. The output
// goes to TempPath(dst) first and replaces dst only when it exists. On any
// failure the temp file is removed.
func (r Remuxer) Strip(ctx context.Context, src, dst string, copyStreams bool) error {
	if !r.Available() {
		return ErrToolUnavailable
	}
	tmp := TempPath(dst)
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", src, "-map_metadata", "-1"}
	if copyStreams {
		args = append(args, "-c", "copy")
	}
	args = append(args, tmp)

	if err := runCmd(ctx, r.Path, args...); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("ffmpeg %s: %w", filepath.Base(src), err)
	}
	if _, err := os.Stat(tmp); err != nil {
		return ErrNoOutput
	}
	if err := filesystem.ReplaceFile(tmp, dst); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
