package cleaner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"metascrub/internal/domain/model"
	"metascrub/internal/domain/rules"
	"metascrub/internal/infra/ffmpeg"
	"metascrub/internal/infra/filesystem"
)

// Remuxer rewrites audio, video and images through an external encoder.
type Remuxer interface {
	Available() bool
	Strip(ctx context.Context, src, dst string, copyStreams bool) error
}

type Options struct {
	JPEGQuality int
	Log         *zap.Logger
}

// Cleaner writes metadata-free copies of media files. A readable source
// always produces a destination file, even when cleaning fails.
type Cleaner struct {
	remuxer     Remuxer
	jpegQuality int
	log         *zap.Logger
}

func New(remuxer Remuxer, opts Options) *Cleaner {
	c := &Cleaner{remuxer: remuxer, jpegQuality: opts.JPEGQuality, log: opts.Log}
	if c.jpegQuality <= 0 {
		c.jpegQuality = DefaultJPEGQuality
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

func (c *Cleaner) Clean(ctx context.Context, src, dst string, mode model.CleanMode) model.CleanResult {
	res := model.CleanResult{Source: src, Dest: dst}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return failed(res, model.MethodCopy, err)
	}

	kind := rules.KindOf(src)
	if kind == model.KindUnknown {
		return c.copyThrough(res, nil)
	}
	if mode == model.ModeFull {
		return c.transcode(ctx, res, src, dst, model.MethodTranscode, false)
	}

	switch kind {
	case model.KindImage:
		return c.cleanImage(ctx, res, src, dst)
	default:
		return c.transcode(ctx, res, src, dst, model.MethodRemux, true)
	}
}

func (c *Cleaner) cleanImage(ctx context.Context, res model.CleanResult, src, dst string) model.CleanResult {
	if !rules.IsReencodable(src) {
		return c.transcode(ctx, res, src, dst, model.MethodReencode, false)
	}
	if rules.IsJPEG(src) {
		err := rewriteJPEG(src, dst)
		if err == nil {
			res.Succeeded = true
			res.Method = model.MethodExifRewrite
			return res
		}
		c.log.Debug("jpeg rewrite failed, re-encoding", zap.String("path", src), zap.Error(err))
	}
	if err := reencode(src, dst, c.jpegQuality); err != nil {
		return c.copyThrough(res, fmt.Errorf("re-encode: %w", err))
	}
	res.Succeeded = true
	res.Method = model.MethodReencode
	return res
}

// transcode runs the external encoder. Without it, MP3 files fall back to
// tag stripping and everything else is copied through as a failure.
func (c *Cleaner) transcode(ctx context.Context, res model.CleanResult, src, dst string, method model.CleanMethod, copyStreams bool) model.CleanResult {
	if c.remuxer == nil || !c.remuxer.Available() {
		if rules.Ext(src) == ".mp3" {
			if err := stripID3(src, dst); err != nil {
				return c.copyThrough(res, fmt.Errorf("id3 strip: %w", err))
			}
			res.Succeeded = true
			res.Method = model.MethodID3Strip
			return res
		}
		return c.copyThrough(res, ffmpeg.ErrToolUnavailable)
	}

	if err := c.remuxer.Strip(ctx, src, dst, copyStreams); err != nil {
		return c.copyThrough(res, err)
	}
	res.Succeeded = true
	res.Method = method
	return res
}

// copyThrough copies the source verbatim. A nil cause reports success.
func (c *Cleaner) copyThrough(res model.CleanResult, cause error) model.CleanResult {
	const method = model.MethodCopy
	if cause != nil {
		c.log.Warn("clean failed, copying original", zap.String("path", res.Source), zap.Error(cause))
	}
	if err := filesystem.CopyFile(res.Source, res.Dest); err != nil {
		return failed(res, method, errors.Join(cause, err))
	}
	if cause != nil {
		return failed(res, method, cause)
	}
	res.Succeeded = true
	res.Method = method
	return res
}

func failed(res model.CleanResult, method model.CleanMethod, err error) model.CleanResult {
	res.Succeeded = false
	res.Method = method
	if err != nil {
		res.Error = err.Error()
	}
	return res
}
