package metadata

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"metascrub/internal/domain/model"
	"metascrub/internal/domain/risk"
	"metascrub/internal/domain/rules"
)

const (
	DefaultProbeTimeout = 3 * time.Second
	DefaultDumpTimeout  = 5 * time.Second
)

// ErrProbeUnavailable reports that a file needs the external probe and
// none is installed.
var ErrProbeUnavailable = errors.New("metadata probe unavailable")

// Prober reads container tags of audio and video files.
type Prober interface {
	Available() bool
	Probe(ctx context.Context, path string) (map[string]string, error)
}

type Options struct {
	ProbeTimeout time.Duration
	DumpTimeout  time.Duration
	Log          *zap.Logger
}

// Inspector extracts privacy-relevant metadata from media files. It never
// fails: unreadable or unparseable files yield an empty summary.
type Inspector struct {
	prober       Prober
	probeTimeout time.Duration
	dumpTimeout  time.Duration
	log          *zap.Logger
}

func NewInspector(prober Prober, opts Options) *Inspector {
	in := &Inspector{
		prober:       prober,
		probeTimeout: opts.ProbeTimeout,
		dumpTimeout:  opts.DumpTimeout,
		log:          opts.Log,
	}
	if in.probeTimeout <= 0 {
		in.probeTimeout = DefaultProbeTimeout
	}
	if in.dumpTimeout <= 0 {
		in.dumpTimeout = DefaultDumpTimeout
	}
	if in.log == nil {
		in.log = zap.NewNop()
	}
	return in
}

// Entry is one metadata field. Group is the EXIF directory for EXIF fields
// and empty for free-form tags. Binary is set for opaque payloads, holding
// their length in bytes.
type Entry struct {
	Group  string
	Key    string
	Value  string
	Binary int
}

type findings struct {
	entries []Entry
	summary model.MetadataSummary
}

func (in *Inspector) Inspect(ctx context.Context, path string) model.MetadataSummary {
	s, err := in.InspectFile(ctx, path)
	if err != nil {
		in.log.Debug("inspect failed", zap.String("path", path), zap.Error(err))
	}
	return s
}

// InspectFile is Inspect that also reports why the file could not be read.
// The summary is empty whenever err is set, so it is not a verdict on the
// file and must not be remembered.
func (in *Inspector) InspectFile(ctx context.Context, path string) (model.MetadataSummary, error) {
	f, err := in.read(ctx, path, in.probeTimeout)
	if err != nil {
		return model.MetadataSummary{}, err
	}
	return f.summary, nil
}

// Dump renders every metadata field of path as text.
func (in *Inspector) Dump(ctx context.Context, path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return renderDump(filepath.Base(path), -1, nil, err)
	}
	f, err := in.read(ctx, path, in.dumpTimeout)
	if errors.Is(err, ErrProbeUnavailable) {
		err = nil
	}
	return renderDump(filepath.Base(path), info.Size(), f.entries, err)
}

func (in *Inspector) read(ctx context.Context, path string, timeout time.Duration) (findings, error) {
	switch rules.KindOf(path) {
	case model.KindImage:
		return readImage(path)
	case model.KindVideo:
		return in.readProbe(ctx, path, timeout)
	case model.KindAudio:
		if in.probeAvailable() {
			return in.readProbe(ctx, path, timeout)
		}
		return readAudioTags(path)
	}
	return findings{}, nil
}

func (in *Inspector) probeAvailable() bool {
	return in.prober != nil && in.prober.Available()
}

func (in *Inspector) readProbe(ctx context.Context, path string, timeout time.Duration) (findings, error) {
	if !in.probeAvailable() {
		return findings{}, ErrProbeUnavailable
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tags, err := in.prober.Probe(probeCtx, path)
	if err != nil {
		return findings{}, err
	}
	return tagFindings(tags), nil
}

func tagFindings(tags map[string]string) findings {
	entries := make([]Entry, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		entries = append(entries, Entry{Key: k, Value: tags[k]})
	}
	return findings{entries: entries, summary: risk.SummarizeTags(tags)}
}

func readImage(path string) (findings, error) {
	switch rules.Ext(path) {
	case ".png":
		return readPNG(path)
	case ".jpg", ".jpeg", ".tif", ".tiff":
		return readEXIFFile(path)
	case ".webp":
		return readWebP(path)
	}
	return findings{}, nil
}
