package cleaner

import (
	"bytes"
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bogem/id3v2/v2"

	"metascrub/internal/domain/model"
	"metascrub/internal/infra/metadata"
	"metascrub/internal/testutil"
)

type fakeRemuxer struct {
	off   bool
	err   error
	calls []bool
}

func (f *fakeRemuxer) Available() bool { return !f.off }

func (f *fakeRemuxer) Strip(_ context.Context, src, dst string, copyStreams bool) error {
	f.calls = append(f.calls, copyStreams)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dst, []byte("clean:"+filepath.Base(src)), 0o644)
}

func inspect(t *testing.T, path string) model.MetadataSummary {
	t.Helper()
	return metadata.NewInspector(nil, metadata.Options{}).Inspect(context.Background(), path)
}

func decodeSize(t *testing.T, path string) (int, int) {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode %s: %v", path, err)
	}
	return cfg.Width, cfg.Height
}

func TestCleanJPEGKeepsOnlyOrientation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src", "b.jpg")
	dst := filepath.Join(dir, "out", "nested", "b.jpg")
	testutil.WriteFile(t, src, testutil.JPEG(t, 8, 4, testutil.BuildEXIF(testutil.EXIF{Orientation: 6, Artist: "Jane", GPS: true})))

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded || res.Method != model.MethodExifRewrite {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := inspect(t, dst); got != (model.MetadataSummary{}) {
		t.Fatalf("expected clean summary, got %+v", got)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if o, ok := metadata.Orientation(bytes.NewReader(data)); !ok || o != 6 {
		t.Fatalf("expected orientation 6 to survive, got %d %v", o, ok)
	}
	if w, h := decodeSize(t, dst); w != 8 || h != 4 {
		t.Fatalf("expected untouched pixels 8x4, got %dx%d", w, h)
	}
}

func TestCleanJPEGWithoutOrientationHasNoEXIF(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	dst := filepath.Join(dir, "out", "a.jpg")
	data := testutil.JPEG(t, 8, 4, testutil.BuildEXIF(testutil.EXIF{Artist: "Jane"}))
	data = testutil.WithSegment(data, 0xFE, []byte("shot by Jane"))
	data = testutil.WithSegment(data, 0xED, []byte("Photoshop 3.0\x00iptc"))
	testutil.WriteFile(t, src, data)

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded {
		t.Fatalf("unexpected result: %+v", res)
	}
	out, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	for _, needle := range []string{"Exif", "Jane", "Photoshop"} {
		if bytes.Contains(out, []byte(needle)) {
			t.Fatalf("expected %q to be stripped", needle)
		}
	}
}

func TestCleanCorruptImageCopiesThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.jpg")
	dst := filepath.Join(dir, "out", "broken.jpg")
	testutil.WriteFile(t, src, []byte("definitely not a jpeg"))

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if res.Succeeded || res.Error == "" || res.Method != model.MethodCopy {
		t.Fatalf("expected failed copy-through, got %+v", res)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("expected destination to exist: %v", err)
	}
	if string(b) != "definitely not a jpeg" {
		t.Fatalf("expected verbatim copy, got %q", b)
	}
}

func TestCleanPNGDropsText(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "gen.png")
	dst := filepath.Join(dir, "out", "gen.png")
	testutil.WriteFile(t, src, testutil.PNG(t, 6, 3, map[string]string{"workflow": `{"nodes":[]}`}))
	if !inspect(t, src).HasAIMarker {
		t.Fatal("fixture should carry an AI marker")
	}

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded || res.Method != model.MethodReencode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if got := inspect(t, dst); got.HasAIMarker {
		t.Fatalf("expected AI marker to be gone, got %+v", got)
	}
	if w, h := decodeSize(t, dst); w != 6 || h != 3 {
		t.Fatalf("unexpected size %dx%d", w, h)
	}
}

func TestReencodeAppliesOrientation(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "r.jpg")
	dst := filepath.Join(dir, "out.jpg")
	testutil.WriteFile(t, src, testutil.JPEG(t, 8, 4, testutil.BuildEXIF(testutil.EXIF{Orientation: 6})))

	if err := reencode(src, dst, 0); err != nil {
		t.Fatal(err)
	}
	if w, h := decodeSize(t, dst); w != 4 || h != 8 {
		t.Fatalf("expected rotated 4x8, got %dx%d", w, h)
	}
	data, _ := os.ReadFile(dst)
	if _, ok := metadata.Orientation(bytes.NewReader(data)); ok {
		t.Fatal("re-encoded image must not carry orientation")
	}
}

func TestCleanVideoRemux(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "c.mp4")
	dst := filepath.Join(dir, "out", "c.mp4")
	testutil.WriteFile(t, src, []byte("video"))

	r := &fakeRemuxer{}
	res := New(r, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded || res.Method != model.MethodRemux {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(r.calls) != 1 || !r.calls[0] {
		t.Fatalf("expected one stream-copy call, got %v", r.calls)
	}
}

func TestCleanVideoRemuxFailureCopiesThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "c.mov")
	dst := filepath.Join(dir, "out", "c.mov")
	testutil.WriteFile(t, src, []byte("video"))

	res := New(&fakeRemuxer{err: errors.New("exit status 1")}, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if res.Succeeded || !strings.Contains(res.Error, "exit status 1") {
		t.Fatalf("expected failure, got %+v", res)
	}
	if b, _ := os.ReadFile(dst); string(b) != "video" {
		t.Fatalf("expected original bytes at destination, got %q", b)
	}
}

func TestCleanWithoutEncoderCopiesThrough(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "c.webm")
	dst := filepath.Join(dir, "out", "c.webm")
	testutil.WriteFile(t, src, []byte("video"))

	res := New(&fakeRemuxer{off: true}, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if res.Succeeded || res.Error == "" {
		t.Fatalf("expected failure, got %+v", res)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatalf("expected destination to exist: %v", err)
	}
}

func TestCleanMP3FallsBackToID3Strip(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "song.mp3")
	dst := filepath.Join(dir, "out", "song.mp3")
	testutil.WriteFile(t, src, bytes.Repeat([]byte{0xFF, 0xFB, 0x90, 0x00}, 64))

	tag, err := id3v2.Open(src, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	tag.SetArtist("Jane")
	tag.SetTitle("Secret")
	if err := tag.Save(); err != nil {
		t.Fatal(err)
	}
	tag.Close()

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded || res.Method != model.MethodID3Strip {
		t.Fatalf("unexpected result: %+v", res)
	}
	out, err := id3v2.Open(dst, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatal(err)
	}
	defer out.Close()
	if out.Artist() != "" || out.Title() != "" {
		t.Fatalf("expected tags to be gone, got artist=%q title=%q", out.Artist(), out.Title())
	}
}

func TestTruncateID3v1(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.mp3")
	trailer := append([]byte("TAG"), bytes.Repeat([]byte{'x'}, id3v1Size-3)...)
	testutil.WriteFile(t, path, append([]byte("audio"), trailer...))

	if err := truncateID3v1(path); err != nil {
		t.Fatal(err)
	}
	if b, _ := os.ReadFile(path); string(b) != "audio" {
		t.Fatalf("expected trailer to be removed, got %q", b)
	}
}

func TestCleanUnknownKindCopiesAsSuccess(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "notes.txt")
	dst := filepath.Join(dir, "out", "notes.txt")
	testutil.WriteFile(t, src, []byte("hello"))

	res := New(nil, Options{}).Clean(context.Background(), src, dst, model.ModeSmart)
	if !res.Succeeded || res.Method != model.MethodCopy {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCleanFullModeTranscodesImages(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.jpg")
	dst := filepath.Join(dir, "out", "a.jpg")
	testutil.WriteFile(t, src, testutil.JPEG(t, 4, 4, nil))

	r := &fakeRemuxer{}
	res := New(r, Options{}).Clean(context.Background(), src, dst, model.ModeFull)
	if !res.Succeeded || res.Method != model.MethodTranscode {
		t.Fatalf("unexpected result: %+v", res)
	}
	if len(r.calls) != 1 || r.calls[0] {
		t.Fatalf("expected one re-encoding call, got %v", r.calls)
	}
}

func TestCleanIsIdempotentOnCleanOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "b.jpg")
	first := filepath.Join(dir, "out1", "b.jpg")
	second := filepath.Join(dir, "out2", "b.jpg")
	testutil.WriteFile(t, src, testutil.JPEG(t, 8, 4, testutil.BuildEXIF(testutil.EXIF{Orientation: 3, Artist: "Jane", GPS: true})))

	c := New(nil, Options{})
	if res := c.Clean(context.Background(), src, first, model.ModeSmart); !res.Succeeded {
		t.Fatalf("first pass failed: %+v", res)
	}
	if res := c.Clean(context.Background(), first, second, model.ModeSmart); !res.Succeeded {
		t.Fatalf("second pass failed: %+v", res)
	}
	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if !bytes.Equal(a, b) {
		t.Fatal("expected a second pass over clean output to be a no-op")
	}
}

func TestOrientationEXIFDecodes(t *testing.T) {
	payload := orientationEXIF(8)
	if o, ok := metadata.Orientation(bytes.NewReader(bytes.TrimPrefix(payload, []byte("Exif\x00\x00")))); !ok || o != 8 {
		t.Fatalf("expected orientation 8, got %d %v", o, ok)
	}
}

func TestStripJPEGKeepsJFIFFirst(t *testing.T) {
	jfif := []byte("JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	exif := append([]byte("Exif\x00\x00"), testutil.BuildEXIF(testutil.EXIF{Orientation: 6, Artist: "Jane"})...)

	cases := map[string][]byte{
		// SOI, APP0, APP1
		"jfif before exif": testutil.WithSegment(testutil.WithSegment(testutil.JPEG(t, 8, 4, nil), markerAPP1, exif), markerAPP0, jfif),
		// SOI, APP1, APP0
		"exif before jfif": testutil.WithSegment(testutil.WithSegment(testutil.JPEG(t, 8, 4, nil), markerAPP0, jfif), markerAPP1, exif),
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			out, err := stripJPEG(src)
			if err != nil {
				t.Fatalf("stripJPEG: %v", err)
			}
			segs, err := splitJPEG(out)
			if err != nil {
				t.Fatalf("split output: %v", err)
			}
			if len(segs) < 2 || segs[0].marker != markerAPP0 || segs[1].marker != markerAPP1 {
				t.Fatalf("expected APP0 then APP1, got markers %02X %02X", segs[0].marker, segs[1].marker)
			}
			if o, ok := metadata.Orientation(bytes.NewReader(out)); !ok || o != 6 {
				t.Fatalf("orientation = %d, %v", o, ok)
			}
			if bytes.Contains(out, []byte("Jane")) {
				t.Fatalf("artist survived stripping")
			}
		})
	}
}
