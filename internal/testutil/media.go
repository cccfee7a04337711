// Package testutil builds small media fixtures with known metadata.
package testutil

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

// EXIF describes the fields written by BuildEXIF.
type EXIF struct {
	Orientation int
	Artist      string
	Copyright   string
	GPS         bool
}

type ifdEntry struct {
	tag     uint16
	typ     uint16
	count   uint32
	payload []byte
}

const (
	typeByte  = 1
	typeASCII = 2
	typeShort = 3
	typeLong  = 4
)

// BuildEXIF returns a big-endian TIFF block holding the requested fields.
func BuildEXIF(x EXIF) []byte {
	var ifd0 []ifdEntry
	if x.Orientation > 0 {
		ifd0 = append(ifd0, ifdEntry{0x0112, typeShort, 1, be16(uint16(x.Orientation))})
	}
	if x.Artist != "" {
		ifd0 = append(ifd0, ascii(0x013B, x.Artist))
	}
	if x.Copyright != "" {
		ifd0 = append(ifd0, ascii(0x8298, x.Copyright))
	}
	gpsIdx := -1
	if x.GPS {
		gpsIdx = len(ifd0)
		ifd0 = append(ifd0, ifdEntry{0x8825, typeLong, 1, nil})
	}

	dataStart := 8 + ifdSize(len(ifd0))
	var data []byte
	offsets := make(map[int]uint32)
	for i, e := range ifd0 {
		if len(e.payload) > 4 {
			offsets[i] = uint32(dataStart + len(data))
			data = append(data, e.payload...)
			if len(data)%2 == 1 {
				data = append(data, 0)
			}
		}
	}
	if gpsIdx >= 0 {
		ifd0[gpsIdx].payload = be32(uint32(dataStart + len(data)))
	}

	var buf bytes.Buffer
	buf.WriteString("MM")
	buf.Write(be16(0x2A))
	buf.Write(be32(8))
	writeIFD(&buf, ifd0, offsets)
	buf.Write(data)
	if gpsIdx >= 0 {
		gps := []ifdEntry{
			{0x0000, typeByte, 4, []byte{2, 2, 0, 0}},
			{0x0001, typeASCII, 2, []byte{'N', 0}},
		}
		writeIFD(&buf, gps, nil)
	}
	return buf.Bytes()
}

func ascii(tag uint16, s string) ifdEntry {
	p := append([]byte(s), 0)
	return ifdEntry{tag, typeASCII, uint32(len(p)), p}
}

func ifdSize(n int) int { return 2 + 12*n + 4 }

func writeIFD(buf *bytes.Buffer, entries []ifdEntry, offsets map[int]uint32) {
	buf.Write(be16(uint16(len(entries))))
	for i, e := range entries {
		buf.Write(be16(e.tag))
		buf.Write(be16(e.typ))
		buf.Write(be32(e.count))
		if off, ok := offsets[i]; ok {
			buf.Write(be32(off))
			continue
		}
		inline := make([]byte, 4)
		copy(inline, e.payload)
		buf.Write(inline)
	}
	buf.Write(be32(0))
}

func be16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

func be32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// Pattern returns a w x h image whose left half is red and right half blue.
func Pattern(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{R: 255, A: 255}
			if x >= w/2 {
				c = color.NRGBA{B: 255, A: 255}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// JPEG encodes a w x h pattern and, when tiff is not nil, embeds it as an
// APP1 EXIF segment right after SOI.
func JPEG(t testing.TB, w, h int, tiff []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, Pattern(w, h), &jpeg.Options{Quality: 90}); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	raw := buf.Bytes()
	if tiff == nil {
		return raw
	}
	payload := append([]byte("Exif\x00\x00"), tiff...)
	seg := append([]byte{0xFF, 0xE1}, be16(uint16(len(payload)+2))...)
	seg = append(seg, payload...)

	out := append([]byte{}, raw[:2]...)
	out = append(out, seg...)
	return append(out, raw[2:]...)
}

// WithSegment inserts a raw JPEG marker segment right after SOI.
func WithSegment(data []byte, marker byte, payload []byte) []byte {
	seg := append([]byte{0xFF, marker}, be16(uint16(len(payload)+2))...)
	seg = append(seg, payload...)
	out := append([]byte{}, data[:2]...)
	out = append(out, seg...)
	return append(out, data[2:]...)
}

// PNG encodes a w x h pattern and adds one tEXt chunk per key/value pair
// after IHDR.
func PNG(t testing.TB, w, h int, text map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, Pattern(w, h)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	raw := buf.Bytes()
	// signature (8) + IHDR (4 len + 4 type + 13 data + 4 crc)
	const afterIHDR = 33
	out := append([]byte{}, raw[:afterIHDR]...)
	for k, v := range text {
		out = append(out, PNGChunk("tEXt", append(append([]byte(k), 0), v...))...)
	}
	return append(out, raw[afterIHDR:]...)
}

// PNGChunk frames data as a PNG chunk with its CRC.
func PNGChunk(typ string, data []byte) []byte {
	out := be32(uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	return append(out, be32(crc.Sum32())...)
}

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
