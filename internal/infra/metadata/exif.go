package metadata

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/rwcarlsen/goexif/exif"
	"github.com/rwcarlsen/goexif/tiff"

	"metascrub/internal/domain/model"
)

const (
	groupEXIF = "EXIF"
	groupGPS  = "GPS"

	// binaryThreshold is the size above which undefined-type values are
	// shown as a byte count.
	binaryThreshold = 100
)

var exifHeader = []byte("Exif\x00\x00")

type exifWalker struct {
	entries []Entry
	summary model.MetadataSummary
}

func (w *exifWalker) Walk(name exif.FieldName, tag *tiff.Tag) error {
	key := string(name)
	group := groupEXIF
	if strings.HasPrefix(key, "GPS") {
		group = groupGPS
		if name != exif.GPSInfoIFDPointer {
			w.summary.HasGPS = true
		}
	}
	if name == exif.Artist || name == exif.Copyright {
		w.summary.HasAuthor = true
	}

	e := Entry{Group: group, Key: key}
	if tag.Type == tiff.DTUndefined && len(tag.Val) > binaryThreshold {
		e.Binary = len(tag.Val)
	} else {
		e.Value = trimQuotes(tag.String())
	}
	w.entries = append(w.entries, e)
	return nil
}

func trimQuotes(v string) string {
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

// decodeEXIF reads an EXIF block from a JPEG stream, a TIFF file or a raw
// TIFF payload. A missing or undecodable block yields no findings.
func decodeEXIF(r io.Reader) findings {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return findings{}
	}
	w := &exifWalker{}
	_ = x.Walk(w)
	sort.SliceStable(w.entries, func(i, j int) bool {
		if w.entries[i].Group != w.entries[j].Group {
			return w.entries[i].Group < w.entries[j].Group
		}
		return w.entries[i].Key < w.entries[j].Key
	})
	return findings{entries: w.entries, summary: w.summary}
}

func readEXIFFile(path string) (findings, error) {
	f, err := os.Open(path)
	if err != nil {
		return findings{}, err
	}
	defer f.Close()
	return decodeEXIF(f), nil
}

// readWebP decodes the EXIF chunk of a RIFF/WebP container.
func readWebP(path string) (findings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return findings{}, err
	}
	payload := webpEXIF(data)
	if payload == nil {
		return findings{}, nil
	}
	return decodeEXIF(bytes.NewReader(payload)), nil
}

func webpEXIF(data []byte) []byte {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WEBP" {
		return nil
	}
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		offset += 8
		if size < 0 || offset+size > len(data) {
			return nil
		}
		if id == "EXIF" {
			return bytes.TrimPrefix(data[offset:offset+size], exifHeader)
		}
		offset += size + size%2
	}
	return nil
}

// Orientation returns the EXIF orientation (1-8) stored in r, if any.
func Orientation(r io.Reader) (int, bool) {
	x, err := exif.Decode(r)
	if err != nil && (x == nil || exif.IsCriticalError(err)) {
		return 0, false
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 0, false
	}
	v, err := tag.Int(0)
	if err != nil || v < 1 || v > 8 {
		return 0, false
	}
	return v, true
}
