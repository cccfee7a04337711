package cleaner

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image/jpeg"
	"os"

	"metascrub/internal/infra/metadata"
)

const (
	markerSOI  = 0xD8
	markerEOI  = 0xD9
	markerSOS  = 0xDA
	markerAPP0 = 0xE0
	markerAPP1 = 0xE1
	markerAPPD = 0xED
	markerCOM  = 0xFE
)

var errNotJPEG = errors.New("not a JPEG stream")

type jpegSegment struct {
	marker byte
	data   []byte
}

// splitJPEG cuts a JPEG stream into marker segments. The segment holding
// SOS keeps the entropy-coded data and everything after it.
func splitJPEG(data []byte) ([]jpegSegment, error) {
	if len(data) < 4 || data[0] != 0xFF || data[1] != markerSOI {
		return nil, errNotJPEG
	}
	var segs []jpegSegment
	i := 2
	for i < len(data) {
		if data[i] != 0xFF {
			return nil, fmt.Errorf("jpeg: expected marker at offset %d", i)
		}
		for i < len(data) && data[i] == 0xFF {
			i++
		}
		if i >= len(data) {
			break
		}
		marker := data[i]
		i++

		if marker == markerEOI {
			segs = append(segs, jpegSegment{marker: marker})
			return segs, nil
		}
		if marker == 0x01 || (marker >= 0xD0 && marker <= 0xD7) {
			segs = append(segs, jpegSegment{marker: marker})
			continue
		}
		if i+2 > len(data) {
			return nil, fmt.Errorf("jpeg: truncated segment 0x%02X", marker)
		}
		n := int(binary.BigEndian.Uint16(data[i : i+2]))
		if n < 2 || i+n > len(data) {
			return nil, fmt.Errorf("jpeg: bad length for segment 0x%02X", marker)
		}
		if marker == markerSOS {
			segs = append(segs, jpegSegment{marker: marker, data: data[i:]})
			return segs, nil
		}
		segs = append(segs, jpegSegment{marker: marker, data: data[i+2 : i+n]})
		i += n
	}
	return nil, errors.New("jpeg: missing SOS")
}

func joinJPEG(segs []jpegSegment) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, markerSOI})
	for _, s := range segs {
		buf.Write([]byte{0xFF, s.marker})
		switch {
		case s.marker == markerSOS:
			buf.Write(s.data)
		case s.data == nil:
		default:
			var n [2]byte
			binary.BigEndian.PutUint16(n[:], uint16(len(s.data)+2))
			buf.Write(n[:])
			buf.Write(s.data)
		}
	}
	return buf.Bytes()
}

func isMetadataSegment(marker byte) bool {
	return marker == markerAPP1 || marker == markerAPPD || marker == markerCOM
}

// orientationEXIF is an APP1 payload whose only field is the orientation.
func orientationEXIF(orientation int) []byte {
	b := []byte("Exif\x00\x00")
	b = append(b, 'M', 'M', 0x00, 0x2A, 0x00, 0x00, 0x00, 0x08)
	b = append(b, 0x00, 0x01)             // one entry
	b = append(b, 0x01, 0x12, 0x00, 0x03) // Orientation, SHORT
	b = append(b, 0x00, 0x00, 0x00, 0x01) // count
	b = append(b, byte(orientation>>8), byte(orientation), 0x00, 0x00)
	b = append(b, 0x00, 0x00, 0x00, 0x00) // no next IFD
	return b
}

// stripJPEG drops EXIF, XMP, IPTC and comment segments from data. When the
// source carried an orientation, a minimal EXIF block keeps it so the image
// still displays upright.
func stripJPEG(data []byte) ([]byte, error) {
	segs, err := splitJPEG(data)
	if err != nil {
		return nil, err
	}
	orientation, hasOrientation := metadata.Orientation(bytes.NewReader(data))

	kept := make([]jpegSegment, 0, len(segs)+1)
	for _, s := range segs {
		if !isMetadataSegment(s.marker) {
			kept = append(kept, s)
		}
	}
	if hasOrientation {
		// JFIF requires APP0 to directly follow SOI.
		at := 0
		if len(kept) > 0 && kept[0].marker == markerAPP0 {
			at = 1
		}
		kept = append(kept[:at], append([]jpegSegment{{marker: markerAPP1, data: orientationEXIF(orientation)}}, kept[at:]...)...)
	}
	out := joinJPEG(kept)
	if _, err := jpeg.DecodeConfig(bytes.NewReader(out)); err != nil {
		return nil, fmt.Errorf("jpeg: rewritten stream does not decode: %w", err)
	}
	return out, nil
}

func rewriteJPEG(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	out, err := stripJPEG(data)
	if err != nil {
		return err
	}
	return writeOutput(src, dst, out)
}

func writeOutput(src, dst string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(src); err == nil {
		mode = info.Mode().Perm() | 0o200
	}
	return os.WriteFile(dst, data, mode)
}
