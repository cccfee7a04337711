package metadata

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"io"
	"os"

	"metascrub/internal/domain/risk"
)

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

var errNotPNG = errors.New("not a PNG file")

// maxChunkLength is the largest length the PNG format allows (2^31-1).
const maxChunkLength = 1<<31 - 1

type pngChunk struct {
	typ  string
	data []byte
}

// readPNGChunks returns the chunks of a PNG stream up to IEND. A truncated
// stream ends the list without an error. Chunk payloads are read
// incrementally, so a corrupt length costs no more memory than the bytes
// actually present.
func readPNGChunks(r io.Reader) ([]pngChunk, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, err
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errNotPNG
	}

	var chunks []pngChunk
	head := make([]byte, 8)
	for {
		if _, err := io.ReadFull(r, head); err != nil {
			break
		}
		length := binary.BigEndian.Uint32(head[0:4])
		typ := string(head[4:8])
		if length > maxChunkLength {
			break
		}
		var data bytes.Buffer
		if _, err := io.CopyN(&data, r, int64(length)); err != nil {
			break
		}
		crc := make([]byte, 4)
		if _, err := io.ReadFull(r, crc); err != nil {
			break
		}
		chunks = append(chunks, pngChunk{typ: typ, data: data.Bytes()})
		if typ == "IEND" {
			break
		}
	}
	return chunks, nil
}

func readPNG(path string) (findings, error) {
	f, err := os.Open(path)
	if err != nil {
		return findings{}, err
	}
	defer f.Close()

	chunks, err := readPNGChunks(f)
	if err != nil {
		return findings{}, err
	}

	var out findings
	text := map[string]string{}
	for _, c := range chunks {
		switch c.typ {
		case "tEXt", "zTXt", "iTXt":
			key, val, ok := decodeTextChunk(c.typ, c.data)
			if !ok {
				continue
			}
			text[key] = val
			out.entries = append(out.entries, Entry{Key: key, Value: val})
		case "eXIf":
			x := decodeEXIF(bytes.NewReader(bytes.TrimPrefix(c.data, exifHeader)))
			out.entries = append(out.entries, x.entries...)
			out.summary = risk.Merge(out.summary, x.summary)
		}
	}
	out.summary = risk.Merge(out.summary, risk.SummarizeText(text))
	return out, nil
}

// decodeTextChunk splits a PNG text chunk into keyword and text,
// inflating compressed payloads.
func decodeTextChunk(typ string, data []byte) (string, string, bool) {
	null := bytes.IndexByte(data, 0)
	if null <= 0 {
		return "", "", false
	}
	key := string(data[:null])
	rest := data[null+1:]

	switch typ {
	case "tEXt":
		return key, string(rest), true
	case "zTXt":
		if len(rest) < 1 {
			return "", "", false
		}
		val, err := inflate(rest[1:])
		if err != nil {
			return "", "", false
		}
		return key, val, true
	case "iTXt":
		// flag, method, language\0, translated keyword\0, text
		if len(rest) < 2 {
			return "", "", false
		}
		compressed := rest[0] == 1
		rest = rest[2:]
		for i := 0; i < 2; i++ {
			n := bytes.IndexByte(rest, 0)
			if n < 0 {
				return "", "", false
			}
			rest = rest[n+1:]
		}
		if !compressed {
			return key, string(rest), true
		}
		val, err := inflate(rest)
		if err != nil {
			return "", "", false
		}
		return key, val, true
	}
	return "", "", false
}

func inflate(b []byte) (string, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	defer zr.Close()
	out, err := io.ReadAll(zr)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
