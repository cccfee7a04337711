package metadata

import (
	"fmt"
	"os"
	"sort"

	"github.com/dhowden/tag"
)

// readAudioTags reads ID3, MP4, FLAC and Ogg tags directly from the file.
// It backs audio inspection when no external probe is installed.
func readAudioTags(path string) (findings, error) {
	f, err := os.Open(path)
	if err != nil {
		return findings{}, err
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		if err == tag.ErrNoTagsFound {
			return findings{}, nil
		}
		return findings{}, err
	}

	tags := make(map[string]string)
	var binaries []Entry
	for k, v := range m.Raw() {
		switch val := v.(type) {
		case *tag.Picture:
			binaries = append(binaries, Entry{Key: k, Binary: len(val.Data)})
		case []byte:
			if len(val) > binaryThreshold {
				binaries = append(binaries, Entry{Key: k, Binary: len(val)})
				continue
			}
			tags[k] = string(val)
		case string:
			tags[k] = val
		default:
			tags[k] = fmt.Sprint(val)
		}
	}
	// Normalized names help the key heuristics on formats with opaque
	// frame ids such as ID3's TPE1.
	if a := m.Artist(); a != "" {
		tags["artist"] = a
	}
	if c := m.Comment(); c != "" {
		tags["comment"] = c
	}

	out := tagFindings(tags)
	sort.Slice(binaries, func(i, j int) bool { return binaries[i].Key < binaries[j].Key })
	out.entries = append(out.entries, binaries...)
	return out, nil
}
