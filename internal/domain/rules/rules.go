package rules

import (
	"path/filepath"
	"sort"
	"strings"

	"metascrub/internal/domain/model"
)

// CleanMarker is the path fragment that identifies an output tree.
const CleanMarker = "_clean"

var imageExtensions = map[string]struct{}{
	".jpg": {}, ".jpeg": {}, ".png": {}, ".tif": {}, ".tiff": {}, ".webp": {}, ".bmp": {},
}

var videoExtensions = map[string]struct{}{
	".mp4": {}, ".mov": {}, ".webm": {}, ".mkv": {}, ".avi": {}, ".flv": {}, ".wmv": {},
}

var audioExtensions = map[string]struct{}{
	".mp3": {}, ".wav": {}, ".flac": {}, ".ogg": {}, ".opus": {}, ".m4a": {}, ".aac": {},
}

// Ext returns the lowercased extension of path, including the dot.
func Ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func KindOf(path string) model.MediaKind {
	ext := Ext(path)
	if _, ok := imageExtensions[ext]; ok {
		return model.KindImage
	}
	if _, ok := videoExtensions[ext]; ok {
		return model.KindVideo
	}
	if _, ok := audioExtensions[ext]; ok {
		return model.KindAudio
	}
	return model.KindUnknown
}

func IsSupported(path string) bool {
	return KindOf(path) != model.KindUnknown
}

// IsExcluded reports whether path sits in (or is) a cleaned output tree.
// The match is a plain substring test on the whole path string.
func IsExcluded(path string) bool {
	return strings.Contains(path, CleanMarker)
}

func IsJPEG(path string) bool {
	ext := Ext(path)
	return ext == ".jpg" || ext == ".jpeg"
}

func IsPNG(path string) bool {
	return Ext(path) == ".png"
}

// IsReencodable reports whether the image can be decoded and re-encoded
// in its own format without an external tool.
func IsReencodable(path string) bool {
	switch Ext(path) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff", ".bmp":
		return true
	}
	return false
}

// DestinationRoot returns the default output tree for a source folder:
// a sibling named "<name>_clean".
func DestinationRoot(source string) string {
	clean := filepath.Clean(source)
	return filepath.Join(filepath.Dir(clean), filepath.Base(clean)+CleanMarker)
}

func SupportedExtensions() []string {
	out := make([]string, 0, len(imageExtensions)+len(videoExtensions)+len(audioExtensions))
	for _, set := range []map[string]struct{}{imageExtensions, videoExtensions, audioExtensions} {
		for ext := range set {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}
