package system

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// Tools holds the resolved locations of the external media tools. An empty
// path means the tool could not be found.
type Tools struct {
	FFmpeg  string `json:"ffmpeg"`
	FFprobe string `json:"ffprobe"`
}

func (t Tools) HasFFmpeg() bool  { return t.FFmpeg != "" }
func (t Tools) HasFFprobe() bool { return t.FFprobe != "" }

var (
	lookPath    = exec.LookPath
	executable  = os.Executable
	getwd       = os.Getwd
	goos        = runtime.GOOS
	installDirs = wellKnownDirs
)

// Locate resolves ffmpeg and ffprobe. Overrides win when they point at an
// existing file or a name on $PATH. Otherwise ffmpeg is searched in a
// bundled "ffmpeg" folder beside the executable or the working directory,
// then in well-known install directories, then on $PATH. ffprobe is first
// looked for next to the resolved ffmpeg.
func Locate(ffmpegOverride, ffprobeOverride string) Tools {
	var t Tools
	t.FFmpeg = find("ffmpeg", ffmpegOverride)

	if p, ok := resolveOverride(ffprobeOverride); ok {
		t.FFprobe = p
		return t
	}
	if t.FFmpeg != "" {
		sibling := filepath.Join(filepath.Dir(t.FFmpeg), binaryName("ffprobe"))
		if isFile(sibling) {
			t.FFprobe = sibling
			return t
		}
	}
	t.FFprobe = find("ffprobe", "")
	return t
}

func find(name, override string) string {
	if p, ok := resolveOverride(override); ok {
		return p
	}
	for _, candidate := range candidates(name) {
		if isFile(candidate) {
			return candidate
		}
	}
	if p, err := lookPath(name); err == nil {
		return p
	}
	return ""
}

func resolveOverride(override string) (string, bool) {
	if override == "" {
		return "", false
	}
	if isFile(override) {
		return override, true
	}
	if p, err := lookPath(override); err == nil {
		return p, true
	}
	return "", false
}

func candidates(name string) []string {
	bin := binaryName(name)
	var out []string
	if exe, err := executable(); err == nil {
		dir := filepath.Dir(exe)
		out = append(out,
			filepath.Join(dir, "ffmpeg", bin),
			filepath.Join(dir, "ffmpeg", "bin", bin),
		)
	}
	if wd, err := getwd(); err == nil {
		out = append(out,
			filepath.Join(wd, "ffmpeg", bin),
			filepath.Join(wd, "ffmpeg", "bin", bin),
		)
	}
	for _, dir := range installDirs() {
		out = append(out, filepath.Join(dir, bin))
	}
	return out
}

func wellKnownDirs() []string {
	switch goos {
	case "windows":
		dirs := []string{`C:\Program Files\ffmpeg\bin`, `C:\ffmpeg\bin`}
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			dirs = append(dirs, filepath.Join(local, "FFmpeg", "bin"))
		}
		return dirs
	case "darwin":
		return []string{"/opt/homebrew/bin", "/usr/local/bin"}
	default:
		return []string{"/usr/local/bin", "/usr/bin", "/snap/bin"}
	}
}

func binaryName(name string) string {
	if goos == "windows" {
		return name + ".exe"
	}
	return name
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
