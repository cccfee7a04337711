package cleaner

import (
	"os"

	"github.com/bogem/id3v2/v2"

	"metascrub/internal/infra/filesystem"
)

const id3v1Size = 128

// stripID3 copies an MP3 and removes its ID3v2 frames and ID3v1 trailer.
func stripID3(src, dst string) error {
	if err := filesystem.CopyFile(src, dst); err != nil {
		return err
	}
	tag, err := id3v2.Open(dst, id3v2.Options{Parse: true})
	if err != nil {
		return err
	}
	tag.DeleteAllFrames()
	if err := tag.Save(); err != nil {
		_ = tag.Close()
		return err
	}
	if err := tag.Close(); err != nil {
		return err
	}
	return truncateID3v1(dst)
}

func truncateID3v1(path string) error {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() < id3v1Size {
		return nil
	}
	trailer := make([]byte, 3)
	if _, err := f.ReadAt(trailer, info.Size()-id3v1Size); err != nil {
		return err
	}
	if string(trailer) != "TAG" {
		return nil
	}
	return f.Truncate(info.Size() - id3v1Size)
}
