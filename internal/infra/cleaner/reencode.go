package cleaner

import (
	"bytes"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"

	"metascrub/internal/domain/rules"
	"metascrub/internal/infra/metadata"
)

// DefaultJPEGQuality is used when re-encoding lossy images.
const DefaultJPEGQuality = 95

// applyOrientation maps an EXIF orientation onto the pixels.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// reencode decodes src, bakes its orientation into the pixels and writes
// a fresh image holding nothing but those pixels.
func reencode(src, dst string, quality int) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if rules.IsJPEG(src) || rules.Ext(src) == ".tif" || rules.Ext(src) == ".tiff" {
		if o, ok := metadata.Orientation(bytes.NewReader(data)); ok {
			img = applyOrientation(img, o)
		}
	}
	pixels := imaging.Clone(img)

	if quality <= 0 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	return imaging.Save(pixels, dst,
		imaging.JPEGQuality(quality),
		imaging.PNGCompressionLevel(png.BestCompression),
	)
}
