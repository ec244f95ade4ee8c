// Package imaging decodes uploaded images and converts them into the
// normalized tensor layout the classifier expects.
package imaging

import (
	"bytes"
	"image"
	"image/color"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"
)

// ErrInvalidImage indicates the payload is not a readable image or uses an
// unsupported format.
var ErrInvalidImage = errors.New("invalid image")

var supportedFormats = []string{"jpeg", "jpg", "png", "webp", "gif", "bmp"}

func init() {
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
}

// Metadata describes a decoded image without loading its pixel data.
type Metadata struct {
	Width    int
	Height   int
	Format   string
	Channels int
}

// SupportedFormats returns the accepted upload formats.
func SupportedFormats() []string {
	out := make([]string, len(supportedFormats))
	copy(out, supportedFormats)
	return out
}

// Validate decodes just enough of the payload to read dimensions and format.
func Validate(data []byte) (Metadata, error) {
	if len(data) == 0 {
		return Metadata{}, errors.Wrap(ErrInvalidImage, "empty image payload")
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Metadata{}, errors.Wrapf(ErrInvalidImage, "unable to read image dimensions: %v", err)
	}
	if !formatSupported(format) {
		return Metadata{}, errors.Wrapf(ErrInvalidImage, "unsupported image format %q", format)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Metadata{}, errors.Wrapf(ErrInvalidImage, "invalid dimensions %dx%d", cfg.Width, cfg.Height)
	}
	return Metadata{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Format:   format,
		Channels: channelCount(cfg.ColorModel),
	}, nil
}

func formatSupported(format string) bool {
	for _, f := range supportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

func channelCount(m color.Model) int {
	switch m {
	case color.GrayModel, color.Gray16Model:
		return 1
	case color.RGBAModel, color.RGBA64Model, color.NRGBAModel, color.NRGBA64Model, color.NYCbCrAModel:
		return 4
	default:
		return 3
	}
}
