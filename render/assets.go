package render

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
)

// ErrNotImage is reported for image resources which content is not an image.
var ErrNotImage = errors.New("resource is not an image")

// Assets prepares image resources referenced by records for static output.
type Assets struct {
	maxWidth int
	log      *zap.Logger
}

// NewAssets returns image processor, images wider than maxWidth are
// downscaled keeping aspect ratio. Zero maxWidth keeps originals.
func NewAssets(maxWidth int, log *zap.Logger) *Assets {
	return &Assets{maxWidth: maxWidth, log: log}
}

// Prepare checks image data and downscales it when necessary. Name is only
// used to select output encoding.
func (a *Assets) Prepare(name string, data []byte) ([]byte, error) {
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotImage, name)
	}
	if a.maxWidth <= 0 {
		return data, nil
	}

	format, err := imaging.FormatFromFilename(name)
	if err != nil {
		a.log.Debug("Image format is not supported for resizing, keeping original", zap.String("image", name), zap.String("mime", kind.MIME.Value))
		return data, nil
	}
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("unable to decode image %s: %w", name, err)
	}
	if img.Bounds().Dx() <= a.maxWidth {
		return data, nil
	}

	a.log.Debug("Downscaling image", zap.String("image", name), zap.Int("width", img.Bounds().Dx()), zap.Int("max", a.maxWidth))
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, imaging.Resize(img, a.maxWidth, 0, imaging.Lanczos), format); err != nil {
		return nil, fmt.Errorf("unable to encode image %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
