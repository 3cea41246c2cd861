package cover

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // JPEG format support
	_ "image/png"  // PNG format support

	"github.com/disintegration/imaging"
	"github.com/genricoloni/mucwidget/internal/domain"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp" // WebP format support
)

// DefaultMaxEdge bounds the decoded cover so a huge file cannot stall a render.
const DefaultMaxEdge = 512

// maxSourceFactor caps each side of the source image at maxEdge*maxSourceFactor
const maxSourceFactor = 16

// ErrImageTooLarge is returned for images whose header exceeds the pixel budget
var ErrImageTooLarge = errors.New("image dimensions too large")

// ImagingDecoder fetches an image reference and decodes it at bounded size
type ImagingDecoder struct {
	logger  *zap.Logger
	fetcher domain.Fetcher
	maxEdge int
}

// NewImagingDecoder creates a decoder. maxEdge <= 0 selects DefaultMaxEdge.
func NewImagingDecoder(logger *zap.Logger, fetcher domain.Fetcher, maxEdge int) *ImagingDecoder {
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	return &ImagingDecoder{logger: logger, fetcher: fetcher, maxEdge: maxEdge}
}

// Decode returns the image behind ref, downscaled to fit maxEdge x maxEdge
func (d *ImagingDecoder) Decode(ctx context.Context, ref string) (img image.Image, err error) {
	// Some decoders panic on hostile input; a panic is a decode failure here.
	defer func() {
		if r := recover(); r != nil {
			img, err = nil, fmt.Errorf("decoder panic: %v", r)
		}
	}()

	data, err := d.fetcher.Fetch(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Full decode allocates width*height pixels, so check the header first
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read image header: %w", err)
	}
	if limit := d.maxEdge * maxSourceFactor; cfg.Width > limit || cfg.Height > limit {
		return nil, fmt.Errorf("%w: %dx%d exceeds %dpx per side", ErrImageTooLarge, cfg.Width, cfg.Height, limit)
	}

	img, err = imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	// An empty image cannot be scaled or sampled
	bounds := img.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	if bounds.Dx() > d.maxEdge || bounds.Dy() > d.maxEdge {
		d.logger.Debug("Downscaling cover",
			zap.Int("w", bounds.Dx()),
			zap.Int("h", bounds.Dy()),
			zap.Int("maxEdge", d.maxEdge))
		img = imaging.Fit(img, d.maxEdge, d.maxEdge, imaging.Lanczos)
	}

	return img, nil
}
