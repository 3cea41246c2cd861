// Package cover resolves the album-art region of the widget.
package cover

import (
	"context"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/palette"
	"go.uber.org/zap"
)

// Resolver turns the cover settings of a snapshot into a CoverPlan
type Resolver struct {
	logger  *zap.Logger
	decoder domain.ImageDecoder
}

// NewResolver creates a cover resolver
func NewResolver(logger *zap.Logger, decoder domain.ImageDecoder) *Resolver {
	return &Resolver{logger: logger, decoder: decoder}
}

// Resolve returns the cover plan. Every decode failure falls back to the
// tinted placeholder; a real bitmap is never tinted.
func (r *Resolver) Resolve(ctx context.Context, showCover bool, coverPath string, onColor domain.ARGB) domain.CoverPlan {
	if !showCover {
		return domain.CoverPlan{Kind: domain.CoverHidden}
	}

	if coverPath != "" {
		img, err := r.decoder.Decode(ctx, coverPath)
		if err == nil && img != nil {
			return domain.CoverPlan{Kind: domain.CoverBitmap, Bitmap: img}
		}
		r.logger.Warn("Cover art unavailable, using placeholder",
			zap.String("path", coverPath),
			zap.Error(err))
	}

	return domain.CoverPlan{
		Kind:   domain.CoverPlaceholder,
		Glyph:  domain.GlyphMusicNote,
		Tinted: true,
		Tint:   palette.Foreground(onColor),
	}
}
