// Package palette resolves the stored widget colors.
package palette

import "github.com/genricoloni/mucwidget/internal/domain"

// Narrow keeps the low 32 bits of a widened color value.
func Narrow(v int64) domain.ARGB {
	return domain.ARGB(uint32(v))
}

// Foreground returns c, or opaque white when c would be invisible.
// Zero is the historically observed corruption; any zero alpha is treated alike.
func Foreground(c domain.ARGB) domain.ARGB {
	if c.Alpha() == 0 {
		return domain.OpaqueWhite
	}
	return c
}

// ResolveColors narrows the snapshot colors. Text and glyph colors are never
// fully transparent; the background is taken as stored.
func ResolveColors(s domain.PlayerSnapshot) domain.Palette {
	return domain.Palette{
		Background:    Narrow(s.BackgroundColor),
		OnBackground:  Foreground(Narrow(s.OnColor)),
		SecondaryText: Foreground(Narrow(s.SecondaryTextColor)),
	}
}

// DimAlpha is the alpha of every inactive control.
const DimAlpha uint8 = 77

// FullAlpha is the alpha of active controls.
const FullAlpha uint8 = 255
