// Package controls maps playback state to the widget's button views.
package controls

import (
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/palette"
)

// Set holds the resolved playback buttons of one widget.
type Set struct {
	Previous  domain.ControlView
	PlayPause domain.ControlView
	Next      domain.ControlView
	Shuffle   domain.ControlView
	Repeat    domain.ControlView
}

// Map derives the button views. It is a pure function of its inputs.
// Inactive controls keep the active color and drop to palette.DimAlpha.
func Map(snap domain.PlayerSnapshot, pal domain.Palette, layout domain.Layout, policy domain.LayoutPolicy) Set {
	active := pal.OnBackground

	play := domain.GlyphPlay
	if snap.IsPlaying {
		play = domain.GlyphPause
	}

	shuffleVisible, repeatVisible := extraVisibility(snap, layout, policy)

	repeatGlyph := domain.GlyphRepeat
	if snap.RepeatMode == domain.RepeatOne {
		repeatGlyph = domain.GlyphRepeatOne
	}

	return Set{
		Previous:  button(domain.GlyphPrevious, active, true, true),
		PlayPause: button(play, active, true, true),
		Next:      button(domain.GlyphNext, active, true, true),
		Shuffle:   button(domain.GlyphShuffle, active, shuffleVisible, snap.ShuffleActive),
		Repeat:    button(repeatGlyph, active, repeatVisible, snap.RepeatMode != domain.RepeatNone),
	}
}

// extraVisibility decides shuffle/repeat visibility. The compact layout has
// no room for them under either policy.
func extraVisibility(snap domain.PlayerSnapshot, layout domain.Layout, policy domain.LayoutPolicy) (shuffle, repeat bool) {
	if layout != domain.LayoutExpanded {
		return false, false
	}
	if policy == domain.PolicyToggle {
		return snap.ShowShuffleControl, snap.ShowRepeatControl
	}
	return true, true
}

func button(glyph domain.Glyph, tint domain.ARGB, visible, on bool) domain.ControlView {
	alpha := palette.FullAlpha
	if !on {
		alpha = palette.DimAlpha
	}
	return domain.ControlView{Visible: visible, Glyph: glyph, Tint: tint, Alpha: alpha}
}
