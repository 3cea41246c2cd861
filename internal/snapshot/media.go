package snapshot

import (
	"github.com/genricoloni/mucwidget/internal/domain"
)

// FromMedia converts a player update into the store values the widget reads.
// Display preferences (colors, show flags) are not touched.
func FromMedia(meta domain.MediaMetadata) map[string]any {
	defaults := Defaults()

	title := meta.Title
	if title == "" {
		title = defaults.Title
	}
	artist := meta.Artist
	if artist == "" {
		artist = defaults.Artist
	}

	return map[string]any{
		KeyTitle:         title,
		KeyArtist:        artist,
		KeyIsPlaying:     meta.Status == domain.StatusPlaying,
		KeyShuffleActive: meta.Shuffle,
		KeyRepeatMode:    string(RepeatFromLoopStatus(meta.LoopStatus)),
		KeyCoverPath:     meta.ArtUrl,
	}
}

// RepeatFromLoopStatus maps an MPRIS LoopStatus to the widget's repeat mode
func RepeatFromLoopStatus(loop string) domain.RepeatMode {
	switch loop {
	case "Track":
		return domain.RepeatOne
	case "Playlist":
		return domain.RepeatAll
	default:
		return domain.RepeatNone
	}
}
