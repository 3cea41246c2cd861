package domain

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// PlayerStatus represents the current state of the media player
type PlayerStatus string

const (
	// StatusPlaying indicates the media is currently playing
	StatusPlaying PlayerStatus = "Playing"
	// StatusPaused indicates the media is paused
	StatusPaused PlayerStatus = "Paused"
	// StatusStopped indicates the media is stopped
	StatusStopped PlayerStatus = "Stopped"
)

// MediaMetadata contains information about the currently playing media
// as reported by a desktop player over MPRIS.
type MediaMetadata struct {
	Title  string
	Artist string
	Album  string
	// ArtUrl is the URL or local path to the album artwork
	ArtUrl string
	Status PlayerStatus
	// Shuffle mirrors the MPRIS Shuffle property
	Shuffle bool
	// LoopStatus mirrors the MPRIS LoopStatus property ("None", "Track", "Playlist")
	LoopStatus string
}

// RepeatMode is the three-valued repeat state persisted by the app.
type RepeatMode string

const (
	RepeatNone RepeatMode = "none"
	RepeatAll  RepeatMode = "all"
	RepeatOne  RepeatMode = "one"
)

// ParseRepeatMode maps a stored value to a RepeatMode. Unknown values are RepeatNone.
func ParseRepeatMode(s string) RepeatMode {
	switch RepeatMode(s) {
	case RepeatAll:
		return RepeatAll
	case RepeatOne:
		return RepeatOne
	default:
		return RepeatNone
	}
}

// PlayerSnapshot is the typed view of the preference store for one render pass.
// Default tags are applied before stored values, so every field has a total default.
type PlayerSnapshot struct {
	Title              string     `default:"No title"`
	Artist             string     `default:"Unknown"`
	IsPlaying          bool       `default:"false"`
	ShuffleActive      bool       `default:"false"`
	RepeatMode         RepeatMode `default:"none"`
	ShowCover          bool       `default:"true"`
	CoverPath          string
	ShowShuffleControl bool       `default:"false"`
	ShowRepeatControl  bool       `default:"false"`
	// Colors are packed ARGB widened to 64 bits: #FF1E1E1E, #FFFFFFFF, #FFCCCCCC
	BackgroundColor    int64      `default:"4280163870"`
	OnColor            int64      `default:"4294967295"`
	SecondaryTextColor int64      `default:"4291611852"`
}

// ARGB is a packed 32-bit color, alpha in the high byte.
type ARGB uint32

// OpaqueWhite is the substitute for foreground colors that would be invisible.
const OpaqueWhite ARGB = 0xFFFFFFFF

// Alpha returns the alpha channel.
func (c ARGB) Alpha() uint8 {
	return uint8(c >> 24)
}

// String formats the color as #AARRGGBB.
func (c ARGB) String() string {
	return fmt.Sprintf("#%08X", uint32(c))
}

// MarshalYAML renders the color in its #AARRGGBB form.
func (c ARGB) MarshalYAML() (interface{}, error) {
	return c.String(), nil
}

// UnmarshalYAML parses the #AARRGGBB form written by MarshalYAML.
func (c *ARGB) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	n, err := strconv.ParseUint(strings.TrimPrefix(raw, "#"), 16, 32)
	if err != nil {
		return fmt.Errorf("invalid color %q: %w", raw, err)
	}
	*c = ARGB(n)
	return nil
}

// Palette is the resolved three-color scheme of a widget.
type Palette struct {
	Background    ARGB
	OnBackground  ARGB
	SecondaryText ARGB
}

// Layout is the view layout chosen for one instance.
type Layout string

const (
	LayoutCompact  Layout = "compact"
	LayoutExpanded Layout = "expanded"
)

// LayoutPolicy selects the single rule used to pick a Layout.
type LayoutPolicy string

const (
	// PolicySize selects the layout from the reported instance height
	PolicySize LayoutPolicy = "size"
	// PolicyToggle selects the layout from the shuffle/repeat visibility flags
	PolicyToggle LayoutPolicy = "toggle"
)

// Glyph names a drawable shipped with the widget.
type Glyph string

const (
	GlyphPlay      Glyph = "ic_play"
	GlyphPause     Glyph = "ic_pause"
	GlyphPrevious  Glyph = "ic_skip_previous"
	GlyphNext      Glyph = "ic_skip_next"
	GlyphShuffle   Glyph = "ic_shuffle"
	GlyphRepeat    Glyph = "ic_repeat"
	GlyphRepeatOne Glyph = "ic_repeat_one"
	GlyphMusicNote Glyph = "ic_music_note"
)

// CoverKind says what the album-art region shows.
type CoverKind string

const (
	CoverHidden      CoverKind = "hidden"
	CoverBitmap      CoverKind = "bitmap"
	CoverPlaceholder CoverKind = "placeholder"
)

// CoverPlan is the resolved album-art region. A bitmap is never tinted.
type CoverPlan struct {
	Kind   CoverKind   `yaml:"kind"`
	Bitmap image.Image `yaml:"-"`
	Glyph  Glyph       `yaml:"glyph,omitempty"`
	Tinted bool        `yaml:"tinted"`
	Tint   ARGB        `yaml:"tint,omitempty"`
}

// ControlView is the resolved state of one playback button.
type ControlView struct {
	Visible bool  `yaml:"visible"`
	Glyph   Glyph `yaml:"glyph"`
	Tint    ARGB  `yaml:"tint"`
	Alpha   uint8 `yaml:"alpha"`
}

// TextView is a resolved text line.
type TextView struct {
	Text  string `yaml:"text"`
	Color ARGB   `yaml:"color"`
}

// Region identifies a tappable area of the widget.
type Region string

const (
	RegionRoot     Region = "widget_root"
	RegionPlay     Region = "btn_play"
	RegionNext     Region = "btn_next"
	RegionPrevious Region = "btn_prev"
	RegionShuffle  Region = "btn_shuffle"
	RegionRepeat   Region = "btn_repeat"
)

// ClickTarget binds a region to the trigger it fires.
type ClickTarget struct {
	Region  Region  `yaml:"region"`
	Trigger Trigger `yaml:"trigger"`
}

// RenderPlan is the fully resolved view description of one widget instance.
type RenderPlan struct {
	InstanceID   int           `yaml:"instance_id"`
	Layout       Layout        `yaml:"layout"`
	Background   ARGB          `yaml:"background"`
	Title        TextView      `yaml:"title"`
	Artist       TextView      `yaml:"artist"`
	Cover        CoverPlan     `yaml:"cover"`
	Previous     ControlView   `yaml:"previous"`
	PlayPause    ControlView   `yaml:"play_pause"`
	Next         ControlView   `yaml:"next"`
	Shuffle      ControlView   `yaml:"shuffle"`
	Repeat       ControlView   `yaml:"repeat"`
	ClickTargets []ClickTarget `yaml:"click_targets"`
}

// Target returns the click target bound to region, if any.
func (p *RenderPlan) Target(region Region) (ClickTarget, bool) {
	for _, ct := range p.ClickTargets {
		if ct.Region == region {
			return ct, true
		}
	}
	return ClickTarget{}, false
}

// WidgetInstance is a placed widget as reported by the host.
type WidgetInstance struct {
	ID int
	// MinHeight is the reported minimum height in dp
	MinHeight int
}
