// Package snapshot reads the preference snapshot written by the app process
// into a typed domain.PlayerSnapshot.
package snapshot

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/creasty/defaults"
	"github.com/genricoloni/mucwidget/internal/domain"
	"go.uber.org/zap"
)

// Preference keys shared with the app-side writer. Changing them breaks the app.
const (
	KeyTitle              = "title"
	KeyArtist             = "artist"
	KeyIsPlaying          = "isPlaying"
	KeyShuffleActive      = "shuffle_active"
	KeyRepeatMode         = "repeat_mode"
	KeyShowCover          = "show_cover"
	KeyCoverPath          = "cover_path"
	KeyShowShuffle        = "show_shuffle"
	KeyShowRepeat         = "show_repeat"
	KeyBackgroundColor    = "widgetColor"
	KeyOnColor            = "widgetOnColor"
	KeySecondaryTextColor = "widgetArtistColor"
)

type field struct {
	key   string
	apply func(s *domain.PlayerSnapshot, v any) error
}

var schema = []field{
	stringField(KeyTitle, func(s *domain.PlayerSnapshot) *string { return &s.Title }),
	stringField(KeyArtist, func(s *domain.PlayerSnapshot) *string { return &s.Artist }),
	boolField(KeyIsPlaying, func(s *domain.PlayerSnapshot) *bool { return &s.IsPlaying }),
	boolField(KeyShuffleActive, func(s *domain.PlayerSnapshot) *bool { return &s.ShuffleActive }),
	{key: KeyRepeatMode, apply: func(s *domain.PlayerSnapshot, v any) error {
		str, err := asString(v)
		if err != nil {
			return err
		}
		s.RepeatMode = domain.ParseRepeatMode(str)
		return nil
	}},
	boolField(KeyShowCover, func(s *domain.PlayerSnapshot) *bool { return &s.ShowCover }),
	stringField(KeyCoverPath, func(s *domain.PlayerSnapshot) *string { return &s.CoverPath }),
	boolField(KeyShowShuffle, func(s *domain.PlayerSnapshot) *bool { return &s.ShowShuffleControl }),
	boolField(KeyShowRepeat, func(s *domain.PlayerSnapshot) *bool { return &s.ShowRepeatControl }),
	int64Field(KeyBackgroundColor, func(s *domain.PlayerSnapshot) *int64 { return &s.BackgroundColor }),
	int64Field(KeyOnColor, func(s *domain.PlayerSnapshot) *int64 { return &s.OnColor }),
	int64Field(KeySecondaryTextColor, func(s *domain.PlayerSnapshot) *int64 { return &s.SecondaryTextColor }),
}

// Defaults returns the snapshot rendered when the store holds nothing.
func Defaults() domain.PlayerSnapshot {
	var s domain.PlayerSnapshot
	defaults.MustSet(&s)
	return s
}

// Reader builds one typed snapshot per render pass
type Reader struct {
	logger *zap.Logger
	store  domain.SnapshotStore
}

// NewReader creates a snapshot reader over store
func NewReader(logger *zap.Logger, store domain.SnapshotStore) *Reader {
	return &Reader{logger: logger, store: store}
}

// Read loads the store once and applies it over the defaults.
// It never fails: a broken store yields the default snapshot and a
// broken field yields that field's default.
func (r *Reader) Read(ctx context.Context) domain.PlayerSnapshot {
	snap := Defaults()

	values, err := r.store.Values(ctx)
	if err != nil {
		r.logger.Warn("Snapshot store unavailable, rendering defaults", zap.Error(err))
		return snap
	}

	Apply(r.logger, &snap, values)
	return snap
}

// Apply overlays raw store values onto snap, field by field.
func Apply(logger *zap.Logger, snap *domain.PlayerSnapshot, values map[string]any) {
	for _, f := range schema {
		v, ok := values[f.key]
		if !ok || v == nil {
			continue
		}
		if err := f.apply(snap, v); err != nil {
			logger.Debug("Ignoring corrupt snapshot field",
				zap.String("key", f.key),
				zap.Error(err))
		}
	}
}

func stringField(key string, ptr func(*domain.PlayerSnapshot) *string) field {
	return field{key: key, apply: func(s *domain.PlayerSnapshot, v any) error {
		str, err := asString(v)
		if err != nil {
			return err
		}
		*ptr(s) = str
		return nil
	}}
}

func boolField(key string, ptr func(*domain.PlayerSnapshot) *bool) field {
	return field{key: key, apply: func(s *domain.PlayerSnapshot, v any) error {
		b, err := asBool(v)
		if err != nil {
			return err
		}
		*ptr(s) = b
		return nil
	}}
}

func int64Field(key string, ptr func(*domain.PlayerSnapshot) *int64) field {
	return field{key: key, apply: func(s *domain.PlayerSnapshot, v any) error {
		n, err := asInt64(v)
		if err != nil {
			return err
		}
		*ptr(s) = n
		return nil
	}}
}

func asString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case []byte:
		return string(t), nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func asBool(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		return strconv.ParseBool(t)
	default:
		return false, fmt.Errorf("expected bool, got %T", v)
	}
}

func asInt64(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint32:
		return int64(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, fmt.Errorf("non-integral number %v", t)
		}
		return int64(t), nil
	case string:
		return strconv.ParseInt(t, 0, 64)
	default:
		return 0, fmt.Errorf("expected integer, got %T", v)
	}
}
