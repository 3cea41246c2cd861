package domain

import (
	"context"
	"image"
)

// Monitor defines the interface for monitoring media playback events
// Implementations should handle D-Bus/MPRIS communication
type Monitor interface {
	// Start begins monitoring for media events
	// It should block until context is cancelled or an error occurs
	Start(ctx context.Context) error

	// Stop gracefully stops the monitor
	Stop(ctx context.Context) error

	// Events returns a read-only channel that emits MediaMetadata
	// when media playback state changes
	Events() <-chan MediaMetadata
}

// SnapshotStore is the flat key-value store written by the app process.
// Values are strings, bools or int64s; implementations may return strings
// for every value and leave parsing to the reader.
type SnapshotStore interface {
	Values(ctx context.Context) (map[string]any, error)
}

// SnapshotWriter is the app-side write path of the store
type SnapshotWriter interface {
	Put(ctx context.Context, values map[string]any) error
}

// Fetcher defines the interface for retrieving album artwork
type Fetcher interface {
	// Fetch downloads or reads image data from a URL or local path
	// Returns the raw image bytes or an error
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// ImageDecoder turns an image reference into a bounded-size bitmap
type ImageDecoder interface {
	Decode(ctx context.Context, ref string) (image.Image, error)
}

// WidgetHost is the host's widget manager.
//
//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/mucwidget/internal/domain WidgetHost,TriggerDispatcher,Opener
type WidgetHost interface {
	// Instances lists the placed widgets with their reported size
	Instances(ctx context.Context) ([]WidgetInstance, error)

	// UpdateWidget hands a view description to the host. Last write wins per instance.
	UpdateWidget(ctx context.Context, instanceID int, plan RenderPlan) error
}

// TriggerDispatcher delivers cross-process messages. No result is consumed.
type TriggerDispatcher interface {
	Dispatch(ctx context.Context, trigger Trigger) error
}

// Opener hands a URI to the desktop so the registered app receives it
type Opener interface {
	Open(ctx context.Context, uri string) error
}
