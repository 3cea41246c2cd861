// Package handshake redirects the host's "configure new widget" flow into the
// app's settings screen.
//
// Two actors take part. The Responder is the short-lived configuration
// activity: it acknowledges the request, launches the entry point with a
// settings marker and finishes. The EntryPoint is the app's main activity:
// it turns the marker into an "openSettings" call on the UI channel.
package handshake

import (
	"maps"

	"github.com/genricoloni/mucwidget/internal/domain"
)

const (
	ActionMain      = "android.intent.action.MAIN"
	ActionView      = "android.intent.action.VIEW"
	ActionConfigure = "android.appwidget.action.APPWIDGET_CONFIGURE"

	ExtraWidgetID           = "appWidgetId"
	ExtraNavigateToSettings = "navigate_to_settings"

	// InvalidWidgetID is echoed when the request carries no id
	InvalidWidgetID = 0

	MethodOpenSettings = "openSettings"
)

// Request is a launch request passed between the host and the app.
type Request struct {
	Action string
	Data   string
	Flags  domain.LaunchFlags
	Extras map[string]any
}

// Clone returns a deep copy of the request
func (r *Request) Clone() *Request {
	if r == nil {
		return &Request{}
	}
	c := *r
	c.Extras = maps.Clone(r.Extras)
	return &c
}

// BoolExtra returns the boolean extra key, or false
func (r *Request) BoolExtra(key string) bool {
	if r == nil {
		return false
	}
	b, _ := r.Extras[key].(bool)
	return b
}

// IntExtra returns the integer extra key, or def
func (r *Request) IntExtra(key string, def int) int {
	if r == nil {
		return def
	}
	switch v := r.Extras[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case int32:
		return int(v)
	default:
		return def
	}
}

// PutExtra sets an extra
func (r *Request) PutExtra(key string, value any) {
	if r.Extras == nil {
		r.Extras = make(map[string]any)
	}
	r.Extras[key] = value
}

// RemoveExtra deletes an extra
func (r *Request) RemoveExtra(key string) {
	delete(r.Extras, key)
}

// NewConfigurationRequest builds the request the host sends when a widget is placed
func NewConfigurationRequest(widgetID int) *Request {
	return &Request{
		Action: ActionConfigure,
		Extras: map[string]any{ExtraWidgetID: widgetID},
	}
}
