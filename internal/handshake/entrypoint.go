package handshake

import (
	"context"
	"sync"

	"github.com/genricoloni/mucwidget/internal/router"
	"go.uber.org/zap"
)

// UIChannel carries method calls into the app's UI layer
type UIChannel interface {
	InvokeMethod(ctx context.Context, method string, args any) error
}

// RequestProcessor is the generic request handling that runs after the
// entry point has looked at a request (deep-link plugins and the like).
type RequestProcessor interface {
	ProcessRequest(ctx context.Context, req *Request)
}

// RequestContext holds the process's current request. Both the entry point
// and the generic processor read it from here.
type RequestContext struct {
	mu      sync.RWMutex
	current *Request
}

// NewRequestContext creates an empty context
func NewRequestContext() *RequestContext {
	return &RequestContext{}
}

// Current returns the active request, or nil before the first launch
func (c *RequestContext) Current() *Request {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *RequestContext) set(req *Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = req
}

// EntryPoint is the app's main entry. It consumes the settings marker.
type EntryPoint struct {
	logger    *zap.Logger
	requests  *RequestContext
	processor RequestProcessor
	scheme    string

	mu      sync.Mutex
	ui      UIChannel
	pending bool
}

// NewEntryPoint creates an entry point. The UI channel is attached later.
func NewEntryPoint(logger *zap.Logger, requests *RequestContext, processor RequestProcessor, scheme string) *EntryPoint {
	return &EntryPoint{
		logger:    logger,
		requests:  requests,
		processor: processor,
		scheme:    scheme,
	}
}

// OnCreate handles the request of a cold start
func (e *EntryPoint) OnCreate(ctx context.Context, req *Request) State {
	return e.handle(ctx, req, "cold_start")
}

// OnNewRequest handles a request delivered to the running instance
func (e *EntryPoint) OnNewRequest(ctx context.Context, req *Request) State {
	return e.handle(ctx, req, "new_request")
}

// AttachUI connects the UI channel and delivers a held openSettings call
func (e *EntryPoint) AttachUI(ctx context.Context, ui UIChannel) {
	e.mu.Lock()
	e.ui = ui
	deliver := e.pending
	e.mu.Unlock()

	if deliver {
		e.logger.Info("Delivering held settings request")
		e.forward(ctx)
	}
}

// handle rewrites the incoming request, makes it current, forwards the
// settings signal and only then runs the generic processor. The processor
// must never see the request before the rewrite.
func (e *EntryPoint) handle(ctx context.Context, incoming *Request, path string) State {
	req := incoming.Clone()
	marked := e.rewrite(req)
	e.requests.set(req)

	if !marked {
		e.processor.ProcessRequest(ctx, req)
		return StateIdle
	}

	e.logger.Info("Settings marker received", zap.String("path", path))
	e.forward(ctx)
	e.processor.ProcessRequest(ctx, req)
	clearMarker(req)
	return StateConsumed
}

// rewrite puts any accepted marker into its canonical deep-link form
func (e *EntryPoint) rewrite(req *Request) bool {
	settings := router.DeepLink(e.scheme, router.HostSettings)
	marked := req.BoolExtra(ExtraNavigateToSettings) ||
		req.Action == ActionConfigure ||
		(req.Action == ActionView && req.Data == settings)
	if !marked {
		return false
	}
	req.Action = ActionView
	req.Data = settings
	req.PutExtra(ExtraNavigateToSettings, true)
	return true
}

// clearMarker stops a rotation or relaunch from replaying the request
func clearMarker(req *Request) {
	req.RemoveExtra(ExtraNavigateToSettings)
	req.Action = ActionMain
	req.Data = ""
}

func (e *EntryPoint) forward(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.ui == nil {
		e.logger.Debug("UI channel not attached yet, holding settings request")
		e.pending = true
		return
	}

	if err := e.ui.InvokeMethod(ctx, MethodOpenSettings, nil); err != nil {
		e.logger.Warn("Failed to forward openSettings", zap.Error(err))
		e.pending = true
		return
	}
	e.pending = false
}
