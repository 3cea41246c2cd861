package handshake

import (
	"context"
	"fmt"

	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/router"
	"go.uber.org/zap"
)

// LocalHost runs the responder side in the same process as the entry point.
// StartEntryPoint takes the live-instance path of the entry point.
type LocalHost struct {
	logger *zap.Logger
	entry  *EntryPoint
	result *Result
	done   bool
}

// NewLocalHost creates an in-process responder host
func NewLocalHost(logger *zap.Logger, entry *EntryPoint) *LocalHost {
	return &LocalHost{logger: logger, entry: entry}
}

// SetResult records the acknowledgement
func (h *LocalHost) SetResult(result Result) {
	h.result = &result
	h.logger.Info("Configuration result set",
		zap.Bool("ok", result.OK),
		zap.Int("widget", result.WidgetID))
}

// StartEntryPoint hands req to the running entry point
func (h *LocalHost) StartEntryPoint(ctx context.Context, req *Request) error {
	if h.entry == nil {
		return fmt.Errorf("no entry point running")
	}
	h.entry.OnNewRequest(ctx, req)
	return nil
}

// Finish marks the responder as closed
func (h *LocalHost) Finish() {
	h.done = true
}

// Result returns the acknowledgement, if one was set
func (h *LocalHost) Result() (Result, bool) {
	if h.result == nil {
		return Result{}, false
	}
	return *h.result, true
}

// Finished reports whether the responder closed itself
func (h *LocalHost) Finished() bool {
	return h.done
}

// DeepLinkChannel forwards UI methods as deep links through the desktop opener
type DeepLinkChannel struct {
	opener domain.Opener
	scheme string
}

// NewDeepLinkChannel creates a UI channel over opener
func NewDeepLinkChannel(opener domain.Opener, scheme string) *DeepLinkChannel {
	return &DeepLinkChannel{opener: opener, scheme: scheme}
}

// InvokeMethod opens the deep link that matches method
func (c *DeepLinkChannel) InvokeMethod(ctx context.Context, method string, args any) error {
	switch method {
	case MethodOpenSettings:
		return c.opener.Open(ctx, router.DeepLink(c.scheme, router.HostSettings))
	default:
		return fmt.Errorf("unsupported method %q", method)
	}
}

// LogProcessor is the generic request step on desktop, where no plugin
// layer inspects requests.
type LogProcessor struct {
	logger *zap.Logger
}

// NewLogProcessor creates a logging request processor
func NewLogProcessor(logger *zap.Logger) *LogProcessor {
	return &LogProcessor{logger: logger}
}

// ProcessRequest logs the request
func (p *LogProcessor) ProcessRequest(ctx context.Context, req *Request) {
	p.logger.Info("Request processed",
		zap.String("action", req.Action),
		zap.String("data", req.Data))
}
