package engine

import (
	"context"
	"time"

	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/snapshot"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after a player update before widgets re-render
const DefaultDebounce = 500 * time.Millisecond

// Renderer draws widget instances from the current snapshot
type Renderer interface {
	RenderAll(ctx context.Context) error
	Render(ctx context.Context, instances ...domain.WidgetInstance) error
}

// InstanceRegistry tracks the size of placed widgets
type InstanceRegistry interface {
	Resize(id, minHeight int) domain.WidgetInstance
}

// Engine is the render trigger loop. Player updates are written to the
// snapshot store and followed by a debounced render of every instance; a
// resize re-renders only the resized instance; a ticker refreshes everything.
type Engine struct {
	logger   *zap.Logger
	monitor  domain.Monitor
	writer   domain.SnapshotWriter
	renderer Renderer
	registry InstanceRegistry
	refresh  time.Duration
	debounce time.Duration

	resizes chan domain.WidgetInstance
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewEngine creates a new render trigger loop
func NewEngine(
	logger *zap.Logger,
	mon domain.Monitor,
	writer domain.SnapshotWriter,
	renderer Renderer,
	registry InstanceRegistry,
	cfg *config.AppConfig,
) *Engine {
	return &Engine{
		logger:   logger,
		monitor:  mon,
		writer:   writer,
		renderer: renderer,
		registry: registry,
		refresh:  cfg.RefreshInterval,
		debounce: DefaultDebounce,
		resizes:  make(chan domain.WidgetInstance),
	}
}

// Start renders every instance once and launches the event loop.
// It returns immediately (non-blocking).
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...",
		zap.Duration("refresh", e.refresh),
		zap.Duration("debounce", e.debounce))

	// The loop outlives the start context
	loopCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	e.cancel = cancel
	e.done = make(chan struct{})

	e.renderAll(loopCtx, "startup")

	go e.runLoop(loopCtx)
	return nil
}

// Resize records a new size for one instance and re-renders it alone
func (e *Engine) Resize(ctx context.Context, id, minHeight int) error {
	select {
	case e.resizes <- domain.WidgetInstance{ID: id, MinHeight: minHeight}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop is the main event processing loop with debouncing.
// Debouncing prevents a render per track when users skip quickly.
func (e *Engine) runLoop(ctx context.Context) {
	defer close(e.done)

	events := e.monitor.Events()

	timer := time.NewTimer(e.debounce)
	timer.Stop() // Start with stopped timer
	defer timer.Stop()

	var tick <-chan time.Time
	if e.refresh > 0 {
		ticker := time.NewTicker(e.refresh)
		defer ticker.Stop()
		tick = ticker.C
	}

	pending := false

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return

		case meta, ok := <-events:
			if !ok {
				// Keep serving resizes and refreshes without a player source
				e.logger.Info("Monitor events channel closed")
				events = nil
				continue
			}
			e.logger.Debug("Event received, debouncing...",
				zap.String("title", meta.Title),
				zap.String("artist", meta.Artist))

			if err := e.writer.Put(ctx, snapshot.FromMedia(meta)); err != nil {
				e.logger.Error("Failed to write snapshot", zap.Error(err))
				continue
			}

			pending = true
			timer.Reset(e.debounce)

		case <-timer.C:
			if pending {
				e.renderAll(ctx, "player changed")
				pending = false
			}

		case <-tick:
			e.renderAll(ctx, "periodic refresh")

		case inst := <-e.resizes:
			inst = e.registry.Resize(inst.ID, inst.MinHeight)
			e.logger.Info("Widget resized",
				zap.Int("instance", inst.ID),
				zap.Int("minHeight", inst.MinHeight))
			if err := e.renderer.Render(ctx, inst); err != nil {
				e.logger.Error("Failed to render resized widget", zap.Error(err))
			}
		}
	}
}

func (e *Engine) renderAll(ctx context.Context, reason string) {
	if err := e.renderer.RenderAll(ctx); err != nil {
		e.logger.Error("Render pass failed",
			zap.String("reason", reason),
			zap.Error(err))
		return
	}
	e.logger.Debug("Render pass complete", zap.String("reason", reason))
}

// Stop ends the loop and waits for an in-flight render to finish
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	if e.cancel == nil {
		return nil
	}
	e.cancel()

	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
