// Package render composes the resolvers into one RenderPlan per widget
// instance and hands each plan to the host.
package render

import (
	"context"
	"fmt"

	"github.com/genricoloni/mucwidget/internal/controls"
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/layout"
	"github.com/genricoloni/mucwidget/internal/palette"
	"github.com/genricoloni/mucwidget/internal/router"
	"github.com/genricoloni/mucwidget/internal/snapshot"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// CoverResolver resolves the album-art region
type CoverResolver interface {
	Resolve(ctx context.Context, showCover bool, coverPath string, onColor domain.ARGB) domain.CoverPlan
}

// Renderer runs render passes. It keeps no state between passes.
type Renderer struct {
	logger   *zap.Logger
	reader   *snapshot.Reader
	covers   CoverResolver
	selector layout.Selector
	router   *router.Router
	host     domain.WidgetHost
}

// NewRenderer creates a renderer
func NewRenderer(
	logger *zap.Logger,
	reader *snapshot.Reader,
	covers CoverResolver,
	selector layout.Selector,
	rt *router.Router,
	host domain.WidgetHost,
) *Renderer {
	return &Renderer{
		logger:   logger,
		reader:   reader,
		covers:   covers,
		selector: selector,
		router:   rt,
		host:     host,
	}
}

// RenderAll renders every instance the host reports
func (r *Renderer) RenderAll(ctx context.Context) error {
	instances, err := r.host.Instances(ctx)
	if err != nil {
		return fmt.Errorf("failed to list widget instances: %w", err)
	}
	return r.Render(ctx, instances...)
}

// Render reads the snapshot once and updates each instance. A failing update
// does not stop the others; all failures are returned together.
func (r *Renderer) Render(ctx context.Context, instances ...domain.WidgetInstance) error {
	if len(instances) == 0 {
		r.logger.Debug("No widget instances to render")
		return nil
	}

	snap := r.reader.Read(ctx)
	pal := palette.ResolveColors(snap)
	coverPlan := r.covers.Resolve(ctx, snap.ShowCover, snap.CoverPath, pal.OnBackground)

	var errs error
	for _, inst := range instances {
		plan := r.plan(snap, pal, coverPlan, inst)
		if err := r.host.UpdateWidget(ctx, inst.ID, plan); err != nil {
			r.logger.Error("Widget update failed", zap.Int("widget", inst.ID), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("widget %d: %w", inst.ID, err))
			continue
		}
		r.logger.Debug("Widget rendered",
			zap.Int("widget", inst.ID),
			zap.String("layout", string(plan.Layout)),
			zap.String("title", plan.Title.Text))
	}
	return errs
}

// Plan builds the plan for one instance from an already-read snapshot
func (r *Renderer) Plan(ctx context.Context, snap domain.PlayerSnapshot, inst domain.WidgetInstance) domain.RenderPlan {
	pal := palette.ResolveColors(snap)
	return r.plan(snap, pal, r.covers.Resolve(ctx, snap.ShowCover, snap.CoverPath, pal.OnBackground), inst)
}

func (r *Renderer) plan(snap domain.PlayerSnapshot, pal domain.Palette, coverPlan domain.CoverPlan, inst domain.WidgetInstance) domain.RenderPlan {
	lay := r.selector.Select(snap, inst)
	set := controls.Map(snap, pal, lay, r.selector.Policy())

	return domain.RenderPlan{
		InstanceID:   inst.ID,
		Layout:       lay,
		Background:   pal.Background,
		Title:        domain.TextView{Text: snap.Title, Color: pal.OnBackground},
		Artist:       domain.TextView{Text: snap.Artist, Color: pal.SecondaryText},
		Cover:        coverPlan,
		Previous:     set.Previous,
		PlayPause:    set.PlayPause,
		Next:         set.Next,
		Shuffle:      set.Shuffle,
		Repeat:       set.Repeat,
		ClickTargets: r.router.Route(lay),
	}
}
