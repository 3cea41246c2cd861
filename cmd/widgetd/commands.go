package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/genricoloni/mucwidget/internal/config"
	"github.com/genricoloni/mucwidget/internal/control"
	"github.com/genricoloni/mucwidget/internal/domain"
	"github.com/genricoloni/mucwidget/internal/handshake"
	"github.com/genricoloni/mucwidget/internal/host"
	"github.com/genricoloni/mucwidget/internal/render"
	"github.com/genricoloni/mucwidget/internal/snapshot"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/multierr"
)

// allWidgets selects every placed widget in render
const allWidgets = 0

var (
	renderWidgetID int

	resizeWidgetID  int
	resizeMinHeight int

	configureWidgetID int

	tapWidgetID int
	tapRegion   string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Follow the active player and keep every widget up to date",

	RunE: func(cmd *cobra.Command, args []string) error {
		app := fx.New(
			AppOptions,
			// Lifecycle hooks
			fx.Invoke(registerHooks),
		)

		ctx := cmd.Context()

		// Start the application
		if err := app.Start(ctx); err != nil {
			return err
		}

		// Wait for interrupt signal
		<-ctx.Done()

		// Stop the application gracefully
		return app.Stop(context.WithoutCancel(ctx))
	},
}

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run one render pass over all widgets, or over one widget",

	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			renderer *render.Renderer
			wh       *host.FileHost
			cfg      *config.AppConfig
		)

		return runOnce(cmd, func(ctx context.Context) error {
			if renderWidgetID == allWidgets {
				if err := renderer.RenderAll(ctx); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "rendered all widgets into %s\n", cfg.OutputDir)
				return nil
			}

			inst, ok := wh.Instance(renderWidgetID)
			if !ok {
				return fmt.Errorf("unknown widget %d", renderWidgetID)
			}

			if err := renderer.Render(ctx, inst); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), wh.DocumentPath(inst.ID))
			return nil
		}, &renderer, &wh, &cfg)
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize",
	Short: "Tell the widgets about a new minimum height of one instance",
	Long: `Sends the new size to the running daemon, which re-renders the widget.
Without a daemon the widget is resized and rendered by this process.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		if resizeWidgetID <= 0 || resizeMinHeight <= 0 {
			return fmt.Errorf("--widget-id and --min-height must be positive")
		}

		var (
			client   *control.Client
			renderer *render.Renderer
			wh       *host.FileHost
		)

		return runOnce(cmd, func(ctx context.Context) error {
			err := client.Resize(ctx, resizeWidgetID, resizeMinHeight)
			if err == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "widget %d: resized by daemon\n", resizeWidgetID)
				return nil
			}
			if !errors.Is(err, control.ErrDaemonUnavailable) {
				return err
			}

			inst := wh.Resize(resizeWidgetID, resizeMinHeight)
			if err := renderer.Render(ctx, inst); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "widget %d: rendered at %ddp\n", inst.ID, inst.MinHeight)
			return nil
		}, &client, &renderer, &wh)
	},
}

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Run the configuration handshake for a newly placed widget",

	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			entry     *handshake.EntryPoint
			local     *handshake.LocalHost
			responder *handshake.Responder
			opener    domain.Opener
			cfg       *config.AppConfig
		)

		return runOnce(cmd, func(ctx context.Context) error {
			entry.AttachUI(ctx, handshake.NewDeepLinkChannel(opener, cfg.AppScheme))

			err := responder.Handle(ctx, handshake.NewConfigurationRequest(configureWidgetID))

			if result, ok := local.Result(); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "widget %d: ok=%t state=%s\n", result.WidgetID, result.OK, responder.State())
			}
			return err
		}, &entry, &local, &responder, &opener, &cfg)
	},
}

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Fire the trigger bound to a region of a widget",

	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			reader     *snapshot.Reader
			renderer   *render.Renderer
			wh         *host.FileHost
			dispatcher domain.TriggerDispatcher
		)

		return runOnce(cmd, func(ctx context.Context) error {
			inst, ok := wh.Instance(tapWidgetID)
			if !ok {
				return fmt.Errorf("unknown widget %d", tapWidgetID)
			}

			plan := renderer.Plan(ctx, reader.Read(ctx), inst)
			target, ok := plan.Target(domain.Region(tapRegion))
			if !ok {
				return fmt.Errorf("region %q is not tappable in the %s layout", tapRegion, plan.Layout)
			}

			return dispatcher.Dispatch(ctx, target.Trigger)
		}, &reader, &renderer, &wh, &dispatcher)
	},
}

func init() {
	renderCmd.Flags().IntVar(&renderWidgetID, "widget-id", allWidgets, "render only this widget")

	resizeCmd.Flags().IntVar(&resizeWidgetID, "widget-id", 0, "widget that was resized")
	resizeCmd.Flags().IntVar(&resizeMinHeight, "min-height", 0, "new minimum height in dp")

	configureCmd.Flags().IntVar(&configureWidgetID, "widget-id", handshake.InvalidWidgetID, "id of the widget being placed")

	tapCmd.Flags().IntVar(&tapWidgetID, "widget-id", 0, "widget to tap")
	tapCmd.Flags().StringVar(&tapRegion, "region", string(domain.RegionRoot), "region to tap (widget_root, btn_play, btn_next, btn_prev, btn_shuffle, btn_repeat)")
	_ = tapCmd.MarkFlagRequired("widget-id")
}

// runOnce builds the graph, fills targets, runs fn between start and stop
func runOnce(cmd *cobra.Command, fn func(ctx context.Context) error, targets ...interface{}) error {
	app := fx.New(
		AppOptions,
		fx.NopLogger,
		fx.Populate(targets...),
	)
	if err := app.Err(); err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := app.Start(ctx); err != nil {
		return err
	}

	runErr := fn(ctx)
	return multierr.Append(runErr, app.Stop(context.WithoutCancel(ctx)))
}
