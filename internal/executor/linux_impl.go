//go:build linux
// +build linux

package executor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// OpenerCommand represents a detected URI opener command
type OpenerCommand struct {
	Name   string
	Binary string
	Args   []string // %s will be replaced with the URI
}

var (
	// ErrNoOpener is returned by Open when no opener command is installed
	ErrNoOpener = errors.New("no supported URI opener found on this system")

	// Ordered list of opener commands to try (highest priority first)
	openerCommands = []OpenerCommand{
		// freedesktop generic
		{Name: "xdg-open", Binary: "xdg-open", Args: []string{"%s"}},
		// GNOME / GLib
		{Name: "gio", Binary: "gio", Args: []string{"open", "%s"}},
		// KDE Plasma
		{Name: "kde-open", Binary: "kde-open5", Args: []string{"%s"}},
	}

	lookPath = exec.LookPath
)

// LinuxOpener hands URIs to the desktop's registered handler
type LinuxOpener struct {
	logger  *zap.Logger
	command OpenerCommand
}

// NewOpener creates the platform-specific URI opener (Linux implementation).
// Without an opener command it still succeeds; Open then fails with ErrNoOpener.
func NewOpener(logger *zap.Logger) (*LinuxOpener, error) {
	cmd := detectCommand(logger)
	if cmd.Binary == "" {
		logger.Warn("No URI opener found, deep links will not be delivered",
			zap.Strings("tried", []string{"xdg-open", "gio", "kde-open5"}))
		return &LinuxOpener{logger: logger}, nil
	}

	logger.Info("URI opener detected",
		zap.String("name", cmd.Name),
		zap.String("binary", cmd.Binary))

	return &LinuxOpener{
		logger:  logger,
		command: cmd,
	}, nil
}

// detectCommand analyzes the environment to choose the best opener
func detectCommand(logger *zap.Logger) OpenerCommand {
	desktop := strings.ToLower(os.Getenv("XDG_CURRENT_DESKTOP"))

	logger.Debug("Detecting URI opener", zap.String("desktop", desktop))

	preferred := ""
	switch {
	case strings.Contains(desktop, "kde"):
		preferred = "kde-open"
	case strings.Contains(desktop, "gnome"):
		preferred = "gio"
	}

	if preferred != "" {
		for _, cmd := range openerCommands {
			if cmd.Name == preferred && commandExists(cmd.Binary) {
				return cmd
			}
		}
	}

	// Fallback: try all commands in order
	for _, cmd := range openerCommands {
		if commandExists(cmd.Binary) {
			return cmd
		}
	}

	return OpenerCommand{} // No command found
}

// commandExists checks if a binary exists in PATH
func commandExists(binary string) bool {
	_, err := lookPath(binary)
	return err == nil
}

// buildArgs substitutes the URI into the command template
func (o *LinuxOpener) buildArgs(uri string) []string {
	args := make([]string, len(o.command.Args))
	for i, arg := range o.command.Args {
		args[i] = strings.ReplaceAll(arg, "%s", uri)
	}
	return args
}

// Open hands uri to the desktop
func (o *LinuxOpener) Open(ctx context.Context, uri string) error {
	if o.command.Binary == "" {
		return fmt.Errorf("opening %s: %w", uri, ErrNoOpener)
	}

	args := o.buildArgs(uri)

	o.logger.Debug("Opening URI",
		zap.String("command", o.command.Binary),
		zap.Strings("args", args))

	cmd := exec.CommandContext(ctx, o.command.Binary, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to open %s with %s: %w (output: %s)",
			uri, o.command.Name, err, string(output))
	}

	o.logger.Info("URI opened", zap.String("command", o.command.Name), zap.String("uri", uri))
	return nil
}
