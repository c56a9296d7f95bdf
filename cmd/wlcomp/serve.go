package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"deedles.dev/wlcomp/compositor"
	"deedles.dev/wlcomp/config"
	"deedles.dev/wlcomp/internal/debug"
	"deedles.dev/wlcomp/protocol"
	wl "deedles.dev/wlcomp/server"
	"github.com/spf13/cobra"
)

var serveSocket string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the compositor",
	RunE: func(cmd *cobra.Command, args []string) error {
		if serveSocket != "" {
			cfg.Socket = serveSocket
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "socket name, overriding the config")
}

// logEmbedder stands in for a renderer. It only reports what clients
// do with their surfaces.
type logEmbedder struct{}

func (logEmbedder) SurfaceCreated(s *compositor.Surface) {
	debug.Info("surface created", "client", s.Client(), "id", s.ID())
}

func (logEmbedder) SurfaceAboutToBeDestroyed(s *compositor.Surface) {
	debug.Info("surface destroyed", "client", s.Client(), "id", s.ID())
}

// setup applies cfg to a new compositor.
func setup(c *compositor.Compositor, cfg *config.Config) error {
	c.SetOutputGeometry(cfg.Geometry())

	o, err := cfg.Orientation()
	if err != nil {
		return err
	}
	c.SetScreenOrientation(o)

	c.InitializeDefaultInputDevice(protocol.SeatCapabilityPointer | protocol.SeatCapabilityKeyboard | protocol.SeatCapabilityTouch)

	if cfg.Extensions.SubSurface {
		c.EnableSubSurfaceExtension()
	}
	if cfg.Extensions.Touch {
		c.EnableTouchExtension()
		c.ConfigureTouchExtension(cfg.Extensions.TouchFlags)
	}
	if cfg.Extensions.WindowManager {
		c.InitializeWindowManagerProtocol()
	}

	c.Server().ClientCreated = func(client *wl.Client) {
		debug.Info("client connected", "client", client)
	}
	c.FrameFinished = func(s *compositor.Surface) {
		debug.Debug("frame finished", "id", s.ID())
	}

	return nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	c, err := compositor.Listen(cfg.Socket, logEmbedder{})
	if err != nil {
		return err
	}
	defer c.Close()

	err = setup(c, cfg)
	if err != nil {
		return fmt.Errorf("configure compositor: %w", err)
	}

	debug.Info("listening", "socket", cfg.Socket, "frame_rate", cfg.FrameRate)
	err = c.Run(ctx, cfg.FrameInterval())
	if ctx.Err() != nil {
		return nil
	}
	return err
}
