package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coder/rfbserver"
	"github.com/coder/rfbserver/framebuffer"
	"github.com/coder/rfbserver/version"
)

var flags struct {
	listen  string
	webRoot string
	width   uint16
	height  uint16
	name    string
	pattern string
	debug   bool
}

func main() {
	cmd := &cobra.Command{
		Use:     "rfbnovnc",
		Short:   "Serve the RFB test-pattern server over WebSocket for noVNC clients",
		Version: version.Full(),
		RunE:    run,
	}
	cmd.Flags().StringVar(&flags.listen, "listen", "0.0.0.0:6080", "host:port to listen on")
	cmd.Flags().StringVar(&flags.webRoot, "web-root", "", "path to static web files (e.g. a noVNC build)")
	cmd.Flags().Uint16Var(&flags.width, "width", 1024, "framebuffer width")
	cmd.Flags().Uint16Var(&flags.height, "height", 768, "framebuffer height")
	cmd.Flags().StringVar(&flags.name, "name", "rfb-novnc-server", "desktop name sent to clients")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "plasma",
		"pattern to display: red, green, blue, white, black, gradient, plasma, wheel")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(flags.debug)

	backend := &framebuffer.Backend{
		Pattern: framebuffer.Pattern(flags.pattern),
		Order:   framebuffer.Order{R: 0, G: 1, B: 2},
	}

	registry := prometheus.NewRegistry()
	srv := rfbserver.New(rfbserver.Config{
		Width:   flags.width,
		Height:  flags.height,
		Format:  backend.PixelFormat(),
		Name:    flags.name,
		Metrics: rfbserver.NewMetrics(registry),
	}, logger)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info().Msg("shutting down")
		cancel()
	}()

	logger.Info().Str("pattern", flags.pattern).Msg("starting websocket rfb server")
	return srv.ListenAndServeWS(ctx, rfbserver.WebConfig{
		Addr:            flags.listen,
		WebRoot:         flags.webRoot,
		MetricsRegistry: registry,
	}, backend.Update)
}

func setupLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("component", "rfbnovnc").
		Logger()
}
