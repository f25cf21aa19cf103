package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/coder/rfbserver"
	"github.com/coder/rfbserver/framebuffer"
	"github.com/coder/rfbserver/version"
)

var flags struct {
	listen    string
	width     uint16
	height    uint16
	name      string
	pattern   string
	bigEndian bool
	redOrder  uint8
	grnOrder  uint8
	bluOrder  uint8
	debug     bool
}

func main() {
	cmd := &cobra.Command{
		Use:     "rfbserver",
		Short:   "VNC server that displays a test pattern in a configurable pixel format",
		Version: version.Full(),
		RunE:    run,
	}
	cmd.Flags().StringVar(&flags.listen, "listen", "0.0.0.0:5900", "host:port to listen on")
	cmd.Flags().Uint16Var(&flags.width, "width", 1024, "framebuffer width")
	cmd.Flags().Uint16Var(&flags.height, "height", 768, "framebuffer height")
	cmd.Flags().StringVar(&flags.name, "name", "rfb-example-server", "desktop name sent to clients")
	cmd.Flags().StringVar(&flags.pattern, "pattern", "wheel",
		"pattern to display: red, green, blue, white, black, gradient, plasma, wheel")
	cmd.Flags().BoolVar(&flags.bigEndian, "big-endian", false, "render pixels big-endian")
	cmd.Flags().Uint8Var(&flags.redOrder, "red-order", 0, "byte mapping to red (0..3)")
	cmd.Flags().Uint8Var(&flags.grnOrder, "green-order", 1, "byte mapping to green (0..3)")
	cmd.Flags().Uint8Var(&flags.bluOrder, "blue-order", 2, "byte mapping to blue (0..3)")
	cmd.Flags().BoolVar(&flags.debug, "debug", false, "enable debug logging")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := setupLogger(flags.debug)

	backend := &framebuffer.Backend{
		Pattern:   framebuffer.Pattern(flags.pattern),
		Order:     framebuffer.Order{R: flags.redOrder, G: flags.grnOrder, B: flags.bluOrder},
		BigEndian: flags.bigEndian,
	}
	if err := backend.Order.Validate(); err != nil {
		return err
	}

	srv := rfbserver.New(rfbserver.Config{
		Width:  flags.width,
		Height: flags.height,
		Format: backend.PixelFormat(),
		Name:   flags.name,
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

	logger.Info().
		Str("pattern", flags.pattern).
		Str("version", version.Version()).
		Msg("starting rfb server")
	return srv.ListenAndServe(ctx, flags.listen, backend.Update)
}

func setupLogger(debug bool) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stdout).Level(level).With().
		Timestamp().
		Str("component", "rfbserver").
		Logger()
}
