package rfbserver

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/coder/rfbserver/wsstream"
)

// WebConfig configures the HTTP front-end that serves RFB over WebSocket.
type WebConfig struct {
	// Addr is the host:port to listen on.
	Addr string

	// WebRoot, if non-empty, is a directory of static files (e.g. a noVNC
	// build) served at /. Serving the current working directory is
	// refused.
	WebRoot string

	// MetricsRegistry, if non-nil, is exposed at /metrics.
	MetricsRegistry *prometheus.Registry
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return r.Header.Get("Origin") != ""
	},
}

// ListenAndServeWS serves the RFB protocol at /websockify over WebSocket,
// optional static content at /, and optional prometheus metrics at
// /metrics, blocking until ctx is cancelled. Each upgraded websocket gets
// its own RFB session fed through the wsstream adapter.
func (s *Server) ListenAndServeWS(ctx context.Context, cfg WebConfig, producer ProducerFunc) error {
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}

	mux := http.NewServeMux()

	switch {
	case cfg.WebRoot == cwd:
		s.log.Error().Msg("refusing to serve static content from the current working directory")
		return nil
	case cfg.WebRoot == "":
		s.log.Info().Msg("no web root specified; serving no static content")
	default:
		s.log.Info().Str("root", cfg.WebRoot).Msg("serving static content")
		mux.Handle("/", http.FileServer(http.Dir(cfg.WebRoot)))
	}

	if cfg.MetricsRegistry != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(cfg.MetricsRegistry, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("/websockify", s.serveWS(ctx, producer))

	server := &http.Server{
		Addr:           cfg.Addr,
		Handler:        mux,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	s.log.Info().Str("addr", cfg.Addr).Msg("serving rfb over websocket at /websockify")
	err = server.ListenAndServe()
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (s *Server) serveWS(ctx context.Context, producer ProducerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.log.Error().Err(err).Msg("websocket upgrade failed")
			return
		}
		s.log.Info().Str("remote", r.RemoteAddr).Msg("new websocket connection")

		stream := wsstream.New(ws)
		defer stream.Close()
		_ = s.Handle(ctx, stream, producer)
	}
}
