// Package rfbserver implements the server side of the RFB (VNC) protocol:
// the connection handshake, per-connection session state, and the
// established-session message loop serving framebuffer updates.
//
// The protocol engine is transport-agnostic: it speaks to anything that
// provides a duplex byte stream, whether a raw TCP connection or a
// WebSocket wrapped by the wsstream package.
package rfbserver

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/coder/rfbserver/rfb"
)

// ProducerFunc renders the current framebuffer contents as an update. It
// is invoked once per FramebufferUpdateRequest and must render in the
// session's input pixel format.
type ProducerFunc func(width, height uint16) (rfb.FramebufferUpdate, error)

// Config carries the server-wide protocol parameters.
type Config struct {
	// Width and Height are the initial framebuffer resolution.
	Width  uint16
	Height uint16

	// Format is the pixel format the producer renders in.
	Format rfb.PixelFormat

	// Name is the desktop name sent in ServerInit.
	Name string

	// Version is the protocol version the server requires. Defaults to
	// Proto38.
	Version rfb.ProtoVersion

	// SecurityTypes are the security types offered to clients, in order.
	// Defaults to [SecTypeNone].
	SecurityTypes rfb.SecurityTypes

	// Metrics, if non-nil, receives connection and update counters.
	Metrics *Metrics
}

func (c Config) withDefaults() Config {
	if c.Version == 0 {
		c.Version = rfb.Proto38
	}
	if len(c.SecurityTypes) == 0 {
		c.SecurityTypes = rfb.SecurityTypes{rfb.SecTypeNone}
	}
	if c.Name == "" {
		c.Name = "rfbserver"
	}
	return c
}

// Server accepts RFB connections and creates a session per connection.
// Connections share nothing mutable; all per-connection state lives on
// Conn.
type Server struct {
	cfg Config
	log zerolog.Logger
}

// New creates a server. The logger is purely observational; pass
// zerolog.Nop() to silence it.
func New(cfg Config, log zerolog.Logger) *Server {
	return &Server{cfg: cfg.withDefaults(), log: log}
}

// Conn is the per-connection session core. It owns the mutable session
// state: resolution plus the input format (what the producer renders) and
// the output format (what the client last requested via SetPixelFormat).
// The state lock is scoped to each read-modify-write and is never held
// across stream I/O.
type Conn struct {
	srv *Server
	log zerolog.Logger

	mu           sync.Mutex
	width        uint16
	height       uint16
	inputFormat  rfb.PixelFormat
	outputFormat rfb.PixelFormat
}

// NewConn creates a fresh session seeded from the server config. The
// output format starts equal to the input format until the client sends
// SetPixelFormat.
func (s *Server) NewConn() *Conn {
	id := uuid.NewString()
	return &Conn{
		srv:          s,
		log:          s.log.With().Str("conn_id", id).Logger(),
		width:        s.cfg.Width,
		height:       s.cfg.Height,
		inputFormat:  s.cfg.Format,
		outputFormat: s.cfg.Format,
	}
}

// SetPixelFormat replaces the input pixel format, i.e. the format the
// producer renders in.
func (c *Conn) SetPixelFormat(pf rfb.PixelFormat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inputFormat = pf
}

// SetResolution replaces the advertised framebuffer resolution.
func (c *Conn) SetResolution(width, height uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width = width
	c.height = height
}

// Resolution returns the current framebuffer resolution.
func (c *Conn) Resolution() (width, height uint16) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// Formats returns the current input and output pixel formats.
func (c *Conn) Formats() (input, output rfb.PixelFormat) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inputFormat, c.outputFormat
}

// Initialize runs the three-phase connection setup: version exchange,
// security negotiation and the ClientInit/ServerInit exchange. On success
// it returns the parsed ClientInit and the connection is established. Any
// failure aborts the whole handshake; the caller must tear the connection
// down, there is no partial retry.
//
// Offering an empty security type set is a programming error and panics.
func (c *Conn) Initialize(stream io.ReadWriter) (rfb.ClientInit, error) {
	cfg := c.srv.cfg
	if len(cfg.SecurityTypes) == 0 {
		panic("rfbserver: at least one security type must be offered")
	}

	if err := c.versionHandshake(stream, cfg.Version); err != nil {
		cfg.Metrics.handshakeFailure()
		return rfb.ClientInit{}, err
	}
	if err := c.securityHandshake(stream, cfg.SecurityTypes); err != nil {
		cfg.Metrics.handshakeFailure()
		return rfb.ClientInit{}, err
	}
	ci, err := c.initExchange(stream, cfg.Name)
	if err != nil {
		cfg.Metrics.handshakeFailure()
		return rfb.ClientInit{}, err
	}
	cfg.Metrics.connection()
	return ci, nil
}

func (c *Conn) versionHandshake(stream io.ReadWriter, version rfb.ProtoVersion) error {
	c.log.Debug().Stringer("version", version).Msg("tx: protocol version")
	if err := version.Encode(stream); err != nil {
		return errors.Wrap(err, "send version")
	}
	clientVersion, err := rfb.DecodeProtoVersion(stream)
	if err != nil {
		return errors.Wrap(err, "read client version")
	}
	c.log.Debug().Stringer("version", clientVersion).Msg("rx: client version")

	if clientVersion < version {
		c.log.Error().
			Stringer("client_version", clientVersion).
			Stringer("server_version", version).
			Msg("client version too old")
		return errors.Wrapf(rfb.ErrUnsupportedVersion, "client %s, server requires %s",
			clientVersion, version)
	}
	return nil
}

func (c *Conn) securityHandshake(stream io.ReadWriter, offered rfb.SecurityTypes) error {
	c.log.Debug().Msg("tx: security types")
	if err := offered.Encode(stream); err != nil {
		return errors.Wrap(err, "send security types")
	}
	choice, err := rfb.DecodeSecurityType(stream)
	if err != nil {
		return errors.Wrap(err, "read security choice")
	}
	c.log.Debug().Stringer("choice", choice).Msg("rx: security choice")

	if !offered.Contains(choice) {
		// The client hears why before the connection goes away.
		failure := rfb.SecurityFailure("unsupported security type")
		if err := failure.Encode(stream); err != nil {
			return errors.Wrap(err, "send security failure")
		}
		c.log.Error().Stringer("choice", choice).Msg("security type not offered")
		return errors.Wrapf(rfb.ErrUnsupportedSecurityType, "client chose %d", uint8(choice))
	}

	c.log.Debug().Msg("tx: security result success")
	if err := rfb.SecuritySuccess().Encode(stream); err != nil {
		return errors.Wrap(err, "send security result")
	}
	return nil
}

func (c *Conn) initExchange(stream io.ReadWriter, name string) (rfb.ClientInit, error) {
	ci, err := rfb.DecodeClientInit(stream)
	if err != nil {
		return rfb.ClientInit{}, errors.Wrap(err, "read client init")
	}
	c.log.Debug().Bool("shared", ci.Shared).Msg("rx: client init")

	c.mu.Lock()
	si := rfb.ServerInit{
		Width:  c.width,
		Height: c.height,
		Format: c.inputFormat,
		Name:   name,
	}
	c.mu.Unlock()

	c.log.Debug().
		Uint16("width", si.Width).
		Uint16("height", si.Height).
		Msg("tx: server init")
	if err := si.Encode(stream); err != nil {
		return rfb.ClientInit{}, errors.Wrap(err, "send server init")
	}
	return ci, nil
}

// ReadMessage decodes the next client message. If the message is
// SetPixelFormat, the session's output format is updated before the
// message is returned. All other messages are informational; the caller
// decides what, if anything, to do with them.
func (c *Conn) ReadMessage(stream io.Reader) (rfb.ClientMessage, error) {
	msg, err := rfb.DecodeClientMessage(stream)
	if err != nil {
		return nil, err
	}
	if spf, ok := msg.(rfb.SetPixelFormat); ok {
		c.mu.Lock()
		c.outputFormat = spf.Format
		c.mu.Unlock()
		c.log.Debug().Msg("rx: set pixel format")
	}
	return msg, nil
}

// SendUpdate serializes a framebuffer update produced in the input pixel
// format. If the client requested a different format and both formats are
// RGB888, the update is re-expressed in the client's format first; other
// format pairs are sent unmodified (there is no generic N-bit
// reformatting).
func (c *Conn) SendUpdate(stream io.Writer, fbu rfb.FramebufferUpdate) error {
	c.mu.Lock()
	input := c.inputFormat
	output := c.outputFormat
	c.mu.Unlock()

	if input != output {
		if input.IsRGB888() && output.IsRGB888() {
			fbu = fbu.Transform(input, output)
		} else {
			c.log.Debug().
				Bool("input_rgb888", input.IsRGB888()).
				Bool("output_rgb888", output.IsRGB888()).
				Msg("pixel formats differ but are not both rgb888, sending unmodified")
		}
	}

	if err := fbu.Encode(stream); err != nil {
		return errors.Wrap(err, "send framebuffer update")
	}
	c.srv.cfg.Metrics.update(fbu)
	return nil
}

// Serve is a convenience loop over ReadMessage and SendUpdate: it decodes
// messages until the first error and answers each framebuffer update
// request by invoking the producer. Input events are logged and otherwise
// ignored. It returns nil when ctx is done, otherwise the error that ended
// the session.
//
// Callers that need to interleave unsolicited updates or handle input
// drive ReadMessage and SendUpdate directly instead.
func (c *Conn) Serve(ctx context.Context, stream io.ReadWriter, producer ProducerFunc) error {
	for {
		msg, err := c.ReadMessage(stream)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.log.Error().Err(err).Msg("read client message")
			return err
		}

		switch m := msg.(type) {
		case rfb.SetPixelFormat:
			// output format already updated by ReadMessage

		case rfb.SetEncodings:
			c.log.Debug().Int("count", len(m.Encodings)).Msg("rx: set encodings")

		case rfb.FramebufferUpdateRequest:
			width, height := c.Resolution()
			fbu, err := producer(width, height)
			if err != nil {
				c.log.Error().Err(err).Msg("framebuffer producer failed")
				return errors.Wrap(err, "produce framebuffer update")
			}
			if err := c.SendUpdate(stream, fbu); err != nil {
				c.log.Error().Err(err).Msg("send framebuffer update")
				return err
			}

		case rfb.KeyEvent:
			c.log.Debug().
				Str("key", m.Keysym.Name()).
				Uint32("raw", m.Raw).
				Bool("pressed", m.Pressed).
				Msg("rx: key event")

		case rfb.PointerEvent:
			c.log.Debug().
				Uint16("x", m.X).
				Uint16("y", m.Y).
				Uint8("buttons", uint8(m.Buttons)).
				Msg("rx: pointer event")

		case rfb.ClientCutText:
			c.log.Debug().Int("len", len(m.Text)).Msg("rx: client cut text")
		}
	}
}

// Handle runs a full connection lifecycle on a byte stream: handshake,
// then the Serve loop. It is the per-connection entry point used by the
// accept loops.
func (s *Server) Handle(ctx context.Context, stream io.ReadWriter, producer ProducerFunc) error {
	conn := s.NewConn()
	if _, err := conn.Initialize(stream); err != nil {
		conn.log.Error().Err(err).Msg("handshake failed")
		return err
	}
	return conn.Serve(ctx, stream, producer)
}

// ListenAndServe accepts TCP connections on addr and serves each on its
// own goroutine until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string, producer ProducerFunc) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", addr)
	}
	defer ln.Close()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	s.log.Info().Str("addr", addr).Msg("rfb server listening")
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		s.log.Info().Str("remote", conn.RemoteAddr().String()).Msg("new connection")

		go func() {
			defer conn.Close()
			_ = s.Handle(ctx, conn, producer)
		}()
	}
}
