package rfb

import "io"

// Client-to-server message discriminants (RFC 6143 section 7.5). Value 1
// is unassigned for client messages.
const (
	msgSetPixelFormat           = 0
	msgSetEncodings             = 2
	msgFramebufferUpdateRequest = 3
	msgKeyEvent                 = 4
	msgPointerEvent             = 5
	msgClientCutText            = 6
)

// Server-to-client message discriminants (RFC 6143 section 7.6).
const (
	msgFramebufferUpdate = 0
)

// ClientInit is the single byte the client sends after security
// negotiation. Shared is advisory: the server currently treats shared and
// exclusive sessions identically.
type ClientInit struct {
	Shared bool
}

// DecodeClientInit reads the ClientInit byte.
func DecodeClientInit(r io.Reader) (ClientInit, error) {
	flag, err := readU8(r)
	if err != nil {
		return ClientInit{}, err
	}
	return ClientInit{Shared: flag != 0}, nil
}

// ServerInit is the server's declared resolution, initial pixel format and
// name, written exactly once per connection.
type ServerInit struct {
	Width  uint16
	Height uint16
	Format PixelFormat
	Name   string
}

// Encode writes the ServerInit message.
func (si ServerInit) Encode(w io.Writer) error {
	if err := writeU16(w, si.Width); err != nil {
		return err
	}
	if err := writeU16(w, si.Height); err != nil {
		return err
	}
	if err := si.Format.Encode(w); err != nil {
		return err
	}
	return writeText(w, si.Name)
}

// ClientMessage is a decoded client-to-server message. The variant set is
// closed; dispatch by type switch.
type ClientMessage interface {
	isClientMessage()
}

// SetPixelFormat asks the server to deliver framebuffer updates in the
// given pixel format from now on.
type SetPixelFormat struct {
	Format PixelFormat
}

// SetEncodings advertises the encodings the client can decode, in order of
// preference.
type SetEncodings struct {
	Encodings []EncodingType
}

// FramebufferUpdateRequest asks for an update of the given region.
type FramebufferUpdateRequest struct {
	Incremental bool
	X           uint16
	Y           uint16
	Width       uint16
	Height      uint16
}

// KeyEvent is a key press or release. Keysym is the symbolic
// classification and Raw the untouched 32-bit wire value; the two always
// agree numerically, but Raw survives even when Keysym has no symbolic
// name.
type KeyEvent struct {
	Pressed bool
	Keysym  KeySym
	Raw     uint32
}

// ButtonMask is the pointer button state, one bit per button.
type ButtonMask uint8

const (
	ButtonLeft ButtonMask = 1 << iota
	ButtonMiddle
	ButtonRight
	ButtonScrollUp
	ButtonScrollDown
	ButtonScrollLeft
	ButtonScrollRight
)

// Pressed reports whether button b is down.
func (m ButtonMask) Pressed(b ButtonMask) bool {
	return m&b != 0
}

// PointerEvent is a pointer move and/or button state change.
type PointerEvent struct {
	X       uint16
	Y       uint16
	Buttons ButtonMask
}

// ClientCutText delivers the client's cut buffer.
type ClientCutText struct {
	Text string
}

func (SetPixelFormat) isClientMessage()           {}
func (SetEncodings) isClientMessage()             {}
func (FramebufferUpdateRequest) isClientMessage() {}
func (KeyEvent) isClientMessage()                 {}
func (PointerEvent) isClientMessage()             {}
func (ClientCutText) isClientMessage()            {}

// DecodeClientMessage reads exactly one client message. An unknown
// discriminant is a protocol error and fatal to the connection.
func DecodeClientMessage(r io.Reader) (ClientMessage, error) {
	t, err := readU8(r)
	if err != nil {
		return nil, err
	}
	switch t {
	case msgSetPixelFormat:
		if err := readPadding(r, 3); err != nil {
			return nil, err
		}
		pf, err := DecodePixelFormat(r)
		if err != nil {
			return nil, err
		}
		return SetPixelFormat{Format: pf}, nil

	case msgSetEncodings:
		if err := readPadding(r, 1); err != nil {
			return nil, err
		}
		count, err := readU16(r)
		if err != nil {
			return nil, err
		}
		encodings := make([]EncodingType, 0, count)
		for i := 0; i < int(count); i++ {
			e, err := decodeEncodingType(r)
			if err != nil {
				return nil, err
			}
			encodings = append(encodings, e)
		}
		return SetEncodings{Encodings: encodings}, nil

	case msgFramebufferUpdateRequest:
		incremental, err := readU8(r)
		if err != nil {
			return nil, err
		}
		var req FramebufferUpdateRequest
		req.Incremental = incremental != 0
		if req.X, err = readU16(r); err != nil {
			return nil, err
		}
		if req.Y, err = readU16(r); err != nil {
			return nil, err
		}
		if req.Width, err = readU16(r); err != nil {
			return nil, err
		}
		if req.Height, err = readU16(r); err != nil {
			return nil, err
		}
		return req, nil

	case msgKeyEvent:
		pressed, err := readU8(r)
		if err != nil {
			return nil, err
		}
		if err := readPadding(r, 2); err != nil {
			return nil, err
		}
		raw, err := readU32(r)
		if err != nil {
			return nil, err
		}
		return KeyEvent{
			Pressed: pressed != 0,
			Keysym:  KeySym(raw),
			Raw:     raw,
		}, nil

	case msgPointerEvent:
		mask, err := readU8(r)
		if err != nil {
			return nil, err
		}
		var ev PointerEvent
		ev.Buttons = ButtonMask(mask)
		if ev.X, err = readU16(r); err != nil {
			return nil, err
		}
		if ev.Y, err = readU16(r); err != nil {
			return nil, err
		}
		return ev, nil

	case msgClientCutText:
		if err := readPadding(r, 3); err != nil {
			return nil, err
		}
		text, err := readText(r, "ClientCutText")
		if err != nil {
			return nil, err
		}
		return ClientCutText{Text: text}, nil
	}
	return nil, protocolErrf("DecodeClientMessage", "unknown client message type %d", t)
}

// Rectangle is one region of a framebuffer update. It owns its payload.
type Rectangle struct {
	X      uint16
	Y      uint16
	Width  uint16
	Height uint16
	Data   Encoding
}

// NewRectangle builds a rectangle with the given payload.
func NewRectangle(x, y, width, height uint16, data Encoding) Rectangle {
	return Rectangle{X: x, Y: y, Width: width, Height: height, Data: data}
}

// Transform returns a copy of the rectangle with its payload re-expressed
// under the output pixel format.
func (rect Rectangle) Transform(input, output PixelFormat) Rectangle {
	rect.Data = rect.Data.Transform(input, output)
	return rect
}

// Encode writes the rectangle header followed by the encoded payload.
func (rect Rectangle) Encode(w io.Writer) error {
	if err := writeU16(w, rect.X); err != nil {
		return err
	}
	if err := writeU16(w, rect.Y); err != nil {
		return err
	}
	if err := writeU16(w, rect.Width); err != nil {
		return err
	}
	if err := writeU16(w, rect.Height); err != nil {
		return err
	}
	if err := writeI32(w, int32(rect.Data.Type())); err != nil {
		return err
	}
	return writeBytes(w, rect.Data.Encode())
}

// FramebufferUpdate is a server-to-client message carrying an ordered
// sequence of updated rectangles. Updates are produced fresh per request
// and discarded after serialization.
type FramebufferUpdate struct {
	Rectangles []Rectangle
}

// NewFramebufferUpdate builds an update from rectangles.
func NewFramebufferUpdate(rects ...Rectangle) FramebufferUpdate {
	return FramebufferUpdate{Rectangles: rects}
}

// Transform returns a new update with every rectangle's payload
// re-expressed under the output pixel format.
func (fbu FramebufferUpdate) Transform(input, output PixelFormat) FramebufferUpdate {
	rects := make([]Rectangle, len(fbu.Rectangles))
	for i, rect := range fbu.Rectangles {
		rects[i] = rect.Transform(input, output)
	}
	return FramebufferUpdate{Rectangles: rects}
}

// Encode writes the FramebufferUpdate message.
func (fbu FramebufferUpdate) Encode(w io.Writer) error {
	if err := writeU8(w, msgFramebufferUpdate); err != nil {
		return err
	}
	if err := writePadding(w, 1); err != nil {
		return err
	}
	if err := writeU16(w, uint16(len(fbu.Rectangles))); err != nil {
		return err
	}
	for _, rect := range fbu.Rectangles {
		if err := rect.Encode(w); err != nil {
			return err
		}
	}
	return nil
}
