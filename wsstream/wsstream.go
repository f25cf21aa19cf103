// Package wsstream adapts a WebSocket connection into the duplex byte
// stream the RFB engine expects. noVNC and similar clients frame protocol
// bytes as binary WebSocket messages; this adapter hides the framing.
package wsstream

import (
	"io"

	"github.com/gorilla/websocket"
)

// Conn wraps a *websocket.Conn as an io.ReadWriteCloser. Reads drain
// binary messages in order, spilling leftover bytes into the next Read;
// each Write sends one binary message. Conn is not safe for concurrent
// readers or concurrent writers, matching the underlying websocket.
type Conn struct {
	ws  *websocket.Conn
	buf []byte
}

// New wraps ws.
func New(ws *websocket.Conn) *Conn {
	return &Conn{ws: ws}
}

// Read fills p from the current binary message, fetching the next message
// when the current one is drained. A clean websocket close reads as
// io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	for len(c.buf) == 0 {
		msgType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, err
		}
		if msgType != websocket.BinaryMessage {
			// Text or control frames carry no protocol bytes.
			continue
		}
		c.buf = data
	}
	n := copy(p, c.buf)
	c.buf = c.buf[n:]
	return n, nil
}

// Write sends p as a single binary message.
func (c *Conn) Write(p []byte) (int, error) {
	if err := c.ws.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// Close closes the underlying websocket.
func (c *Conn) Close() error {
	return c.ws.Close()
}
