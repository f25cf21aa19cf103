package rfbserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coder/rfbserver/rfb"
	"github.com/coder/rfbserver/wsstream"
)

// TestWebSocketSession runs a whole session through the websocket
// front-end: handshake, one update request, one update back.
func TestWebSocketSession(t *testing.T) {
	srv := New(Config{
		Width:  2,
		Height: 1,
		Format: rfb.NewRGB888(false, 24, 16, 8),
		Name:   "ws-test",
	}, zerolog.Nop())

	producer := func(width, height uint16) (rfb.FramebufferUpdate, error) {
		pixels := make([]byte, int(width)*int(height)*rfb.RGB888BytesPerPixel)
		return rfb.NewFramebufferUpdate(
			rfb.NewRectangle(0, 0, width, height, rfb.NewRawEncoding(pixels))), nil
	}

	ts := httptest.NewServer(srv.serveWS(context.Background(), producer))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	header := http.Header{"Origin": []string{"http://example.test"}}
	ws, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	stream := wsstream.New(ws)
	defer stream.Close()

	// version exchange
	version := make([]byte, 12)
	_, err = io.ReadFull(stream, version)
	require.NoError(t, err)
	assert.Equal(t, "RFB 003.008\n", string(version))
	_, err = stream.Write(version)
	require.NoError(t, err)

	// security: default offer is [none]
	offer := make([]byte, 2)
	_, err = io.ReadFull(stream, offer)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 1}, offer)
	_, err = stream.Write([]byte{1})
	require.NoError(t, err)

	result := make([]byte, 4)
	_, err = io.ReadFull(stream, result)
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 0, 0, 0}, result)

	// init exchange
	_, err = stream.Write([]byte{1})
	require.NoError(t, err)
	head := make([]byte, 24+len("ws-test"))
	_, err = io.ReadFull(stream, head)
	require.NoError(t, err)
	assert.Equal(t, "ws-test", string(head[24:]))

	// request and receive one update: header + rect header + 2px payload
	_, err = stream.Write([]byte{3, 0, 0, 0, 0, 0, 0, 2, 0, 1})
	require.NoError(t, err)
	update := make([]byte, 4+12+2*rfb.RGB888BytesPerPixel)
	_, err = io.ReadFull(stream, update)
	require.NoError(t, err)
	assert.Equal(t, byte(0), update[0])
}
