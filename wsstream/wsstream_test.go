package wsstream

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer upgrades the request and echoes every binary message back.
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			msgType, data, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if err := ws.WriteMessage(msgType, data); err != nil {
				return
			}
		}
	}))
}

func dial(t *testing.T, srv *httptest.Server) *Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	return New(ws)
}

func TestReadWriteRoundTrip(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	payload := []byte("RFB 003.008\n")
	n, err := conn.Write(payload)
	require.NoError(t, err)
	assert.Equal(t, len(payload), n)

	got := make([]byte, len(payload))
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, payload, got)
}

func TestReadSpansMessages(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	_, err := conn.Write([]byte{1, 2, 3})
	require.NoError(t, err)
	_, err = conn.Write([]byte{4, 5})
	require.NoError(t, err)

	// a single ReadFull drains across message boundaries
	got := make([]byte, 5)
	_, err = io.ReadFull(conn, got)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, got)
}

func TestShortReadsBufferRemainder(t *testing.T) {
	srv := echoServer(t)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()

	_, err := conn.Write([]byte{0xaa, 0xbb, 0xcc, 0xdd})
	require.NoError(t, err)

	one := make([]byte, 1)
	for _, want := range []byte{0xaa, 0xbb, 0xcc, 0xdd} {
		_, err := conn.Read(one)
		require.NoError(t, err)
		assert.Equal(t, want, one[0])
	}
}
