package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// dialConnection spins up a websocket server and returns the server-side
// Connection plus the client socket that keeps it alive.
func dialConnection(t *testing.T, userID int64) (*Connection, *websocket.Conn) {
	t.Helper()

	serverSide := make(chan *Connection, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn := NewConnection(userID, ws)
		conn.Start()
		serverSide <- conn
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	conn := <-serverSide
	t.Cleanup(func() { conn.Close(websocket.CloseNormalClosure, "") })
	return conn, client
}

func TestConnection_SendAfterCloseReturnsError(t *testing.T) {
	conn, _ := dialConnection(t, 9)

	conn.Close(websocket.CloseNormalClosure, "done")

	var failed int64
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := conn.Send([]byte(`{"type":"NewMessage"}`)); err != nil {
				atomic.AddInt64(&failed, 1)
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, 200, failed, "every send against a closed connection must fail")
}

func TestConnection_SendRacingCloseDoesNotPanic(t *testing.T) {
	conn, _ := dialConnection(t, 9)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = conn.Send([]byte("payload"))
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		conn.Close(websocket.CloseGoingAway, "shutting down")
	}()
	wg.Wait()

	require.Error(t, conn.Send([]byte("payload")))
}

func TestConnection_CloseIsIdempotent(t *testing.T) {
	conn, _ := dialConnection(t, 9)

	conn.Close(websocket.CloseNormalClosure, "")
	conn.Close(websocket.CloseNormalClosure, "")

	require.Error(t, conn.Send([]byte("payload")))
}

func TestConnection_DeliversEnqueuedPayload(t *testing.T) {
	conn, client := dialConnection(t, 9)

	require.NoError(t, conn.Send([]byte("hello")))

	_, payload, err := client.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, "hello", string(payload))
}
