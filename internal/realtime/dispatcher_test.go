package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/docconnect/platform/pkg/logging"
)

func startTestServer(t *testing.T) (*Dispatcher, *httptest.Server) {
	t.Helper()
	d := NewDispatcher(logging.New("error"))
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", d.HandleWebSocket)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return d, srv
}

func dialTestServer(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, err := websocket.Dial(url, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func receiveEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev Event
	require.NoError(t, websocket.JSON.Receive(conn, &ev))
	return ev
}

func joinDoctor(t *testing.T, conn *websocket.Conn, doctorID int64) {
	t.Helper()
	require.NoError(t, websocket.JSON.Send(conn, InboundFrame{Type: "join-doctor", DoctorID: doctorID}))
	ev := receiveEvent(t, conn)
	require.Equal(t, "joined", ev.Type)
}

// waitForListeners polls until the dispatcher sees the expected doctor
// channel membership; joins race the test otherwise.
func waitForListeners(t *testing.T, d *Dispatcher, doctorID int64, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.RLock()
		n := len(d.byDoctor[doctorID])
		d.mu.RUnlock()
		if n == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("doctor %d never reached %d listeners", doctorID, want)
}

func TestNotifyDoctorTargetsJoinedConnections(t *testing.T) {
	d, srv := startTestServer(t)

	doctorConn := dialTestServer(t, srv)
	otherConn := dialTestServer(t, srv)
	joinDoctor(t, doctorConn, 3)
	waitForListeners(t, d, 3, 1)

	delivered := d.NotifyDoctor(3, "appointment:new", map[string]any{"appointment_id": 12})
	assert.True(t, delivered)

	ev := receiveEvent(t, doctorConn)
	assert.Equal(t, "appointment:new", ev.Type)

	// The unjoined connection sees nothing.
	require.NoError(t, otherConn.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var stray Event
	err := websocket.JSON.Receive(otherConn, &stray)
	assert.Error(t, err, "unjoined connection should time out, not receive events")
}

func TestNotifyDoctorNoListeners(t *testing.T) {
	d, _ := startTestServer(t)
	assert.False(t, d.NotifyDoctor(42, "appointment:new", nil))
}

func TestBroadcastReachesAllConnections(t *testing.T) {
	d, srv := startTestServer(t)

	a := dialTestServer(t, srv)
	b := dialTestServer(t, srv)
	joinDoctor(t, a, 3)
	waitForListeners(t, d, 3, 1)

	// Wait for both connections to register.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		d.mu.RLock()
		n := len(d.conns)
		d.mu.RUnlock()
		if n == 2 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	sent := d.Broadcast("appointment:statusUpdate", map[string]any{"appointment_id": 12, "status": "success"})
	assert.Equal(t, 2, sent)

	for _, conn := range []*websocket.Conn{a, b} {
		ev := receiveEvent(t, conn)
		assert.Equal(t, "appointment:statusUpdate", ev.Type)
	}
}

func TestPing(t *testing.T) {
	_, srv := startTestServer(t)
	conn := dialTestServer(t, srv)
	require.NoError(t, websocket.JSON.Send(conn, InboundFrame{Type: "ping"}))
	ev := receiveEvent(t, conn)
	assert.Equal(t, "pong", ev.Type)
}

func TestDisconnectLeavesChannel(t *testing.T) {
	d, srv := startTestServer(t)

	conn := dialTestServer(t, srv)
	joinDoctor(t, conn, 3)
	waitForListeners(t, d, 3, 1)

	conn.Close()
	waitForListeners(t, d, 3, 0)

	assert.False(t, d.NotifyDoctor(3, "appointment:new", nil))
}
