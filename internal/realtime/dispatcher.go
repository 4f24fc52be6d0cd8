package realtime

import (
	"net/http"
	"sync"

	"golang.org/x/net/websocket"

	"github.com/docconnect/platform/pkg/logging"
)

// Event is the wire frame pushed to connected clients.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// InboundFrame is what clients send. A doctor dashboard declares itself with
// {"type":"join-doctor","doctor_id":N}; the id is taken at face value, the
// channel only carries non-sensitive lifecycle events.
type InboundFrame struct {
	Type     string `json:"type"` // "join-doctor", "ping"
	DoctorID int64  `json:"doctor_id"`
}

// Dispatcher fans appointment lifecycle events out over WebSockets.
// Delivery is best-effort: no queueing, no retries, slow or absent clients
// simply miss events.
type Dispatcher struct {
	logger *logging.Logger

	mu       sync.RWMutex
	conns    map[*wsConn]struct{}
	byDoctor map[int64]map[*wsConn]struct{}
}

type wsConn struct {
	conn     *websocket.Conn
	doctorID int64 // 0 until a join-doctor frame arrives
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger *logging.Logger) *Dispatcher {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dispatcher{
		logger:   logger,
		conns:    make(map[*wsConn]struct{}),
		byDoctor: make(map[int64]map[*wsConn]struct{}),
	}
}

// HandleWebSocket upgrades to WebSocket and serves the connection until the
// client goes away.
func (d *Dispatcher) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		d.serveWS(conn)
	}).ServeHTTP(w, r)
}

func (d *Dispatcher) serveWS(conn *websocket.Conn) {
	wsc := &wsConn{conn: conn}
	d.mu.Lock()
	d.conns[wsc] = struct{}{}
	d.mu.Unlock()
	defer d.remove(wsc)

	d.logger.Debug("realtime: connection opened")

	for {
		var frame InboundFrame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			d.logger.Debug("realtime: connection closed", "error", err)
			return
		}

		switch frame.Type {
		case "ping":
			_ = websocket.JSON.Send(conn, Event{Type: "pong"})
		case "join-doctor":
			if frame.DoctorID > 0 {
				d.joinDoctor(wsc, frame.DoctorID)
				_ = websocket.JSON.Send(conn, Event{Type: "joined", Payload: map[string]int64{"doctor_id": frame.DoctorID}})
			}
		}
	}
}

func (d *Dispatcher) joinDoctor(wsc *wsConn, doctorID int64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if wsc.doctorID != 0 {
		d.leaveDoctorLocked(wsc)
	}
	wsc.doctorID = doctorID
	if d.byDoctor[doctorID] == nil {
		d.byDoctor[doctorID] = make(map[*wsConn]struct{})
	}
	d.byDoctor[doctorID][wsc] = struct{}{}
	d.logger.Info("realtime: doctor channel joined", "doctor_id", doctorID)
}

func (d *Dispatcher) leaveDoctorLocked(wsc *wsConn) {
	if set, ok := d.byDoctor[wsc.doctorID]; ok {
		delete(set, wsc)
		if len(set) == 0 {
			delete(d.byDoctor, wsc.doctorID)
		}
	}
	wsc.doctorID = 0
}

func (d *Dispatcher) remove(wsc *wsConn) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.conns, wsc)
	if wsc.doctorID != 0 {
		d.leaveDoctorLocked(wsc)
	}
}

// NotifyDoctor pushes an event to every connection joined to the doctor's
// channel. Reports whether anyone was listening.
func (d *Dispatcher) NotifyDoctor(doctorID int64, event string, payload any) bool {
	d.mu.RLock()
	conns := make([]*wsConn, 0, len(d.byDoctor[doctorID]))
	for wsc := range d.byDoctor[doctorID] {
		conns = append(conns, wsc)
	}
	d.mu.RUnlock()

	for _, wsc := range conns {
		if err := websocket.JSON.Send(wsc.conn, Event{Type: event, Payload: payload}); err != nil {
			d.logger.Debug("realtime: send failed", "doctor_id", doctorID, "error", err)
		}
	}
	return len(conns) > 0
}

// Broadcast pushes an event to every open connection and returns how many
// received it.
func (d *Dispatcher) Broadcast(event string, payload any) int {
	d.mu.RLock()
	conns := make([]*wsConn, 0, len(d.conns))
	for wsc := range d.conns {
		conns = append(conns, wsc)
	}
	d.mu.RUnlock()

	sent := 0
	for _, wsc := range conns {
		if err := websocket.JSON.Send(wsc.conn, Event{Type: event, Payload: payload}); err != nil {
			d.logger.Debug("realtime: broadcast send failed", "error", err)
			continue
		}
		sent++
	}
	return sent
}
