package httphandlers

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go2tv.app/trackstate/internal/metrics"
)

const (
	viewerWriteWait  = 10 * time.Second
	viewerPongWait   = 60 * time.Second
	viewerPingPeriod = 30 * time.Second
	viewerReadLimit  = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// viewer is one websocket connection watching the snapshot stream.
// pending holds at most one undelivered payload.
type viewer struct {
	conn    *websocket.Conn
	pending chan []byte
	gone    chan struct{}
}

// snapshotHub keeps the latest encoded snapshot and hands it to every
// viewer. A viewer that falls behind only ever sees the newest snapshot.
type snapshotHub struct {
	mu      sync.Mutex
	latest  []byte
	viewers map[*viewer]struct{}
	done    chan struct{}
	closed  bool
	logger  zerolog.Logger
}

func newSnapshotHub(logger zerolog.Logger, initial []byte) *snapshotHub {
	return &snapshotHub{
		latest:  initial,
		viewers: make(map[*viewer]struct{}),
		done:    make(chan struct{}),
		logger:  logger,
	}
}

// offer replaces whatever v has not sent yet with payload. Callers hold h.mu.
func (h *snapshotHub) offer(v *viewer, payload []byte) {
	select {
	case <-v.pending:
		metrics.WSSkipped.Inc()
	default:
	}
	v.pending <- payload
}

// join registers conn and queues the latest snapshot for it. It reports
// false once the hub is closed.
func (h *snapshotHub) join(conn *websocket.Conn) (*viewer, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}

	v := &viewer{
		conn:    conn,
		pending: make(chan []byte, 1),
		gone:    make(chan struct{}),
	}
	h.viewers[v] = struct{}{}
	if h.latest != nil {
		h.offer(v, h.latest)
	}

	metrics.WSClients.Set(float64(len(h.viewers)))
	h.logger.Debug().Str("function", "join").Int("Viewers", len(h.viewers)).Msg("viewer connected")
	return v, true
}

func (h *snapshotHub) leave(v *viewer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.viewers[v]; !ok {
		return
	}
	delete(h.viewers, v)
	close(v.gone)

	metrics.WSClients.Set(float64(len(h.viewers)))
	h.logger.Debug().Str("function", "leave").Int("Viewers", len(h.viewers)).Msg("viewer disconnected")
}

// publish makes payload the latest snapshot and queues it for every viewer.
// It never blocks on a slow connection.
func (h *snapshotHub) publish(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.latest = payload
	for v := range h.viewers {
		h.offer(v, payload)
	}
}

// close tells every viewer the server is going away. Later joins fail.
func (h *snapshotHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	close(h.done)
	clear(h.viewers)

	metrics.WSClients.Set(0)
	h.logger.Debug().Str("function", "close").Msg("snapshot hub closed")
}

// writeLoop sends queued snapshots and keepalive pings until the viewer
// leaves, a write fails, or the hub closes.
func (h *snapshotHub) writeLoop(v *viewer) {
	ping := time.NewTicker(viewerPingPeriod)
	defer func() {
		ping.Stop()
		v.conn.Close()
	}()

	for {
		select {
		case payload := <-v.pending:
			_ = v.conn.SetWriteDeadline(time.Now().Add(viewerWriteWait))
			if err := v.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.logger.Debug().Str("function", "writeLoop").Str("Action", "WriteMessage").Err(err).Msg("")
				return
			}
		case <-ping.C:
			_ = v.conn.SetWriteDeadline(time.Now().Add(viewerWriteWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-v.gone:
			return
		case <-h.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down")
			_ = v.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(viewerWriteWait))
			return
		}
	}
}

// readLoop drains the connection so pongs and close frames are handled.
// Viewers never send anything the hub acts on.
func (h *snapshotHub) readLoop(v *viewer) {
	defer h.leave(v)

	v.conn.SetReadLimit(viewerReadLimit)
	_ = v.conn.SetReadDeadline(time.Now().Add(viewerPongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(viewerPongWait))
	})

	for {
		if _, _, err := v.conn.ReadMessage(); err != nil {
			return
		}
	}
}
