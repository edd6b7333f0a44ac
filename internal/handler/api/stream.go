package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"NiftyDash/internal/state"
	"NiftyDash/internal/usecase"
	xhttp "NiftyDash/pkg/http"
	xlogger "NiftyDash/pkg/logger"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// DashboardStream pushes a projected Dashboard frame to each websocket
// client on connect and after every state change.
type DashboardStream struct {
	logger       *xlogger.Logger
	store        *state.Store
	upgrader     websocket.Upgrader
	pingInterval time.Duration
	buffer       int
}

func NewDashboardStream(logger *xlogger.Logger, store *state.Store, pingInterval time.Duration, buffer int) *DashboardStream {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &DashboardStream{
		logger: logger,
		store:  store,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		pingInterval: pingInterval,
		buffer:       buffer,
	}
}

func (s *DashboardStream) Serve(c echo.Context) error {
	if !websocket.IsWebSocketUpgrade(c.Request()) {
		return xhttp.AppErrorResponse(c, xhttp.UpgradeRequiredError("websocket upgrade required"))
	}
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", xlogger.Error(err))
		return nil
	}
	defer conn.Close()

	id, events := s.store.Subscribe(s.buffer)
	defer s.store.Unsubscribe(id)

	done := make(chan struct{})
	go s.readPump(conn, done)

	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	lastSeq, err := s.push(conn, 0)
	if err != nil {
		return nil
	}
	for {
		select {
		case _, ok := <-events:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return nil
			}
			if lastSeq, err = s.push(conn, lastSeq); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

// push writes the current dashboard unless nothing changed since lastSeq.
// Several queued events collapse into one frame this way.
func (s *DashboardStream) push(conn *websocket.Conn, lastSeq uint64) (uint64, error) {
	snap := s.store.Snapshot()
	if lastSeq != 0 && snap.Seq == lastSeq {
		return lastSeq, nil
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(usecase.Project(snap)); err != nil {
		if !websocket.IsCloseError(err, websocket.CloseNoStatusReceived, websocket.CloseNormalClosure) {
			s.logger.Debug("websocket write failed", xlogger.Error(err))
		}
		return lastSeq, err
	}
	return snap.Seq, nil
}

// readPump discards client messages and keeps the read deadline fresh.
func (s *DashboardStream) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	pongWait := 2 * s.pingInterval
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Debug("websocket closed", xlogger.Error(err))
			}
			return
		}
	}
}
