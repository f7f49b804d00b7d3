package hirewise

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/hirewise/hirewise-go-sdk/wire"
)

// ConnState is the lifecycle state of the live conversation socket.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosedNormal // explicit teardown by the session
	StateClosedError  // abnormal termination, recoverable via a new Open
	StateFailed       // terminal: credential missing, unauthorized, forbidden
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosedNormal:
		return "closed"
	case StateClosedError:
		return "closed-error"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

var (
	// ErrSocketBusy is returned by Open when a socket is already live;
	// callers must Close before opening for another conversation.
	ErrSocketBusy = errors.New("hirewise: socket already open, close it first")
	// ErrSocketNotOpen is returned by Send when no socket is live.
	ErrSocketNotOpen = errors.New("hirewise: socket not open")
)

// EventSink receives every event decoded from the socket, tagged with the
// generation and conversation id the socket was opened for. Events from a
// torn-down socket carry a stale generation and must be dropped by the
// receiver.
type EventSink func(gen uint64, conversationID int64, ev wire.Event)

// ConnManager owns at most one live socket, scoped to the currently
// selected conversation. It never reconnects on its own: after an abnormal
// closure the state is surfaced and stays until the caller issues a fresh
// Open.
type ConnManager struct {
	endpoint string
	tokens   TokenSource
	sink     EventSink
	logger   *slog.Logger

	mu      sync.Mutex
	state   ConnState
	lastErr string
	conn    net.Conn
	convID  int64
	gen     uint64
	done    chan struct{}
	sendCh  chan []byte
}

// NewConnManager creates a manager dialing endpoint (e.g.
// "wss://api.hirewise.app"). logger may be nil.
func NewConnManager(endpoint string, tokens TokenSource, sink EventSink, logger *slog.Logger) *ConnManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConnManager{
		endpoint: strings.TrimRight(endpoint, "/"),
		tokens:   tokens,
		sink:     sink,
		logger:   logger,
		state:    StateIdle,
	}
}

// Open dials the socket for one conversation, authenticating with the
// credential as a handshake query parameter. It returns the socket
// generation used to tag delivered events. If no credential can be
// obtained the state becomes Failed and no socket is created.
func (m *ConnManager) Open(ctx context.Context, conversationID int64) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.conn != nil {
		return 0, ErrSocketBusy
	}

	token, err := m.tokens.Token(ctx)
	if err != nil {
		m.state = StateFailed
		m.lastErr = "authentication required"
		return 0, fmt.Errorf("open conversation %d: %w", conversationID, err)
	}

	m.gen++
	gen := m.gen
	m.state = StateConnecting
	m.lastErr = ""

	target := fmt.Sprintf("%s/ws/conversations/%d/?token=%s",
		m.endpoint, conversationID, url.QueryEscape(token))
	conn, _, _, err := ws.Dial(ctx, target)
	if err != nil {
		m.state = StateClosedError
		m.lastErr = err.Error()
		return 0, fmt.Errorf("dial: %w", err)
	}

	m.conn = conn
	m.convID = conversationID
	m.state = StateOpen
	m.done = make(chan struct{})
	m.sendCh = make(chan []byte, 64)

	go m.readLoop(conn, gen, conversationID, m.done)
	go m.writeLoop(conn, gen, m.sendCh, m.done)

	m.logger.Info("conversation socket open", "conversation", conversationID)
	return gen, nil
}

// Close tears the socket down with a normal-closure code. Safe to call
// when nothing is open.
func (m *ConnManager) Close(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.conn == nil {
		return
	}
	close(m.done)
	body := ws.NewCloseFrameBody(ws.StatusNormalClosure, reason)
	_ = wsutil.WriteClientMessage(m.conn, ws.OpClose, body)
	_ = m.conn.Close()
	m.conn = nil
	m.state = StateClosedNormal
	m.logger.Info("conversation socket closed", "conversation", m.convID, "reason", reason)
}

// Send queues a frame on the live socket.
func (m *ConnManager) Send(ctx context.Context, payload []byte) error {
	m.mu.Lock()
	st, ch, done := m.state, m.sendCh, m.done
	m.mu.Unlock()
	if st != StateOpen {
		return ErrSocketNotOpen
	}
	select {
	case ch <- payload:
		return nil
	case <-done:
		return ErrSocketNotOpen
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current connection state.
func (m *ConnManager) State() ConnState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// LastError returns the most recent connection-layer error message.
func (m *ConnManager) LastError() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// Conversation returns the id the current or last socket was opened for.
func (m *ConnManager) Conversation() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.convID
}

func (m *ConnManager) readLoop(conn net.Conn, gen uint64, conversationID int64, done chan struct{}) {
	for {
		data, err := wsutil.ReadServerText(conn)
		if err != nil {
			select {
			case <-done:
				// explicit teardown already handled the state
			default:
				m.fail(gen, err)
			}
			return
		}

		ev, err := wire.Decode(data)
		if err != nil {
			m.logger.Debug("bad frame", "conversation", conversationID, "error", err)
			continue
		}
		if m.sink != nil {
			m.sink(gen, conversationID, ev)
		}
	}
}

func (m *ConnManager) writeLoop(conn net.Conn, gen uint64, sendCh chan []byte, done chan struct{}) {
	for {
		select {
		case data := <-sendCh:
			if err := wsutil.WriteClientText(conn, data); err != nil {
				m.logger.Warn("write error", "error", err)
				m.fail(gen, err)
				return
			}
		case <-done:
			return
		}
	}
}

// fail records the outcome of an abnormal termination. Close frames carry
// meaning: unauthorized and forbidden codes are terminal; any other
// non-normal code or transport error is surfaced as ClosedError without
// automatic recovery.
func (m *ConnManager) fail(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen || m.conn == nil {
		return
	}
	close(m.done)
	_ = m.conn.Close()
	m.conn = nil

	var ce wsutil.ClosedError
	if !errors.As(err, &ce) {
		m.state = StateClosedError
		m.lastErr = err.Error()
		m.logger.Warn("socket read error", "conversation", m.convID, "error", err)
		return
	}

	switch uint16(ce.Code) {
	case wire.CodeNormalClosure:
		m.state = StateClosedNormal
		m.lastErr = ""
	case wire.CodeUnauthorized:
		m.state = StateFailed
		m.lastErr = "unauthorized: " + ce.Reason
		m.logger.Warn("socket closed: unauthorized", "conversation", m.convID)
	case wire.CodeForbidden:
		m.state = StateFailed
		m.lastErr = "forbidden: " + ce.Reason
		m.logger.Warn("socket closed: forbidden", "conversation", m.convID)
	default:
		m.state = StateClosedError
		m.lastErr = fmt.Sprintf("closed abnormally (%d): %s", ce.Code, ce.Reason)
		m.logger.Warn("socket closed abnormally", "conversation", m.convID, "code", int(ce.Code), "reason", ce.Reason)
	}
}
