package hirewise

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/hirewise/hirewise-go-sdk/wire"
)

// connector is the socket lifecycle surface Session drives.
// *ConnManager implements it.
type connector interface {
	Open(ctx context.Context, conversationID int64) (uint64, error)
	Close(reason string)
	State() ConnState
	LastError() string
}

// UpdateFunc is invoked with the refreshed history after a live event
// settles. It runs on the socket's read goroutine; keep it fast.
type UpdateFunc func(conversationID int64, msgs []Message)

// Session binds the selected conversation to one socket and one cache
// entry. It owns the rule "exactly one live socket per active selection":
// switching conversations always tears the old socket down before the new
// one is opened, and events from torn-down sockets are dropped.
type Session struct {
	conns  connector
	cache  *HistoryCache
	logger *slog.Logger

	mu       sync.Mutex
	active   int64 // 0 = nothing selected
	gen      uint64
	lastErr  string
	onUpdate UpdateFunc
}

// NewSession creates a session dialing wsEndpoint for its live socket.
// logger may be nil.
func NewSession(wsEndpoint string, tokens TokenSource, cache *HistoryCache, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{cache: cache, logger: logger}
	s.conns = NewConnManager(wsEndpoint, tokens, s.handleEvent, logger)
	return s
}

// newSessionWith wires a session over an existing connector.
func newSessionWith(conns connector, cache *HistoryCache, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{conns: conns, cache: cache, logger: logger}
}

// OnUpdate registers the callback receiving refreshed history.
func (s *Session) OnUpdate(fn UpdateFunc) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// Select makes a conversation active: fetches its history, tears down the
// previous socket if any, then opens a socket for the new id. The returned
// history may be non-nil even when the socket failed to open — the REST
// fetch succeeded and callers can render it alongside the error state.
func (s *Session) Select(ctx context.Context, conversationID int64) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs, err := s.cache.Refresh(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	if s.active != 0 {
		s.conns.Close("conversation switched")
	}
	s.active = conversationID
	s.gen = 0
	s.lastErr = ""

	gen, err := s.conns.Open(ctx, conversationID)
	if err != nil {
		return msgs, err
	}
	s.gen = gen
	return msgs, nil
}

// Deselect tears down the active selection, if any.
func (s *Session) Deselect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == 0 {
		return
	}
	s.conns.Close("deselected")
	s.active = 0
	s.gen = 0
}

// Active returns the selected conversation id, or 0.
func (s *Session) Active() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// ConnectionState exposes the socket state for status indicators.
func (s *Session) ConnectionState() ConnState { return s.conns.State() }

// LastError returns the most recent server error event, or the
// connection-layer error when none.
func (s *Session) LastError() string {
	s.mu.Lock()
	last := s.lastErr
	s.mu.Unlock()
	if last != "" {
		return last
	}
	return s.conns.LastError()
}

// handleEvent routes one decoded socket event. Events whose conversation
// or socket generation does not match the active selection are dropped:
// a socket closed by a switch must never touch the new selection's view.
func (s *Session) handleEvent(gen uint64, conversationID int64, ev wire.Event) {
	s.mu.Lock()
	if conversationID != s.active || gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("dropping stale event",
			"conversation", conversationID, "kind", ev.Kind())
		return
	}

	switch e := ev.(type) {
	case wire.ChatMessage:
		s.mu.Unlock()
		s.refetch(gen, conversationID)

	case wire.ErrorEvent:
		s.lastErr = e.Message
		s.mu.Unlock()
		s.logger.Warn("server error event", "conversation", conversationID, "message", e.Message)

	case wire.ConnectionEstablished:
		s.mu.Unlock()
		s.logger.Debug("connection established",
			"conversation", e.ConversationID, "user", e.UserID)

	default:
		s.mu.Unlock()
		s.logger.Debug("ignoring unknown event", "kind", ev.Kind())
	}
}

// refetch replaces the cached history wholesale and notifies the update
// callback, unless the selection moved on while the fetch was in flight.
func (s *Session) refetch(gen uint64, conversationID int64) {
	msgs, err := s.cache.Refresh(context.Background(), conversationID)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err.Error()
		s.mu.Unlock()
		s.logger.Warn("history refetch failed", "conversation", conversationID, "error", err)
		return
	}

	s.mu.Lock()
	cb := s.onUpdate
	stale := conversationID != s.active || gen != s.gen
	s.mu.Unlock()
	if stale || cb == nil {
		return
	}
	cb(conversationID, msgs)
}
