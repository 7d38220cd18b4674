package connection

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	maxWriteWsRetries uint8 = 2
	backOffFactor     uint8 = 2
)

const (
	MessageTypeBytes uint8 = iota
	MessageTypeJSON
)

type ConnectionHandler interface {
	reconnectionAfterAbnormalClosure(conn *websocket.Conn)
	handleReadFromConnErr(err error, retries uint8) uint8
	writeToConnWithRetry(msg interface{}, msgType uint8) error
	onConnErr(err error) uint8
}

// Session is one client of the placement server. It outlives its
// websocket connection for a grace period so a client that drops
// can come back to the same field.
type Session struct {
	id                     string
	conn                   *websocket.Conn
	reconnectionSignalChan chan struct{}
	createdAt              time.Time
	lastActiveAt           time.Time
	fieldUuid              string
	mu                     sync.RWMutex
}

var _ ConnectionHandler = (*Session)(nil)

func NewSession(id string, conn *websocket.Conn) *Session {
	now := time.Now()
	return &Session{
		id:                     id,
		conn:                   conn,
		reconnectionSignalChan: make(chan struct{}),
		createdAt:              now,
		lastActiveAt:           now,
	}
}

func (s *Session) Id() string {
	return s.id
}

func (s *Session) Conn() *websocket.Conn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.conn
}

func (s *Session) FieldUuid() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fieldUuid
}

func (s *Session) SetFieldUuid(fieldUuid string) {
	s.mu.Lock()
	s.fieldUuid = fieldUuid
	s.mu.Unlock()
}

func (s *Session) touch() {
	s.mu.Lock()
	s.lastActiveAt = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleFor() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return time.Since(s.lastActiveAt)
}

func (s *Session) reconnectionSignal() <-chan struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reconnectionSignalChan
}

func (s *Session) remoteAddr() string {
	conn := s.Conn()
	if conn == nil {
		return ""
	}
	return conn.RemoteAddr().String()
}

func (s *Session) onConnErr(err error) uint8 {
	logger := log.With().Str("session_id", s.id).Err(err).Logger()

	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		logger.Warn().Msg("timeout error")
		return ConnLoopRetry
	}

	if websocket.IsCloseError(err, websocket.CloseTryAgainLater) {
		logger.Warn().Msg("high server load/traffic error")
		return ConnLoopRetry
	}

	// Happens when a client drops without a close frame,
	// e.g. a mobile app sent to background
	if websocket.IsCloseError(err, websocket.CloseAbnormalClosure) {
		logger.Warn().Msg("abnormal closure error")
		return ConnLoopAbnormalClosureRetry
	}

	if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
		logger.Info().Msg("close error")
		return ConnLoopBreak
	}

	if websocket.IsCloseError(err, websocket.CloseProtocolError, websocket.CloseInternalServerErr, websocket.CloseTLSHandshake, websocket.CloseMandatoryExtension) {
		logger.Error().Msg("critical error")
		return ConnLoopBreak
	}

	/*
		Payloads the server cannot read (binary frames, broken
		UTF-8, oversized messages) are most likely not from a
		client of this server. Break instead of retrying them.
	*/
	if websocket.IsCloseError(err, websocket.CloseInvalidFramePayloadData, websocket.CloseUnsupportedData, websocket.CloseMessageTooBig, websocket.ClosePolicyViolation, websocket.CloseServiceRestart, websocket.CloseNoStatusReceived) {
		logger.Warn().Msg("non-critical error")
		return ConnLoopBreak
	}

	logger.Error().Msg("unexpected error")
	return ConnLoopBreak
}

// Writes to the connection of that session. It also
// handles the abnormal or other types of errors of
// writing to a websocket connection.
func (s *Session) writeToConnWithRetry(msg interface{}, msgType uint8) error {
	var retries uint8

writeJsonLoop:
	for {
		var err error
		conn := s.Conn()

		switch msgType {
		case MessageTypeJSON:
			err = conn.WriteJSON(msg)

		case MessageTypeBytes:
			respBytes, ok := msg.([]byte)
			if !ok {
				return NewConnErr(ConnInvalidMsgType).AddDesc("msg type expected: []byte got invalid")
			}
			err = conn.WriteMessage(websocket.TextMessage, respBytes)

		default:
			return NewConnErr(ConnInvalidMsgType).AddDesc("invalid message type to write with retry")
		}

		if err == nil {
			return nil
		}

		switch s.onConnErr(err) {
		case ConnLoopRetry:
			if retries < maxWriteWsRetries {
				retries++
				log.Warn().Str("remote_addr", s.remoteAddr()).Uint8("retry", retries).Msg("writing to ws failed; retrying")
				time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
				continue writeJsonLoop
			}
			log.Error().Str("remote_addr", s.remoteAddr()).Err(err).Msg("max retries reached for writing to ws")
			return NewConnErr(ConnLoopBreak)

		case ConnLoopAbnormalClosureRetry:
			return NewConnErr(ConnLoopAbnormalClosureRetry)

		default:
			return NewConnErr(ConnLoopBreak).AddDesc("breaking writeJsonLoop due to: " + err.Error())
		}
	}
}

// Decides what the read loop does after a failed read.
func (s *Session) handleReadFromConnErr(err error, retries uint8) uint8 {
	switch s.onConnErr(err) {
	case ConnLoopAbnormalClosureRetry:
		return ConnLoopAbnormalClosureRetry

	case ConnLoopRetry:
		if retries < maxWriteWsRetries {
			log.Warn().Str("remote_addr", s.remoteAddr()).Uint8("retry", retries).Msg("failed to read from ws conn; retrying")
			time.Sleep(time.Duration(retries*backOffFactor) * time.Second)
			return ConnLoopContinue
		}
		return ConnLoopBreak

	default:
		log.Info().Str("remote_addr", s.remoteAddr()).Err(err).Msg("break ws conn loop")
		return ConnLoopBreak
	}
}

func (s *Session) reconnectionAfterAbnormalClosure(conn *websocket.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old := s.conn

	// Signal for reconnection
	close(s.reconnectionSignalChan)

	s.conn = conn
	s.reconnectionSignalChan = make(chan struct{})
	s.lastActiveAt = time.Now()

	if old != nil && old != conn {
		_ = old.Close()
	}
}
