package connection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	cerr "github.com/saeidalz13/battleship-placement/internal/error"
)

const (
	DefaultCleanupInterval time.Duration = time.Minute * 20
	DefaultGracePeriod     time.Duration = time.Minute * 2
)

type SessionManager interface {
	GenerateNewSession(conn *websocket.Conn) *Session
	CleanupPeriodically(ctx context.Context)
	CountSessions() int

	FindSession(sessionId string) (*Session, error)
	TerminateSession(sessionId string)
	ReconnectSession(sessionId string, conn *websocket.Conn) error
	HandleAbnormalClosureSession(session *Session) error

	WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error
	ReadFromSessionConn(session *Session) (int, []byte, error)
	FetchCodeFromMsg(payload []byte) (uint8, error)
}

type BattleshipSessionManager struct {
	cleanupInterval time.Duration
	gracePeriod     time.Duration
	sessions        map[string]*Session
	mu              sync.RWMutex
}

var _ SessionManager = (*BattleshipSessionManager)(nil)

// Zero durations fall back to the defaults.
func NewBattleshipSessionManager(cleanupInterval, gracePeriod time.Duration) *BattleshipSessionManager {
	if cleanupInterval <= 0 {
		cleanupInterval = DefaultCleanupInterval
	}
	if gracePeriod <= 0 {
		gracePeriod = DefaultGracePeriod
	}

	return &BattleshipSessionManager{
		sessions:        make(map[string]*Session, 10),
		cleanupInterval: cleanupInterval,
		gracePeriod:     gracePeriod,
	}
}

func (bsm *BattleshipSessionManager) GenerateNewSession(conn *websocket.Conn) *Session {
	// URL compatible so it can come back as ?sessionID=
	sessionId := base64.RawURLEncoding.EncodeToString([]byte(uuid.New().String()))
	session := NewSession(sessionId, conn)

	bsm.mu.Lock()
	bsm.sessions[sessionId] = session
	bsm.mu.Unlock()

	return session
}

func (bsm *BattleshipSessionManager) FindSession(sessionId string) (*Session, error) {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()

	session, prs := bsm.sessions[sessionId]
	if !prs {
		return nil, cerr.ErrSessionNotFound(sessionId)
	}

	if session == nil {
		return nil, cerr.ErrSessionIsNil(sessionId)
	}

	return session, nil
}

func (bsm *BattleshipSessionManager) CountSessions() int {
	bsm.mu.RLock()
	defer bsm.mu.RUnlock()
	return len(bsm.sessions)
}

func (bsm *BattleshipSessionManager) TerminateSession(sessionId string) {
	bsm.mu.Lock()
	delete(bsm.sessions, sessionId)
	bsm.mu.Unlock()
	log.Info().Str("session_id", sessionId).Msg("session terminated")
}

// Hands a fresh connection to a session that lost its own. The
// session loop waiting in HandleAbnormalClosureSession picks it up.
func (bsm *BattleshipSessionManager) ReconnectSession(sessionId string, conn *websocket.Conn) error {
	session, err := bsm.FindSession(sessionId)
	if err != nil {
		return err
	}
	session.reconnectionAfterAbnormalClosure(conn)
	log.Info().Str("session_id", sessionId).Str("remote_addr", conn.RemoteAddr().String()).Msg("session reconnected")
	return nil
}

// To ensure that there is no dangling sessions, the manager
// drops the sessions idle for longer than the cleanup interval.
func (bsm *BattleshipSessionManager) CleanupPeriodically(ctx context.Context) {
	ticker := time.NewTicker(bsm.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			bsm.cleanup()
		}
	}
}

func (bsm *BattleshipSessionManager) cleanup() {
	assumedClosedConns := 10
	toDelete := make([]string, 0, assumedClosedConns)

	bsm.mu.Lock()
	for id, session := range bsm.sessions {
		if session.idleFor() > bsm.cleanupInterval {
			toDelete = append(toDelete, id)
		}
	}
	for _, id := range toDelete {
		delete(bsm.sessions, id)
	}
	bsm.mu.Unlock()

	log.Info().Strs("removed", toDelete).Msg("clean up sessions")
}

// A session that drops abnormally keeps its field for the grace
// period. Sessions without a field have nothing worth keeping.
func (bsm *BattleshipSessionManager) HandleAbnormalClosureSession(s *Session) error {
	if s.FieldUuid() == "" {
		return NewConnErr(ConnLoopBreak).AddDesc("no field in session; nothing to wait for")
	}

	reconnected := s.reconnectionSignal()
	timer := time.NewTimer(bsm.gracePeriod)
	defer timer.Stop()

	select {
	case <-timer.C:
		return NewConnErr(ConnLoopBreak).AddDesc("grace period is over for session: " + s.id)

	case <-reconnected:
		log.Info().Str("session_id", s.id).Msg("session resumed after abnormal closure")
		return bsm.WriteToSessionConn(s, NewMessage[NoPayload](CodeReconnected), MessageTypeJSON)
	}
}

func (bsm *BattleshipSessionManager) WriteToSessionConn(session *Session, msg interface{}, msgType uint8) error {
	err := session.writeToConnWithRetry(msg, msgType)
	if err == nil {
		return nil
	}

	var connErr ConnErr
	if !errors.As(err, &connErr) {
		return err
	}

	if connErr.Code() == ConnLoopAbnormalClosureRetry {
		if err := bsm.HandleAbnormalClosureSession(session); err != nil {
			return err
		}
		return nil
	}
	return connErr
}

func (bsm *BattleshipSessionManager) ReadFromSessionConn(session *Session) (int, []byte, error) {
	var retries uint8

	for {
		conn := session.Conn()
		messageType, payload, err := conn.ReadMessage()
		if err == nil {
			session.touch()
			return messageType, payload, nil
		}

		// the connection was swapped by a reconnection meanwhile
		if session.Conn() != conn {
			retries = 0
			continue
		}

		switch session.handleReadFromConnErr(err, retries) {
		case ConnLoopContinue:
			retries++
			continue

		case ConnLoopAbnormalClosureRetry:
			if err := bsm.HandleAbnormalClosureSession(session); err != nil {
				return -1, []byte{}, err
			}
			retries = 0

		default:
			return -1, []byte{}, err
		}
	}
}

func (bsm *BattleshipSessionManager) FetchCodeFromMsg(payload []byte) (uint8, error) {
	var signal Signal
	const randomInvalidCode uint8 = 255

	if err := json.Unmarshal(payload, &signal); err != nil {
		return randomInvalidCode, err
	}

	return signal.Code, nil
}
