package api

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/saeidalz13/battleship-placement/db/sqlc"
	mb "github.com/saeidalz13/battleship-placement/models/battleship"
	mc "github.com/saeidalz13/battleship-placement/models/connection"
	"github.com/sqlc-dev/pqtype"
)

const (
	URLQuerySessionIDKeyword string = "sessionID"
)

var (
	upgrader = websocket.Upgrader{
		// good average time since this is not a high-latency operation such as video streaming
		HandshakeTimeout: time.Second * 5,

		// a full field snapshot of the largest grid fits comfortably
		ReadBufferSize:  2048,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
)

type RequestProcessor struct {
	sessionManager mc.SessionManager
	fieldManager   mb.FieldManager
	analytics      *sqlc.AnalyticsManager
	ipnet          net.IPNet

	fleet           mb.Fleet
	defaultGridSize int
}

type Option func(*RequestProcessor)

func WithFleet(fleet mb.Fleet) Option {
	return func(rp *RequestProcessor) {
		rp.fleet = fleet
	}
}

func WithGridSize(gridSize int) Option {
	return func(rp *RequestProcessor) {
		rp.defaultGridSize = gridSize
	}
}

// analytics may be nil, in which case nothing is recorded.
func NewRequestProcessor(
	sessionManager mc.SessionManager,
	fieldManager mb.FieldManager,
	analytics *sqlc.AnalyticsManager,
	opts ...Option,
) RequestProcessor {
	rp := RequestProcessor{
		sessionManager:  sessionManager,
		fieldManager:    fieldManager,
		analytics:       analytics,
		fleet:           mb.ClassicFleet(),
		defaultGridSize: mb.DefaultGridSize,
	}
	for _, opt := range opts {
		opt(&rp)
	}

	rp.ipnet = findServerIpNet()
	return rp
}

// First non-loopback IPv4 address of the host. Hosts without one
// (containers with only lo, CI sandboxes) report the loopback net.
func findServerIpNet() net.IPNet {
	fallback := net.IPNet{IP: net.IPv4(127, 0, 0, 1), Mask: net.CIDRMask(8, 32)}

	ifaces, err := net.Interfaces()
	if err != nil {
		log.Warn().Err(err).Msg("could not list network interfaces")
		return fallback
	}

	for _, iface := range ifaces {
		// If the flag is down
		if iface.Flags&net.FlagUp == 0 {
			continue
		}

		if iface.Flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			log.Warn().Err(err).Str("iface", iface.Name).Msg("could not read interface addresses")
			continue
		}

		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip := ipnet.IP.To4(); ip != nil && !ip.IsLoopback() {
				return *ipnet
			}
		}
	}

	return fallback
}

// Expose this method to use it in testing
func (rp RequestProcessor) GetIpNet() net.IPNet {
	return rp.ipnet
}

func (rp RequestProcessor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// use Upgrade method to make a websocket connection
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	sessionIdQuery := r.URL.Query().Get(URLQuerySessionIDKeyword)
	switch sessionIdQuery {
	case "":
		log.Info().Str("remote_addr", conn.RemoteAddr().String()).Msg("a new connection established")
		rp.processSessionRequests(rp.sessionManager.GenerateNewSession(conn))

	default:
		// The session loop keeps running in the goroutine of the
		// original connection; this one only hands the conn over.
		if err := rp.sessionManager.ReconnectSession(sessionIdQuery, conn); err != nil {
			log.Warn().Err(err).Msg("reconnection refused")
			msg := mc.NewMessage[mc.NoPayload](mc.CodeReceivedInvalidSessionID)
			msg.AddError(err.Error(), "")
			_ = conn.WriteJSON(msg)
			_ = conn.Close()
		}
	}
}

func (rp RequestProcessor) recordFieldCreated(serverInet pqtype.Inet) {
	if rp.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	// for now not killing the session for it
	if err := rp.analytics.IncrementFieldsCreatedCount(ctx, serverInet); err != nil {
		log.Error().Err(err).Msg("failed to record created field")
	}
}

func (rp RequestProcessor) recordShipCommitted(serverInet pqtype.Inet) {
	if rp.analytics == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), sqlc.QuerierCtxTimeout)
	defer cancel()

	if err := rp.analytics.IncrementShipsCommittedCount(ctx, serverInet); err != nil {
		log.Error().Err(err).Msg("failed to record committed ship")
	}
}

func (rp RequestProcessor) processSessionRequests(session *mc.Session) {
	var (
		sessionField   *mb.Field
		sessionDrag    *mb.Drag
		sessionPreview mb.ShipID

		sessionId = session.Id()
		logger    = log.With().Str("session_id", sessionId).Logger()
	)

	defer func() {
		if sessionField != nil {
			rp.fieldManager.TerminateField(sessionField.Uuid())
		}
		if conn := session.Conn(); conn != nil {
			conn.Close()
		}
		rp.sessionManager.TerminateSession(sessionId)
	}()

	resp := mc.NewMessage[mc.RespSessionId](mc.CodeSessionID)
	resp.AddPayload(mc.RespSessionId{SessionID: sessionId})
	if err := rp.sessionManager.WriteToSessionConn(session, resp, mc.MessageTypeJSON); err != nil {
		return
	}

	serverInet := pqtype.Inet{IPNet: rp.ipnet, Valid: true}

sessionLoop:
	for {
		// A WebSocket frame can be one of 6 types: text=1, binary=2, ping=9, pong=10, close=8 and continuation=0
		// https://www.rfc-editor.org/rfc/rfc6455.html#section-11.8
		_, payload, err := rp.sessionManager.ReadFromSessionConn(session)
		if err != nil {
			// This error happens after retries. If it's not nil,
			// then something was wrong with the session connection
			// and couldn't be resolved
			logger.Info().Err(err).Msg("session loop ended")
			break sessionLoop
		}

		code, err := rp.sessionManager.FetchCodeFromMsg(payload)
		if err != nil {
			msg := mc.NewMessage[mc.NoPayload](mc.CodeSignalAbsent)
			msg.AddError("incoming req payload must contain 'code' field", "")
			if err = rp.sessionManager.WriteToSessionConn(session, msg, mc.MessageTypeJSON); err != nil {
				break sessionLoop
			}
			continue sessionLoop
		}

		var respMsg interface{}
		req := NewRequest(payload)

		switch code {
		case mc.CodeCreateField:
			field, msg := req.HandleCreateField(rp.fieldManager, rp.fleet, rp.defaultGridSize)
			if field != nil {
				if sessionField != nil {
					rp.fieldManager.TerminateField(sessionField.Uuid())
				}
				sessionField = field
				sessionDrag = nil
				sessionPreview = mb.NoShip
				session.SetFieldUuid(field.Uuid())
				rp.recordFieldCreated(serverInet)
				logger.Info().Str("field_uuid", field.Uuid()).Msg("field created")
			}
			respMsg = msg

		case mc.CodeFieldState:
			respMsg = req.HandleFieldState(sessionField, rp.fleet)

		case mc.CodeAddShip:
			msg := req.HandleAddShip(sessionField, rp.fleet, &sessionPreview)
			if msg.Error == nil {
				if ship, _ := msg.Payload.Field.FindShip(msg.Payload.ShipID); !ship.Phantom {
					rp.recordShipCommitted(serverInet)
				}
			}
			respMsg = msg

		case mc.CodeRemoveShip:
			respMsg = req.HandleRemoveShip(sessionField, rp.fleet)

		case mc.CodeMoveShip:
			respMsg = req.HandleMoveShip(sessionField, rp.fleet)

		case mc.CodeRotateShip:
			respMsg = req.HandleRotateShip(sessionField, rp.fleet)

		case mc.CodeDragStart:
			drag, msg := req.HandleDragStart(sessionField, rp.fleet, sessionDrag)
			sessionDrag = drag
			respMsg = msg

		case mc.CodeDragMove:
			respMsg = req.HandleDragMove(sessionField, rp.fleet, sessionDrag)

		case mc.CodeDragRotate:
			respMsg = req.HandleDragRotate(sessionField, rp.fleet, sessionDrag)

		case mc.CodeDragEnd:
			respMsg = req.HandleDragEnd(sessionField, rp.fleet, sessionDrag)
			sessionDrag = nil

		case mc.CodeDragCancel:
			respMsg = req.HandleDragCancel(sessionField, rp.fleet, sessionDrag)
			sessionDrag = nil

		case mc.CodeReady:
			respMsg = req.HandleReady(sessionField, rp.fleet)

		default:
			msg := mc.NewMessage[mc.NoPayload](mc.CodeInvalidSignal)
			msg.AddError("", "invalid code in the incoming payload")
			respMsg = msg
		}

		if err := rp.sessionManager.WriteToSessionConn(session, respMsg, mc.MessageTypeJSON); err != nil {
			logger.Info().Err(err).Uint8("code", code).Msg("could not write response")
			break sessionLoop
		}
	}
}
