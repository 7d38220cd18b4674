package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gorilla/websocket"
	"github.com/saeidalz13/battleship-placement/db/sqlc"
	mb "github.com/saeidalz13/battleship-placement/models/battleship"
	mc "github.com/saeidalz13/battleship-placement/models/connection"
)

var dialer = websocket.Dialer{
	HandshakeTimeout: 10 * time.Second,
}

type testServer struct {
	url            string
	sessionManager *mc.BattleshipSessionManager
	fieldManager   *mb.BattleshipFieldManager
}

func newTestServer(t *testing.T, analytics *sqlc.AnalyticsManager, opts ...Option) testServer {
	t.Helper()

	bsm := mc.NewBattleshipSessionManager(0, time.Second*5)
	bfm := mb.NewBattleshipFieldManager()
	rp := NewRequestProcessor(bsm, bfm, analytics, opts...)

	mux := http.NewServeMux()
	mux.Handle("GET /battleship", rp)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return testServer{
		url:            "ws" + strings.TrimPrefix(server.URL, "http") + "/battleship",
		sessionManager: bsm,
		fieldManager:   bfm,
	}
}

func dial(t *testing.T, url string) (*websocket.Conn, string) {
	t.Helper()

	conn, _, err := dialer.Dial(url, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	resp := read[mc.RespSessionId](t, conn)
	if resp.Code != mc.CodeSessionID || resp.Payload.SessionID == "" {
		t.Fatalf("expected session id, got: %+v", resp)
	}
	return conn, resp.Payload.SessionID
}

func send[T any](t *testing.T, conn *websocket.Conn, code uint8, payload T) {
	t.Helper()

	msg := mc.NewMessage[T](code)
	msg.AddPayload(payload)
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatal(err)
	}
}

func read[T any](t *testing.T, conn *websocket.Conn) mc.Message[T] {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(time.Second * 5))
	var msg mc.Message[T]
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatal(err)
	}
	return msg
}

func createField(t *testing.T, conn *websocket.Conn) mc.RespCreateField {
	t.Helper()

	send(t, conn, mc.CodeCreateField, mc.ReqCreateField{})
	resp := read[mc.RespCreateField](t, conn)
	if resp.Error != nil {
		t.Fatalf("unexpected error: %+v", resp.Error)
	}
	return resp.Payload
}

func addShip(t *testing.T, conn *websocket.Conn, req mc.ReqAddShip) mc.Message[mc.RespPlacement] {
	t.Helper()

	send(t, conn, mc.CodeAddShip, req)
	resp := read[mc.RespPlacement](t, conn)
	if resp.Code != mc.CodeAddShip {
		t.Fatalf("expected code %d, got: %d", mc.CodeAddShip, resp.Code)
	}
	return resp
}

func findPart(state mc.RespFieldState, shipId uint32, beginning bool) (mc.RespPart, bool) {
	for _, part := range state.Parts {
		if part.ShipID == shipId && part.Beginning == beginning {
			return part, true
		}
	}
	return mc.RespPart{}, false
}

func TestInvalidSignal(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)

	tests := []struct {
		name         string
		payload      []byte
		expectedCode uint8
	}{
		{name: "unknown code", payload: []byte(`{"code": 200}`), expectedCode: mc.CodeInvalidSignal},
		{name: "not json", payload: []byte(`place my ships`), expectedCode: mc.CodeSignalAbsent},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if err := conn.WriteMessage(websocket.TextMessage, test.payload); err != nil {
				t.Fatal(err)
			}
			resp := read[mc.NoPayload](t, conn)
			if resp.Code != test.expectedCode {
				t.Fatalf("expected code: %d\t got: %d", test.expectedCode, resp.Code)
			}
			if resp.Error == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestRequestsWithoutField(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)

	codes := []uint8{mc.CodeFieldState, mc.CodeAddShip, mc.CodeRemoveShip, mc.CodeMoveShip, mc.CodeRotateShip, mc.CodeDragStart, mc.CodeDragEnd, mc.CodeReady}
	for _, code := range codes {
		send(t, conn, code, mc.ReqShip{ShipID: 1})
		resp := read[json.RawMessage](t, conn)
		if resp.Code != code || resp.Error == nil {
			t.Fatalf("code %d: expected an error response, got: %+v", code, resp)
		}
	}
}

func TestCreateField(t *testing.T) {
	ts := newTestServer(t, nil, WithGridSize(12))
	conn, sessionId := dial(t, ts.url)

	created := createField(t, conn)
	if created.GridSize != 12 || created.Field.Width != 12 || created.Field.Height != 12 {
		t.Fatalf("expected 12x12 field, got: %+v", created)
	}
	if created.Fleet.Name != "classic" || len(created.Field.MissingLengths) != 10 {
		t.Fatalf("expected classic fleet with 10 ships missing, got: %+v", created)
	}

	session, err := ts.sessionManager.FindSession(sessionId)
	if err != nil {
		t.Fatal(err)
	}
	if session.FieldUuid() != created.FieldUuid {
		t.Fatalf("expected session field: %s\t got: %s", created.FieldUuid, session.FieldUuid())
	}

	// a second field replaces the first one
	send(t, conn, mc.CodeCreateField, mc.ReqCreateField{GridSize: mb.MinGridSize})
	replaced := read[mc.RespCreateField](t, conn)
	if replaced.Error != nil || replaced.Payload.GridSize != mb.MinGridSize {
		t.Fatalf("unexpected response: %+v", replaced)
	}
	if _, err := ts.fieldManager.GetField(created.FieldUuid); err == nil {
		t.Fatal("expected replaced field to be terminated")
	}

	send(t, conn, mc.CodeCreateField, mc.ReqCreateField{GridSize: mb.MaxGridSize + 1})
	if resp := read[mc.RespCreateField](t, conn); resp.Error == nil {
		t.Fatal("expected error for an oversized grid")
	}
}

func TestShipPlacement(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	tests := []struct {
		name          string
		req           mc.ReqAddShip
		expectedErr   bool
		expectedLegal bool
	}{
		{name: "four-decker", req: mc.ReqAddShip{X: 0, Y: 0, Length: 4}, expectedLegal: true},
		{name: "vertical three-decker", req: mc.ReqAddShip{X: 9, Y: 0, Orientation: uint8(mb.OrientationVertical), Length: 3}, expectedLegal: true},
		{name: "touching diagonally", req: mc.ReqAddShip{X: 4, Y: 1, Length: 2}, expectedErr: true},
		{name: "sticking out of the grid", req: mc.ReqAddShip{X: 8, Y: 5, Length: 3}, expectedErr: true},
		{name: "second four-decker", req: mc.ReqAddShip{X: 0, Y: 5, Length: 4}, expectedErr: true},
		{name: "start out of grid", req: mc.ReqAddShip{X: 10, Y: 0, Length: 1}, expectedErr: true},
		{name: "unknown orientation", req: mc.ReqAddShip{X: 5, Y: 5, Orientation: 7, Length: 1}, expectedErr: true},
		{name: "zero length", req: mc.ReqAddShip{X: 5, Y: 5, Length: 0}, expectedErr: true},
		{name: "phantom longer than any fleet ship", req: mc.ReqAddShip{X: 0, Y: 9, Length: 5, Phantom: true}, expectedErr: true},
		{name: "phantom of enormous length", req: mc.ReqAddShip{X: 0, Y: 9, Length: math.MaxInt32, Phantom: true}, expectedErr: true},
		{name: "violating phantom is kept", req: mc.ReqAddShip{X: 0, Y: 1, Length: 2, Phantom: true}, expectedLegal: false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			resp := addShip(t, conn, test.req)
			if test.expectedErr {
				if resp.Error == nil {
					t.Fatalf("expected error, got: %+v", resp.Payload)
				}
				return
			}
			if resp.Error != nil {
				t.Fatalf("unexpected error: %+v", resp.Error)
			}
			if resp.Payload.Legal != test.expectedLegal {
				t.Fatalf("expected legal: %t\t got: %t", test.expectedLegal, resp.Payload.Legal)
			}
			if _, prs := resp.Payload.Field.FindShip(resp.Payload.ShipID); !prs {
				t.Fatal("expected ship in the field state")
			}
		})
	}

	send(t, conn, mc.CodeFieldState, mc.NoPayload(false))
	state := read[mc.RespFieldState](t, conn)
	if len(state.Payload.Ships) != 3 {
		t.Fatalf("expected 2 ships and a phantom, got: %+v", state.Payload.Ships)
	}
	if len(state.Payload.MissingLengths) != 8 {
		t.Fatalf("phantoms must not count against the fleet, missing: %v", state.Payload.MissingLengths)
	}
}

func TestMoveRotateRemove(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	ship := addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 3}).Payload.ShipID
	other := addShip(t, conn, mc.ReqAddShip{X: 6, Y: 0, Length: 2}).Payload.ShipID

	send(t, conn, mc.CodeMoveShip, mc.ReqMoveShip{ShipID: ship, X: 2, Y: 4})
	moved := read[mc.RespPlacement](t, conn)
	if moved.Error != nil || !moved.Payload.Legal {
		t.Fatalf("expected legal move, got: %+v", moved)
	}
	if head, _ := findPart(moved.Payload.Field, ship, true); head.X != 2 || head.Y != 4 {
		t.Fatalf("expected head at (2,4), got: %+v", head)
	}

	// next to the other ship; rejected and undone
	send(t, conn, mc.CodeMoveShip, mc.ReqMoveShip{ShipID: ship, X: 3, Y: 1})
	rejected := read[mc.RespPlacement](t, conn)
	if rejected.Error == nil || rejected.Payload.Legal {
		t.Fatalf("expected rejected move, got: %+v", rejected)
	}
	if head, _ := findPart(rejected.Payload.Field, ship, true); head.X != 2 || head.Y != 4 {
		t.Fatalf("expected ship back at (2,4), got: %+v", head)
	}
	if s, _ := rejected.Payload.Field.FindShip(ship); s.Violated {
		t.Fatal("restored ship must be legal")
	}

	send(t, conn, mc.CodeRotateShip, mc.ReqShip{ShipID: ship})
	rotated := read[mc.RespPlacement](t, conn)
	if s, _ := rotated.Payload.Field.FindShip(ship); rotated.Error != nil || s.Orientation != uint8(mb.OrientationVertical) {
		t.Fatalf("expected vertical ship, got: %+v", rotated)
	}

	// the vertical ship at (2,4) would run off a 10x10 grid if moved to row 8
	send(t, conn, mc.CodeMoveShip, mc.ReqMoveShip{ShipID: ship, X: 2, Y: 8})
	if resp := read[mc.RespPlacement](t, conn); resp.Error == nil {
		t.Fatal("expected ship running off the grid to be rejected")
	}

	send(t, conn, mc.CodeRemoveShip, mc.ReqShip{ShipID: other})
	removed := read[mc.RespPlacement](t, conn)
	if _, prs := removed.Payload.Field.FindShip(other); removed.Error != nil || prs {
		t.Fatalf("expected ship removed, got: %+v", removed)
	}

	send(t, conn, mc.CodeRemoveShip, mc.ReqShip{ShipID: other})
	if resp := read[mc.RespPlacement](t, conn); resp.Error == nil {
		t.Fatal("expected error removing a ship twice")
	}
}

func TestDrag(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	ship := addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 4}).Payload.ShipID
	addShip(t, conn, mc.ReqAddShip{X: 6, Y: 3, Length: 2})

	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 5, Y: 5})
	if resp := read[mc.RespDrag](t, conn); resp.Error == nil {
		t.Fatal("expected error grabbing an empty cell")
	}

	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 1, Y: 0})
	started := read[mc.RespDrag](t, conn)
	if started.Error != nil || started.Payload.MarkerID == 0 || !started.Payload.Legal {
		t.Fatalf("expected drag to start, got: %+v", started)
	}
	if marker, _ := started.Payload.Field.FindShip(started.Payload.MarkerID); !marker.Phantom {
		t.Fatal("expected marker to be a phantom")
	}

	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 1, Y: 0})
	if resp := read[mc.RespDrag](t, conn); resp.Error == nil {
		t.Fatal("expected error starting a second drag")
	}

	// grabbed by its second part, so the head lands on (5,4)
	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 6, Y: 4})
	if resp := read[mc.RespDrag](t, conn); resp.Payload.Legal {
		t.Fatal("marker touching another ship must be illegal")
	}

	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 3, Y: 7})
	if resp := read[mc.RespDrag](t, conn); !resp.Payload.Legal {
		t.Fatal("expected legal marker")
	}

	send(t, conn, mc.CodeDragEnd, mc.NoPayload(false))
	ended := read[mc.RespDrag](t, conn)
	if ended.Error != nil || !ended.Payload.Legal {
		t.Fatalf("expected ship to take the marker's place, got: %+v", ended)
	}
	if head, _ := findPart(ended.Payload.Field, ship, true); head.X != 2 || head.Y != 7 {
		t.Fatalf("expected head at (2,7), got: %+v", head)
	}
	if len(ended.Payload.Field.Ships) != 2 {
		t.Fatalf("expected marker to be removed, got: %+v", ended.Payload.Field.Ships)
	}

	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 0, Y: 0})
	if resp := read[mc.RespDrag](t, conn); resp.Error == nil {
		t.Fatal("expected error moving without a drag")
	}

	// an illegal drop leaves the ship where it was
	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 2, Y: 7})
	read[mc.RespDrag](t, conn)
	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 5, Y: 3})
	read[mc.RespDrag](t, conn)
	send(t, conn, mc.CodeDragEnd, mc.NoPayload(false))
	dropped := read[mc.RespDrag](t, conn)
	if dropped.Payload.Legal {
		t.Fatal("expected illegal drop")
	}
	if head, _ := findPart(dropped.Payload.Field, ship, true); head.X != 2 || head.Y != 7 {
		t.Fatalf("expected ship to stay at (2,7), got: %+v", head)
	}

	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 2, Y: 7})
	read[mc.RespDrag](t, conn)
	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 1, Y: 2})
	read[mc.RespDrag](t, conn)
	send(t, conn, mc.CodeDragRotate, mc.NoPayload(false))
	if resp := read[mc.RespDrag](t, conn); resp.Error != nil || !resp.Payload.Legal {
		t.Fatalf("expected legal rotated marker, got: %+v", resp)
	}
	send(t, conn, mc.CodeDragCancel, mc.NoPayload(false))
	cancelled := read[mc.RespDrag](t, conn)
	if s, _ := cancelled.Payload.Field.FindShip(ship); s.Orientation != uint8(mb.OrientationHorizontal) || len(cancelled.Payload.Field.Ships) != 2 {
		t.Fatalf("expected cancelled drag to leave the ship untouched, got: %+v", cancelled.Payload.Field)
	}
}

func TestDragEndAfterShipAdded(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	ship := addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 3}).Payload.ShipID

	send(t, conn, mc.CodeDragStart, mc.ReqDragStart{ShipID: ship, X: 0, Y: 0})
	read[mc.RespDrag](t, conn)
	send(t, conn, mc.CodeDragMove, mc.ReqDragMove{X: 5, Y: 5})
	if resp := read[mc.RespDrag](t, conn); !resp.Payload.Legal {
		t.Fatal("expected legal marker")
	}

	// the marker is a phantom so nothing stops this ship
	if resp := addShip(t, conn, mc.ReqAddShip{X: 5, Y: 6, Length: 1}); resp.Error != nil || !resp.Payload.Legal {
		t.Fatalf("expected ship under the marker to be placed, got: %+v", resp)
	}

	send(t, conn, mc.CodeDragEnd, mc.NoPayload(false))
	ended := read[mc.RespDrag](t, conn)
	if ended.Payload.Legal {
		t.Fatal("expected drop next to the new ship to fail")
	}
	if head, _ := findPart(ended.Payload.Field, ship, true); head.X != 0 || head.Y != 0 {
		t.Fatalf("expected ship to stay at (0,0), got: %+v", head)
	}
	if s, _ := ended.Payload.Field.FindShip(ship); s.Violated {
		t.Fatal("expected ship to stay legal")
	}
	if len(ended.Payload.Field.Ships) != 2 {
		t.Fatalf("expected marker to be removed, got: %+v", ended.Payload.Field.Ships)
	}
}

func TestPhantomPreviewReplaced(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	first := addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 4, Phantom: true}).Payload.ShipID
	committed := addShip(t, conn, mc.ReqAddShip{X: 0, Y: 9, Length: 2})
	if _, prs := committed.Payload.Field.FindShip(first); !prs {
		t.Fatal("a committed ship must not replace the preview")
	}

	var last uint32
	for i := 0; i < 50; i++ {
		last = addShip(t, conn, mc.ReqAddShip{X: i % 10, Y: 4, Length: 3, Phantom: true}).Payload.ShipID
	}

	send(t, conn, mc.CodeFieldState, mc.NoPayload(false))
	state := read[mc.RespFieldState](t, conn).Payload
	if len(state.Ships) != 2 {
		t.Fatalf("expected the committed ship and one preview, got: %+v", state.Ships)
	}
	if _, prs := state.FindShip(first); prs {
		t.Fatal("expected the first preview to be replaced")
	}
	if preview, prs := state.FindShip(last); !prs || !preview.Phantom {
		t.Fatalf("expected the last preview to remain, got: %+v", preview)
	}
	if len(state.Parts) > 2+3 {
		t.Fatalf("expected previews not to pile up parts, got: %d", len(state.Parts))
	}
}

func TestReady(t *testing.T) {
	fleet := mb.Fleet{Name: "duo", Ships: []mb.FleetEntry{{Length: 2, Count: 2}}}
	ts := newTestServer(t, nil, WithFleet(fleet))
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 2})

	send(t, conn, mc.CodeReady, mc.NoPayload(false))
	notReady := read[mc.RespReady](t, conn)
	if notReady.Error == nil || notReady.Payload.Ready || len(notReady.Payload.MissingLengths) != 1 {
		t.Fatalf("expected incomplete fleet, got: %+v", notReady)
	}

	addShip(t, conn, mc.ReqAddShip{X: 0, Y: 4, Length: 2})

	send(t, conn, mc.CodeReady, mc.NoPayload(false))
	ready := read[mc.RespReady](t, conn)
	if ready.Error != nil || !ready.Payload.Ready {
		t.Fatalf("expected ready, got: %+v", ready)
	}
}

func TestAnalytics(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO field_server_analytics (server_ip, fields_created)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO field_server_analytics (server_ip, ships_committed)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ts := newTestServer(t, sqlc.NewAnalyticsManager(sqlc.New(db)))
	conn, _ := dial(t, ts.url)
	createField(t, conn)

	addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 2})
	// previews are not recorded
	addShip(t, conn, mc.ReqAddShip{X: 5, Y: 5, Length: 2, Phantom: true})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestReconnection(t *testing.T) {
	ts := newTestServer(t, nil)
	conn, sessionId := dial(t, ts.url)
	created := createField(t, conn)
	addShip(t, conn, mc.ReqAddShip{X: 0, Y: 0, Length: 3})

	// drop the tcp connection without a close frame
	conn.UnderlyingConn().Close()
	time.Sleep(time.Millisecond * 200)

	reconn, _, err := dialer.Dial(ts.url+"?"+URLQuerySessionIDKeyword+"="+sessionId, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer reconn.Close()

	if resp := read[mc.NoPayload](t, reconn); resp.Code != mc.CodeReconnected {
		t.Fatalf("expected reconnected signal, got: %+v", resp)
	}

	send(t, reconn, mc.CodeFieldState, mc.NoPayload(false))
	state := read[mc.RespFieldState](t, reconn)
	if state.Error != nil || state.Payload.FieldUuid != created.FieldUuid || len(state.Payload.Ships) != 1 {
		t.Fatalf("expected the same field after reconnection, got: %+v", state)
	}
}

func TestReconnectionUnknownSession(t *testing.T) {
	ts := newTestServer(t, nil)

	conn, _, err := dialer.Dial(ts.url+"?"+URLQuerySessionIDKeyword+"=does-not-exist", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	resp := read[mc.NoPayload](t, conn)
	if resp.Code != mc.CodeReceivedInvalidSessionID || resp.Error == nil {
		t.Fatalf("expected invalid session id, got: %+v", resp)
	}
}
