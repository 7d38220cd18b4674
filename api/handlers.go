package api

import (
	"encoding/json"

	"github.com/rs/zerolog/log"
	cerr "github.com/saeidalz13/battleship-placement/internal/error"
	mb "github.com/saeidalz13/battleship-placement/models/battleship"
	mc "github.com/saeidalz13/battleship-placement/models/connection"
)

type RequestHandler interface {
	HandleCreateField(fieldManager mb.FieldManager, fleet mb.Fleet, defaultGridSize int) (*mb.Field, mc.Message[mc.RespCreateField])
	HandleFieldState(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespFieldState]

	HandleAddShip(field *mb.Field, fleet mb.Fleet, preview *mb.ShipID) mc.Message[mc.RespPlacement]
	HandleRemoveShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement]
	HandleMoveShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement]
	HandleRotateShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement]

	HandleDragStart(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) (*mb.Drag, mc.Message[mc.RespDrag])
	HandleDragMove(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag]
	HandleDragRotate(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag]
	HandleDragEnd(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag]
	HandleDragCancel(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag]

	HandleReady(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespReady]
}

// Every incoming valid request will have this structure
// The request then is handled in line with RequestHandler interface
type Request struct {
	Payload []byte
}

var _ RequestHandler = (*Request)(nil)

func NewRequest(payload ...[]byte) Request {
	if len(payload) > 1 {
		log.Warn().Int("payloads", len(payload)).Msg("cannot accept more than one payload; keeping the first")
	}

	req := Request{}
	if len(payload) != 0 {
		req.Payload = payload[0]
	}
	return req
}

func decode[T any](payload []byte) (T, error) {
	var msg mc.Message[T]
	err := json.Unmarshal(payload, &msg)
	return msg.Payload, err
}

// A new field replaces whatever the session had before.
func (r Request) HandleCreateField(fieldManager mb.FieldManager, fleet mb.Fleet, defaultGridSize int) (*mb.Field, mc.Message[mc.RespCreateField]) {
	resp := mc.NewMessage[mc.RespCreateField](mc.CodeCreateField)

	req, err := decode[mc.ReqCreateField](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return nil, resp
	}

	gridSize := req.GridSize
	if gridSize == 0 {
		gridSize = defaultGridSize
	}

	field, err := fieldManager.CreateField(gridSize)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return nil, resp
	}

	resp.AddPayload(mc.RespCreateField{
		FieldUuid: field.Uuid(),
		GridSize:  gridSize,
		Fleet:     fleet,
		Field:     mc.NewRespFieldState(field, fleet),
	})
	return field, resp
}

func (r Request) HandleFieldState(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespFieldState] {
	resp := mc.NewMessage[mc.RespFieldState](mc.CodeFieldState)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	resp.AddPayload(mc.NewRespFieldState(field, fleet))
	return resp
}

// Phantom ships are previews: they are not counted against the fleet
// and are kept even when they break the placement rules. A session
// holds a single preview; a new one replaces the ship in preview.
func (r Request) HandleAddShip(field *mb.Field, fleet mb.Fleet, preview *mb.ShipID) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeAddShip)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	req, err := decode[mc.ReqAddShip](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	start := mb.NewCoordinates(req.X, req.Y)
	orientation := mb.Orientation(req.Orientation)

	switch {
	case !field.InBounds(start):
		resp.AddError(cerr.ErrXorYOutOfGridBound(req.X, req.Y).Error(), cerr.ConstErrInvalidPayload)
		return resp
	case !orientation.IsValid():
		resp.AddError(cerr.ErrInvalidOrientation(req.Orientation).Error(), cerr.ConstErrInvalidPayload)
		return resp
	case req.Length < 1:
		resp.AddError(cerr.ErrInvalidShipLength(req.Length).Error(), cerr.ConstErrInvalidPayload)
		return resp
	case req.Length > maxShipLength(field, fleet):
		resp.AddError(cerr.ErrShipTooLong(req.Length, maxShipLength(field, fleet)).Error(), cerr.ConstErrInvalidPayload)
		return resp
	case !req.Phantom && !fleet.Allows(field, req.Length):
		resp.AddError(cerr.ErrShipNotInFleet(req.Length).Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	if req.Phantom && preview != nil {
		field.RemoveShip(preview)
	}

	shipId, ok := field.AddShip(start, orientation, req.Length, mb.ShipOptions{Phantom: req.Phantom})
	if ok && req.Phantom && preview != nil {
		*preview = shipId
	}
	if !ok {
		resp.AddError(cerr.ErrShipPlacementRejected(req.X, req.Y).Error(), cerr.ConstErrPlacementFailed)
		return resp
	}

	ship, _ := field.Ship(shipId)
	resp.AddPayload(mc.RespPlacement{
		ShipID: uint32(shipId),
		Legal:  !ship.PlacementRulesViolated,
		Field:  mc.NewRespFieldState(field, fleet),
	})
	return resp
}

// No ship, phantom or not, may outgrow the grid or the longest
// ship of the fleet.
func maxShipLength(field *mb.Field, fleet mb.Fleet) int {
	return min(max(field.Width(), field.Height()), fleet.MaxLength())
}

func (r Request) HandleRemoveShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeRemoveShip)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	req, err := decode[mc.ReqShip](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	shipId := mb.ShipID(req.ShipID)
	if _, prs := field.Ship(shipId); !prs {
		resp.AddError(cerr.ErrShipNotExists(req.ShipID).Error(), "")
		return resp
	}
	field.RemoveShip(&shipId)

	resp.AddPayload(mc.RespPlacement{
		ShipID: req.ShipID,
		Legal:  true,
		Field:  mc.NewRespFieldState(field, fleet),
	})
	return resp
}

// A committed ship never ends up violating: an illegal move is
// undone and reported with Legal false. Phantoms go wherever asked.
func (r Request) HandleMoveShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeMoveShip)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	req, err := decode[mc.ReqMoveShip](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	to := mb.NewCoordinates(req.X, req.Y)
	if !field.InBounds(to) {
		resp.AddError(cerr.ErrXorYOutOfGridBound(req.X, req.Y).Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	shipId := mb.ShipID(req.ShipID)
	ship, prs := field.Ship(shipId)
	if !prs || len(ship.Parts) == 0 {
		resp.AddError(cerr.ErrShipNotExists(req.ShipID).Error(), "")
		return resp
	}

	head, _ := field.Part(ship.Head())
	legal := field.MoveShip(shipId, to, mb.PartID(req.OriginPartID), mb.NoShip)
	if !legal && !ship.IsPhantom {
		field.MoveShip(shipId, head.Position, head.ID, mb.NoShip)
		resp.AddError(cerr.ErrShipPlacementRejected(req.X, req.Y).Error(), cerr.ConstErrPlacementFailed)
	}

	resp.AddPayload(mc.RespPlacement{
		ShipID: req.ShipID,
		Legal:  legal,
		Field:  mc.NewRespFieldState(field, fleet),
	})
	return resp
}

func (r Request) HandleRotateShip(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespPlacement] {
	resp := mc.NewMessage[mc.RespPlacement](mc.CodeRotateShip)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	req, err := decode[mc.ReqShip](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	shipId := mb.ShipID(req.ShipID)
	ship, prs := field.Ship(shipId)
	if !prs || len(ship.Parts) == 0 {
		resp.AddError(cerr.ErrShipNotExists(req.ShipID).Error(), "")
		return resp
	}

	legal := field.RotateShip(shipId, mb.NoShip)
	if !legal && !ship.IsPhantom {
		// rotating twice lays the parts out as they were
		field.RotateShip(shipId, mb.NoShip)
		head, _ := field.Part(ship.Head())
		resp.AddError(cerr.ErrShipPlacementRejected(head.Position.X, head.Position.Y).Error(), cerr.ConstErrPlacementFailed)
	}

	resp.AddPayload(mc.RespPlacement{
		ShipID: req.ShipID,
		Legal:  legal,
		Field:  mc.NewRespFieldState(field, fleet),
	})
	return resp
}

func newRespDrag(field *mb.Field, fleet mb.Fleet, drag *mb.Drag, legal bool) mc.RespDrag {
	return mc.RespDrag{
		ShipID:   uint32(drag.Target()),
		MarkerID: uint32(drag.Marker()),
		Legal:    legal,
		Field:    mc.NewRespFieldState(field, fleet),
	}
}

func (r Request) HandleDragStart(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) (*mb.Drag, mc.Message[mc.RespDrag]) {
	resp := mc.NewMessage[mc.RespDrag](mc.CodeDragStart)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return nil, resp
	}
	if drag != nil && drag.IsActive() {
		resp.AddError(cerr.ErrDragAlreadyActive(uint32(drag.Target())).Error(), "")
		return drag, resp
	}

	req, err := decode[mc.ReqDragStart](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return nil, resp
	}

	newDrag, ok := field.BeginDrag(mb.ShipID(req.ShipID), mb.NewCoordinates(req.X, req.Y))
	if !ok {
		resp.AddError(cerr.ErrDragNotStarted(req.ShipID, req.X, req.Y).Error(), "")
		return nil, resp
	}

	marker, _ := field.Ship(newDrag.Marker())
	resp.AddPayload(newRespDrag(field, fleet, newDrag, !marker.PlacementRulesViolated))
	return newDrag, resp
}

func (r Request) HandleDragMove(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag] {
	resp := mc.NewMessage[mc.RespDrag](mc.CodeDragMove)
	if field == nil || drag == nil || !drag.IsActive() {
		resp.AddError(cerr.ErrNoActiveDrag().Error(), "")
		return resp
	}

	req, err := decode[mc.ReqDragMove](r.Payload)
	if err != nil {
		resp.AddError(err.Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	to := mb.NewCoordinates(req.X, req.Y)
	if !field.InBounds(to) {
		resp.AddError(cerr.ErrXorYOutOfGridBound(req.X, req.Y).Error(), cerr.ConstErrInvalidPayload)
		return resp
	}

	legal := drag.Move(to)
	resp.AddPayload(newRespDrag(field, fleet, drag, legal))
	return resp
}

func (r Request) HandleDragRotate(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag] {
	resp := mc.NewMessage[mc.RespDrag](mc.CodeDragRotate)
	if field == nil || drag == nil || !drag.IsActive() {
		resp.AddError(cerr.ErrNoActiveDrag().Error(), "")
		return resp
	}

	legal := drag.Rotate()
	resp.AddPayload(newRespDrag(field, fleet, drag, legal))
	return resp
}

// The marker is gone after this call whatever the outcome; Legal
// tells whether the ship took its place.
func (r Request) HandleDragEnd(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag] {
	resp := mc.NewMessage[mc.RespDrag](mc.CodeDragEnd)
	if field == nil || drag == nil || !drag.IsActive() {
		resp.AddError(cerr.ErrNoActiveDrag().Error(), "")
		return resp
	}

	moved := drag.End()
	resp.AddPayload(newRespDrag(field, fleet, drag, moved))
	return resp
}

func (r Request) HandleDragCancel(field *mb.Field, fleet mb.Fleet, drag *mb.Drag) mc.Message[mc.RespDrag] {
	resp := mc.NewMessage[mc.RespDrag](mc.CodeDragCancel)
	if field == nil || drag == nil || !drag.IsActive() {
		resp.AddError(cerr.ErrNoActiveDrag().Error(), "")
		return resp
	}

	drag.Cancel()
	resp.AddPayload(newRespDrag(field, fleet, drag, false))
	return resp
}

func (r Request) HandleReady(field *mb.Field, fleet mb.Fleet) mc.Message[mc.RespReady] {
	resp := mc.NewMessage[mc.RespReady](mc.CodeReady)
	if field == nil {
		resp.AddError(cerr.ErrNoFieldInSession().Error(), "")
		return resp
	}

	if !fleet.Complete(field) {
		resp.AddError(cerr.ErrFleetIncomplete(fleet.RemainingTotal(field)).Error(), "")
		resp.AddPayload(mc.RespReady{MissingLengths: fleet.MissingLengths(field)})
		return resp
	}

	resp.AddPayload(mc.RespReady{Ready: true})
	return resp
}
