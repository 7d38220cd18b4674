package connection

import (
	"slices"

	mb "github.com/saeidalz13/battleship-placement/models/battleship"
)

type RespSessionId struct {
	SessionID string `json:"session_id"`
}

type RespCreateField struct {
	FieldUuid string         `json:"field_uuid"`
	GridSize  int            `json:"grid_size"`
	Fleet     mb.Fleet       `json:"fleet"`
	Field     RespFieldState `json:"field"`
}

type RespShip struct {
	ID          uint32   `json:"id"`
	Orientation uint8    `json:"orientation"`
	PartIDs     []uint32 `json:"part_ids"`
	Violated    bool     `json:"violated"`
	Phantom     bool     `json:"phantom"`
	Sunk        bool     `json:"sunk"`
}

type RespPart struct {
	ID        uint32 `json:"id"`
	X         int    `json:"x"`
	Y         int    `json:"y"`
	ShipID    uint32 `json:"ship_id,omitempty"`
	Beginning bool   `json:"beginning"`
	Destroyed bool   `json:"destroyed"`
	// Sides to outline, bit set: top=1 right=2 bottom=4 left=8
	OpenEdges uint8 `json:"open_edges"`
}

type RespMark struct {
	X    int   `json:"x"`
	Y    int   `json:"y"`
	Type uint8 `json:"type"`
}

// Read-only picture of a field, enough for a client to draw it.
type RespFieldState struct {
	FieldUuid      string     `json:"field_uuid"`
	Width          int        `json:"width"`
	Height         int        `json:"height"`
	Ships          []RespShip `json:"ships"`
	Parts          []RespPart `json:"parts"`
	Marks          []RespMark `json:"marks"`
	MissingLengths []int      `json:"missing_lengths"`
}

func NewRespFieldState(field *mb.Field, fleet mb.Fleet) RespFieldState {
	ships := field.Ships()
	parts := field.Parts()
	marks := field.Marks()

	state := RespFieldState{
		FieldUuid:      field.Uuid(),
		Width:          field.Width(),
		Height:         field.Height(),
		Ships:          make([]RespShip, 0, len(ships)),
		Parts:          make([]RespPart, 0, len(parts)),
		Marks:          make([]RespMark, 0, len(marks)),
		MissingLengths: fleet.MissingLengths(field),
	}

	for _, ship := range ships {
		partIDs := make([]uint32, 0, len(ship.Parts))
		for _, partID := range ship.Parts {
			partIDs = append(partIDs, uint32(partID))
		}
		state.Ships = append(state.Ships, RespShip{
			ID:          uint32(ship.ID),
			Orientation: uint8(ship.Orientation),
			PartIDs:     partIDs,
			Violated:    ship.PlacementRulesViolated,
			Phantom:     ship.IsPhantom,
			Sunk:        field.IsShipSunk(ship.ID),
		})
	}

	edges := field.AllOpenEdges()
	for _, part := range parts {
		state.Parts = append(state.Parts, RespPart{
			ID:        uint32(part.ID),
			X:         part.Position.X,
			Y:         part.Position.Y,
			ShipID:    uint32(part.Owner),
			Beginning: part.IsBeginning,
			Destroyed: part.IsDestroyed,
			OpenEdges: uint8(edges[part.ID]),
		})
	}

	for _, mark := range marks {
		state.Marks = append(state.Marks, RespMark{X: mark.Position.X, Y: mark.Position.Y, Type: uint8(mark.Type)})
	}

	return state
}

func (s RespFieldState) FindShip(id uint32) (RespShip, bool) {
	i := slices.IndexFunc(s.Ships, func(ship RespShip) bool { return ship.ID == id })
	if i < 0 {
		return RespShip{}, false
	}
	return s.Ships[i], true
}

// Result of a ship operation together with the field it left.
type RespPlacement struct {
	ShipID uint32         `json:"ship_id"`
	Legal  bool           `json:"legal"`
	Field  RespFieldState `json:"field"`
}

type RespDrag struct {
	ShipID   uint32         `json:"ship_id"`
	MarkerID uint32         `json:"marker_id"`
	Legal    bool           `json:"legal"`
	Field    RespFieldState `json:"field"`
}

type RespReady struct {
	Ready          bool  `json:"ready"`
	MissingLengths []int `json:"missing_lengths,omitempty"`
}

type RespErr struct {
	ErrorDetails string `json:"error_details,omitempty"`
	Message      string `json:"message,omitempty"`
}

func NewRespErr(errorDetails, message string) *RespErr {
	return &RespErr{
		ErrorDetails: errorDetails,
		Message:      message,
	}
}
