package battleship

// Handles into the field arena. The zero value of each
// handle means "none": an unowned part, or no ship to ignore.
type (
	PartID uint32
	ShipID uint32
)

const (
	NoPart PartID = 0
	NoShip ShipID = 0
)

// Part is a single occupied cell.
type Part struct {
	ID          PartID
	Position    Coordinates
	Owner       ShipID
	IsBeginning bool
	IsDestroyed bool
}

func (p Part) IsStandalone() bool {
	return p.Owner == NoShip
}

// Ship is an ordered group of parts sharing one orientation.
// Parts[0] is the head the ship pivots around.
type Ship struct {
	ID                     ShipID
	Orientation            Orientation
	Parts                  []PartID
	PlacementRulesViolated bool
	IsPhantom              bool

	// requested length; a ship clipped at the grid boundary
	// holds fewer parts and stays in violation
	length int

	// false while the ship only exists in the arena
	// (minted with JustCreate, or about to be discarded)
	inField bool
}

func (s *Ship) Length() int {
	return len(s.Parts)
}

func (s *Ship) Head() PartID {
	if len(s.Parts) == 0 {
		return NoPart
	}
	return s.Parts[0]
}

func (s *Ship) clone() Ship {
	c := *s
	c.Parts = append([]PartID(nil), s.Parts...)
	return c
}

// ShipOptions tunes AddShip.
//
// Phantom ships are previews: they keep parts that break the
// placement rules so the violation can be shown, and they never
// block other placements. JustCreate builds the ship and its parts
// without inserting them into the field; see Field.PlaceShip.
type ShipOptions struct {
	Phantom    bool
	JustCreate bool
}
