package battleship

import (
	"cmp"
	"slices"
)

// Field owns the ships, parts and marks of one grid. Ships and
// parts are kept in an arena addressed by handle; a ship is part
// of the authoritative collection only once it is admitted.
//
// A Field is not safe for concurrent use. It is driven from a
// single control flow and every call observes the state left by
// the previous one.
type Field struct {
	uuid   string
	width  int
	height int

	nextPartID PartID
	nextShipID ShipID

	parts map[PartID]*Part
	ships map[ShipID]*Ship
	marks map[Coordinates]CellMark
}

func NewField(width, height int) *Field {
	return &Field{
		width:  width,
		height: height,
		parts:  make(map[PartID]*Part),
		ships:  make(map[ShipID]*Ship),
		marks:  make(map[Coordinates]CellMark),
	}
}

func (f *Field) Uuid() string {
	return f.uuid
}

func (f *Field) Width() int {
	return f.width
}

func (f *Field) Height() int {
	return f.height
}

func (f *Field) InBounds(position Coordinates) bool {
	return position.X >= 0 && position.X < f.width && position.Y >= 0 && position.Y < f.height
}

// Drops every ship, part and mark. Handles are never reused.
func (f *Field) Clear() {
	clear(f.parts)
	clear(f.ships)
	clear(f.marks)
}

func (f *Field) newShip(orientation Orientation, isPhantom bool, length int) *Ship {
	f.nextShipID++
	ship := &Ship{
		ID:          f.nextShipID,
		Orientation: orientation,
		IsPhantom:   isPhantom,
		Parts:       make([]PartID, 0, min(max(length, 0), max(f.width, f.height))),
		length:      length,
	}
	f.ships[ship.ID] = ship
	return ship
}

func (f *Field) newPart(position Coordinates, owner ShipID, isBeginning bool) *Part {
	f.nextPartID++
	part := &Part{
		ID:          f.nextPartID,
		Position:    position,
		Owner:       owner,
		IsBeginning: isBeginning,
	}
	f.parts[part.ID] = part
	return part
}

// Deletes the ship and every part it owns from the arena.
func (f *Field) discard(ship *Ship) {
	for _, partID := range ship.Parts {
		delete(f.parts, partID)
	}
	delete(f.ships, ship.ID)
}

// A ship is kept only if it has parts and is either legal or a
// phantom. Anything else is discarded as a whole so a failed call
// leaves the field exactly as it was.
func (f *Field) admit(ship *Ship, insert bool) (ShipID, bool) {
	if len(ship.Parts) == 0 || (ship.PlacementRulesViolated && !ship.IsPhantom) {
		f.discard(ship)
		return NoShip, false
	}
	ship.inField = insert
	return ship.ID, true
}

// AddShip builds a ship of length parts starting at start and
// stepping along orientation.
//
// Cells outside the grid are not created and flag the ship as
// violating. A cell failing the adjacency rule flags the ship too;
// its part is kept only for phantom ships. The ship is admitted if
// it ends up with parts and is legal or phantom, otherwise nothing
// is kept and NoShip, false is returned.
func (f *Field) AddShip(start Coordinates, orientation Orientation, length int, opts ShipOptions) (ShipID, bool) {
	if !orientation.IsValid() {
		return NoShip, false
	}

	ship := f.newShip(orientation, opts.Phantom, length)
	step := orientation.Direction()

	lo, hi := f.spanInBounds(start, orientation, length)
	if hi-lo < length {
		ship.PlacementRulesViolated = true
	}

	for i := lo; i < hi; i++ {
		position := start.Add(step.Scale(i))

		canBePlaced := f.partCanBePlacedAt(ship.ID, position, NoShip)
		if !canBePlaced {
			ship.PlacementRulesViolated = true
		}

		if canBePlaced || opts.Phantom {
			part := f.newPart(position, ship.ID, i == 0)
			ship.Parts = append(ship.Parts, part.ID)
		}
	}

	return f.admit(ship, !opts.JustCreate)
}

// spanInBounds returns the range [lo, hi) of indexes along a ship
// of the given length whose cells fall inside the grid. Only that
// range is ever walked, whatever the requested length.
func (f *Field) spanInBounds(start Coordinates, orientation Orientation, length int) (int, int) {
	along, across, size, crossSize := start.X, start.Y, f.width, f.height
	if orientation == OrientationVertical {
		along, across, size, crossSize = start.Y, start.X, f.height, f.width
	}
	if length <= 0 || across < 0 || across >= crossSize || along >= size {
		return 0, 0
	}
	if along < 0 && along <= -length {
		return 0, 0
	}

	first := max(along, 0)
	lo := first - along
	return lo, lo + min(length-lo, size-first)
}

// PlaceShip inserts a ship minted with JustCreate into the field
// after validating it against the field as it is now. A legal ship
// or a phantom is inserted; a violating ship stays detached and
// can be dropped with RemoveShip.
func (f *Field) PlaceShip(id ShipID) bool {
	ship, prs := f.ships[id]
	if !prs {
		return false
	}
	if ship.inField {
		return !ship.PlacementRulesViolated
	}

	legal := f.revalidate(ship, NoShip)
	if legal || ship.IsPhantom {
		ship.inField = true
	}
	return legal
}

// AddShipPart registers a lone part, e.g. a hit on a cell whose
// ship is unknown. Any part within one cell blocks it.
func (f *Field) AddShipPart(position Coordinates, isDestroyed bool) (PartID, bool) {
	if !f.InBounds(position) || !f.standaloneCanBePlacedAt(position) {
		return NoPart, false
	}

	part := f.newPart(position, NoShip, false)
	part.IsDestroyed = isDestroyed
	return part.ID, true
}

// RemoveShip deletes the ship with all of its parts and clears
// the caller's handle. Removing NoShip or a ship that is already
// gone does nothing.
func (f *Field) RemoveShip(id *ShipID) {
	if id == nil || *id == NoShip {
		return
	}
	if ship, prs := f.ships[*id]; prs {
		f.discard(ship)
	}
	*id = NoShip
}

// RemovePart clears a standalone part. Parts owned by a ship only
// go away with their ship.
func (f *Field) RemovePart(id *PartID) bool {
	if id == nil || *id == NoPart {
		return false
	}
	part, prs := f.parts[*id]
	if !prs {
		*id = NoPart
		return false
	}
	if !part.IsStandalone() {
		return false
	}

	delete(f.parts, *id)
	*id = NoPart
	return true
}

// MoveShip translates every part of the ship by the offset that
// brings origin (the head when NoPart) onto to, then re-validates
// the ship ignoring the ship passed as ignore. Parts keep their
// identity. The returned value is the new legality; the ship is
// moved either way and it is up to the caller to revert.
func (f *Field) MoveShip(id ShipID, to Coordinates, origin PartID, ignore ShipID) bool {
	ship, prs := f.ships[id]
	if !prs || len(ship.Parts) == 0 {
		return false
	}

	originPart, prs := f.parts[origin]
	if !prs || originPart.Owner != id {
		originPart = f.parts[ship.Head()]
	}

	delta := to.Sub(originPart.Position)
	for _, partID := range ship.Parts {
		part := f.parts[partID]
		part.Position = part.Position.Add(delta)
	}

	return f.revalidate(ship, ignore)
}

// RotateShip flips the orientation and lays the parts out again
// from the head, then re-validates as MoveShip does.
func (f *Field) RotateShip(id ShipID, ignore ShipID) bool {
	ship, prs := f.ships[id]
	if !prs || len(ship.Parts) == 0 {
		return false
	}

	ship.Orientation = ship.Orientation.Toggle()
	head := f.parts[ship.Head()].Position
	step := ship.Orientation.Direction()

	for i, partID := range ship.Parts {
		f.parts[partID].Position = head.Add(step.Scale(i))
	}

	return f.revalidate(ship, ignore)
}

// CopyShip creates an independent ship with fresh parts at the
// positions of the source, validated against the field without
// ignore. The copy goes through the same admission as AddShip.
func (f *Field) CopyShip(id ShipID, phantomCopy bool, ignore ShipID) (ShipID, bool) {
	source, prs := f.ships[id]
	if !prs {
		return NoShip, false
	}

	ship := f.newShip(source.Orientation, phantomCopy, source.length)
	for _, partID := range source.Parts {
		sourcePart := f.parts[partID]
		part := f.newPart(sourcePart.Position, ship.ID, sourcePart.IsBeginning)
		ship.Parts = append(ship.Parts, part.ID)
	}

	f.revalidate(ship, ignore)
	return f.admit(ship, true)
}

// Ship returns a copy of any ship in the arena, detached ones
// included.
func (f *Field) Ship(id ShipID) (Ship, bool) {
	ship, prs := f.ships[id]
	if !prs {
		return Ship{}, false
	}
	return ship.clone(), true
}

func (f *Field) Part(id PartID) (Part, bool) {
	part, prs := f.parts[id]
	if !prs {
		return Part{}, false
	}
	return *part, true
}

// Ships in the field, in handle order.
func (f *Field) Ships() []Ship {
	ships := make([]Ship, 0, len(f.ships))
	for _, ship := range f.ships {
		if ship.inField {
			ships = append(ships, ship.clone())
		}
	}
	slices.SortFunc(ships, func(a, b Ship) int { return cmp.Compare(a.ID, b.ID) })
	return ships
}

// Parts in the field, in creation order.
func (f *Field) Parts() []Part {
	parts := make([]Part, 0, len(f.parts))
	for _, part := range f.parts {
		if f.isResident(part) {
			parts = append(parts, *part)
		}
	}
	slices.SortFunc(parts, func(a, b Part) int { return cmp.Compare(a.ID, b.ID) })
	return parts
}

// Parts of the ship, head first.
func (f *Field) ShipParts(id ShipID) []Part {
	ship, prs := f.ships[id]
	if !prs {
		return nil
	}
	parts := make([]Part, 0, len(ship.Parts))
	for _, partID := range ship.Parts {
		parts = append(parts, *f.parts[partID])
	}
	return parts
}

func (f *Field) PartAt(position Coordinates) (Part, bool) {
	return f.FindAt(position, f.Parts())
}

func sortMarks(marks []CellMark) {
	slices.SortFunc(marks, func(a, b CellMark) int {
		if c := cmp.Compare(a.Position.Y, b.Position.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.X, b.Position.X)
	})
}
