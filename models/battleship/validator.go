package battleship

// Ships may never touch, not even diagonally: a part of one ship
// must have at least one empty cell between itself and any part
// that is not its own.

// Reports whether a part owned by owner may sit at position.
//
// Every field-resident part inside the 3x3 window around position
// blocks it, except parts of the same ship, parts of ignore (usually
// the old placement of a ship being moved) and parts of phantom
// ships. An unowned candidate has no same-ship exemption, so any
// standalone part in the window blocks it as well.
func (f *Field) partCanBePlacedAt(owner ShipID, position Coordinates, ignore ShipID) bool {
	for _, part := range f.parts {
		if !part.Position.Touches(position) || !f.isResident(part) {
			continue
		}
		if part.Owner != NoShip {
			if part.Owner == owner || part.Owner == ignore {
				continue
			}
			if f.ships[part.Owner].IsPhantom {
				continue
			}
		}
		return false
	}
	return true
}

// Registration of a lone part: whatever already occupies the
// window blocks it, previews included.
func (f *Field) standaloneCanBePlacedAt(position Coordinates) bool {
	for _, part := range f.parts {
		if part.Position.Touches(position) && f.isResident(part) {
			return false
		}
	}
	return true
}

// Re-runs bounds and adjacency checks for every part of the ship
// at its current position and stores the outcome in the ship.
func (f *Field) revalidate(ship *Ship, ignore ShipID) bool {
	violated := len(ship.Parts) == 0 || len(ship.Parts) < ship.length
	for _, partID := range ship.Parts {
		position := f.parts[partID].Position
		if !f.InBounds(position) || !f.partCanBePlacedAt(ship.ID, position, ignore) {
			violated = true
		}
	}
	ship.PlacementRulesViolated = violated
	return !violated
}

// Standalone parts are always resident; owned parts are
// resident as long as their ship is.
func (f *Field) isResident(part *Part) bool {
	if part.Owner == NoShip {
		return true
	}
	ship, prs := f.ships[part.Owner]
	return prs && ship.inField
}
