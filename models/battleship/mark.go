package battleship

// Shot outcomes. Marks live next to ship placement and
// never take part in placement validation.
type MarkType uint8

const (
	MarkMiss MarkType = iota
	MarkChecked
)

func (m MarkType) IsValid() bool {
	return m == MarkMiss || m == MarkChecked
}

type CellMark struct {
	Type     MarkType
	Position Coordinates
}

// Records a mark on a cell, replacing any mark already there.
func (f *Field) SetMark(position Coordinates, markType MarkType) bool {
	if !f.InBounds(position) || !markType.IsValid() {
		return false
	}
	f.marks[position] = CellMark{Type: markType, Position: position}
	return true
}

func (f *Field) Mark(position Coordinates) (CellMark, bool) {
	mark, prs := f.marks[position]
	return mark, prs
}

func (f *Field) ClearMark(position Coordinates) {
	delete(f.marks, position)
}

// Marks in row-major order.
func (f *Field) Marks() []CellMark {
	marks := make([]CellMark, 0, len(f.marks))
	for _, mark := range f.marks {
		marks = append(marks, mark)
	}
	sortMarks(marks)
	return marks
}

// Flags the field-resident part at position as hit. Phantom
// previews cannot be hit.
func (f *Field) DestroyPartAt(position Coordinates) (PartID, bool) {
	for _, part := range f.Parts() {
		if part.Position != position {
			continue
		}
		if part.Owner != NoShip && f.ships[part.Owner].IsPhantom {
			continue
		}
		f.parts[part.ID].IsDestroyed = true
		return part.ID, true
	}
	return NoPart, false
}

func (f *Field) IsShipSunk(id ShipID) bool {
	ship, prs := f.ships[id]
	if !prs || len(ship.Parts) == 0 {
		return false
	}
	for _, partID := range ship.Parts {
		if !f.parts[partID].IsDestroyed {
			return false
		}
	}
	return true
}
