package battleship

// Drag tracks a ship being repositioned interactively. While the
// drag is in progress the ship stays where it was and a phantom
// marker follows the pointer; the ship only moves when the drag ends
// on a legal spot.
type Drag struct {
	field *Field

	target       ShipID
	targetOrigin PartID

	marker       ShipID
	markerOrigin PartID
}

// BeginDrag starts dragging the field-resident ship that has a part
// at grabbed. The grabbed part is kept as the drag origin.
func (f *Field) BeginDrag(target ShipID, grabbed Coordinates) (*Drag, bool) {
	ship, prs := f.ships[target]
	if !prs || !ship.inField || ship.IsPhantom {
		return nil, false
	}

	index := -1
	for i, partID := range ship.Parts {
		if f.parts[partID].Position == grabbed {
			index = i
			break
		}
	}
	if index < 0 {
		return nil, false
	}

	marker, ok := f.CopyShip(target, true, target)
	if !ok {
		return nil, false
	}

	return &Drag{
		field:        f,
		target:       target,
		targetOrigin: ship.Parts[index],
		marker:       marker,
		markerOrigin: f.ships[marker].Parts[index],
	}, true
}

func (d *Drag) Target() ShipID {
	return d.target
}

func (d *Drag) Marker() ShipID {
	return d.marker
}

func (d *Drag) IsActive() bool {
	return d.marker != NoShip
}

// Move puts the marker's origin on to and reports whether the
// marker would be a legal placement for the dragged ship.
func (d *Drag) Move(to Coordinates) bool {
	if !d.IsActive() {
		return false
	}
	return d.field.MoveShip(d.marker, to, d.markerOrigin, d.target)
}

// Rotate turns the marker around its head.
func (d *Drag) Rotate() bool {
	if !d.IsActive() {
		return false
	}
	return d.field.RotateShip(d.marker, d.target)
}

// End finishes the drag. The marker is checked again against the
// field as it is now, since the field may have changed after the
// last Move. A legal marker hands its placement over to the dragged
// ship; otherwise the ship stays untouched. The marker is removed in
// both cases. Reports whether the ship moved.
func (d *Drag) End() bool {
	if !d.IsActive() {
		return false
	}
	defer d.field.RemoveShip(&d.marker)

	marker, prs := d.field.ships[d.marker]
	if !prs {
		return false
	}
	target, prs := d.field.ships[d.target]
	if !prs || len(target.Parts) == 0 {
		return false
	}
	markerOrigin, prs := d.field.parts[d.markerOrigin]
	if !prs {
		return false
	}

	to := markerOrigin.Position
	if !d.field.MoveShip(d.marker, to, d.markerOrigin, d.target) {
		return false
	}

	orientation := target.Orientation
	head := *d.field.parts[target.Head()]

	if orientation != marker.Orientation {
		d.field.RotateShip(d.target, d.marker)
	}
	if d.field.MoveShip(d.target, to, d.targetOrigin, d.marker) {
		return true
	}

	// put the ship back where the drag found it
	if target.Orientation != orientation {
		d.field.RotateShip(d.target, NoShip)
	}
	d.field.MoveShip(d.target, head.Position, head.ID, NoShip)
	return false
}

// Cancel drops the marker and leaves the ship where it was.
func (d *Drag) Cancel() {
	d.field.RemoveShip(&d.marker)
}
