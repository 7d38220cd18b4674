package battleship

type PartScope uint8

const (
	ScopeAll PartScope = iota
	// parts owned by PartFilter.Ship; with NoShip, standalone parts
	ScopeOwnedBy
	ScopeNotOwnedBy
	ScopeDestroyed
)

// PartFilter selects parts for FindAllOf.
type PartFilter struct {
	Scope PartScope
	Ship  ShipID
}

func (pf PartFilter) Matches(part Part) bool {
	switch pf.Scope {
	case ScopeOwnedBy:
		return part.Owner == pf.Ship
	case ScopeNotOwnedBy:
		return part.Owner != pf.Ship
	case ScopeDestroyed:
		return part.IsDestroyed
	default:
		return true
	}
}

// FindAt returns the first candidate at position. Positions outside
// the grid never match.
func (f *Field) FindAt(position Coordinates, candidates []Part) (Part, bool) {
	if !f.InBounds(position) {
		return Part{}, false
	}
	for _, part := range candidates {
		if part.Position == position {
			return part, true
		}
	}
	return Part{}, false
}

func FindAllOf(parts []Part, filter PartFilter) []Part {
	found := make([]Part, 0, len(parts))
	for _, part := range parts {
		if filter.Matches(part) {
			found = append(found, part)
		}
	}
	return found
}

// Sides of a cell, as a bit set.
type Edges uint8

const (
	EdgeTop Edges = 1 << iota
	EdgeRight
	EdgeBottom
	EdgeLeft

	EdgesNone Edges = 0
	EdgesAll        = EdgeTop | EdgeRight | EdgeBottom | EdgeLeft
)

func (e Edges) Has(edge Edges) bool {
	return e&edge == edge
}

var edgeOffsets = [...]struct {
	edge   Edges
	offset Coordinates
}{
	{EdgeTop, Coordinates{X: 0, Y: -1}},
	{EdgeRight, Coordinates{X: 1, Y: 0}},
	{EdgeBottom, Coordinates{X: 0, Y: 1}},
	{EdgeLeft, Coordinates{X: -1, Y: 0}},
}

// OpenEdges reports the sides of a part that face a cell not held
// by the same owner; an outline is drawn along those sides only, so
// adjacent cells of one ship read as a single shape. Adjacent
// standalone parts share their edges the same way.
func (f *Field) OpenEdges(id PartID) Edges {
	part, prs := f.parts[id]
	if !prs {
		return EdgesNone
	}
	siblings := FindAllOf(f.Parts(), PartFilter{Scope: ScopeOwnedBy, Ship: part.Owner})
	return f.openEdges(*part, occupancy(siblings))
}

// AllOpenEdges computes OpenEdges for every part in the field from a
// single pass over the parts.
func (f *Field) AllOpenEdges() map[PartID]Edges {
	parts := f.Parts()
	occupied := occupancy(parts)

	edges := make(map[PartID]Edges, len(parts))
	for _, part := range parts {
		edges[part.ID] = f.openEdges(part, occupied)
	}
	return edges
}

type ownedCell struct {
	owner    ShipID
	position Coordinates
}

func occupancy(parts []Part) map[ownedCell]struct{} {
	occupied := make(map[ownedCell]struct{}, len(parts))
	for _, part := range parts {
		occupied[ownedCell{part.Owner, part.Position}] = struct{}{}
	}
	return occupied
}

func (f *Field) openEdges(part Part, occupied map[ownedCell]struct{}) Edges {
	edges := EdgesNone
	for _, side := range edgeOffsets {
		neighbour := part.Position.Add(side.offset)
		if _, found := occupied[ownedCell{part.Owner, neighbour}]; !found || !f.InBounds(neighbour) {
			edges |= side.edge
		}
	}
	return edges
}
