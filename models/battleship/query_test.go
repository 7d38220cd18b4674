package battleship

import "testing"

func TestFindAllOf(t *testing.T) {
	f := NewField(DefaultGridSize, DefaultGridSize)
	a := mustAddShip(t, f, 0, 0, OrientationHorizontal, 3)
	b := mustAddShip(t, f, 0, 5, OrientationVertical, 2)
	f.AddShipPart(NewCoordinates(8, 8), true)
	f.DestroyPartAt(NewCoordinates(1, 0))

	tests := []struct {
		name          string
		filter        PartFilter
		expectedCount int
	}{
		{name: "all", filter: PartFilter{Scope: ScopeAll}, expectedCount: 6},
		{name: "owned by a", filter: PartFilter{Scope: ScopeOwnedBy, Ship: a}, expectedCount: 3},
		{name: "owned by b", filter: PartFilter{Scope: ScopeOwnedBy, Ship: b}, expectedCount: 2},
		{name: "standalone", filter: PartFilter{Scope: ScopeOwnedBy, Ship: NoShip}, expectedCount: 1},
		{name: "not owned by a", filter: PartFilter{Scope: ScopeNotOwnedBy, Ship: a}, expectedCount: 3},
		{name: "destroyed", filter: PartFilter{Scope: ScopeDestroyed}, expectedCount: 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			found := FindAllOf(f.Parts(), test.filter)
			if len(found) != test.expectedCount {
				t.Fatalf("expected parts: %d\t got: %d", test.expectedCount, len(found))
			}
			for _, part := range found {
				if !test.filter.Matches(part) {
					t.Fatalf("part does not match filter: %+v", part)
				}
			}
		})
	}
}

func TestFindAt(t *testing.T) {
	f := NewField(DefaultGridSize, DefaultGridSize)
	id := mustAddShip(t, f, 3, 3, OrientationHorizontal, 2)

	part, found := f.FindAt(NewCoordinates(4, 3), f.Parts())
	if !found || part.Owner != id || part.IsBeginning {
		t.Fatalf("unexpected part at (4, 3): %+v", part)
	}
	if _, found := f.FindAt(NewCoordinates(5, 3), f.Parts()); found {
		t.Fatal("expected empty cell")
	}
	if _, found := f.FindAt(NewCoordinates(-1, 3), f.Parts()); found {
		t.Fatal("cells outside the grid never hold parts")
	}
	if _, found := f.FindAt(NewCoordinates(3, 3), nil); found {
		t.Fatal("expected no match among no candidates")
	}
}

func TestOpenEdges(t *testing.T) {
	f := NewField(DefaultGridSize, DefaultGridSize)
	horizontal := f.ShipParts(mustAddShip(t, f, 0, 0, OrientationHorizontal, 3))
	vertical := f.ShipParts(mustAddShip(t, f, 5, 5, OrientationVertical, 2))
	single, _ := f.AddShipPart(NewCoordinates(9, 0), false)

	tests := []struct {
		name     string
		part     PartID
		expected Edges
	}{
		{name: "head of horizontal ship", part: horizontal[0].ID, expected: EdgeTop | EdgeBottom | EdgeLeft},
		{name: "middle of horizontal ship", part: horizontal[1].ID, expected: EdgeTop | EdgeBottom},
		{name: "tail of horizontal ship", part: horizontal[2].ID, expected: EdgeTop | EdgeRight | EdgeBottom},
		{name: "head of vertical ship", part: vertical[0].ID, expected: EdgeTop | EdgeRight | EdgeLeft},
		{name: "tail of vertical ship", part: vertical[1].ID, expected: EdgeRight | EdgeBottom | EdgeLeft},
		{name: "standalone part", part: single, expected: EdgesAll},
		{name: "unknown part", part: PartID(999), expected: EdgesNone},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := f.OpenEdges(test.part); got != test.expected {
				t.Fatalf("expected edges: %04b\t got: %04b", test.expected, got)
			}
		})
	}
}

func TestOpenEdgesPhantomOverlap(t *testing.T) {
	f := NewField(DefaultGridSize, DefaultGridSize)
	id := mustAddShip(t, f, 2, 2, OrientationHorizontal, 2)
	phantom, _ := f.AddShip(NewCoordinates(3, 2), OrientationHorizontal, 2, ShipOptions{Phantom: true})

	// the phantom overlapping the tail does not merge with the ship
	tail := f.ShipParts(id)[1]
	if got := f.OpenEdges(tail.ID); got != EdgeTop|EdgeRight|EdgeBottom {
		t.Fatalf("unexpected ship tail edges: %04b", got)
	}
	head := f.ShipParts(phantom)[0]
	if got := f.OpenEdges(head.ID); got != EdgeTop|EdgeBottom|EdgeLeft {
		t.Fatalf("unexpected phantom head edges: %04b", got)
	}
}

func TestAllOpenEdges(t *testing.T) {
	f := NewField(DefaultGridSize, DefaultGridSize)
	mustAddShip(t, f, 0, 0, OrientationHorizontal, 3)
	ship := mustAddShip(t, f, 2, 2, OrientationVertical, 3)
	f.AddShipPart(NewCoordinates(9, 9), true)
	f.AddShip(NewCoordinates(2, 3), OrientationHorizontal, 2, ShipOptions{Phantom: true})

	// a phantom hanging over the right border
	phantom, _ := f.AddShip(NewCoordinates(6, 6), OrientationHorizontal, 3, ShipOptions{Phantom: true})
	f.MoveShip(phantom, NewCoordinates(8, 6), NoPart, NoShip)

	all := f.AllOpenEdges()
	if len(all) != len(f.Parts()) {
		t.Fatalf("expected edges for %d parts, got: %d", len(f.Parts()), len(all))
	}
	for _, part := range f.Parts() {
		if got, expected := all[part.ID], f.OpenEdges(part.ID); got != expected {
			t.Fatalf("part %d at %v: expected edges: %04b\t got: %04b", part.ID, part.Position, expected, got)
		}
	}

	middle := f.ShipParts(ship)[1]
	if all[middle.ID] != EdgeRight|EdgeLeft {
		t.Fatalf("unexpected middle edges: %04b", all[middle.ID])
	}
}
