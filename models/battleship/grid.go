package battleship

const (
	DefaultGridSize int = 10
	MinGridSize     int = 5
	MaxGridSize     int = 26
)

type Coordinates struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func NewCoordinates(x, y int) Coordinates {
	return Coordinates{X: x, Y: y}
}

func (c Coordinates) Add(other Coordinates) Coordinates {
	return Coordinates{X: c.X + other.X, Y: c.Y + other.Y}
}

func (c Coordinates) Sub(other Coordinates) Coordinates {
	return Coordinates{X: c.X - other.X, Y: c.Y - other.Y}
}

func (c Coordinates) Scale(n int) Coordinates {
	return Coordinates{X: c.X * n, Y: c.Y * n}
}

// Reports whether other lies in the 3x3 window centered on c,
// i.e. the Chebyshev distance between the two cells is at most 1.
func (c Coordinates) Touches(other Coordinates) bool {
	return abs(c.X-other.X) < 2 && abs(c.Y-other.Y) < 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

type Orientation uint8

const (
	OrientationHorizontal Orientation = iota
	OrientationVertical
)

func (o Orientation) IsValid() bool {
	return o == OrientationHorizontal || o == OrientationVertical
}

// Unit step from one part of a ship to the next one.
func (o Orientation) Direction() Coordinates {
	if o == OrientationVertical {
		return Coordinates{X: 0, Y: 1}
	}
	return Coordinates{X: 1, Y: 0}
}

func (o Orientation) Toggle() Orientation {
	if o == OrientationVertical {
		return OrientationHorizontal
	}
	return OrientationVertical
}

func (o Orientation) String() string {
	if o == OrientationVertical {
		return "vertical"
	}
	return "horizontal"
}
