package connection

// All coordinates are field cells, never pixels.

type ReqCreateField struct {
	// 0 picks the server default
	GridSize int `json:"grid_size"`
}

type ReqAddShip struct {
	X           int   `json:"x"`
	Y           int   `json:"y"`
	Orientation uint8 `json:"orientation"`
	Length      int   `json:"length"`
	Phantom     bool  `json:"phantom"`
}

type ReqShip struct {
	ShipID uint32 `json:"ship_id"`
}

type ReqMoveShip struct {
	ShipID uint32 `json:"ship_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	// part placed on (x, y); 0 means the head of the ship
	OriginPartID uint32 `json:"origin_part_id,omitempty"`
}

type ReqDragStart struct {
	ShipID uint32 `json:"ship_id"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

type ReqDragMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}
