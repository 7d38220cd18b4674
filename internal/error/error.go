package error

import "fmt"

const (
	ConstErrPlacementFailed = "ship placement failed"
	ConstErrInvalidPayload  = "invalid request payload"
)

func ErrFieldNotExists(fieldUuid string) error {
	return fmt.Errorf("field with this uuid does not exist, uuid: %s", fieldUuid)
}

func ErrFieldIsNil(fieldUuid string) error {
	return fmt.Errorf("field with this uuid is nil, uuid: %s", fieldUuid)
}

func ErrNoFieldInSession() error {
	return fmt.Errorf("no field has been created for this session")
}

func ErrInvalidGridSize(gridSize, lower, upper int) error {
	return fmt.Errorf("grid size must be between %d and %d, got: %d", lower, upper, gridSize)
}

func ErrSessionNotFound(sessionId string) error {
	return fmt.Errorf("session with this id does not exist, id: %s", sessionId)
}

func ErrSessionIsNil(sessionId string) error {
	return fmt.Errorf("session with this id is nil, id: %s", sessionId)
}

func ErrShipNotExists(shipId uint32) error {
	return fmt.Errorf("ship with this id does not exist in the field, id: %d", shipId)
}

func ErrInvalidOrientation(orientation uint8) error {
	return fmt.Errorf("orientation must be 0 (horizontal) or 1 (vertical), got: %d", orientation)
}

func ErrInvalidShipLength(length int) error {
	return fmt.Errorf("ship length must be at least 1, got: %d", length)
}

func ErrShipTooLong(length, limit int) error {
	return fmt.Errorf("ship length must be at most %d, got: %d", limit, length)
}

func ErrShipNotInFleet(length int) error {
	return fmt.Errorf("the fleet has no free slot for a ship of length: %d", length)
}

func ErrShipPlacementRejected(x, y int) error {
	return fmt.Errorf("ship breaks placement rules or leaves the grid\tx: %d\ty: %d", x, y)
}

func ErrXorYOutOfGridBound(x, y int) error {
	return fmt.Errorf("incoming x or y is out of field grid bound\tx: %d\ty: %d", x, y)
}

func ErrNoActiveDrag() error {
	return fmt.Errorf("there is no drag in progress")
}

func ErrDragAlreadyActive(shipId uint32) error {
	return fmt.Errorf("a drag is already in progress for ship: %d", shipId)
}

func ErrDragNotStarted(shipId uint32, x, y int) error {
	return fmt.Errorf("ship has no part at the grabbed cell\tship: %d\tx: %d\ty: %d", shipId, x, y)
}

func ErrFleetIncomplete(remaining int) error {
	return fmt.Errorf("fleet is not complete, ships left to place: %d", remaining)
}

func ErrInvalidFleet(desc string) error {
	return fmt.Errorf("invalid fleet definition: %s", desc)
}
