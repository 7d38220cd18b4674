package connection

const (
	CodeSessionID uint8 = iota
	CodeReceivedInvalidSessionID

	// Creates (or replaces) the field of the session
	CodeCreateField
	CodeFieldState

	CodeAddShip
	CodeRemoveShip
	CodeMoveShip
	CodeRotateShip

	// Interactive repositioning through a phantom marker
	CodeDragStart
	CodeDragMove
	CodeDragRotate
	CodeDragEnd
	CodeDragCancel

	// Fleet is placed; succeeds only if it is complete
	CodeReady

	CodeInvalidSignal

	// if the req msg does not contain "code" field
	CodeSignalAbsent

	// Sent to a session that lost its connection and got it back
	CodeReconnected
)

type Signal struct {
	Code uint8 `json:"code"`
}

func NewSignal(code uint8) Signal {
	return Signal{Code: code}
}
