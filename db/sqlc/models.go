package sqlc

import (
	"github.com/sqlc-dev/pqtype"
)

type FieldServerAnalytic struct {
	ServerIp       pqtype.Inet
	FieldsCreated  int64
	ShipsCommitted int64
}
