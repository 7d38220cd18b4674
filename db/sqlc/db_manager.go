package sqlc

import "time"

const (
	QuerierCtxTimeout = time.Second * 10
)

type DbManager struct {
	Analytics *AnalyticsManager
}

func NewDbManager(db DBTX) DbManager {
	return DbManager{
		Analytics: NewAnalyticsManager(New(db)),
	}
}

