package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

type Querier interface {
	AnalyticsGetFieldsCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsGetShipsCommittedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error)
	AnalyticsIncrementFieldsCreatedCount(ctx context.Context, serverIp pqtype.Inet) error
	AnalyticsIncrementShipsCommittedCount(ctx context.Context, serverIp pqtype.Inet) error
}

var _ Querier = (*Queries)(nil)
