package sqlc

import (
	"context"
	"database/sql"
	"errors"

	"github.com/sqlc-dev/pqtype"
)

// AnalyticsManager counts what a placement server did, keyed by the
// address of the server.
type AnalyticsManager struct {
	queries Querier
}

func NewAnalyticsManager(queries Querier) *AnalyticsManager {
	return &AnalyticsManager{queries: queries}
}

func (a *AnalyticsManager) IncrementFieldsCreatedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.AnalyticsIncrementFieldsCreatedCount(ctx, serverIpNet)
}

func (a *AnalyticsManager) IncrementShipsCommittedCount(ctx context.Context, serverIpNet pqtype.Inet) error {
	return a.queries.AnalyticsIncrementShipsCommittedCount(ctx, serverIpNet)
}

type ServerCounts struct {
	FieldsCreated  int64
	ShipsCommitted int64
}

// Counts returns both counters of the server in one go. A server
// that never recorded anything has zero counts.
func (a *AnalyticsManager) Counts(ctx context.Context, serverIpNet pqtype.Inet) (ServerCounts, error) {
	fields, err := a.queries.AnalyticsGetFieldsCreatedCount(ctx, serverIpNet)
	if errors.Is(err, sql.ErrNoRows) {
		return ServerCounts{}, nil
	}
	if err != nil {
		return ServerCounts{}, err
	}
	ships, err := a.queries.AnalyticsGetShipsCommittedCount(ctx, serverIpNet)
	if err != nil {
		return ServerCounts{}, err
	}
	return ServerCounts{FieldsCreated: fields, ShipsCommitted: ships}, nil
}
