package sqlc

import (
	"context"

	"github.com/sqlc-dev/pqtype"
)

const analyticsGetFieldsCreatedCount = `-- name: AnalyticsGetFieldsCreatedCount :one
SELECT fields_created FROM field_server_analytics
WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetFieldsCreatedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetFieldsCreatedCount, serverIp)
	var fields_created int64
	err := row.Scan(&fields_created)
	return fields_created, err
}

const analyticsGetShipsCommittedCount = `-- name: AnalyticsGetShipsCommittedCount :one
SELECT ships_committed FROM field_server_analytics
WHERE server_ip = $1
`

func (q *Queries) AnalyticsGetShipsCommittedCount(ctx context.Context, serverIp pqtype.Inet) (int64, error) {
	row := q.db.QueryRowContext(ctx, analyticsGetShipsCommittedCount, serverIp)
	var ships_committed int64
	err := row.Scan(&ships_committed)
	return ships_committed, err
}

const analyticsIncrementFieldsCreatedCount = `-- name: AnalyticsIncrementFieldsCreatedCount :exec
INSERT INTO field_server_analytics (server_ip, fields_created)
VALUES ($1, 1)
ON CONFLICT (server_ip)
DO UPDATE SET fields_created = field_server_analytics.fields_created + 1
`

func (q *Queries) AnalyticsIncrementFieldsCreatedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementFieldsCreatedCount, serverIp)
	return err
}

const analyticsIncrementShipsCommittedCount = `-- name: AnalyticsIncrementShipsCommittedCount :exec
INSERT INTO field_server_analytics (server_ip, ships_committed)
VALUES ($1, 1)
ON CONFLICT (server_ip)
DO UPDATE SET ships_committed = field_server_analytics.ships_committed + 1
`

func (q *Queries) AnalyticsIncrementShipsCommittedCount(ctx context.Context, serverIp pqtype.Inet) error {
	_, err := q.db.ExecContext(ctx, analyticsIncrementShipsCommittedCount, serverIp)
	return err
}
