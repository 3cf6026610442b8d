package database

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

const uniqueViolation = "23505"

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// baseAdapter holds what every table adapter needs: a goqu builder for the
// postgres dialect and the client whose executor joins context transactions.
type baseAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

func newBaseAdapter(client *postgres.Client) baseAdapter {
	return baseAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// exec runs an insert, update or delete and returns the affected row count
func (b baseAdapter) exec(ctx context.Context, builder sqlBuilder, action string) (int64, error) {
	query, args, err := builder.ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build query", err)
	}

	result, err := b.client.Executor(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapWriteError(err, action)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to get rows affected", err)
	}
	return rowsAffected, nil
}

// selectAll scans every row of ds into dest, a pointer to a slice of structs
// whose db tags name the selected columns
func (b baseAdapter) selectAll(ctx context.Context, dest interface{}, ds sqlBuilder) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	rows, err := b.client.Executor(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to execute query", err)
	}
	defer rows.Close()

	if err := sqlx.StructScan(rows, dest); err != nil {
		return apperrors.NewInternalError("failed to scan rows", err)
	}
	return nil
}

// scalar scans a single-value query into dest
func (b baseAdapter) scalar(ctx context.Context, ds sqlBuilder, dest interface{}) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build query", err)
	}

	if err := b.client.Executor(ctx).QueryRowContext(ctx, query, args...).Scan(dest); err != nil {
		return apperrors.NewInternalError("failed to execute query", err)
	}
	return nil
}

func (b baseAdapter) count(ctx context.Context, ds *goqu.SelectDataset) (int, error) {
	var total int
	err := b.scalar(ctx, ds.ClearOrder().ClearLimit().ClearOffset().Select(goqu.COUNT("*")), &total)
	return total, err
}

// mapWriteError turns a unique violation into a ConflictError
func mapWriteError(err error, action string) error {
	var pqErr *pq.Error
	if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return apperrors.NewConflictError(conflictMessage(pqErr.Constraint))
	}
	return apperrors.NewInternalError("failed to "+action, err)
}

func conflictMessage(constraint string) string {
	switch constraint {
	case "uq_appointments_active_slot":
		return "time slot is already booked for this doctor"
	case "payments_appointment_id_key":
		return "payment already exists for this appointment"
	case "users_email_key":
		return "email is already registered"
	case "doctors_email_key":
		return "a doctor with this email already exists"
	case "agents_user_id_key":
		return "agent profile already exists for this user"
	}
	return "resource already exists"
}

// paginate applies the sort column, direction and window of p to ds
func paginate(ds *goqu.SelectDataset, p pagination.Params) *goqu.SelectDataset {
	column := p.SortBy
	if column == "" {
		column = "created_at"
	}

	var order exp.OrderedExpression
	if p.SortDir == pagination.SortAsc {
		order = goqu.I(column).Asc()
	} else {
		order = goqu.I(column).Desc()
	}
	ds = ds.Order(order, goqu.I("id").Asc())

	if p.Limit > 0 {
		ds = ds.Limit(uint(p.Limit))
	}
	if p.Offset > 0 {
		ds = ds.Offset(uint(p.Offset))
	}
	return ds
}

// ilike matches a case-insensitive substring against any of columns
func ilike(term string, columns ...string) exp.ExpressionList {
	pattern := "%" + term + "%"
	exprs := make([]exp.Expression, 0, len(columns))
	for _, column := range columns {
		exprs = append(exprs, goqu.I(column).ILike(pattern))
	}
	return goqu.Or(exprs...)
}

// dayColumn renders a DATE column as YYYY-MM-DD so it scans into a string
func dayColumn(column string) exp.AliasedExpression {
	return goqu.L("to_char(?, 'YYYY-MM-DD')", goqu.I(column)).As(column)
}

// jsonb renders a JSON valuer as an explicit jsonb literal
func jsonb(v driver.Valuer) (exp.LiteralExpression, error) {
	raw, err := v.Value()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to encode json column", err)
	}
	return goqu.L("?::jsonb", raw), nil
}

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
