package database

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/clients/postgres"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

const reportsTable = "reports"

func reportColumns() []interface{} {
	return []interface{}{
		"id", "agent_id", "type", "title",
		dayColumn("period_from"), dayColumn("period_to"),
		"data", "created_at",
	}
}

// ReportAdapter implements the ReportRepository interface
type ReportAdapter struct {
	baseAdapter
}

// NewReportAdapter creates a new report adapter
func NewReportAdapter(client *postgres.Client) repositories.ReportRepository {
	return &ReportAdapter{baseAdapter: newBaseAdapter(client)}
}

// Create persists a report snapshot
func (a *ReportAdapter) Create(ctx context.Context, report *entities.Report) error {
	data, err := jsonb(report.Data)
	if err != nil {
		return err
	}

	_, err = a.exec(ctx, a.db.Insert(reportsTable).Rows(goqu.Record{
		"id":          report.ID,
		"agent_id":    nullableString(report.AgentID),
		"type":        report.Type,
		"title":       report.Title,
		"period_from": report.PeriodFrom,
		"period_to":   report.PeriodTo,
		"data":        data,
		"created_at":  report.CreatedAt,
	}), "create report")
	return err
}

// GetByID retrieves a report. A non-empty agentID scopes the lookup.
func (a *ReportAdapter) GetByID(ctx context.Context, id, agentID string) (*entities.Report, error) {
	where := goqu.Ex{"id": id}
	if agentID != "" {
		where["agent_id"] = agentID
	}
	ds := a.db.Select(reportColumns()...).From(reportsTable).Where(where).Limit(1)

	var found []*entities.Report
	if err := a.selectAll(ctx, &found, ds); err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("report with id %s not found", id))
	}
	return found[0], nil
}

// List returns one page of reports
func (a *ReportAdapter) List(ctx context.Context, agentID string, page pagination.Params) ([]*entities.Report, int, error) {
	ds := a.db.Select(reportColumns()...).From(reportsTable)
	if agentID != "" {
		ds = ds.Where(goqu.Ex{"agent_id": agentID})
	}

	total, err := a.count(ctx, ds)
	if err != nil {
		return nil, 0, err
	}

	reports := make([]*entities.Report, 0)
	if err := a.selectAll(ctx, &reports, paginate(ds, page)); err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
