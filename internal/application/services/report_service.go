package services

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	"github.com/corpcare/agentbooking/internal/infrastructure/observability"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
	"github.com/corpcare/agentbooking/pkg/pagination"
)

// maxReportDays bounds the period a single report may cover
const maxReportDays = 366

var reportTitles = map[entities.ReportType]string{
	entities.ReportTypeAppointments: "Appointments",
	entities.ReportTypePayments:     "Payments",
	entities.ReportTypeSummary:      "Summary",
}

// ReportSorting is the sort allow-list for report listings
var ReportSorting = pagination.Sorting{
	Allowed: map[string]string{
		"createdAt": "created_at",
		"type":      "type",
	},
	DefaultKey: "createdAt",
	DefaultDir: pagination.SortDesc,
}

// ReportInput requests a new report snapshot
type ReportInput struct {
	Type       entities.ReportType `json:"type" validate:"required,oneof=APPOINTMENTS PAYMENTS SUMMARY"`
	PeriodFrom string              `json:"periodFrom" validate:"required,datetime=2006-01-02"`
	PeriodTo   string              `json:"periodTo" validate:"required,datetime=2006-01-02"`
	Title      string              `json:"title,omitempty" validate:"max=255"`
}

// ReportService snapshots aggregations into stored reports
type ReportService struct {
	repo         repositories.ReportRepository
	appointments repositories.AppointmentRepository
	payments     repositories.PaymentRepository
	now          func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	repo repositories.ReportRepository,
	appointments repositories.AppointmentRepository,
	payments repositories.PaymentRepository,
) *ReportService {
	return &ReportService{
		repo:         repo,
		appointments: appointments,
		payments:     payments,
		now:          time.Now,
	}
}

// Generate computes and stores a report. An empty agentID covers every agent.
func (s *ReportService) Generate(ctx context.Context, agentID string, input ReportInput) (*entities.Report, error) {
	input.PeriodFrom = strings.TrimSpace(input.PeriodFrom)
	input.PeriodTo = strings.TrimSpace(input.PeriodTo)
	input.Title = strings.TrimSpace(input.Title)
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := validateDateRange(input.PeriodFrom, input.PeriodTo); err != nil {
		return nil, err
	}
	from, _ := time.Parse(entities.DateLayout, input.PeriodFrom)
	to, _ := time.Parse(entities.DateLayout, input.PeriodTo)
	if to.Sub(from) > maxReportDays*24*time.Hour {
		return nil, apperrors.NewValidationError(fmt.Sprintf("report period must not exceed %d days", maxReportDays))
	}

	period := repositories.DateRange{From: input.PeriodFrom, To: input.PeriodTo}
	data := entities.JSONMap{}

	if input.Type == entities.ReportTypeAppointments || input.Type == entities.ReportTypeSummary {
		counts, err := s.appointments.CountByStatus(ctx, agentID, period)
		if err != nil {
			return nil, err
		}
		daily, err := s.appointments.CountByDate(ctx, agentID, period)
		if err != nil {
			return nil, err
		}
		total, confirmed := summarizeCounts(counts)
		data["statusCounts"] = counts
		data["daily"] = daily
		data["totalAppointments"] = total
		data["confirmedAppointments"] = confirmed
	}

	if input.Type == entities.ReportTypePayments || input.Type == entities.ReportTypeSummary {
		summary, err := s.payments.Summary(ctx, agentID, period)
		if err != nil {
			return nil, err
		}
		revenue, err := s.payments.SumPaid(ctx, agentID, period)
		if err != nil {
			return nil, err
		}
		data["payments"] = summary
		data["revenue"] = revenue
	}

	title := input.Title
	if title == "" {
		title = fmt.Sprintf("%s report %s to %s", reportTitles[input.Type], input.PeriodFrom, input.PeriodTo)
	}

	report := &entities.Report{
		ID:         uuid.New().String(),
		Type:       input.Type,
		Title:      title,
		PeriodFrom: input.PeriodFrom,
		PeriodTo:   input.PeriodTo,
		Data:       data,
		CreatedAt:  s.now().UTC(),
	}
	if agentID != "" {
		report.AgentID = &agentID
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	observability.LoggerFromContext(ctx).Info().
		Str("report_id", report.ID).
		Str("type", string(report.Type)).
		Str("agent_id", agentID).
		Msg("Report generated")
	return report, nil
}

// Get returns a stored report. A non-empty agentID hides other agents' reports.
func (s *ReportService) Get(ctx context.Context, agentID, id string) (*entities.Report, error) {
	return s.repo.GetByID(ctx, id, agentID)
}

// List returns one page of stored reports
func (s *ReportService) List(ctx context.Context, agentID string, page pagination.Params) (pagination.Page[*entities.Report], error) {
	items, total, err := s.repo.List(ctx, agentID, page)
	if err != nil {
		return pagination.Page[*entities.Report]{}, err
	}
	return pagination.NewPage(items, total, page), nil
}

// RenderPDF lays a report out as a single A4 document
func (s *ReportService) RenderPDF(report *entities.Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, report.Title, "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 7, fmt.Sprintf("Period %s to %s", report.PeriodFrom, report.PeriodTo), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 7, "Generated "+report.CreatedAt.UTC().Format(time.RFC1123), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	keys := make([]string, 0, len(report.Data))
	for key := range report.Data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		addReportSection(pdf, key, report.Data[key])
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, apperrors.NewInternalError("failed to render report", err)
	}
	return buf.Bytes(), nil
}

func addReportSection(pdf *gofpdf.Fpdf, label string, value interface{}) {
	switch v := value.(type) {
	case []entities.StatusCount:
		addReportHeader(pdf, label)
		for _, row := range v {
			addReportRow(pdf, string(row.Status), fmt.Sprintf("%d  (%.2f)", row.Count, row.Amount))
		}
	case []entities.DailyCount:
		addReportHeader(pdf, label)
		for _, row := range v {
			addReportRow(pdf, row.Date, fmt.Sprintf("%d  (%.2f)", row.Count, row.Amount))
		}
	case *entities.PaymentSummary:
		addReportHeader(pdf, label)
		addReportRow(pdf, "Total paid", fmt.Sprintf("%.2f", v.TotalPaid))
		addReportRow(pdf, "Paid", fmt.Sprintf("%d", v.PaidCount))
		addReportRow(pdf, "Failed", fmt.Sprintf("%d", v.FailedCount))
		methods := make([]string, 0, len(v.ByMethod))
		for method := range v.ByMethod {
			methods = append(methods, string(method))
		}
		sort.Strings(methods)
		for _, method := range methods {
			addReportRow(pdf, method, fmt.Sprintf("%.2f", v.ByMethod[entities.PaymentMethod(method)]))
		}
	case []interface{}:
		addReportHeader(pdf, label)
		for i, item := range v {
			addReportRow(pdf, fmt.Sprintf("%d", i+1), fmt.Sprintf("%v", item))
		}
	case map[string]interface{}:
		addReportHeader(pdf, label)
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			addReportRow(pdf, key, fmt.Sprintf("%v", v[key]))
		}
	case float64:
		addReportRow(pdf, label, fmt.Sprintf("%.2f", v))
	default:
		addReportRow(pdf, label, fmt.Sprintf("%v", v))
	}
}

func addReportHeader(pdf *gofpdf.Fpdf, label string) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 8, label, "1", 1, "L", true, 0, "")
}

func addReportRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(60, 7, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 7, value, "1", 1, "", false, 0, "")
}
