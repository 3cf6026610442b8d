package services_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpcare/agentbooking/internal/application/services"
	"github.com/corpcare/agentbooking/internal/domain/entities"
	"github.com/corpcare/agentbooking/internal/domain/repositories"
	apperrors "github.com/corpcare/agentbooking/pkg/errors"
)

func todayRange() repositories.DateRange {
	today := time.Now().UTC().Format(entities.DateLayout)
	return repositories.DateRange{From: today, To: today}
}

func seedConfirmedBookings(t *testing.T, f *fixture) {
	t.Helper()
	ctx := context.Background()
	f.addDoctor("doc-1", 2500, true)
	appointments := newAppointmentService(f, 50)

	first, err := appointments.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:00"))
	require.NoError(t, err)
	_, err = appointments.Create(ctx, agentA, booking("doc-1", "2030-01-15", "09:30"))
	require.NoError(t, err)
	_, err = appointments.Create(ctx, agentB, booking("doc-1", "2030-01-15", "10:00"))
	require.NoError(t, err)
	_, err = appointments.Confirm(ctx, agentA, first.ID)
	require.NoError(t, err)
}

func TestReportService_Generate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedConfirmedBookings(t, f)
	svc := services.NewReportService(memReports{db: f.db}, f.appts, f.payments)
	period := todayRange()

	t.Run("summary covers appointments and payments", func(t *testing.T) {
		report, err := svc.Generate(ctx, agentA, services.ReportInput{
			Type:       entities.ReportTypeSummary,
			PeriodFrom: period.From,
			PeriodTo:   period.To,
		})
		require.NoError(t, err)

		require.NotNil(t, report.AgentID)
		assert.Equal(t, agentA, *report.AgentID)
		assert.Contains(t, report.Title, "Summary report")
		assert.Equal(t, 2, report.Data["totalAppointments"])
		assert.Equal(t, 1, report.Data["confirmedAppointments"])
		assert.Equal(t, 2500.0, report.Data["revenue"])
		assert.Contains(t, report.Data, "payments")
		assert.Contains(t, report.Data, "daily")

		stored, err := svc.Get(ctx, agentA, report.ID)
		require.NoError(t, err)
		assert.Equal(t, report.ID, stored.ID)

		_, err = svc.Get(ctx, agentB, report.ID)
		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("payments report skips appointment counts", func(t *testing.T) {
		report, err := svc.Generate(ctx, agentA, services.ReportInput{
			Type:       entities.ReportTypePayments,
			PeriodFrom: period.From,
			PeriodTo:   period.To,
			Title:      "January payments",
		})
		require.NoError(t, err)
		assert.Equal(t, "January payments", report.Title)
		assert.NotContains(t, report.Data, "statusCounts")
		assert.Contains(t, report.Data, "revenue")
	})

	t.Run("an admin report spans every agent", func(t *testing.T) {
		report, err := svc.Generate(ctx, "", services.ReportInput{
			Type:       entities.ReportTypeAppointments,
			PeriodFrom: period.From,
			PeriodTo:   period.To,
		})
		require.NoError(t, err)
		assert.Nil(t, report.AgentID)
		assert.Equal(t, 3, report.Data["totalAppointments"])
	})

	t.Run("rejects bad input", func(t *testing.T) {
		cases := []services.ReportInput{
			{Type: "WEEKLY", PeriodFrom: "2030-01-01", PeriodTo: "2030-01-31"},
			{Type: entities.ReportTypeSummary, PeriodFrom: "2030-02-01", PeriodTo: "2030-01-01"},
			{Type: entities.ReportTypeSummary, PeriodFrom: "2028-01-01", PeriodTo: "2030-01-01"},
			{Type: entities.ReportTypeSummary, PeriodFrom: "January", PeriodTo: "2030-01-01"},
		}
		for _, input := range cases {
			_, err := svc.Generate(ctx, agentA, input)
			assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "%+v", input)
		}
	})

	page, err := svc.List(ctx, agentA, paramsFor(1, 20))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
}

func TestReportService_RenderPDF(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedConfirmedBookings(t, f)
	svc := services.NewReportService(memReports{db: f.db}, f.appts, f.payments)
	period := todayRange()

	report, err := svc.Generate(ctx, agentA, services.ReportInput{
		Type:       entities.ReportTypeSummary,
		PeriodFrom: period.From,
		PeriodTo:   period.To,
	})
	require.NoError(t, err)

	data, err := svc.RenderPDF(report)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Greater(t, len(data), 500)
}

func TestPaymentService(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	seedConfirmedBookings(t, f)
	svc := services.NewPaymentService(f.payments)

	page, err := svc.List(ctx, repositories.PaymentFilter{AgentID: agentA, Page: paramsFor(1, 20)})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	payment := page.Items[0]

	got, err := svc.Get(ctx, agentA, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.TransactionRef, got.TransactionRef)

	_, err = svc.Get(ctx, agentB, payment.ID)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))

	_, err = svc.List(ctx, repositories.PaymentFilter{Status: "REFUNDED"})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))

	summary, err := svc.Summary(ctx, agentA, todayRange())
	require.NoError(t, err)
	assert.Equal(t, 2500.0, summary.TotalPaid)
	assert.Equal(t, 1, summary.PaidCount)
	assert.Equal(t, 2500.0, summary.ByMethod[entities.PaymentMethodCorporateAccount])

	empty, err := svc.Summary(ctx, agentB, todayRange())
	require.NoError(t, err)
	assert.Zero(t, empty.TotalPaid)
	assert.NotNil(t, empty.ByMethod)
}

func TestAgentService(t *testing.T) {
	ctx := context.Background()
	db := newMemDB()
	require.NoError(t, memUsers{db: db}.Create(ctx, &entities.User{ID: "user-1", Email: "ops@acme.test", Role: entities.UserRoleAgent, IsActive: true}))
	require.NoError(t, memAgents{db: db}.Create(ctx, &entities.Agent{ID: agentA, UserID: "user-1", CompanyName: "Acme Health", IsActive: true}))
	require.NoError(t, memUsers{db: db}.Create(ctx, &entities.User{ID: "user-2", Email: "desk@beta.test", Role: entities.UserRoleAgent, IsActive: true}))
	require.NoError(t, memAgents{db: db}.Create(ctx, &entities.Agent{ID: agentB, UserID: "user-2", CompanyName: "Beta Care", IsActive: true}))
	svc := services.NewAgentService(memAgents{db: db}, memUsers{db: db})

	profile, err := svc.GetProfile(ctx, agentA)
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.test", profile.Email)

	company := "  Acme Health Group "
	updated, err := svc.UpdateProfile(ctx, agentA, services.UpdateAgentInput{CompanyName: &company})
	require.NoError(t, err)
	assert.Equal(t, "Acme Health Group", updated.CompanyName)
	assert.Equal(t, "ops@acme.test", updated.Email)

	short := "A"
	_, err = svc.UpdateProfile(ctx, agentA, services.UpdateAgentInput{CompanyName: &short})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	blank := "    "
	_, err = svc.UpdateProfile(ctx, agentA, services.UpdateAgentInput{CompanyName: &blank})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation), "a blank company name is rejected after trimming")
	profile, err = svc.GetProfile(ctx, agentA)
	require.NoError(t, err)
	assert.Equal(t, "Acme Health Group", profile.CompanyName)

	verified, err := svc.SetVerified(ctx, agentB, true)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)

	yes := true
	page, err := svc.List(ctx, repositories.AgentFilter{Verified: &yes, Page: paramsFor(1, 20)})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, agentB, page.Items[0].ID)

	deactivated, err := svc.SetActive(ctx, agentA, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	_, err = svc.GetProfile(ctx, "missing")
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}
