package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/domain"
)

func TestReportLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pc := f.seedEquipment(t, "PC-01")

	report, err := f.reports.Create(ctx, 7, CreateReportRequest{
		EquipmentID: &pc.ID,
		Category:    domain.ReportCategoryHardware,
		Description: "  no video output  ",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusOpen, report.Status)
	assert.Equal(t, domain.PriorityMedium, report.Priority)
	assert.Equal(t, int64(7), report.ReportedBy)
	assert.Equal(t, fixedNow, report.CreatedAt)
	assert.Equal(t, "no video output", report.Description)

	_, err = f.reports.Resolve(ctx, 1, report.ID, "   ")
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "resolution", verr.Field)

	inProgress, err := f.reports.MarkInProgress(ctx, 1, report.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusInProgress, inProgress.Status)

	_, err = f.reports.MarkInProgress(ctx, 1, report.ID)
	var ite *domain.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, "IN_PROGRESS", ite.From)

	resolved, err := f.reports.Resolve(ctx, 1, report.ID, "replaced cable")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusResolved, resolved.Status)

	_, err = f.reports.Resolve(ctx, 1, report.ID, "again")
	assert.ErrorAs(t, err, &ite)

	stored, err := f.reports.Get(ctx, report.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Resolution)
	assert.Equal(t, "replaced cable", *stored.Resolution)

	actions := f.auditActions(t)
	assert.Equal(t, 1, countAction(actions, domain.ActionReportCreated))
	assert.Equal(t, 1, countAction(actions, domain.ActionReportInProgress))
	assert.Equal(t, 1, countAction(actions, domain.ActionReportResolved))
}

func TestReportResolve_DirectlyFromOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	report, err := f.reports.Create(ctx, 1, CreateReportRequest{
		Category:    domain.ReportCategoryNetwork,
		Description: "wifi down",
		Priority:    domain.PriorityHigh,
	})
	require.NoError(t, err)
	assert.Nil(t, report.EquipmentID)

	resolved, err := f.reports.Resolve(ctx, 1, report.ID, "restarted access point")
	require.NoError(t, err)
	assert.Equal(t, domain.ReportStatusResolved, resolved.Status)
}

func TestReportCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	unknown := int64(404)

	tests := []struct {
		name  string
		req   CreateReportRequest
		field string
	}{
		{"empty description", CreateReportRequest{Category: domain.ReportCategoryOther, Description: "   "}, "description"},
		{"missing category", CreateReportRequest{Description: "broken"}, "category"},
		{"unknown category", CreateReportRequest{Category: "PLUMBING", Description: "broken"}, "category"},
		{"unknown priority", CreateReportRequest{Category: domain.ReportCategoryOther, Description: "broken", Priority: "URGENT"}, "priority"},
		{"unknown equipment", CreateReportRequest{EquipmentID: &unknown, Category: domain.ReportCategoryOther, Description: "broken"}, "equipment_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reports.Create(ctx, 1, tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}

	reports, err := f.reports.List(ctx, domain.ReportFilter{})
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestReportList_RejectsInvertedRange(t *testing.T) {
	f := newFixture(t)
	from := day(3, 10)
	to := day(3, 1)

	_, err := f.reports.List(context.Background(), domain.ReportFilter{From: &from, To: &to})
	var verr *domain.ValidationError
	assert.ErrorAs(t, err, &verr)
}
