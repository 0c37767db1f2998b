package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/adapter/persistence"
	"github.com/labtrack/labtrack/internal/domain"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.Local)
}

func schedule(t *testing.T, f *fixture, equipmentID int64, on time.Time) *domain.MaintenanceRecord {
	t.Helper()
	record, err := f.maintenance.Schedule(context.Background(), 1, ScheduleRequest{
		EquipmentID:   equipmentID,
		Category:      domain.MaintenanceCategoryPreventive,
		ScheduledOn:   on,
		Description:   "clean fans",
		Technician:    "Luis",
		EstimatedCost: 20,
	})
	require.NoError(t, err)
	return record
}

func TestMaintenanceComplete_PropagatesLastMaintenance(t *testing.T) {
	f := newFixture(t)
	pc := f.seedEquipment(t, "PC-01")
	ctx := context.Background()

	record := schedule(t, f, pc.ID, day(time.March, 10))
	assert.Equal(t, domain.MaintenanceStatusPending, record.Status)

	cost := 35.5
	done, err := f.maintenance.Complete(ctx, 1, record.ID, CompleteMaintenanceRequest{
		CompletedOn: day(time.March, 12),
		ActualCost:  &cost,
		Notes:       "replaced fan",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStatusCompleted, done.Status)

	equipment, err := f.equipment.Get(ctx, pc.ID)
	require.NoError(t, err)
	require.NotNil(t, equipment.LastMaintenance)
	assert.Equal(t, "2024-03-12", domain.FormatDate(*equipment.LastMaintenance))

	stored, err := f.maintenance.Get(ctx, record.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ActualCost)
	assert.Equal(t, 35.5, *stored.ActualCost)
	assert.Equal(t, "replaced fan", stored.Notes)

	_, err = f.maintenance.Complete(ctx, 1, record.ID, CompleteMaintenanceRequest{CompletedOn: day(time.March, 13)})
	var ite *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)

	assert.Equal(t, 1, countAction(f.auditActions(t), domain.ActionMaintenanceCompleted))
}

// failingMaintenanceRepo fails the record update after the equipment row was
// already written inside the transaction
type failingMaintenanceRepo struct {
	*persistence.MaintenanceRepository
}

func (r failingMaintenanceRepo) Update(ctx context.Context, record *domain.MaintenanceRecord) error {
	return errors.New("disk full")
}

func TestMaintenanceComplete_AtomicOnFailure(t *testing.T) {
	f := newFixture(t)
	pc := f.seedEquipment(t, "PC-01")
	ctx := context.Background()
	record := schedule(t, f, pc.ID, day(time.March, 10))

	uc := NewMaintenanceUseCase(failingMaintenanceRepo{f.maintenanceDB}, f.equipmentDB, f.g, f.audit, clockAt(fixedNow), nil)
	_, err := uc.Complete(ctx, 1, record.ID, CompleteMaintenanceRequest{CompletedOn: day(time.March, 12)})
	require.Error(t, err)

	equipment, err := f.equipment.Get(ctx, pc.ID)
	require.NoError(t, err)
	assert.Nil(t, equipment.LastMaintenance)

	stored, err := f.maintenance.Get(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStatusPending, stored.Status)
	assert.Nil(t, stored.CompletedOn)

	assert.Zero(t, countAction(f.auditActions(t), domain.ActionMaintenanceCompleted))
}

func TestMaintenanceComplete_MissingEquipment(t *testing.T) {
	f := newFixture(t)
	pc := f.seedEquipment(t, "PC-01")
	ctx := context.Background()
	record := schedule(t, f, pc.ID, day(time.March, 10))

	_, err := f.integrity.DeleteEquipment(ctx, 1, pc.ID, false)
	require.NoError(t, err)

	done, err := f.maintenance.Complete(ctx, 1, record.ID, CompleteMaintenanceRequest{CompletedOn: day(time.March, 12)})
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStatusCompleted, done.Status)
}

func TestMaintenanceSchedule_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pc := f.seedEquipment(t, "PC-01")

	tests := []struct {
		name  string
		req   ScheduleRequest
		field string
	}{
		{"missing equipment", ScheduleRequest{Category: domain.MaintenanceCategoryCleaning, ScheduledOn: day(time.March, 1)}, "equipment_id"},
		{"unknown equipment", ScheduleRequest{EquipmentID: 99, Category: domain.MaintenanceCategoryCleaning, ScheduledOn: day(time.March, 1)}, "equipment_id"},
		{"missing date", ScheduleRequest{EquipmentID: pc.ID, Category: domain.MaintenanceCategoryCleaning}, "scheduled_on"},
		{"unknown category", ScheduleRequest{EquipmentID: pc.ID, Category: "POLISH", ScheduledOn: day(time.March, 1)}, "category"},
		{"negative cost", ScheduleRequest{EquipmentID: pc.ID, Category: domain.MaintenanceCategoryCleaning, ScheduledOn: day(time.March, 1), EstimatedCost: -1}, "estimated_cost"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.maintenance.Schedule(ctx, 1, tt.req)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestMaintenanceCancel(t *testing.T) {
	f := newFixture(t)
	pc := f.seedEquipment(t, "PC-01")
	ctx := context.Background()
	record := schedule(t, f, pc.ID, day(time.March, 10))

	cancelled, err := f.maintenance.Cancel(ctx, 1, record.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MaintenanceStatusCancelled, cancelled.Status)

	_, err = f.maintenance.Complete(ctx, 1, record.ID, CompleteMaintenanceRequest{CompletedOn: day(time.March, 12)})
	var ite *domain.InvalidTransitionError
	assert.ErrorAs(t, err, &ite)

	equipment, err := f.equipment.Get(ctx, pc.ID)
	require.NoError(t, err)
	assert.Nil(t, equipment.LastMaintenance)
}

func TestMaintenanceList_OverdueFlag(t *testing.T) {
	f := newFixture(t)
	pc := f.seedEquipment(t, "PC-01")
	ctx := context.Background()

	schedule(t, f, pc.ID, day(time.March, 1))
	schedule(t, f, pc.ID, day(time.March, 15))
	schedule(t, f, pc.ID, day(time.April, 1))

	list, err := f.maintenance.List(ctx, domain.MaintenanceFilter{EquipmentID: &pc.ID})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].Overdue)
	assert.False(t, list[1].Overdue, "due today is not overdue")
	assert.False(t, list[2].Overdue)
}
