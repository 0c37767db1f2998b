package usecase

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/labtrack/labtrack/infrastructure/service/password"
	"github.com/labtrack/labtrack/internal/adapter/lock"
	"github.com/labtrack/labtrack/internal/adapter/persistence"
	"github.com/labtrack/labtrack/internal/domain"
)

var fixedNow = time.Date(2024, 3, 15, 9, 0, 0, 0, time.Local)

// fixture wires every use case to a fresh SQLite database
type fixture struct {
	g             *persistence.Gateway
	equipmentDB   *persistence.EquipmentRepository
	inventoryDB   *persistence.InventoryRepository
	reportDB      *persistence.ReportRepository
	reservationDB *persistence.ReservationRepository
	maintenanceDB *persistence.MaintenanceRepository
	userDB        *persistence.UserRepository
	accessLogDB   *persistence.AccessLogRepository

	audit        *AuditLog
	equipment    *EquipmentUseCase
	inventory    *InventoryUseCase
	reports      *ReportUseCase
	reservations *ReservationUseCase
	maintenance  *MaintenanceUseCase
	users        *UserUseCase
	integrity    *IntegrityUseCase
	stats        *StatsUseCase
}

func clockAt(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	g, err := persistence.Open(ctx, persistence.Options{
		Dialect: persistence.DialectSQLite,
		Path:    filepath.Join(t.TempDir(), "lab.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.CreateSchemaIfAbsent(ctx))

	f := &fixture{
		g:             g,
		equipmentDB:   persistence.NewEquipmentRepository(g),
		inventoryDB:   persistence.NewInventoryRepository(g),
		reportDB:      persistence.NewReportRepository(g),
		reservationDB: persistence.NewReservationRepository(g),
		maintenanceDB: persistence.NewMaintenanceRepository(g),
		userDB:        persistence.NewUserRepository(g),
		accessLogDB:   persistence.NewAccessLogRepository(g),
	}

	clock := clockAt(fixedNow)
	f.audit = NewAuditLog(f.accessLogDB, clock, nil)
	f.equipment = NewEquipmentUseCase(f.equipmentDB, f.audit, nil)
	f.inventory = NewInventoryUseCase(f.inventoryDB, f.audit, clock, nil)
	f.reports = NewReportUseCase(f.reportDB, f.equipmentDB, g, f.audit, clock, nil)
	f.reservations = NewReservationUseCase(f.reservationDB, f.equipmentDB, f.userDB, g, lock.NewLocal(), f.audit, clock, nil, 3)
	f.maintenance = NewMaintenanceUseCase(f.maintenanceDB, f.equipmentDB, g, f.audit, clock, nil)
	f.users = NewUserUseCase(f.userDB, password.NewBcryptHasher(bcrypt.MinCost), f.audit, clock, nil)
	f.integrity = NewIntegrityUseCase(f.equipmentDB, f.reportDB, f.reservationDB, f.userDB, g, f.audit, nil)
	f.stats = NewStatsUseCase(persistence.NewStatsRepository(g))
	return f
}

func (f *fixture) seedEquipment(t *testing.T, name string) *domain.Equipment {
	t.Helper()
	e, err := f.equipment.Create(context.Background(), 1, EquipmentRequest{
		Name:     name,
		Category: domain.EquipmentCategoryComputer,
		Location: "Lab A",
	})
	require.NoError(t, err)
	return e
}

func (f *fixture) seedUser(t *testing.T, login string) *domain.User {
	t.Helper()
	u, err := f.users.Create(context.Background(), 1, UserRequest{
		FirstName: "Test",
		LastName:  login,
		Role:      domain.UserRoleUser,
		Login:     login,
		Password:  "secret123",
	})
	require.NoError(t, err)
	return u
}

// auditActions returns the recorded actions, newest first.
func (f *fixture) auditActions(t *testing.T) []string {
	t.Helper()
	entries, err := f.audit.Recent(context.Background(), 0)
	require.NoError(t, err)
	actions := make([]string, 0, len(entries))
	for _, e := range entries {
		actions = append(actions, e.Action)
	}
	return actions
}

func countAction(actions []string, action string) int {
	n := 0
	for _, a := range actions {
		if a == action {
			n++
		}
	}
	return n
}

func at(hour, minute, second int) time.Time {
	return time.Date(2024, 3, 20, hour, minute, second, 0, time.Local)
}
