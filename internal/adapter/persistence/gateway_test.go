package persistence

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labtrack/labtrack/internal/domain"
)

func newTestGateway(t *testing.T) *Gateway {
	t.Helper()
	ctx := context.Background()
	g, err := Open(ctx, Options{Dialect: DialectSQLite, Path: filepath.Join(t.TempDir(), "lab.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = g.Close() })
	require.NoError(t, g.CreateSchemaIfAbsent(ctx))
	return g
}

func sampleEquipment(name, serial string) *domain.Equipment {
	e := &domain.Equipment{Name: name, Category: domain.EquipmentCategoryComputer, Status: domain.EquipmentStatusOperational}
	if serial != "" {
		e.Serial = &serial
	}
	return e
}

func TestGateway_CreateSchemaIsIdempotent(t *testing.T) {
	g := newTestGateway(t)
	ctx := context.Background()

	require.NoError(t, g.CreateSchemaIfAbsent(ctx))
	require.NoError(t, g.CreateSchemaIfAbsent(ctx))

	version, err := g.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), version)

	for _, table := range []string{"users", "equipment", "inventory", "reports", "reservations", "maintenance", "access_log"} {
		rows, err := g.Query(ctx, "SELECT COUNT(*) FROM "+table)
		require.NoError(t, err, table)
		require.NoError(t, rows.Close())
	}
}

func TestGateway_RunInTransaction_Commit(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()

	err := g.RunInTransaction(ctx, func(ctx context.Context) error {
		assert.True(t, InTransaction(ctx))
		return repo.Create(ctx, sampleEquipment("Oscilloscope", "OSC-1"))
	})
	require.NoError(t, err)

	list, err := repo.List(ctx, domain.EquipmentFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestGateway_RunInTransaction_RollbackOnError(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()
	boom := errors.New("boom")

	err := g.RunInTransaction(ctx, func(ctx context.Context) error {
		require.NoError(t, repo.Create(ctx, sampleEquipment("Oscilloscope", "OSC-1")))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	list, err := repo.List(ctx, domain.EquipmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGateway_RunInTransaction_RollbackOnPanic(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = g.RunInTransaction(ctx, func(ctx context.Context) error {
			require.NoError(t, repo.Create(ctx, sampleEquipment("Oscilloscope", "OSC-1")))
			panic("kaboom")
		})
	})

	list, err := repo.List(ctx, domain.EquipmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGateway_NestedTransactionJoinsOuter(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()

	err := g.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := g.RunInTransaction(ctx, func(ctx context.Context) error {
			return repo.Create(ctx, sampleEquipment("Router", "RT-1"))
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	require.Error(t, err)

	list, err := repo.List(ctx, domain.EquipmentFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestGateway_DuplicateSerial(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, sampleEquipment("PC 1", "SN-1")))
	err := repo.Create(ctx, sampleEquipment("PC 2", "SN-1"))

	var dup *domain.DuplicateKeyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "serial", dup.Field)

	// equipment without serial never collides
	require.NoError(t, repo.Create(ctx, sampleEquipment("PC 3", "")))
	require.NoError(t, repo.Create(ctx, sampleEquipment("PC 4", "")))
}

func TestGateway_ExecuteReportsStorageError(t *testing.T) {
	g := newTestGateway(t)

	_, err := g.Execute(context.Background(), "UPDATE no_such_table SET x = 1")
	var se *domain.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "execute", se.Op)
	assert.False(t, se.Retryable)
}

func TestGateway_Rebind(t *testing.T) {
	pg := NewGateway(nil, DialectPostgres, nil)
	assert.Equal(t, "SELECT * FROM t WHERE a = $1 AND b = $2", pg.rebind("SELECT * FROM t WHERE a = ? AND b = ?"))

	lite := NewGateway(nil, DialectSQLite, nil)
	assert.Equal(t, "SELECT * FROM t WHERE a = ?", lite.rebind("SELECT * FROM t WHERE a = ?"))
}

func TestGateway_BackupAndRestore(t *testing.T) {
	g := newTestGateway(t)
	repo := NewEquipmentRepository(g)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, sampleEquipment("Switch", "SW-1")))

	backup := filepath.Join(t.TempDir(), "backup.db")
	require.NoError(t, g.Backup(ctx, backup))
	assert.Error(t, g.Backup(ctx, backup), "existing target must not be overwritten")

	target := filepath.Join(t.TempDir(), "restored.db")
	require.NoError(t, RestoreSQLiteFile(ctx, backup, target))

	restored, err := Open(ctx, Options{Dialect: DialectSQLite, Path: target})
	require.NoError(t, err)
	defer restored.Close()

	list, err := NewEquipmentRepository(restored).List(ctx, domain.EquipmentFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Switch", list[0].Name)
}

func TestOpen_UnknownDialect(t *testing.T) {
	_, err := Open(context.Background(), Options{Dialect: "oracle"})
	assert.Error(t, err)
}

func TestNextDay(t *testing.T) {
	assert.Equal(t, "2024-03-01", nextDay(time.Date(2024, 2, 29, 15, 0, 0, 0, time.Local)))
}
