package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrBackupUnsupported is returned for dialects whose backups belong to the
// database server (pg_dump), not to this process.
var ErrBackupUnsupported = errors.New("backup and restore are only supported for the sqlite dialect")

// Backup writes a consistent copy of the sqlite database to dest, which must
// not exist yet.
func (g *Gateway) Backup(ctx context.Context, dest string) error {
	if g.dialect != DialectSQLite {
		return ErrBackupUnsupported
	}
	if _, err := os.Stat(dest); err == nil {
		return fmt.Errorf("backup target %s already exists", dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create dirs: %w", err)
	}
	if _, err := g.db.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return translateError("backup", err)
	}
	return nil
}

// RestoreSQLiteFile replaces the database file at dest with src after
// checking that src is a readable sqlite database. The gateway for dest must
// be closed while this runs.
func RestoreSQLiteFile(ctx context.Context, src, dest string) error {
	if err := checkSQLiteFile(ctx, src); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer in.Close()

	tmp := dest + ".restore"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o640)
	if err != nil {
		return fmt.Errorf("failed to create restore file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to copy backup: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to flush restore file: %w", err)
	}

	// stale journal files would be replayed over the restored content
	for _, suffix := range []string{"-wal", "-shm", "-journal"} {
		_ = os.Remove(dest + suffix)
	}
	if err := os.Rename(tmp, dest); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

func checkSQLiteFile(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("backup %s: %w", path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer db.Close()

	var result string
	if err := db.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("backup %s is not a sqlite database: %w", path, err)
	}
	if result != "ok" {
		return fmt.Errorf("backup %s failed integrity check: %s", path, result)
	}
	return nil
}
