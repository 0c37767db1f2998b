package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/labtrack/labtrack/infrastructure/service/logger"
)

// Dialect selects the SQL flavour and driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// DefaultSQLitePath is used when no path is configured.
const DefaultSQLitePath = "laboratory.db"

// Options configures Open
type Options struct {
	Dialect      Dialect
	Path         string // sqlite file
	DSN          string // postgres connection string
	MaxOpenConns int
	Logger       logger.Logger
}

// Gateway owns the database handle. It is the only component that talks
// to database/sql; repositories go through it so they transparently join a
// transaction carried in the context.
type Gateway struct {
	db      *sql.DB
	dialect Dialect
	path    string
	log     logger.Logger
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type txKey struct{}

// Open connects to the configured database and verifies the connection.
func Open(ctx context.Context, opts Options) (*Gateway, error) {
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}

	var (
		db  *sql.DB
		err error
	)
	switch opts.Dialect {
	case DialectSQLite, "":
		opts.Dialect = DialectSQLite
		if opts.Path == "" {
			opts.Path = DefaultSQLitePath
		}
		if err := os.MkdirAll(filepath.Dir(opts.Path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
		db, err = sql.Open("sqlite", opts.Path+"?_pragma=busy_timeout(5000)")
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// one writer; a second pooled connection would deadlock against an open tx
		db.SetMaxOpenConns(1)
	case DialectPostgres:
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres dialect requires a DSN")
		}
		db, err = sql.Open("postgres", opts.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if opts.MaxOpenConns > 0 {
			db.SetMaxOpenConns(opts.MaxOpenConns)
		}
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", opts.Dialect)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	g := NewGateway(db, opts.Dialect, opts.Logger)
	g.path = opts.Path
	return g, nil
}

// NewGateway wraps an already opened handle.
func NewGateway(db *sql.DB, dialect Dialect, log logger.Logger) *Gateway {
	if log == nil {
		log = logger.NewNop()
	}
	return &Gateway{db: db, dialect: dialect, log: log}
}

func (g *Gateway) Dialect() Dialect { return g.dialect }

func (g *Gateway) DB() *sql.DB { return g.db }

func (g *Gateway) Close() error { return g.db.Close() }

// Execute runs a single statement. Outside a transaction it auto-commits.
func (g *Gateway) Execute(ctx context.Context, stmt string, args ...interface{}) (int64, error) {
	res, err := g.conn(ctx).ExecContext(ctx, g.rebind(stmt), args...)
	if err != nil {
		return 0, translateError("execute", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, translateError("rows affected", err)
	}
	return n, nil
}

// Query runs a statement returning rows. The caller closes them.
func (g *Gateway) Query(ctx context.Context, stmt string, args ...interface{}) (*sql.Rows, error) {
	rows, err := g.conn(ctx).QueryContext(ctx, g.rebind(stmt), args...)
	if err != nil {
		return nil, translateError("query", err)
	}
	return rows, nil
}

// RunInTransaction begins a transaction, runs fn with a context carrying it,
// commits on nil and rolls back on error or panic. A call nested inside an
// open transaction joins it.
func (g *Gateway) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	var opts *sql.TxOptions
	if g.dialect == DialectPostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelSerializable}
	}

	tx, err := g.db.BeginTx(ctx, opts)
	if err != nil {
		return translateError("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				g.log.Warn(ctx, "rollback failed", map[string]interface{}{"error": rbErr.Error()})
			}
		} else if cErr := tx.Commit(); cErr != nil {
			err = translateError("commit transaction", cErr)
		}
	}()

	err = fn(context.WithValue(ctx, txKey{}, tx))
	return err
}

// InTransaction reports whether ctx carries an open transaction.
func InTransaction(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

func (g *Gateway) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return g.db
}

// builder produces "?" placeholders; rebind converts them per dialect.
func (g *Gateway) builder() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Question)
}

func (g *Gateway) rebind(stmt string) string {
	if g.dialect != DialectPostgres {
		return stmt
	}
	out, err := sq.Dollar.ReplacePlaceholders(stmt)
	if err != nil {
		return stmt
	}
	return out
}

func (g *Gateway) execBuilder(ctx context.Context, op string, b sq.Sqlizer) (int64, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build %s: %w", op, err)
	}
	n, err := g.Execute(ctx, stmt, args...)
	if err != nil {
		return 0, relabel(op, err)
	}
	return n, nil
}

func (g *Gateway) queryBuilder(ctx context.Context, op string, b sq.Sqlizer) (*sql.Rows, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", op, err)
	}
	rows, err := g.Query(ctx, stmt, args...)
	if err != nil {
		return nil, relabel(op, err)
	}
	return rows, nil
}

func (g *Gateway) queryRowBuilder(ctx context.Context, op string, b sq.Sqlizer) (*sql.Row, error) {
	stmt, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s: %w", op, err)
	}
	return g.conn(ctx).QueryRowContext(ctx, g.rebind(stmt), args...), nil
}

// insertReturningID runs an INSERT ... RETURNING id. Both dialects support it.
func (g *Gateway) insertReturningID(ctx context.Context, op string, b sq.InsertBuilder) (int64, error) {
	row, err := g.queryRowBuilder(ctx, op, b.Suffix("RETURNING id"))
	if err != nil {
		return 0, err
	}
	var id int64
	if err := row.Scan(&id); err != nil {
		return 0, translateError(op, err)
	}
	return id, nil
}
