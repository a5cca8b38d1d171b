// Package sqlstore implementa los repositorios sobre database/sql.
// El mismo SQL corre en Postgres (pgx) y SQLite (modernc); las queries se
// escriben con $n y se reescriben a ?n para SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"time"

	"animal-rescue/internal/domain/lifecycle"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = lifecycle.ErrRecordNotFound
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

type DB struct {
	*sql.DB
	dialect Dialect
}

// Open abre el pool y hace ping. No corre migraciones (ver Migrate).
func Open(ctx context.Context, dialect Dialect, dsn string) (*DB, error) {
	var (
		driverName string
		source     = dsn
	)
	switch dialect {
	case Postgres:
		driverName = "pgx"
	case SQLite:
		driverName = "sqlite"
		source = sqliteDSN(dsn)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driverName, source)
	if err != nil {
		return nil, err
	}

	if dialect == SQLite {
		// un solo writer; evita SQLITE_BUSY entre conexiones del pool
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxIdleTime(5 * time.Minute)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &DB{DB: db, dialect: dialect}, nil
}

func (d *DB) Dialect() Dialect { return d.dialect }

// Migrate aplica las migraciones embebidas del dialecto. Sin cambios = nil.
func (d *DB) Migrate() error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(d.dialect))
	if err != nil {
		return err
	}
	src, err := iofs.New(sub, ".")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	var drv database.Driver
	switch d.dialect {
	case Postgres:
		drv, err = migratepgx.WithInstance(d.DB, &migratepgx.Config{})
	case SQLite:
		drv, err = migratesqlite.WithInstance(d.DB, &migratesqlite.Config{})
	}
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, string(d.dialect), drv)
	if err != nil {
		return err
	}
	// m.Close() no se llama: el driver de sqlite cerraría el *sql.DB compartido.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

var pgParam = regexp.MustCompile(`\$(\d+)`)

// rebind adapta los placeholders al dialecto.
func (d *DB) rebind(q string) string {
	if d.dialect == SQLite {
		return pgParam.ReplaceAllString(q, "?$1")
	}
	return q
}

func (d *DB) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return d.ExecContext(ctx, d.rebind(q), args...)
}

func (d *DB) query(ctx context.Context, q string, args ...any) (*sql.Rows, error) {
	return d.QueryContext(ctx, d.rebind(q), args...)
}

func (d *DB) queryRow(ctx context.Context, q string, args ...any) *sql.Row {
	return d.QueryRowContext(ctx, d.rebind(q), args...)
}

// updateStatus es el update condicional compartido por todas las tablas:
// solo escribe si el estado actual sigue siendo from.
func (d *DB) updateStatus(ctx context.Context, table, id, from, to string, at time.Time) error {
	res, err := d.exec(ctx, `
		UPDATE `+table+`
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id, from, to, at.UTC())
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		return nil
	}

	var one int
	err = d.queryRow(ctx, `SELECT 1 FROM `+table+` WHERE id = $1`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return lifecycle.ErrStaleStatus
}

// inClause arma "col IN ($n, $n+1...)" a partir del índice next.
func inClause(col string, not bool, values []string, next int) (string, []any) {
	ph := make([]string, len(values))
	args := make([]any, len(values))
	for i, v := range values {
		ph[i] = fmt.Sprintf("$%d", next+i)
		args[i] = v
	}
	op := " IN "
	if not {
		op = " NOT IN "
	}
	return col + op + "(" + strings.Join(ph, ", ") + ")", args
}

func sqliteDSN(dsn string) string {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" || dsn == ":memory:" || strings.Contains(dsn, "?") {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") {
		dsn = "file:" + dsn
	}
	// _time_format=sqlite: timestamps ordenables como texto
	return dsn + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_time_format=sqlite"
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}

func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
