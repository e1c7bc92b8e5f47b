package provenance

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/proxy"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a Sink over a relational database. The backend is picked
// from the DSN: postgres:// goes through pgx, sqlserver:// through
// go-mssqldb (honouring a SQL_SOCKS proxy), anything else is treated as
// a sqlite file path.
type Store struct {
	db *sqlx.DB
}

var _ Sink = &Store{}

func Open(ctx context.Context, dsn string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	db, err := openByDSN(dsn)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.WithField("driver", db.DriverName()).Debug("provenance store ready")
	return store, nil
}

func openByDSN(dsn string) (*sqlx.DB, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://"):
		return sqlx.Open("pgx", dsn)
	case strings.HasPrefix(dsn, "sqlserver://"):
		connector, err := mssql.NewConnector(dsn)
		if err != nil {
			return nil, err
		}
		if socksProxyAddress := os.Getenv("SQL_SOCKS"); socksProxyAddress != "" {
			dialer, err := proxy.SOCKS5("tcp", socksProxyAddress, nil, nil)
			if err != nil {
				return nil, fmt.Errorf("could not connect with SOCKS5 to %s because of: %w", socksProxyAddress, err)
			}
			connector.Dialer = dialer.(proxy.ContextDialer)
		}
		return sqlx.NewDb(sql.OpenDB(connector), "sqlserver"), nil
	default:
		return sqlx.Open("sqlite3", dsn)
	}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema(ctx context.Context) error {
	for _, statement := range schemaFor(s.db.DriverName()) {
		if _, err := s.db.ExecContext(ctx, statement); err != nil {
			return err
		}
	}
	return nil
}

func schemaFor(driverName string) []string {
	switch driverName {
	case "pgx":
		return []string{
			`create table if not exists batch_ops (
				batch_id text primary key,
				description text,
				config_json text,
				expected_units text,
				timestamp timestamptz
			)`,
			`create table if not exists artifacts (
				id bigserial primary key,
				batch_id text references batch_ops(batch_id),
				file_path text,
				input_hash char(64),
				output_hash char(64),
				status text
			)`,
		}
	case "sqlserver":
		return []string{
			`if object_id('batch_ops', 'U') is null
			create table batch_ops (
				batch_id nvarchar(128) primary key,
				description nvarchar(max),
				config_json nvarchar(max),
				expected_units nvarchar(max),
				timestamp datetime2
			)`,
			`if object_id('artifacts', 'U') is null
			create table artifacts (
				id int identity primary key,
				batch_id nvarchar(128) references batch_ops(batch_id),
				file_path nvarchar(max),
				input_hash char(64),
				output_hash char(64),
				status nvarchar(64)
			)`,
		}
	default:
		return []string{
			`create table if not exists batch_ops (
				batch_id text primary key,
				description text,
				config_json text,
				expected_units text,
				timestamp datetime
			)`,
			`create table if not exists artifacts (
				id integer primary key,
				batch_id text,
				file_path text,
				input_hash char(64),
				output_hash char(64),
				status text,
				foreign key(batch_id) references batch_ops(batch_id)
			)`,
		}
	}
}

func (s *Store) LogBatch(ctx context.Context, batch BatchOp) error {
	if batch.Timestamp.IsZero() {
		batch.Timestamp = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx,
		`insert into batch_ops (batch_id, description, config_json, expected_units, timestamp)
		 values (:batch_id, :description, :config_json, :expected_units, :timestamp)`,
		batch)
	return err
}

func (s *Store) LogArtifacts(ctx context.Context, artifacts []Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for _, artifact := range artifacts {
		if _, err := tx.NamedExecContext(ctx,
			`insert into artifacts (batch_id, file_path, input_hash, output_hash, status)
			 values (:batch_id, :file_path, :input_hash, :output_hash, :status)`,
			artifact); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}
