//go:build integration

package containers

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// schema holds every table the stores expect. Applied once per container.
const schema = `
CREATE TABLE IF NOT EXISTS teams (
    pool_id      TEXT        NOT NULL,
    name         TEXT        NOT NULL,
    channel_name TEXT        NOT NULL,
    number       INTEGER     NOT NULL DEFAULT 0,
    created_at   TIMESTAMPTZ NOT NULL,
    updated_at   TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (pool_id, name),
    UNIQUE (pool_id, channel_name)
);

CREATE TABLE IF NOT EXISTS team_members (
    pool_id      TEXT  NOT NULL,
    team_name    TEXT  NOT NULL,
    user_id      TEXT  NOT NULL,
    username     TEXT  NOT NULL DEFAULT '',
    display_name TEXT  NOT NULL DEFAULT '',
    role_title   TEXT  NOT NULL DEFAULT '',
    profile      JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (pool_id, team_name, user_id),
    FOREIGN KEY (pool_id, team_name) REFERENCES teams (pool_id, name) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pool_roster (
    pool_id      TEXT  NOT NULL,
    user_id      TEXT  NOT NULL,
    username     TEXT  NOT NULL DEFAULT '',
    display_name TEXT  NOT NULL DEFAULT '',
    role_title   TEXT  NOT NULL DEFAULT '',
    profile      JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (pool_id, user_id)
);
`

// PostgresContainer wraps a testcontainers PostgreSQL instance with the
// schema already applied.
type PostgresContainer struct {
	Container testcontainers.Container
	URL       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new PostgreSQL container and applies the
// schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("cohort_test"),
		tcpostgres.WithUsername("cohort"),
		tcpostgres.WithPassword("cohort"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("pgx", url)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		URL:       url,
		DB:        db,
	}

	t.Cleanup(func() {
		_ = db.Close()
		_ = container.Terminate(context.Background())
	})

	return pc
}

// TruncateTables empties the named tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	if len(tables) == 0 {
		return nil
	}
	stmt := fmt.Sprintf("TRUNCATE TABLE %s CASCADE", strings.Join(tables, ", "))
	if _, err := p.DB.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}
