package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProfileDB archives candidate profile versions in Postgres. Optional: when
// DATABASE_URL is unset the engine runs on the local profile.json alone.
// Every upload appends a version; the latest row mirrors the local copy.
type ProfileDB struct {
	pool *pgxpool.Pool
}

// Package-level singleton, set from main.go.
var profileDB *ProfileDB

// SetProfileDB sets the package-level profile DB instance.
func SetProfileDB(db *ProfileDB) { profileDB = db }

// GetProfileDB returns the package-level profile DB instance (may be nil).
func GetProfileDB() *ProfileDB { return profileDB }

// ConnectProfileDB creates a pgx pool and ensures the schema.
func ConnectProfileDB(ctx context.Context, databaseURL string) (*ProfileDB, error) {
	if databaseURL == "" {
		return nil, errors.New("DATABASE_URL is required")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	config.MaxConns = 5
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	db := &ProfileDB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("profile db schema: %w", err)
	}

	slog.Info("profile postgres connected", slog.String("addr", config.ConnConfig.Host))
	return db, nil
}

// Close releases the connection pool.
func (db *ProfileDB) Close() { db.pool.Close() }

func (db *ProfileDB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS profile_versions (
		id          BIGSERIAL PRIMARY KEY,
		profile     JSONB NOT NULL,
		uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	return err
}

// SaveVersion appends a profile version and returns its id.
func (db *ProfileDB) SaveVersion(ctx context.Context, p *CandidateProfile) (int64, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return 0, fmt.Errorf("profile db: encode: %w", err)
	}
	var id int64
	err = db.pool.QueryRow(ctx,
		`INSERT INTO profile_versions (profile, uploaded_at) VALUES ($1, $2) RETURNING id`,
		data, time.Now().UTC()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("profile db: save version: %w", err)
	}
	return id, nil
}

// LatestVersion returns the most recently uploaded profile, or nil when the
// archive is empty.
func (db *ProfileDB) LatestVersion(ctx context.Context) (*CandidateProfile, error) {
	var data []byte
	err := db.pool.QueryRow(ctx,
		`SELECT profile FROM profile_versions ORDER BY uploaded_at DESC, id DESC LIMIT 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("profile db: latest version: %w", err)
	}
	var p CandidateProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile db: decode: %w", err)
	}
	return &p, nil
}

// VersionCount reports how many profile versions are archived.
func (db *ProfileDB) VersionCount(ctx context.Context) (int64, error) {
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT count(*) FROM profile_versions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("profile db: count versions: %w", err)
	}
	return n, nil
}
