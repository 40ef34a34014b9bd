package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener/internal/shortener"
)

// PostgresSchema creates the table used by PostgresStore.
const PostgresSchema = `
	CREATE TABLE IF NOT EXISTS short_urls (
		hash       TEXT PRIMARY KEY,
		source     TEXT NOT NULL,
		ttl        BIGINT,
		created_at TIMESTAMPTZ NOT NULL
	)
`

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
// Like the file log it has no native expiry and checks TTLs at read time.
type PostgresStore struct {
	guard

	pool *pgxpool.Pool
	now  shortener.Clock
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{
		pool: pool,
		now:  time.Now,
	}
}

// Migrate creates the short_urls table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, PostgresSchema)

	return err
}

func (p *PostgresStore) Save(ctx context.Context, shortURL *shortener.ShortURL) (shortener.Hash, error) {
	const op = "postgres.save"

	release, err := p.acquire(op)
	if err != nil {
		return "", err
	}
	defer release()

	query := `
		INSERT INTO short_urls (hash, source, ttl, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (hash) DO NOTHING
	`

	createdAt := p.now().UTC()
	if shortURL.CreatedAt != nil {
		createdAt = *shortURL.CreatedAt
	}

	_, err = p.pool.Exec(ctx, query,
		string(shortURL.Hash),
		shortURL.Source,
		shortURL.TTL,
		createdAt,
	)
	if err != nil {
		return "", shortener.E(op, shortener.KindErrorOnSave, err)
	}

	return shortURL.Hash, nil
}

func (p *PostgresStore) Find(ctx context.Context, hash shortener.Hash) (*shortener.ShortURL, bool, error) {
	const op = "postgres.find"

	release, err := p.acquire(op)
	if err != nil {
		return nil, false, err
	}
	defer release()

	query := `
		SELECT hash, source, ttl, created_at
		FROM short_urls
		WHERE hash = $1
	`

	var (
		record    shortener.ShortURL
		createdAt time.Time
	)

	err = p.pool.QueryRow(ctx, query, string(hash)).Scan(
		&record.Hash,
		&record.Source,
		&record.TTL,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, shortener.E(op, shortener.KindUndefined, err)
	}

	createdAt = createdAt.UTC()
	record.CreatedAt = &createdAt

	if record.IsExpired(p.now()) {
		return nil, false, nil
	}

	return &record, true, nil
}

// Ping checks PostgreSQL connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Shutdown closes the connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
