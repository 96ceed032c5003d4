package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no credential exists for an identifier.
var ErrNotFound = errors.New("credential not found")

// Repository persists credentials. Create reports false when the identifier
// is already taken; implementations must make that check atomic with the write.
type Repository interface {
	Create(ctx context.Context, cred Credential) (bool, error)
	FindByIdentifier(ctx context.Context, identifier string) (Credential, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a credential unless the identifier exists.
func (r *PostgresRepository) Create(ctx context.Context, cred Credential) (bool, error) {
	cmd, err := r.db.Exec(ctx, `INSERT INTO credentials (email, password, created_at)
        VALUES ($1, $2, $3) ON CONFLICT (email) DO NOTHING`, cred.Identifier, cred.Digest, cred.CreatedAt.UTC())
	if err != nil {
		return false, fmt.Errorf("insert credential: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// FindByIdentifier fetches a credential by identifier.
func (r *PostgresRepository) FindByIdentifier(ctx context.Context, identifier string) (Credential, error) {
	row := r.db.QueryRow(ctx, `SELECT email, password, created_at FROM credentials WHERE email = $1`, identifier)
	var (
		cred      Credential
		createdAt time.Time
	)
	if err := row.Scan(&cred.Identifier, &cred.Digest, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Credential{}, ErrNotFound
		}
		return Credential{}, err
	}
	cred.CreatedAt = createdAt.UTC()
	return cred, nil
}
