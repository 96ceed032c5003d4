package records

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists session records. Save keeps the first record per
// identifier and reports false for later ones.
type Repository interface {
	Save(ctx context.Context, rec Record) (bool, error)
	Load(ctx context.Context, identifier string) ([]Record, error)
}

// PostgresRepository stores records in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Save inserts the record unless one exists for the identifier.
func (r *PostgresRepository) Save(ctx context.Context, rec Record) (bool, error) {
	cmd, err := r.db.Exec(ctx, `INSERT INTO session_records
        (email, name, age, gender, activity_level, height, weight, duration, heart_rate, body_temp, calories_burnt)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
        ON CONFLICT (email) DO NOTHING`,
		rec.Identifier, rec.Name, rec.Age, rec.Gender, rec.ActivityLevel,
		rec.Height, rec.Weight, rec.Duration, rec.HeartRate, rec.BodyTemp, rec.CaloriesBurnt)
	if err != nil {
		return false, fmt.Errorf("insert record: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// Load fetches the records of one identifier.
func (r *PostgresRepository) Load(ctx context.Context, identifier string) ([]Record, error) {
	rows, err := r.db.Query(ctx, `SELECT email, name, age, gender, activity_level, height, weight,
        duration, heart_rate, body_temp, calories_burnt FROM session_records WHERE email = $1`, identifier)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Identifier, &rec.Name, &rec.Age, &rec.Gender, &rec.ActivityLevel,
			&rec.Height, &rec.Weight, &rec.Duration, &rec.HeartRate, &rec.BodyTemp, &rec.CaloriesBurnt); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
