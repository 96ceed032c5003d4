package identity

import (
	"context"
	"log/slog"

	"github.com/calories-tracker/calories_tracker/internal/csvstore"
	"github.com/calories-tracker/calories_tracker/internal/logging"
)

// Credential file columns.
const (
	ColumnEmail    = "Email"
	ColumnPassword = "Password"
)

// Columns is the credential file header.
var Columns = []string{ColumnEmail, ColumnPassword}

// CSVRepository stores credentials in a flat Email,Password file.
type CSVRepository struct {
	table *csvstore.Table
	log   *slog.Logger
}

// NewCSVRepository opens (lazily creating) the credential file at path.
func NewCSVRepository(path string, logger *slog.Logger) (*CSVRepository, error) {
	table, err := csvstore.New(path, Columns, logger)
	if err != nil {
		return nil, err
	}
	return &CSVRepository{table: table, log: logging.Component(logger, "store.credentials")}, nil
}

// Create appends the credential unless a row for the identifier exists.
func (r *CSVRepository) Create(ctx context.Context, cred Credential) (bool, error) {
	row := csvstore.Row{ColumnEmail: cred.Identifier, ColumnPassword: cred.Digest}
	return r.table.AppendUnless(ctx, row, func(existing csvstore.Row) bool {
		c, ok := decodeCredential(existing)
		return ok && c.Identifier == cred.Identifier
	})
}

// FindByIdentifier re-reads the file and returns the first matching row.
func (r *CSVRepository) FindByIdentifier(ctx context.Context, identifier string) (Credential, error) {
	res, err := r.table.Scan(ctx)
	if err != nil {
		return Credential{}, err
	}
	for _, row := range res.Rows {
		cred, ok := decodeCredential(row)
		if !ok {
			r.log.WarnContext(ctx, "skipping credential row with empty field")
			continue
		}
		if cred.Identifier == identifier {
			return cred, nil
		}
	}
	return Credential{}, ErrNotFound
}

func decodeCredential(row csvstore.Row) (Credential, bool) {
	cred := Credential{Identifier: row.Get(ColumnEmail), Digest: row.Get(ColumnPassword)}
	if cred.Identifier == "" || cred.Digest == "" {
		return Credential{}, false
	}
	return cred, true
}
