package records

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/calories-tracker/calories_tracker/internal/csvstore"
	"github.com/calories-tracker/calories_tracker/internal/logging"
)

// Session record file columns.
const (
	ColumnEmail         = "Email"
	ColumnName          = "Name"
	ColumnAge           = "Age"
	ColumnGender        = "Gender"
	ColumnActivityLevel = "Activity Level"
	ColumnHeight        = "Height"
	ColumnWeight        = "Weight"
	ColumnDuration      = "Duration"
	ColumnHeartRate     = "Heart Rate"
	ColumnBodyTemp      = "Body Temp"
	ColumnCaloriesBurnt = "Calories Burnt"
)

// Columns is the session record file header.
var Columns = []string{
	ColumnEmail, ColumnName, ColumnAge, ColumnGender, ColumnActivityLevel, ColumnHeight,
	ColumnWeight, ColumnDuration, ColumnHeartRate, ColumnBodyTemp, ColumnCaloriesBurnt,
}

// CSVRepository stores records in a flat file, one row per identifier.
type CSVRepository struct {
	table *csvstore.Table
	log   *slog.Logger
}

// NewCSVRepository opens (lazily creating) the record file at path.
func NewCSVRepository(path string, logger *slog.Logger) (*CSVRepository, error) {
	table, err := csvstore.New(path, Columns, logger)
	if err != nil {
		return nil, err
	}
	return &CSVRepository{table: table, log: logging.Component(logger, "store.records")}, nil
}

// Save appends rec unless a well-formed row for its identifier exists.
func (r *CSVRepository) Save(ctx context.Context, rec Record) (bool, error) {
	return r.table.AppendUnless(ctx, encodeRecord(rec), func(existing csvstore.Row) bool {
		stored, err := decodeRecord(existing)
		return err == nil && stored.Identifier == rec.Identifier
	})
}

// Load re-reads the file and returns the well-formed rows for identifier.
func (r *CSVRepository) Load(ctx context.Context, identifier string) ([]Record, error) {
	res, err := r.table.Scan(ctx)
	if err != nil {
		return nil, err
	}
	var out []Record
	for _, row := range res.Rows {
		rec, err := decodeRecord(row)
		if err != nil {
			r.log.WarnContext(ctx, "skipping malformed record row", slog.Any("error", err))
			continue
		}
		if rec.Identifier == identifier {
			out = append(out, rec)
		}
	}
	return out, nil
}

func encodeRecord(rec Record) csvstore.Row {
	return csvstore.Row{
		ColumnEmail:         rec.Identifier,
		ColumnName:          rec.Name,
		ColumnAge:           formatFloat(rec.Age),
		ColumnGender:        rec.Gender,
		ColumnActivityLevel: rec.ActivityLevel,
		ColumnHeight:        formatFloat(rec.Height),
		ColumnWeight:        formatFloat(rec.Weight),
		ColumnDuration:      formatFloat(rec.Duration),
		ColumnHeartRate:     formatFloat(rec.HeartRate),
		ColumnBodyTemp:      formatFloat(rec.BodyTemp),
		ColumnCaloriesBurnt: formatFloat(rec.CaloriesBurnt),
	}
}

func decodeRecord(row csvstore.Row) (Record, error) {
	rec := Record{
		Identifier:    row.Get(ColumnEmail),
		Name:          row.Get(ColumnName),
		Gender:        row.Get(ColumnGender),
		ActivityLevel: row.Get(ColumnActivityLevel),
	}
	if rec.Identifier == "" {
		return Record{}, fmt.Errorf("empty %s", ColumnEmail)
	}
	numeric := []struct {
		column string
		dst    *float64
	}{
		{ColumnAge, &rec.Age},
		{ColumnHeight, &rec.Height},
		{ColumnWeight, &rec.Weight},
		{ColumnDuration, &rec.Duration},
		{ColumnHeartRate, &rec.HeartRate},
		{ColumnBodyTemp, &rec.BodyTemp},
		{ColumnCaloriesBurnt, &rec.CaloriesBurnt},
	}
	for _, f := range numeric {
		v, err := strconv.ParseFloat(row.Get(f.column), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return Record{}, fmt.Errorf("column %s: invalid number %q", f.column, row.Get(f.column))
		}
		*f.dst = v
	}
	return rec, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
