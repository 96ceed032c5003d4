package csvstore

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/calories-tracker/calories_tracker/internal/logging"
)

const utf8BOM = "\ufeff"

// ErrMultilineValue rejects values that would span lines on disk; rows are
// read one physical line at a time.
var ErrMultilineValue = errors.New("csv value contains a line break")

// Row is one data line keyed by canonical column name.
type Row map[string]string

// Get returns the trimmed value of column.
func (r Row) Get(column string) string {
	return strings.TrimSpace(r[column])
}

// ScanResult is what a full read of the table recovered.
type ScanResult struct {
	Rows    []Row
	Skipped int
}

// Table is a headed CSV file that is read in full on every call and only ever
// appended to. Mutations hold a process mutex and an exclusive flock on a
// sidecar lock file so concurrent writers in other processes are serialized too.
type Table struct {
	path    string
	columns []string
	log     *slog.Logger
	mu      sync.Mutex
}

// New prepares a table at path with the canonical column order used for new
// files. The parent directory is created if needed; the file itself is created
// lazily on first append.
func New(path string, columns []string, logger *slog.Logger) (*Table, error) {
	if path == "" {
		return nil, errors.New("csv table path is required")
	}
	if len(columns) == 0 {
		return nil, errors.New("csv table needs at least one column")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir all: %w", err)
	}
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		path:    path,
		columns: cols,
		log:     logging.Component(logger, "csvstore").With(slog.String("path", path)),
	}, nil
}

// Path returns the backing file location.
func (t *Table) Path() string {
	return t.path
}

// Columns returns the canonical column order.
func (t *Table) Columns() []string {
	cols := make([]string, len(t.columns))
	copy(cols, t.columns)
	return cols
}

// Scan reads every well-formed row. A missing file is an empty table. Rows that
// cannot be parsed are skipped and logged.
func (t *Table) Scan(ctx context.Context) (ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ScanResult{}, err
	}

	release, err := t.lock(syscall.LOCK_SH)
	if err != nil {
		return ScanResult{}, err
	}
	defer release()

	snap, err := t.read(ctx)
	if err != nil {
		return ScanResult{}, err
	}
	return snap.result, nil
}

// AppendUnless appends row unless exists reports true for a row already stored.
// The check and the write run under the same exclusive lock. It reports whether
// the row was written.
func (t *Table) AppendUnless(ctx context.Context, row Row, exists func(Row) bool) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	for col, v := range row {
		if strings.ContainsAny(v, "\r\n") {
			return false, fmt.Errorf("column %s: %w", col, ErrMultilineValue)
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	release, err := t.lock(syscall.LOCK_EX)
	if err != nil {
		return false, err
	}
	defer release()

	snap, err := t.read(ctx)
	if err != nil {
		return false, err
	}

	if exists != nil {
		for _, existing := range snap.result.Rows {
			if exists(existing) {
				return false, nil
			}
		}
	}

	if err := t.append(snap, row); err != nil {
		t.log.ErrorContext(ctx, "append failed", "error", err)
		return false, err
	}
	return true, nil
}

type snapshot struct {
	result ScanResult
	// header is the column order of the file on disk; nil for a new or headerless file.
	header []string
	size   int
	// needsNewline is set when a hand-edited file lacks a trailing newline.
	needsNewline bool
}

func (t *Table) read(ctx context.Context) (snapshot, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, os.ErrNotExist) {
		return snapshot{}, nil
	}
	if err != nil {
		return snapshot{}, fmt.Errorf("read %s: %w", t.path, err)
	}

	snap := snapshot{size: len(data)}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		snap.needsNewline = true
	}

	// Every physical line is parsed on its own: a stray quote must not let one
	// bad line swallow the rows after it.
	var layout []string
	for n, raw := range bytes.Split(data, []byte("\n")) {
		line := n + 1
		raw = bytes.TrimSuffix(raw, []byte("\r"))
		if len(bytes.TrimSpace(raw)) == 0 {
			continue
		}

		record, err := parseLine(raw)
		if err != nil {
			snap.result.Skipped++
			t.log.WarnContext(ctx, "skipping unparseable row", "line", line, "error", err)
			continue
		}

		if layout == nil {
			if header, ok := t.matchHeader(record); ok {
				layout = header
				snap.header = header
				continue
			}
			// No usable header: assume canonical order and treat this line as data.
			layout = t.columns
			t.log.WarnContext(ctx, "header missing or unrecognised, assuming canonical columns", "line", line)
		}

		if len(record) != len(layout) {
			snap.result.Skipped++
			t.log.WarnContext(ctx, "skipping row with wrong field count", "line", line, "want", len(layout), "got", len(record))
			continue
		}

		row := make(Row, len(t.columns))
		for i, col := range layout {
			if col == "" {
				continue
			}
			row[col] = record[i]
		}
		snap.result.Rows = append(snap.result.Rows, row)
	}

	return snap, nil
}

// parseLine decodes one physical line as exactly one CSV record.
func parseLine(line []byte) ([]string, error) {
	reader := csv.NewReader(bytes.NewReader(line))
	reader.FieldsPerRecord = -1
	record, err := reader.Read()
	if err != nil {
		return nil, err
	}
	if _, err := reader.Read(); !errors.Is(err, io.EOF) {
		return nil, errors.New("line holds more than one record")
	}
	return record, nil
}

// matchHeader maps a header record onto canonical column names. Unknown columns
// map to "" and are ignored; every canonical column must be present.
func (t *Table) matchHeader(record []string) ([]string, bool) {
	header := make([]string, len(record))
	found := 0
	for i, cell := range record {
		name := strings.TrimSpace(strings.TrimPrefix(cell, utf8BOM))
		for _, col := range t.columns {
			if strings.EqualFold(name, col) {
				header[i] = col
				found++
				break
			}
		}
	}
	return header, found == len(t.columns)
}

func (t *Table) append(snap snapshot, row Row) error {
	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", t.path, err)
	}
	defer f.Close()

	if snap.needsNewline {
		if _, err := f.WriteString("\n"); err != nil {
			return fmt.Errorf("write: %w", err)
		}
	}

	w := csv.NewWriter(f)
	layout := snap.header
	if snap.size == 0 {
		if err := w.Write(t.columns); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	if layout == nil {
		layout = t.columns
	}

	record := make([]string, len(layout))
	for i, col := range layout {
		if col != "" {
			record[i] = row[col]
		}
	}
	if err := w.Write(record); err != nil {
		return fmt.Errorf("write row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	return nil
}

func (t *Table) lock(mode int) (func(), error) {
	lockfile := t.path + ".lock"
	file, err := os.OpenFile(lockfile, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := syscall.Flock(int(file.Fd()), mode); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("flock: %w", err)
	}
	return func() {
		_ = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
		_ = file.Close()
	}, nil
}
