package ledger

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"complaint-pipeline/internal/common/logger"
	"complaint-pipeline/internal/common/metrics"
)

// Store owns the append-only complaint ledger file: its schema, its
// forward migration, and the optional cross-process lock scope.
//
// Appends are serialized open-append-close writes, so a reader never
// observes a partial row. The migration rewrite becomes visible only
// through an atomic rename. What the store does NOT provide is a
// transaction spanning allocate-then-append: two concurrent processes
// can both compute the same next sequence before either appends. Use
// the lock scope (Lock/Unlock) when concurrent runs are possible.
type Store struct {
	path   string
	fileLk *flock.Flock
	logger logger.Logger
	now    func() time.Time
}

func NewStore(path, lockPath string, log logger.Logger) *Store {
	s := &Store{
		path:   path,
		logger: log.WithFields(map[string]interface{}{"ledger": path}),
		now:    time.Now,
	}
	if lockPath != "" {
		s.fileLk = flock.New(lockPath)
	}
	return s
}

// Path returns the ledger file location.
func (s *Store) Path() string {
	return s.path
}

// Lock acquires the ledger's mutual-exclusion scope. Callers hold it
// across the whole allocate-then-append sequence. A store without a
// configured lock path returns immediately; the caller then runs with
// the documented read-compute-append race.
func (s *Store) Lock() error {
	if s.fileLk == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.fileLk.Path()), 0o755); err != nil {
		return &IOError{Op: "lock", Path: s.fileLk.Path(), Err: err}
	}
	if err := s.fileLk.Lock(); err != nil {
		return &IOError{Op: "lock", Path: s.fileLk.Path(), Err: err}
	}
	return nil
}

func (s *Store) Unlock() {
	if s.fileLk == nil {
		return
	}
	if err := s.fileLk.Unlock(); err != nil {
		s.logger.Warn("ledger unlock failed", map[string]interface{}{"error": err.Error()})
	}
}

// Append writes one record under the current column order, migrating
// the file first if its header predates the current schema. This is
// the audit trail's landing point: any failure here must surface to
// the caller rather than pass silently.
func (s *Store) Append(rec Record) error {
	if err := s.ensureSchema(); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return &IOError{Op: "append", Path: s.path, Err: err}
	}
	defer f.Close()

	row := rec.toRow(s.now().UTC().Format(time.RFC3339))

	w := csv.NewWriter(f)
	if err := w.Write(rowValues(row)); err != nil {
		return &IOError{Op: "append", Path: s.path, Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &IOError{Op: "append", Path: s.path, Err: err}
	}
	return nil
}

// Rows reads every data row keyed by the file's own header. Missing
// columns come back as empty strings; a missing file is an empty
// ledger, not an error.
func (s *Store) Rows() ([]map[string]string, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}
	defer f.Close()

	header, records, err := readPermissive(f)
	if err != nil {
		return nil, &IOError{Op: "read", Path: s.path, Err: err}
	}

	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ensureSchema creates the ledger with the current header on first
// write, or migrates an existing file whose header differs.
func (s *Store) ensureSchema() error {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.create()
		}
		return &IOError{Op: "open", Path: s.path, Err: err}
	}

	header, err := csv.NewReader(f).Read()
	f.Close()
	if err != nil {
		// Unreadable or absent header: migrate with zero prior rows.
		header = nil
	}

	if headerEqual(header, Columns) {
		return nil
	}
	return s.migrate()
}

func (s *Store) create() error {
	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &IOError{Op: "create", Path: s.path, Err: err}
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		if os.IsExist(err) {
			// Lost the creation race to a concurrent writer.
			return s.ensureSchema()
		}
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return &IOError{Op: "create", Path: s.path, Err: err}
	}
	return nil
}

// migrate rewrites the whole file under the current header: read all
// rows permissively, write them to a temporary path, then atomically
// replace the original. Unknown columns are dropped, new columns come
// in empty, and retired column names are carried via legacyAliases.
// A concurrent appender's row written between read and rename is lost;
// that is the documented cost of not holding the lock scope.
func (s *Store) migrate() error {
	rows, err := s.Rows()
	if err != nil {
		// Spec policy: a malformed file migrates to zero prior rows
		// rather than blocking the pipeline.
		s.logger.Warn("ledger unreadable during migration, keeping no prior rows", map[string]interface{}{
			"error": err.Error(),
		})
		rows = nil
	}

	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return &IOError{Op: "migrate", Path: tmp, Err: err}
	}

	w := csv.NewWriter(f)
	writeErr := w.Write(Columns)
	for _, row := range rows {
		if writeErr != nil {
			break
		}
		writeErr = w.Write(mapRowToColumns(row))
	}
	w.Flush()
	if writeErr == nil {
		writeErr = w.Error()
	}
	if closeErr := f.Close(); writeErr == nil {
		writeErr = closeErr
	}
	if writeErr != nil {
		os.Remove(tmp)
		return &IOError{Op: "migrate", Path: tmp, Err: writeErr}
	}

	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return &IOError{Op: "migrate", Path: s.path, Err: err}
	}

	metrics.LedgerMigrations.Inc()
	s.logger.Info("ledger migrated to current schema", map[string]interface{}{
		"columns": len(Columns),
		"rows":    len(rows),
	})
	return nil
}

func mapRowToColumns(row map[string]string) []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		val := row[col]
		if val == "" {
			for _, alias := range legacyAliases[col] {
				if row[alias] != "" {
					val = row[alias]
					break
				}
			}
		}
		out[i] = val
	}
	return out
}

func rowValues(row map[string]string) []string {
	out := make([]string, len(Columns))
	for i, col := range Columns {
		out[i] = row[col]
	}
	return out
}

func readPermissive(r io.Reader) (header []string, records [][]string, err error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err = reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	records, err = reader.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	return header, records, nil
}

func headerEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
