package ledger

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"complaint-pipeline/internal/common/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "complaints_metadata.csv")
	s := NewStore(path, "", logger.NewTestLogger(t))
	s.now = func() time.Time {
		return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC)
	}
	return s
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)
	return records
}

func writeRawLedger(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestAppendCreatesLedgerWithHeader(t *testing.T) {
	s := newTestStore(t)

	err := s.Append(Record{
		ComplaintID:         "CC2025-01",
		SubmissionTimestamp: "2025-03-01T10:00:00Z",
		CustomerEmail:       "a@b.com",
	})
	require.NoError(t, err)

	records := readCSV(t, s.Path())
	require.Len(t, records, 2)
	assert.Equal(t, Columns, records[0])

	row := records[1]
	require.Len(t, row, len(Columns))
	assert.Equal(t, "CC2025-01", row[0])
	assert.Equal(t, "2025-03-01T10:00:00Z", row[1])
	assert.Equal(t, "2025-03-01T12:30:00Z", row[2])
	assert.Equal(t, "a@b.com", row[4])
}

func TestAppendRoundTrip(t *testing.T) {
	s := newTestStore(t)

	err := s.Append(Record{
		ComplaintID:         "CC2025-01",
		SubmissionTimestamp: "2025-03-01T10:00:00Z",
		Recipients:          []string{"lab@example.com", " customer@example.com ", ""},
		ProductName:         `Widget "Pro", 2nd gen`,
		AllFieldsKV:         "Country=IL | Product=Widget, large",
	})
	require.NoError(t, err)

	rows, err := s.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)

	row := rows[0]
	assert.Equal(t, "CC2025-01", row["complaint_id"])
	assert.Equal(t, "lab@example.com, customer@example.com", row["recipients"])
	assert.Equal(t, `Widget "Pro", 2nd gen`, row["product_name"])
	assert.Equal(t, "Country=IL | Product=Widget, large", row["all_fields_kv"])
	assert.Equal(t, "", row["dropbox_file_path"])
}

func TestRowsMissingFileIsEmptyLedger(t *testing.T) {
	s := newTestStore(t)

	rows, err := s.Rows()
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendMigratesOldSchema(t *testing.T) {
	s := newTestStore(t)
	writeRawLedger(t, s.Path(),
		"complaint_id,submission_timestamp,legacy_note\n"+
			"CC2024-03,2024-06-01T09:00:00Z,kept manually\n")

	err := s.Append(Record{
		ComplaintID:         "CC2025-01",
		SubmissionTimestamp: "2025-03-01T10:00:00Z",
	})
	require.NoError(t, err)

	records := readCSV(t, s.Path())
	require.Len(t, records, 3)
	assert.Equal(t, Columns, records[0])

	// The historical row keeps its known columns, gains the new ones
	// as empty strings, and drops legacy_note.
	old := records[1]
	require.Len(t, old, len(Columns))
	assert.Equal(t, "CC2024-03", old[0])
	assert.Equal(t, "2024-06-01T09:00:00Z", old[1])
	assert.Equal(t, "", old[2])

	assert.Equal(t, "CC2025-01", records[2][0])
}

func TestMigrationCarriesLegacyDropboxFolder(t *testing.T) {
	s := newTestStore(t)
	writeRawLedger(t, s.Path(),
		"complaint_id,dropbox_folder\n"+
			"CC2024-01,/Complaints/CC2024-01.pdf\n")

	require.NoError(t, s.Append(Record{ComplaintID: "CC2025-01"}))

	rows, err := s.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "/Complaints/CC2024-01.pdf", rows[0]["dropbox_file_path"])
}

func TestMigrationIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Append(Record{ComplaintID: "CC2025-01"}))

	before, err := os.ReadFile(s.Path())
	require.NoError(t, err)

	require.NoError(t, s.ensureSchema())
	require.NoError(t, s.ensureSchema())

	after, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestMigrationUnreadableFileKeepsNoPriorRows(t *testing.T) {
	s := newTestStore(t)
	writeRawLedger(t, s.Path(), "complaint_id,other\n\"broken row\n")

	require.NoError(t, s.Append(Record{ComplaintID: "CC2025-01"}))

	rows, err := s.Rows()
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CC2025-01", rows[0]["complaint_id"])
}

func TestMigrationOfEmptyFile(t *testing.T) {
	s := newTestStore(t)
	writeRawLedger(t, s.Path(), "")

	require.NoError(t, s.Append(Record{ComplaintID: "CC2025-01"}))

	records := readCSV(t, s.Path())
	require.Len(t, records, 2)
	assert.Equal(t, Columns, records[0])
}

func TestLockScope(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(
		filepath.Join(dir, "ledger.csv"),
		filepath.Join(dir, "locks", "ledger.lock"),
		logger.NewTestLogger(t),
	)

	require.NoError(t, s.Lock())
	s.Unlock()

	// Reacquirable after release.
	require.NoError(t, s.Lock())
	s.Unlock()
}

func TestLockWithoutLockPathIsNoOp(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Lock())
	s.Unlock()
}
