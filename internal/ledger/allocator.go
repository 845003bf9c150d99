package ledger

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"complaint-pipeline/internal/common/logger"
)

var idPattern = regexp.MustCompile(`^CC(\d{4})-(\d{2})$`)

// fallbackLayouts are tried in order after RFC 3339 parsing fails.
var fallbackLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02.01.2006",
	"02/01/2006",
}

// Allocator derives the next complaint identifier from the persisted
// record set itself. There is no separate counter: the ledger is the
// single source of truth, at the cost of an O(n) scan per allocation
// and a race window between concurrent processes (see Store).
type Allocator struct {
	store  *Store
	logger logger.Logger
}

func NewAllocator(store *Store, log logger.Logger) *Allocator {
	return &Allocator{store: store, logger: log}
}

// Allocate returns the next identifier, format CCYYYY-NN, for the year
// derived from the submission timestamp. Year derivation never fails;
// only sequence exhaustion does.
func (a *Allocator) Allocate(submissionTimestamp string) (string, error) {
	year := a.yearFromTimestamp(submissionTimestamp)

	next := a.maxSeqForYear(year) + 1
	if next > 99 {
		return "", &SequenceExhaustedError{Year: year}
	}
	return fmt.Sprintf("CC%04d-%02d", year, next), nil
}

func (a *Allocator) yearFromTimestamp(ts string) int {
	ts = strings.TrimSpace(ts)
	if ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			return t.Year()
		}
		for _, layout := range fallbackLayouts {
			if t, err := time.Parse(layout, ts); err == nil {
				return t.Year()
			}
		}
		a.logger.Warn("unparseable submission timestamp, using current year", map[string]interface{}{
			"timestamp": ts,
		})
	}
	return time.Now().UTC().Year()
}

// maxSeqForYear scans every row's complaint_id for the given year.
// Rows that do not match the identifier pattern are skipped. An
// unreadable ledger restarts the counter at zero: pipeline liveness
// wins over strict uniqueness here, and the trade-off is deliberate.
func (a *Allocator) maxSeqForYear(year int) int {
	rows, err := a.store.Rows()
	if err != nil {
		a.logger.Warn("ledger scan failed, restarting sequence", map[string]interface{}{
			"year":  year,
			"error": err.Error(),
		})
		return 0
	}

	maxSeq := 0
	for _, row := range rows {
		m := idPattern.FindStringSubmatch(strings.TrimSpace(row["complaint_id"]))
		if m == nil {
			continue
		}
		idYear, _ := strconv.Atoi(m[1])
		if idYear != year {
			continue
		}
		seq, _ := strconv.Atoi(m[2])
		if seq > maxSeq {
			maxSeq = seq
		}
	}
	return maxSeq
}
