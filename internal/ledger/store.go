// Package ledger is the append-only batch-transfer ledger: one CSV file per
// processing period, plus the consistency checks that decide whether an
// invoice may join it.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

const utf8BOM = "\xEF\xBB\xBF"

// Store reads and appends the per-period transfer file. The file is plain
// CSV, UTF-8 with BOM, no header row: every line is one admitted transfer.
// Single writer assumed; concurrent runs against the same directory race.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Path returns the transfer file for the period, named by its month.
func (s *Store) Path(period time.Time) string {
	return filepath.Join(s.dir, fmt.Sprintf("%d月振込用.csv", int(period.Month())))
}

// Snapshot returns every entry currently in the period's file. A missing
// file is an empty ledger, not an error.
func (s *Store) Snapshot(period time.Time) ([]models.LedgerEntry, error) {
	rows, err := s.readRows(period)
	if err != nil {
		return nil, err
	}
	entries := make([]models.LedgerEntry, 0, len(rows))
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}
		typeCode, _ := strconv.Atoi(row[2])
		amount, _ := decimal.NewFromString(row[5])
		entries = append(entries, models.LedgerEntry{
			BankCode:        row[0],
			BranchCode:      row[1],
			AccountTypeCode: typeCode,
			AccountNumber:   row[3],
			RecipientName:   row[4],
			Amount:          amount,
		})
	}
	return entries, nil
}

// Append adds one entry to the period's file, creating it (with BOM) on
// first write. A legacy header row left by an earlier version of the file
// format is stripped the first time the file is touched.
func (s *Store) Append(period time.Time, entry models.LedgerEntry) error {
	path := s.Path(period)

	rows, err := s.readRows(period)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrLedgerWrite, err)
	}
	rows = append(rows, []string{
		entry.BankCode,
		entry.BranchCode,
		strconv.Itoa(entry.AccountTypeCode),
		entry.AccountNumber,
		entry.RecipientName,
		entry.Amount.String(),
		"",
		"",
	})

	// Rewriting the whole file keeps the header strip and the append one
	// atomic rename away from the old content.
	var b strings.Builder
	b.WriteString(utf8BOM)
	w := csv.NewWriter(&b)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("%w: %v", models.ErrLedgerWrite, err)
	}
	w.Flush()

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("%w: %v", models.ErrLedgerWrite, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("%w: %v", models.ErrLedgerWrite, err)
	}
	return nil
}

// readRows loads the raw CSV rows of the period's file, minus BOM and minus
// the legacy header row if one is present.
func (s *Store) readRows(period time.Time) ([][]string, error) {
	data, err := os.ReadFile(s.Path(period))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	content := strings.TrimPrefix(string(data), utf8BOM)
	r := csv.NewReader(strings.NewReader(content))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 && isHeaderRow(rows[0]) {
		rows = rows[1:]
	}
	return rows, nil
}

func isHeaderRow(row []string) bool {
	for _, cell := range row {
		if strings.Contains(cell, "金融機関コード") {
			return true
		}
	}
	return false
}
