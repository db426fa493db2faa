package ledger

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

// Empirically tuned windows carried over from production use; override via
// Checker fields, do not change the defaults without reviewing rejection
// rates.
const (
	// UrgentWindowDays is the horizon inside which a deadline counts as
	// urgent.
	UrgentWindowDays = 7
	// EndOfMonthWindow marks the final days of a month: a day-of-month at
	// least lastDay-EndOfMonthWindow is "end of month". Month-end batch
	// runs intentionally hold invoices until these days, so deadlines
	// here are not urgent.
	EndOfMonthWindow = 3
)

// Urgency is the outcome of deadline classification. Parsed is false when
// the deadline text matched none of the known shapes; such invoices fail
// open as non-urgent.
type Urgency struct {
	IsUrgent bool
	DaysLeft int
	Parsed   bool
}

var (
	yearFirstRe = regexp.MustCompile(`(\d{4})[/\-年](\d{1,2})[/\-月](\d{1,2})`)
	yearLastRe  = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})[/\-](\d{4})`)
	kanjiRe     = regexp.MustCompile(`(\d{1,2})月(\d{1,2})日`)
	monthDayRe  = regexp.MustCompile(`(\d{1,2})[/\-](\d{1,2})`)
)

// parseDeadline tries the four accepted date shapes in order of
// specificity. Shapes without a year default to today's year.
func parseDeadline(text string, today time.Time) (time.Time, bool) {
	text = strings.TrimSpace(text)

	if m := yearFirstRe.FindStringSubmatch(text); m != nil {
		return makeDate(m[1], m[2], m[3], today.Location())
	}
	if m := yearLastRe.FindStringSubmatch(text); m != nil {
		return makeDate(m[3], m[1], m[2], today.Location())
	}
	if m := kanjiRe.FindStringSubmatch(text); m != nil {
		return makeDate(strconv.Itoa(today.Year()), m[1], m[2], today.Location())
	}
	if m := monthDayRe.FindStringSubmatch(text); m != nil {
		return makeDate(strconv.Itoa(today.Year()), m[1], m[2], today.Location())
	}
	return time.Time{}, false
}

func makeDate(y, m, d string, loc *time.Location) (time.Time, bool) {
	year, _ := strconv.Atoi(y)
	month, _ := strconv.Atoi(m)
	day, _ := strconv.Atoi(d)
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc), true
}

// CheckDeadline classifies a free-text deadline against today. Urgent means
// due within UrgentWindowDays and not covered by the end-of-month carve-out:
// when both today and the deadline sit in the final days of their respective
// months, the invoice belongs to the month-end batch and is not urgent.
func CheckDeadline(deadlineText string, today time.Time) Urgency {
	deadline, ok := parseDeadline(deadlineText, today)
	if !ok {
		return Urgency{}
	}

	today = truncateDay(today)
	daysLeft := int(deadline.Sub(today).Hours() / 24)

	urgent := daysLeft >= 0 && daysLeft <= UrgentWindowDays &&
		!(isEndOfMonth(today) && isEndOfMonth(deadline))
	return Urgency{IsUrgent: urgent, DaysLeft: daysLeft, Parsed: true}
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func isEndOfMonth(t time.Time) bool {
	lastDay := time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, t.Location()).Day()
	return t.Day() >= lastDay-EndOfMonthWindow
}

// CheckDuplicate reports whether any ledger entry's recipient name contains
// the company name. Substring, not equality: ledger recipient cells carry
// extra notation (corporate-form prefixes, branch numbers) around the name.
func CheckDuplicate(companyName string, snapshot []models.LedgerEntry) bool {
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return false
	}
	for _, e := range snapshot {
		if strings.Contains(e.RecipientName, companyName) {
			return true
		}
	}
	return false
}

// Result is the terminal state of one admission attempt.
type Result struct {
	Decision models.Decision
	Urgency  Urgency
	Reason   string
}

// Checker runs the admission state machine: urgency first, then
// duplication, then append. Urgent invoices are held for human approval
// before duplication is even looked at.
type Checker struct {
	store *Store
	now   func() time.Time
	log   *slog.Logger
}

// NewChecker builds a Checker over the store. nil now defaults to
// time.Now; nil logger defaults to slog.Default.
func NewChecker(store *Store, now func() time.Time, log *slog.Logger) *Checker {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = slog.Default()
	}
	return &Checker{store: store, now: now, log: log}
}

// Admit decides the invoice's terminal state and, when admitted, appends it
// to the current period's file. Only ErrLedgerWrite failures return a
// non-nil error; rejections are decisions, not errors.
func (c *Checker) Admit(inv *models.InvoiceRecord) (Result, error) {
	today := c.now()

	urgency := CheckDeadline(inv.Deadline, today)
	if !urgency.Parsed && strings.TrimSpace(inv.Deadline) != "" {
		c.log.Warn("deadline not parsable, treating as non-urgent",
			"invoice", inv.ID, "deadline", inv.Deadline,
			"err", models.ErrUnparsableDeadline)
	}
	if urgency.IsUrgent {
		return Result{
			Decision: models.RejectedUrgent,
			Urgency:  urgency,
			Reason:   fmt.Sprintf("支払期限まで%d日", urgency.DaysLeft),
		}, nil
	}

	snapshot, err := c.store.Snapshot(today)
	if err != nil {
		return Result{Decision: models.RejectedOther, Urgency: urgency, Reason: "台帳読み込み失敗"},
			fmt.Errorf("%w: %v", models.ErrLedgerWrite, err)
	}

	needle := inv.CompanyName
	if strings.TrimSpace(needle) == "" {
		needle = inv.RecipientName
	}
	if CheckDuplicate(needle, snapshot) {
		return Result{
			Decision: models.RejectedDuplicate,
			Urgency:  urgency,
			Reason:   fmt.Sprintf("今月分は振込済み: %s", needle),
		}, nil
	}

	if err := c.store.Append(today, models.EntryFromInvoice(inv)); err != nil {
		return Result{Decision: models.RejectedOther, Urgency: urgency, Reason: "台帳書き込み失敗"}, err
	}
	return Result{Decision: models.Admitted, Urgency: urgency}, nil
}
