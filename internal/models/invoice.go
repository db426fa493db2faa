package models

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawNamePair is an institution/branch name pair as it appeared in a
// document. Untrusted: may carry full-width characters, corporate-suffix
// noise, or be empty.
type RawNamePair struct {
	BankName   string `json:"bankName"`
	BranchName string `json:"branchName"`
}

// ResolvedCodePair holds the registry codes for one RawNamePair.
// Either both fields are set or the resolution failed; a partial pair is
// never constructed.
type ResolvedCodePair struct {
	BankCode   string `json:"bankCode"`   // 4 digits, zero-padded
	BranchCode string `json:"branchCode"` // 3 digits, zero-padded
}

// AccountType is the deposit account classification found on an invoice.
type AccountType string

const (
	AccountOrdinary AccountType = "普通"
	AccountCurrent  AccountType = "当座"
	AccountSavings  AccountType = "貯蓄"
	AccountOther    AccountType = "その他"
)

// Code returns the numeric account-type code used in transfer files.
func (a AccountType) Code() int {
	switch a {
	case AccountOrdinary:
		return 1
	case AccountCurrent:
		return 2
	case AccountSavings:
		return 4
	default:
		return 9
	}
}

// AccountTypeFromText maps free-text account descriptions to an AccountType.
// Single-character abbreviations (普/当/貯) appear on compact invoice layouts.
func AccountTypeFromText(s string) AccountType {
	switch {
	case strings.Contains(s, "普"):
		return AccountOrdinary
	case strings.Contains(s, "当"):
		return AccountCurrent
	case strings.Contains(s, "貯"):
		return AccountSavings
	default:
		return AccountOther
	}
}

// InvoiceRecord aggregates everything extracted from one invoice document.
// It is created per processed document, filled in by extraction and then by
// code resolution, and either admitted to the ledger or rejected. Rejected
// records are never persisted.
type InvoiceRecord struct {
	ID            uuid.UUID        `json:"id"`
	SourceName    string           `json:"sourceName"` // document file name
	CompanyName   string           `json:"companyName"`
	Payee         RawNamePair      `json:"payee"`
	AccountType   AccountType      `json:"accountType"`
	AccountNumber string           `json:"accountNumber"`
	RecipientName string           `json:"recipientName"` // half-width katakana
	Amount        decimal.Decimal  `json:"amount"`
	Deadline      string           `json:"deadline"` // free text, parsed lazily
	Codes         ResolvedCodePair `json:"codes"`
}

// NewInvoiceRecord returns an empty record with a fresh ID for the given
// source document.
func NewInvoiceRecord(sourceName string) *InvoiceRecord {
	return &InvoiceRecord{ID: uuid.New(), SourceName: sourceName}
}

// Decision is the terminal state the consistency checker assigns to an
// invoice.
type Decision string

const (
	Admitted          Decision = "ADMITTED"
	RejectedUrgent    Decision = "REJECTED_URGENT"
	RejectedDuplicate Decision = "REJECTED_DUPLICATE"
	RejectedOther     Decision = "REJECTED_OTHER"
)

// LedgerEntry is one row of the batch-transfer file.
type LedgerEntry struct {
	BankCode        string
	BranchCode      string
	AccountTypeCode int
	AccountNumber   string
	RecipientName   string
	Amount          decimal.Decimal
}

// EntryFromInvoice builds the ledger row for an admitted invoice.
func EntryFromInvoice(inv *InvoiceRecord) LedgerEntry {
	return LedgerEntry{
		BankCode:        inv.Codes.BankCode,
		BranchCode:      inv.Codes.BranchCode,
		AccountTypeCode: inv.AccountType.Code(),
		AccountNumber:   inv.AccountNumber,
		RecipientName:   inv.RecipientName,
		Amount:          inv.Amount,
	}
}
