package models

import "errors"

// Error taxonomy for the processing pipeline. Per-document failures wrap one
// of these sentinels so the caller can route the document to human review
// with the right reason code.
var (
	// ErrRegistryUnavailable means the reference registry could not be
	// reached or returned malformed data. Transient, source-side; skip the
	// document and continue the run.
	ErrRegistryUnavailable = errors.New("reference registry unavailable")

	// ErrResolutionFailed means no institution/branch code pair could be
	// matched for the payee names. A data-quality failure that needs human
	// input, not a retryable error.
	ErrResolutionFailed = errors.New("institution or branch code not found")

	// ErrUnparsableDeadline means the deadline text matched none of the
	// supported date shapes. The invoice degrades to non-urgent.
	ErrUnparsableDeadline = errors.New("payment deadline not parsable")

	// ErrLedgerWrite means appending to the transfer file failed.
	ErrLedgerWrite = errors.New("ledger append failed")
)
