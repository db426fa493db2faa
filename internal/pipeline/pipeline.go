// Package pipeline wires extraction, code resolution and ledger admission
// into document-at-a-time processing. One document's failure never aborts
// the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/seiban/invoice-transfer-pipeline/internal/extractor"
	"github.com/seiban/invoice-transfer-pipeline/internal/ledger"
	"github.com/seiban/invoice-transfer-pipeline/internal/models"
	"github.com/seiban/invoice-transfer-pipeline/internal/notify"
)

// Resolver maps a raw name pair to registry codes. Satisfied by
// *resolver.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, pair models.RawNamePair) (models.ResolvedCodePair, error)
}

// Admitter runs the ledger admission state machine. Satisfied by
// *ledger.Checker.
type Admitter interface {
	Admit(inv *models.InvoiceRecord) (ledger.Result, error)
}

// Outcome is the terminal record of one processed document.
type Outcome struct {
	Source   string
	Invoice  *models.InvoiceRecord
	Decision models.Decision
	Reason   string
	Err      error
}

// Pipeline processes invoice documents end to end.
type Pipeline struct {
	fields   extractor.FieldExtractor
	resolver Resolver
	admitter Admitter
	notifier notify.Notifier
	log      *slog.Logger
}

// New builds a pipeline. nil fields defaults to the pattern extractor, nil
// notifier to the discarding one, nil log to slog.Default.
func New(fields extractor.FieldExtractor, res Resolver, adm Admitter, n notify.Notifier, log *slog.Logger) *Pipeline {
	if fields == nil {
		fields = extractor.PatternExtractor{}
	}
	if n == nil {
		n = notify.Nop{}
	}
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{fields: fields, resolver: res, admitter: adm, notifier: n, log: log}
}

// ProcessBatch runs every document and returns one outcome each, in input
// order. Failures are recorded in their outcome and processing continues.
func (p *Pipeline) ProcessBatch(ctx context.Context, paths []string) []Outcome {
	outcomes := make([]Outcome, 0, len(paths))
	for _, path := range paths {
		outcomes = append(outcomes, p.ProcessFile(ctx, path))
	}
	return outcomes
}

// ProcessFile reads one document and processes its text.
func (p *Pipeline) ProcessFile(ctx context.Context, path string) Outcome {
	text, err := extractor.ReadDocument(path)
	if err != nil {
		if errors.Is(err, extractor.ErrBinaryDocument) {
			p.send(ctx, notify.Event{
				Kind:    notify.EventUnreadableInput,
				Source:  path,
				Message: "テキストを抽出できません（画像スキャンの可能性）",
			})
		}
		p.log.Error("document unreadable", "path", path, "err", err)
		return Outcome{Source: path, Decision: models.RejectedOther, Reason: "unreadable document", Err: err}
	}
	return p.ProcessText(ctx, path, text)
}

// ProcessText extracts fields, resolves codes and runs ledger admission for
// one document's text.
func (p *Pipeline) ProcessText(ctx context.Context, source, text string) Outcome {
	fields, err := p.fields.ExtractFields(text)
	if err != nil {
		p.log.Error("field extraction failed", "source", source, "err", err)
		return Outcome{Source: source, Decision: models.RejectedOther, Reason: "extraction failed", Err: err}
	}

	if missing := fields.MissingFields(); len(missing) > 0 {
		reason := "不足項目: " + strings.Join(missing, "、")
		p.send(ctx, notify.Event{
			Kind:    notify.EventMissingFields,
			Source:  source,
			Message: reason,
		})
		p.log.Warn("required fields missing", "source", source, "missing", missing)
		return Outcome{Source: source, Decision: models.RejectedOther, Reason: reason}
	}

	inv := models.NewInvoiceRecord(source)
	fields.Apply(inv)

	codes, err := p.resolver.Resolve(ctx, inv.Payee)
	if err != nil {
		return p.rejectResolution(ctx, source, inv, err)
	}
	inv.Codes = codes

	result, err := p.admitter.Admit(inv)
	if err != nil {
		p.log.Error("ledger admission failed", "source", source, "err", err)
		return Outcome{Source: source, Invoice: inv, Decision: result.Decision, Reason: result.Reason, Err: err}
	}

	switch result.Decision {
	case models.RejectedUrgent:
		p.send(ctx, notify.Event{
			Kind:    notify.EventUrgentDeadline,
			Source:  source,
			Message: result.Reason,
			Details: map[string]string{"company": inv.CompanyName, "deadline": inv.Deadline},
		})
	case models.RejectedDuplicate:
		p.send(ctx, notify.Event{
			Kind:    notify.EventDuplicatePayee,
			Source:  source,
			Message: result.Reason,
			Details: map[string]string{"company": inv.CompanyName},
		})
	case models.Admitted:
		p.send(ctx, notify.Event{
			Kind:    notify.EventTransferQueued,
			Source:  source,
			Message: fmt.Sprintf("%s ¥%s を振込予定に追加", inv.CompanyName, inv.Amount.String()),
		})
	}

	p.log.Info("document processed", "source", source, "decision", result.Decision)
	return Outcome{Source: source, Invoice: inv, Decision: result.Decision, Reason: result.Reason}
}

func (p *Pipeline) rejectResolution(ctx context.Context, source string, inv *models.InvoiceRecord, err error) Outcome {
	kind := notify.EventCodesNotFound
	reason := fmt.Sprintf("金融機関コードが見つかりません: %s / %s", inv.Payee.BankName, inv.Payee.BranchName)
	if errors.Is(err, models.ErrRegistryUnavailable) {
		kind = notify.EventRegistryOutage
		reason = "金融機関データを取得できません"
	}
	p.send(ctx, notify.Event{Kind: kind, Source: source, Message: reason})
	p.log.Error("code resolution failed", "source", source, "err", err)
	return Outcome{Source: source, Invoice: inv, Decision: models.RejectedOther, Reason: reason, Err: err}
}

// ResolvePair resolves one explicit name pair, bypassing text extraction.
func (p *Pipeline) ResolvePair(ctx context.Context, pair models.RawNamePair) (models.ResolvedCodePair, error) {
	return p.resolver.Resolve(ctx, pair)
}

// Mention is one institution/branch pair found in a document, with its
// resolution result.
type Mention struct {
	Pair  models.RawNamePair
	Codes models.ResolvedCodePair
	Err   error
}

// ResolveMentions extracts every institution/branch pair the text mentions
// and resolves each. Individual failures stay attached to their mention.
func (p *Pipeline) ResolveMentions(ctx context.Context, text string) []Mention {
	pairs := extractor.ExtractPairs(text)
	mentions := make([]Mention, 0, len(pairs))
	for _, pair := range pairs {
		codes, err := p.resolver.Resolve(ctx, pair)
		mentions = append(mentions, Mention{Pair: pair, Codes: codes, Err: err})
	}
	return mentions
}

func (p *Pipeline) send(ctx context.Context, ev notify.Event) {
	if err := p.notifier.Notify(ctx, ev); err != nil {
		p.log.Warn("notification delivery failed", "kind", ev.Kind, "err", err)
	}
}
