// Package resolver turns a raw institution/branch name pair into the unique
// registry code pair, or fails. The result is all-or-nothing: an
// institution match without a branch match is a failure, never a partial
// answer.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/seiban/invoice-transfer-pipeline/internal/matcher"
	"github.com/seiban/invoice-transfer-pipeline/internal/models"
	"github.com/seiban/invoice-transfer-pipeline/internal/normalizer"
	"github.com/seiban/invoice-transfer-pipeline/internal/registry"
)

// Registry is the read-only lookup surface the resolver needs. Satisfied by
// *registry.Client; tests substitute fixtures.
type Registry interface {
	Institutions(ctx context.Context) (map[string]string, error)
	Branches(ctx context.Context, institutionCode string) (map[string]string, error)
}

// DefaultOverrides maps institution name fragments straight to codes. This
// is the stopgap for documents using marketing names with no textual overlap
// to the registered name; it duplicates what the generic matcher should find
// and will drift from the registry, so it is injectable data, not logic.
// Longer fragments are tried before shorter ones so 住信SBI wins over SBI.
func DefaultOverrides() []Override {
	return []Override{
		{"三菱UFJ", "0005"},
		{"三井住友", "0009"},
		{"みずほ", "0001"},
		{"ゆうちょ", "9900"},
		{"京都信用金庫", "1150"},
		{"滋賀県信用組合", "2800"},
		{"京滋信用組合", "2801"},
		{"滋賀", "0158"},
		{"楽天", "0036"},
		{"ソニー", "0035"},
		{"新生", "0320"},
		{"イオン", "0040"},
		{"セブン", "0034"},
		{"PayPay", "0036"},
		{"住信SBI", "0038"},
		{"SBI", "0038"},
		{"auじぶん", "0039"},
	}
}

// Override binds one name fragment to an institution code.
type Override struct {
	Fragment string
	Code     string
}

// Resolver orchestrates institution then branch matching.
type Resolver struct {
	reg       Registry
	matcher   *matcher.Matcher
	overrides []Override
}

// New builds a Resolver. Pass nil overrides to use DefaultOverrides.
func New(reg Registry, m *matcher.Matcher, overrides []Override) *Resolver {
	if m == nil {
		m = matcher.New(matcher.DefaultConfig())
	}
	if overrides == nil {
		overrides = DefaultOverrides()
	}
	return &Resolver{reg: reg, matcher: m, overrides: overrides}
}

// Resolve maps the pair to registry codes. Errors wrap
// models.ErrRegistryUnavailable (transient) or models.ErrResolutionFailed
// (data quality, needs human review); the caller must not retry the latter.
func (r *Resolver) Resolve(ctx context.Context, pair models.RawNamePair) (models.ResolvedCodePair, error) {
	none := models.ResolvedCodePair{}

	institutions, err := r.reg.Institutions(ctx)
	if err != nil {
		return none, err
	}

	// Primary path: generic matcher over the full registry.
	if bankCode, ok := r.matcher.MatchInstitution(pair.BankName, institutions); ok {
		branches, err := r.reg.Branches(ctx, bankCode)
		if err != nil {
			return none, err
		}
		if branchCode, ok := r.matcher.MatchBranch(pair.BranchName, branches); ok {
			return models.ResolvedCodePair{BankCode: bankCode, BranchCode: branchCode}, nil
		}
	}

	// Fallback path: hand-maintained fragment table, then plain substring
	// branch lookup (no normalization tiers).
	if codes, ok := r.resolveByOverride(ctx, pair); ok {
		return codes, nil
	}

	return none, fmt.Errorf("%w: %q / %q", models.ErrResolutionFailed, pair.BankName, pair.BranchName)
}

func (r *Resolver) resolveByOverride(ctx context.Context, pair models.RawNamePair) (models.ResolvedCodePair, bool) {
	bankCode := r.overrideCode(pair.BankName)
	if bankCode == "" {
		return models.ResolvedCodePair{}, false
	}

	branches, err := r.reg.Branches(ctx, bankCode)
	if err != nil {
		return models.ResolvedCodePair{}, false
	}

	query := strings.TrimSpace(pair.BranchName)
	if query == "" {
		return models.ResolvedCodePair{}, false
	}
	for _, code := range registry.SortedCodes(branches) {
		name := branches[code]
		if strings.Contains(name, query) || strings.Contains(query, name) {
			return models.ResolvedCodePair{BankCode: bankCode, BranchCode: code}, true
		}
	}
	return models.ResolvedCodePair{}, false
}

// overrideCode finds the first override whose fragment the bank name
// contains, checking the raw, suffix-stripped, lowercased and width-folded
// renditions of the name.
func (r *Resolver) overrideCode(bankName string) string {
	candidates := []string{
		bankName,
		normalizer.NormalizeInstitution(bankName),
		strings.ToLower(bankName),
		normalizer.FoldWidth(bankName),
	}
	for _, ov := range r.overrides {
		for _, candidate := range candidates {
			if candidate == "" {
				continue
			}
			if strings.Contains(candidate, ov.Fragment) ||
				strings.Contains(strings.ToLower(candidate), strings.ToLower(ov.Fragment)) {
				return ov.Code
			}
		}
	}
	return ""
}
