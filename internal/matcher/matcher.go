// Package matcher resolves free-text institution and branch names against a
// registry table. Institution matching is a "first plausible" policy: the
// table is walked in code-ascending order and the first entry satisfying any
// tier wins. Branch matching instead prefers an exact name over a partial
// one, because branch tables routinely contain both "本店" and
// "本店営業部" and only the exact entry is the right answer.
package matcher

import (
	"strings"
	"unicode/utf8"

	"github.com/seiban/invoice-transfer-pipeline/internal/normalizer"
	"github.com/seiban/invoice-transfer-pipeline/internal/registry"
)

// Tuning constants. The rune thresholds exclude short queries from partial
// matching — a one-character numeral would otherwise match almost every
// branch table. Empirically tuned; override via Config, don't guess.
const (
	DefaultMinPartialRunes  = 3
	DefaultMinMainNameRunes = 4
)

// DefaultAliasGroups maps English/Romanized brand fragments shared between a
// query and a registry name. Online banks in particular appear in invoices
// under trade names with no textual overlap to the registered kanji name.
var DefaultAliasGroups = []string{
	"paypay", "sbi", "au", "sony", "seven", "aeon", "rakuten",
}

// Config carries the overridable matcher tuning.
type Config struct {
	MinPartialRunes  int
	MinMainNameRunes int
	AliasGroups      []string
}

// DefaultConfig returns the tuning used in production.
func DefaultConfig() Config {
	return Config{
		MinPartialRunes:  DefaultMinPartialRunes,
		MinMainNameRunes: DefaultMinMainNameRunes,
		AliasGroups:      DefaultAliasGroups,
	}
}

// Matcher matches names against registry tables.
type Matcher struct {
	cfg Config
}

// New returns a Matcher with the given config; zero fields fall back to the
// defaults.
func New(cfg Config) *Matcher {
	if cfg.MinPartialRunes == 0 {
		cfg.MinPartialRunes = DefaultMinPartialRunes
	}
	if cfg.MinMainNameRunes == 0 {
		cfg.MinMainNameRunes = DefaultMinMainNameRunes
	}
	if cfg.AliasGroups == nil {
		cfg.AliasGroups = DefaultAliasGroups
	}
	return &Matcher{cfg: cfg}
}

// MatchInstitution returns the code of the first registry entry, in
// code-ascending order, that the query matches under any tier.
func (m *Matcher) MatchInstitution(query string, table map[string]string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}
	for _, code := range registry.SortedCodes(table) {
		if m.institutionMatches(table[code], query) {
			return code, true
		}
	}
	return "", false
}

// institutionMatches evaluates the six tiers for one registry entry. Tier
// order only matters for which entry wins when several would match; any
// single tier is sufficient.
func (m *Matcher) institutionMatches(entryName, query string) bool {
	// 1. exact
	if entryName == query {
		return true
	}

	// 2. case-insensitive containment, either direction
	if containsEither(strings.ToLower(entryName), strings.ToLower(query)) {
		return true
	}

	// 3. containment after suffix-stripping normalization of both sides
	if containsEither(normalizer.NormalizeInstitution(entryName), normalizer.NormalizeInstitution(query)) {
		return true
	}

	// 4. containment after width folding of both sides
	if containsEither(normalizer.FoldWidth(entryName), normalizer.FoldWidth(query)) {
		return true
	}

	// 5. containment between the main names (truncated at class suffix)
	if containsEither(normalizer.MainInstitutionName(entryName), normalizer.MainInstitutionName(query)) {
		return true
	}

	// 6. shared alias-group fragment
	entryLower := strings.ToLower(normalizer.FoldWidth(entryName))
	queryLower := strings.ToLower(normalizer.FoldWidth(query))
	for _, fragment := range m.cfg.AliasGroups {
		if strings.Contains(entryLower, fragment) && strings.Contains(queryLower, fragment) {
			return true
		}
	}

	return false
}

// MatchBranch scans the full branch table once. An exact candidate (raw or
// normalized equality) dominates; a partial candidate is only tracked while
// no exact candidate has been found and the query clears the length
// thresholds.
func (m *Matcher) MatchBranch(query string, table map[string]string) (string, bool) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", false
	}

	normQuery := normalizer.NormalizeBranch(query)
	mainQuery := normalizer.MainBranchName(query)
	queryRunes := utf8.RuneCountInString(query)

	exact := ""
	partial := ""

	for _, code := range registry.SortedCodes(table) {
		entryName := table[code]

		if entryName == query || (normQuery != "" && normalizer.NormalizeBranch(entryName) == normQuery) {
			exact = code
			break
		}

		if partial != "" {
			continue
		}
		if queryRunes >= m.cfg.MinPartialRunes && containsEither(entryName, query) {
			partial = code
			continue
		}
		if queryRunes >= m.cfg.MinMainNameRunes {
			if containsEither(normalizer.NormalizeBranch(entryName), normQuery) ||
				containsEither(normalizer.MainBranchName(entryName), mainQuery) {
				partial = code
			}
		}
	}

	if exact != "" {
		return exact, true
	}
	if partial != "" {
		return partial, true
	}
	return "", false
}

// containsEither reports bidirectional substring containment. Empty sides
// never match: normalization may legitimately strip a name to nothing, and
// an empty pattern would otherwise match every entry.
func containsEither(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}
