// Package normalizer canonicalizes Japanese financial-institution and branch
// names before matching. All functions are pure; callers keep the original
// string around because aggressive stripping can reduce a name to nothing.
package normalizer

import (
	"regexp"
	"strings"
)

// Suffix classes recognized on each side of a payee name. Institution
// suffixes cover both legal-entity prefixes (株式会社) and institution
// classes (銀行, 信用金庫, ...); branch suffixes cover office classes.
var (
	institutionSuffixes = []string{
		"銀行", "株式会社", "有限会社", "合資会社", "合名会社",
		"協同組合", "信用金庫", "信用組合",
	}
	branchSuffixes = []string{
		"支店", "出張所", "営業部", "サービスセンター",
	}

	institutionClassRe = regexp.MustCompile(`(銀行|信用金庫|信用組合|協同組合).*$`)
	branchClassRe      = regexp.MustCompile(`(支店|出張所|営業部).*$`)
)

// Kanji numerals appear in ordinal branch names (第一出張所, 〇一八支店).
var kanjiDigits = strings.NewReplacer(
	"〇", "0", "一", "1", "二", "2", "三", "3", "四", "4",
	"五", "5", "六", "6", "七", "7", "八", "8", "九", "9", "十", "10",
)

// NormalizeInstitution strips legal-entity and institution-class suffixes
// plus all whitespace. "株式会社三菱ＵＦＪ銀行" → "三菱ＵＦＪ".
func NormalizeInstitution(name string) string {
	for _, suf := range institutionSuffixes {
		name = strings.ReplaceAll(name, suf, "")
	}
	return stripSpace(name)
}

// NormalizeBranch strips branch-class suffixes, converts kanji numerals to
// ASCII digits, and removes whitespace. "第一出張所" → "第1".
func NormalizeBranch(name string) string {
	for _, suf := range branchSuffixes {
		name = strings.ReplaceAll(name, suf, "")
	}
	return stripSpace(kanjiDigits.Replace(name))
}

// MainInstitutionName truncates at the first institution-class suffix:
// "三菱UFJ銀行大阪..." → "三菱UFJ".
func MainInstitutionName(name string) string {
	return strings.TrimSpace(institutionClassRe.ReplaceAllString(name, ""))
}

// MainBranchName truncates at the first branch-class suffix:
// "大津支店" → "大津". Names without a class suffix pass through.
func MainBranchName(name string) string {
	return strings.TrimSpace(branchClassRe.ReplaceAllString(name, ""))
}

// FoldWidth converts full-width Latin letters, digits and dashes to their
// half-width equivalents and removes all whitespace (including U+3000).
// Applied to both registry data and query names so matching is insensitive
// to the script width the document happened to use.
func FoldWidth(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'Ａ' && r <= 'Ｚ', r >= 'ａ' && r <= 'ｚ', r >= '０' && r <= '９':
			r -= 0xFEE0
		case r == 'ー' || r == '－':
			r = '-'
		}
		b.WriteRune(r)
	}
	return stripSpace(b.String())
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '　' {
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
