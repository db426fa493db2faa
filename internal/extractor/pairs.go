package extractor

import (
	"regexp"
	"strings"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

var (
	institutionSuffixes = []string{
		"銀行", "信用金庫", "信用組合", "信託", "農協", "労働金庫",
	}
	branchWords = []string{
		"支店", "出張所", "営業部", "本店", "センター",
	}

	// The left side is anchored on an institution suffix so long-vowel
	// marks inside a name (ソニー銀行) are never mistaken for the
	// separator; any dash variant separates the two names.
	pairLineRe = regexp.MustCompile(
		`([^\s　]*?(?:銀行|信用金庫|信用組合|信託|農協|労働金庫))\s*[-－―‐−ー]\s*([^\s　]+)`)
)

// ExtractPairs scans document text for every "institution - branch" mention
// and returns them in first-occurrence order with exact duplicates dropped.
// A candidate passes only when the left side ends in an institution suffix
// and the right side names a branch, which keeps dates, ranges and phone
// numbers out of the result.
func ExtractPairs(text string) []models.RawNamePair {
	var (
		pairs []models.RawNamePair
		seen  = map[models.RawNamePair]bool{}
	)
	for _, line := range strings.Split(text, "\n") {
		for _, m := range pairLineRe.FindAllStringSubmatch(line, -1) {
			left, right := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
			if !isInstitutionName(left) || !isBranchName(right) {
				continue
			}
			pair := models.RawNamePair{BankName: left, BranchName: right}
			if seen[pair] {
				continue
			}
			seen[pair] = true
			pairs = append(pairs, pair)
		}
	}
	return pairs
}

// isInstitutionName rejects a bare suffix: "銀行 - 本店" names no bank.
func isInstitutionName(s string) bool {
	for _, suffix := range institutionSuffixes {
		if strings.HasSuffix(s, suffix) && s != suffix {
			return true
		}
	}
	return false
}

func isBranchName(s string) bool {
	if s == "" {
		return false
	}
	for _, w := range branchWords {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
