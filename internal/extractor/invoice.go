package extractor

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

// FieldExtractor produces the payment fields of a document's primary payee.
// The built-in implementation is PatternExtractor; a generative extraction
// service can be plugged in behind the same interface.
type FieldExtractor interface {
	ExtractFields(text string) (*Fields, error)
}

// Fields holds the raw extracted values before validation and resolution.
type Fields struct {
	CompanyName   string
	BankName      string
	BranchName    string
	AccountType   string
	AccountNumber string
	RecipientName string
	Amount        string
	Deadline      string
}

// Apply copies the fields onto an invoice record, converting the account
// type, folding the recipient name to half-width katakana, and parsing the
// amount (¥ and thousands separators stripped).
func (f *Fields) Apply(inv *models.InvoiceRecord) {
	inv.CompanyName = f.CompanyName
	inv.Payee = models.RawNamePair{BankName: f.BankName, BranchName: f.BranchName}
	inv.AccountType = models.AccountTypeFromText(f.AccountType)
	inv.AccountNumber = f.AccountNumber
	inv.RecipientName = ToHalfWidthKana(f.RecipientName)
	inv.Deadline = f.Deadline

	raw := strings.NewReplacer("¥", "", "￥", "", ",", "", "，", "", "円", "").Replace(f.Amount)
	if amount, err := decimal.NewFromString(strings.TrimSpace(raw)); err == nil {
		inv.Amount = amount
	}
}

// Field labels as they appear on invoices, with both full- and half-width
// colons accepted.
var (
	companyRes = []*regexp.Regexp{
		regexp.MustCompile(`発行会社[：:]\s*(.+)`),
		regexp.MustCompile(`請求元[：:]\s*(.+)`),
		regexp.MustCompile(`(株式会社[^\s　]+)`),
		regexp.MustCompile(`(有限会社[^\s　]+)`),
	}
	payeeLineRe = regexp.MustCompile(`(\S+銀行|\S+信用金庫|\S+信用組合)\s*[-ー－]\s*(\S+支店|\S+出張所|\S+営業部|本店\S*|本店)`)
	accountTypeRes = []*regexp.Regexp{
		regexp.MustCompile(`預金種目[：:]\s*(普通|当座|貯蓄|その他)`),
		regexp.MustCompile(`口座種別[：:]\s*(普通|当座|貯蓄|その他)`),
		regexp.MustCompile(`(普通|当座|貯蓄)口座`),
	}
	accountNumberRes = []*regexp.Regexp{
		regexp.MustCompile(`口座番号[：:]\s*(\d+)`),
		regexp.MustCompile(`口座[：:]\s*(\d+)`),
		regexp.MustCompile(`(\d{7,})`),
	}
	recipientRes = []*regexp.Regexp{
		regexp.MustCompile(`受取人名[：:]\s*(.+)`),
		regexp.MustCompile(`口座名義[：:]\s*(.+)`),
		regexp.MustCompile(`名義人[：:]\s*(.+)`),
		regexp.MustCompile(`([ｦ-ﾟ][ｦ-ﾟ)\(\s]+)`), // bare half-width katakana run
	}
	amountRes = []*regexp.Regexp{
		regexp.MustCompile(`振込金額[：:]\s*[¥￥]?([0-9,，]+)`),
		regexp.MustCompile(`請求金額[：:]\s*[¥￥]?([0-9,，]+)`),
		regexp.MustCompile(`合計[：:]\s*[¥￥]?([0-9,，]+)`),
		regexp.MustCompile(`金額[：:]\s*[¥￥]?([0-9,，]+)`),
	}
	deadlineRes = []*regexp.Regexp{
		regexp.MustCompile(`振込期限[：:]\s*(.+)`),
		regexp.MustCompile(`支払期限[：:]\s*(.+)`),
		regexp.MustCompile(`お支払い?期限[：:]\s*(.+)`),
		regexp.MustCompile(`期限[：:]\s*(.+)`),
	}
)

// PatternExtractor extracts fields with label/shape patterns. It is the
// deterministic fallback behind the generative extraction boundary and the
// default extractor in tests and offline runs.
type PatternExtractor struct{}

func (PatternExtractor) ExtractFields(text string) (*Fields, error) {
	f := &Fields{
		CompanyName:   firstMatch(companyRes, text),
		AccountType:   firstMatch(accountTypeRes, text),
		AccountNumber: firstMatch(accountNumberRes, text),
		RecipientName: firstMatch(recipientRes, text),
		Amount:        firstMatch(amountRes, text),
		Deadline:      firstMatch(deadlineRes, text),
	}
	if m := payeeLineRe.FindStringSubmatch(text); m != nil {
		f.BankName = strings.TrimSpace(m[1])
		f.BranchName = strings.TrimSpace(m[2])
	}
	return f, nil
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

// Japanese labels for the human-facing missing-field report.
var requiredFieldLabels = []struct {
	value func(*Fields) string
	label string
}{
	{func(f *Fields) string { return f.CompanyName }, "発行会社名"},
	{func(f *Fields) string { return f.BankName }, "振込先銀行"},
	{func(f *Fields) string { return f.BranchName }, "振込先支店"},
	{func(f *Fields) string { return f.AccountType }, "預金種目"},
	{func(f *Fields) string { return f.AccountNumber }, "口座番号"},
	{func(f *Fields) string { return f.RecipientName }, "受取人名"},
	{func(f *Fields) string { return f.Amount }, "振込金額"},
	{func(f *Fields) string { return f.Deadline }, "振込期限"},
}

// MissingFields lists, by Japanese label, every required field the
// extraction could not fill. "不明" counts as missing: it is what the
// generative extractor emits for fields it could not find.
func (f *Fields) MissingFields() []string {
	var missing []string
	for _, rf := range requiredFieldLabels {
		v := strings.TrimSpace(rf.value(f))
		if v == "" || v == "不明" {
			missing = append(missing, rf.label)
		}
	}
	return missing
}
