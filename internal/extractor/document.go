// Package extractor turns invoice documents into structured fields: the
// raw text of the document, the payment fields of the primary payee, and
// every institution/branch pair the document mentions.
package extractor

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// ErrBinaryDocument means the document holds no extractable text and needs
// the external vision-capable path instead of this pipeline.
var ErrBinaryDocument = errors.New("document is not text-extractable")

// ReadDocument returns the plain text of an invoice document. Text files
// are read as-is; PDFs go through library extraction with a readability
// gate so image-based scans are reported rather than parsed as garbage.
func ReadDocument(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return readPDF(path)
	case ".txt", ".md", ".csv", ".text":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	default:
		// Unknown extensions: try as UTF-8 text, reject if unreadable.
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		text := string(data)
		if !isReadableText(text) {
			return "", fmt.Errorf("%w: %s", ErrBinaryDocument, filepath.Base(path))
		}
		return text, nil
	}
}

func readPDF(path string) (text string, err error) {
	// The pdf library panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: pdf reader crashed: %v", ErrBinaryDocument, r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBinaryDocument, err)
	}
	defer f.Close()

	var pages []string

	// Row extraction preserves line structure, which the pair scanner
	// depends on.
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var parts []string
			for _, word := range row.Content {
				parts = append(parts, word.S)
			}
			if line := strings.TrimSpace(strings.Join(parts, " ")); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	text = strings.Join(pages, "\n")
	if isReadableText(text) {
		return text, nil
	}

	// Different extraction path inside the library; some encodings only
	// decode this way.
	if plain, perr := r.GetPlainText(); perr == nil {
		var buf bytes.Buffer
		if _, cerr := buf.ReadFrom(plain); cerr == nil && isReadableText(buf.String()) {
			return buf.String(), nil
		}
	}

	return "", fmt.Errorf("%w: no readable text in %s (image-based scan?)", ErrBinaryDocument, filepath.Base(path))
}

// isReadableText checks that extraction produced actual invoice text rather
// than binary garbage: enough characters, a high share of readable runes
// (CJK, kana, ASCII), and at least one word every Japanese invoice carries.
func isReadableText(text string) bool {
	if len(text) <= 20 {
		return false
	}
	total, readable := 0, 0
	for _, r := range text {
		total++
		if readableRune(r) {
			readable++
		}
	}
	if total == 0 || float64(readable)/float64(total) <= 0.6 {
		return false
	}
	return containsInvoiceWord(text)
}

func readableRune(r rune) bool {
	if r < 128 {
		return r == '\n' || r == '\t' || (r >= ' ' && r < 127)
	}
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana) ||
		(r >= 0xFF61 && r <= 0xFF9F) || // half-width katakana
		(r >= 0xFF01 && r <= 0xFF5E) || // full-width ASCII
		r == '　' || r == '円' || r == '¥' || unicode.IsSpace(r)
}

// invoiceWords that appear in virtually every Japanese invoice. Text with
// none of them is likely mis-decoded.
var invoiceWords = []string{
	"請求", "振込", "銀行", "支店", "口座", "金額", "期限",
	"株式会社", "合計", "御中", "支払",
}

func containsInvoiceWord(text string) bool {
	for _, w := range invoiceWords {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
