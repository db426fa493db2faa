package extractor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestReadDocumentText(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invoice.txt")
	content := "\ufeff請求書\n振込先: 三菱UFJ銀行 - 本店\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := ReadDocument(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "請求書\n振込先: 三菱UFJ銀行 - 本店\n" {
		t.Errorf("BOM not stripped: %q", got)
	}
}

func TestReadDocumentBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scan.bin")
	if err := os.WriteFile(path, []byte{0x00, 0x01, 0xFF, 0xFE, 0x89, 0x50, 0x4E, 0x47}, 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := ReadDocument(path)
	if !errors.Is(err, ErrBinaryDocument) {
		t.Errorf("err = %v, want ErrBinaryDocument", err)
	}
}

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"invoice", "請求書 ご請求金額は下記口座へお振込ください。振込先銀行、支店、口座番号。", true},
		{"too short", "請求", false},
		{"no invoice word", "こんにちは。本日は晴天なり。よろしくお願いいたします。", false},
		{"mojibake", "\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD\xEF\xBF\xBD", false},
	}
	for _, tt := range tests {
		if got := isReadableText(tt.text); got != tt.want {
			t.Errorf("%s: isReadableText = %v, want %v", tt.name, got, tt.want)
		}
	}
}
