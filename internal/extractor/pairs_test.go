package extractor

import (
	"reflect"
	"testing"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

func TestExtractPairs(t *testing.T) {
	text := `お振込先一覧
三菱UFJ銀行 - 本店
京都信用金庫ー西京極支店
ソニー銀行 - 本店
三菱UFJ銀行 - 本店
期間: 2026/09/01 - 2026/09/30
電話: 075-123-4567
銀行 - 本店
みずほ銀行 - 決済センター`

	got := ExtractPairs(text)
	want := []models.RawNamePair{
		{BankName: "三菱UFJ銀行", BranchName: "本店"},
		{BankName: "京都信用金庫", BranchName: "西京極支店"},
		{BankName: "ソニー銀行", BranchName: "本店"},
		{BankName: "みずほ銀行", BranchName: "決済センター"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ExtractPairs:\n got %+v\nwant %+v", got, want)
	}

	// A second pass over the same text yields the same deduplicated result.
	if again := ExtractPairs(text); !reflect.DeepEqual(got, again) {
		t.Errorf("not idempotent: %+v vs %+v", got, again)
	}
}

func TestExtractPairsLongVowelName(t *testing.T) {
	// The long-vowel mark inside ソニー must not be taken as the separator.
	got := ExtractPairs("ソニー銀行－本店営業部")
	want := []models.RawNamePair{{BankName: "ソニー銀行", BranchName: "本店営業部"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestExtractPairsNone(t *testing.T) {
	if got := ExtractPairs("請求金額: ¥123,456\n2026/09/01 - 2026/09/30"); len(got) != 0 {
		t.Errorf("expected no pairs, got %+v", got)
	}
}
