package normalizer

import "testing"

func TestNormalizeInstitution(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"株式会社三菱ＵＦＪ銀行", "三菱ＵＦＪ"},
		{"三井住友銀行", "三井住友"},
		{"京都信用金庫", "京都"},
		{"滋賀県信用組合", "滋賀県"},
		{"みずほ 銀行", "みずほ"},
		{"楽天銀行", "楽天"},
	}
	for _, tt := range tests {
		if got := NormalizeInstitution(tt.in); got != tt.want {
			t.Errorf("NormalizeInstitution(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBranch(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"本店第一出張所", "本店第1"},
		{"大津支店", "大津"},
		{"〇一八支店", "018"},
		{"本店営業部", "本店"},
		{"西京極 支店", "西京極"},
		{"梅田サービスセンター", "梅田"},
	}
	for _, tt := range tests {
		if got := NormalizeBranch(tt.in); got != tt.want {
			t.Errorf("NormalizeBranch(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldWidth(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"三菱ＵＦＪ銀行", "三菱UFJ銀行"},
		{"ＰａｙＰａｙ銀行", "PayPay銀行"},
		{"０１８支店", "018支店"},
		{"みずほ　銀行", "みずほ銀行"}, // full-width space removed
		{"三菱UFJ銀行", "三菱UFJ銀行"}, // already half-width
	}
	for _, tt := range tests {
		if got := FoldWidth(tt.in); got != tt.want {
			t.Errorf("FoldWidth(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFoldWidthDashes(t *testing.T) {
	if got := FoldWidth("ハーバーランド"); got != "ハ-バ-ランド" {
		t.Errorf("prolonged sound mark not folded: %q", got)
	}
	if got := FoldWidth("第－一"); got != "第-一" {
		t.Errorf("full-width hyphen not folded: %q", got)
	}
}

func TestMainNames(t *testing.T) {
	if got := MainInstitutionName("三菱UFJ銀行"); got != "三菱UFJ" {
		t.Errorf("MainInstitutionName = %q", got)
	}
	if got := MainBranchName("大津支店"); got != "大津" {
		t.Errorf("MainBranchName = %q", got)
	}
	// Names without a class suffix pass through untouched.
	if got := MainBranchName("本店"); got != "本店" {
		t.Errorf("MainBranchName(本店) = %q", got)
	}
}
