package extractor

import "testing"

func TestToHalfWidthKana(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"カ）ニホンサンプル", "ｶ)ﾆﾎﾝｻﾝﾌﾟﾙ"},
		{"ガギグゲゴ", "ｶﾞｷﾞｸﾞｹﾞｺﾞ"},             // voiced marks decompose
		{"パピプペポ", "ﾊﾟﾋﾟﾌﾟﾍﾟﾎﾟ"},             // semi-voiced
		{"かぶしきがいしゃ", "ｶﾌﾞｼｷｶﾞｲｼｬ"},          // hiragana lifts to katakana
		{"トウキョウショウジ（カ", "ﾄｳｷｮｳｼｮｳｼﾞ(ｶ"},   // small kana and bracket
		{"ＡＢＣ１２３", "ABC123"},                // full-width ASCII folds
		{"データー", "ﾃﾞｰﾀｰ"},                   // long vowel mark
		{"ｶ)ｽﾃﾞﾆﾊﾝｶｸ", "ｶ)ｽﾃﾞﾆﾊﾝｶｸ"},          // already half-width passes through
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToHalfWidthKana(tt.in); got != tt.want {
			t.Errorf("ToHalfWidthKana(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
