package ledger

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

func july() time.Time { return time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC) }

func TestStorePath(t *testing.T) {
	s := NewStore("/data")
	assert.Equal(t, "/data/7月振込用.csv", s.Path(july()))
	assert.Equal(t, "/data/12月振込用.csv", s.Path(time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC)))
}

func TestStoreAppendAndSnapshot(t *testing.T) {
	s := NewStore(t.TempDir())

	require.NoError(t, s.Append(july(), models.LedgerEntry{
		BankCode: "0005", BranchCode: "001", AccountTypeCode: 1,
		AccountNumber: "1234567", RecipientName: "ｶ)ﾆﾎﾝｻﾝﾌﾟﾙ",
		Amount: decimal.NewFromInt(123456),
	}))
	require.NoError(t, s.Append(july(), models.LedgerEntry{
		BankCode: "0036", BranchCode: "201", AccountTypeCode: 2,
		AccountNumber: "7654321", RecipientName: "ﾕ)ｷｮｳﾄｼｮｳｼﾞ",
		Amount: decimal.NewFromInt(5000),
	}))

	entries, err := s.Snapshot(july())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0005", entries[0].BankCode)
	assert.Equal(t, "123456", entries[0].Amount.String())
	assert.Equal(t, 2, entries[1].AccountTypeCode)

	// File format: BOM once, no header, 8 comma-separated columns.
	data, err := os.ReadFile(s.Path(july()))
	require.NoError(t, err)
	content := string(data)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBF"))
	assert.Equal(t, 1, strings.Count(content, "\xEF\xBB\xBF"))
	lines := strings.Split(strings.TrimRight(strings.TrimPrefix(content, "\xEF\xBB\xBF"), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "0005,001,1,1234567,ｶ)ﾆﾎﾝｻﾝﾌﾟﾙ,123456,,", lines[0])
}

func TestStoreSnapshotMissingFile(t *testing.T) {
	s := NewStore(t.TempDir())
	entries, err := s.Snapshot(july())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreStripsLegacyHeader(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	legacy := "\xEF\xBB\xBF金融機関コード,支店コード,預金種目,口座番号,受取人名,金額,,\n" +
		"0005,001,1,1234567,ｶ)ﾆﾎﾝｻﾝﾌﾟﾙ,123456,,\n"
	require.NoError(t, os.WriteFile(s.Path(july()), []byte(legacy), 0o644))

	// Snapshot never surfaces the header as data.
	entries, err := s.Snapshot(july())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "0005", entries[0].BankCode)

	// Appending rewrites the file without the header.
	require.NoError(t, s.Append(july(), models.LedgerEntry{
		BankCode: "0036", BranchCode: "201", AccountTypeCode: 1,
		AccountNumber: "1", RecipientName: "ﾃｽﾄ", Amount: decimal.NewFromInt(1),
	}))
	data, err := os.ReadFile(s.Path(july()))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "金融機関コード")
	entries, err = s.Snapshot(july())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
