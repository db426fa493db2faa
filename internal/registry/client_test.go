package registry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seiban/invoice-transfer-pipeline/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/banks.json", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"0005":{"name":"三菱ＵＦＪ銀行"},"0001":{"name":"みずほ銀行"}}`))
	})
	mux.HandleFunc("/branches/0005.json", func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Write([]byte(`{"001":{"name":"本店"},"015":{"name":"大阪営業部"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestInstitutionsCachedAcrossCalls(t *testing.T) {
	srv, hits := newTestServer(t)
	c := New(srv.URL)

	table, err := c.Institutions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "三菱ＵＦＪ銀行", table["0005"])
	assert.Len(t, table, 2)

	_, err = c.Institutions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, *hits, "second call should hit the cache")
}

func TestBranchesCachedPerCode(t *testing.T) {
	srv, hits := newTestServer(t)
	c := New(srv.URL)

	table, err := c.Branches(context.Background(), "0005")
	require.NoError(t, err)
	assert.Equal(t, "本店", table["001"])

	_, err = c.Branches(context.Background(), "0005")
	require.NoError(t, err)
	assert.Equal(t, 1, *hits)
}

func TestNon200IsRegistryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Institutions(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRegistryUnavailable))
}

func TestMalformedJSONIsRegistryUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"0005": not json`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Branches(context.Background(), "0005")
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrRegistryUnavailable))
}

func TestSortedCodes(t *testing.T) {
	codes := SortedCodes(map[string]string{"0158": "滋賀銀行", "0001": "みずほ銀行", "0036": "楽天銀行"})
	assert.Equal(t, []string{"0001", "0036", "0158"}, codes)
}
