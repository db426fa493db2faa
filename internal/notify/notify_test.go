package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookNotify(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		data, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(data, &body))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewWebhook(srv.URL)
	err := n.Notify(context.Background(), Event{
		Kind:    EventDuplicatePayee,
		Source:  "invoice.pdf",
		Message: "今月分は振込済み",
	})
	require.NoError(t, err)

	text, _ := body["text"].(string)
	assert.Contains(t, text, "duplicate_payee")
	assert.Contains(t, text, "invoice.pdf")
	event, _ := body["event"].(map[string]any)
	require.NotNil(t, event)
	assert.NotEmpty(t, event["sentAt"])
}

func TestWebhookNotifyServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := NewWebhook(srv.URL).Notify(context.Background(), Event{Kind: EventRegistryOutage})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.Notify(context.Background(), Event{}))
}
