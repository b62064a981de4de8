package remediation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientClassifiesStatusCodes(t *testing.T) {
	cases := []struct {
		name   string
		status int
		want   ErrorKind
		ok     bool
	}{
		{"ok", http.StatusOK, ErrorKindNone, true},
		{"accepted", http.StatusAccepted, ErrorKindNone, true},
		{"rate_limited", http.StatusTooManyRequests, ErrorKindTransient, false},
		{"server_error", http.StatusBadGateway, ErrorKindTransient, false},
		{"not_found", http.StatusNotFound, ErrorKindPermanent, false},
		{"forbidden", http.StatusForbidden, ErrorKindPermanent, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			client := NewHTTPClient(srv.URL, srv.Client())
			result := client.Remediate(context.Background(), testRequest())
			assert.Equal(t, tc.ok, result.Success)
			if !tc.ok {
				assert.Equal(t, tc.want, result.ErrorKind)
				assert.Error(t, result.Err)
			}
		})
	}
}

func TestHTTPClientSendsIdempotencyKey(t *testing.T) {
	var gotKey string
	var gotDoc map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("Idempotency-Key")
		_ = json.NewDecoder(r.Body).Decode(&gotDoc)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	req := testRequest()
	client := NewHTTPClient(srv.URL, srv.Client())
	result := client.Remediate(context.Background(), req)

	require.True(t, result.Success)
	assert.Equal(t, req.ID, gotKey)
	assert.Equal(t, req.EntityID, gotDoc["entityId"])
	assert.Equal(t, req.Target, gotDoc["target"])
}

func TestHTTPClientNetworkErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	client := NewHTTPClient(srv.URL, nil)
	result := client.Remediate(context.Background(), testRequest())
	assert.False(t, result.Success)
	assert.Equal(t, ErrorKindTransient, result.ErrorKind)
}

func TestHTTPClientMissingEndpointIsPermanent(t *testing.T) {
	client := NewHTTPClient("", nil)
	result := client.Remediate(context.Background(), testRequest())
	assert.False(t, result.Success)
	assert.Equal(t, ErrorKindPermanent, result.ErrorKind)
}
