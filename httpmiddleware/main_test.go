package httpmiddleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHttpRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(append([]byte("echo:"), body...))
	}))
	defer server.Close()

	body, err := HttpRequest(context.Background(), HttpRequestStruct{
		Method:  http.MethodPost,
		Url:     server.URL,
		Body:    strings.NewReader("ping"),
		Headers: map[string]string{"authorization": "Bearer key"},
	})
	require.NoError(t, err)
	assert.Equal(t, "echo:ping", string(body))
}

func TestHttpRequestStatusError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := HttpRequest(context.Background(), HttpRequestStruct{Method: http.MethodGet, Url: server.URL})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.StatusCode)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Equal(t, 1, calls)
}

func TestHttpRequestCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := HttpRequest(ctx, HttpRequestStruct{Method: http.MethodGet, Url: "http://127.0.0.1:1"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultClientHasNoTimeout(t *testing.T) {
	assert.Zero(t, defaultClient.Timeout)
}
