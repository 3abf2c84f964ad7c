package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestClient(url string) *GatewayClient {
	return NewGatewayClient(Config{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "test-model",
	})
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"hello there"}}]}`))
	}))
	defer server.Close()

	answer, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	assert.NoError(t, err)
	assert.Equal(t, "hello there", answer)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestCompleteClassifiesInvalidCredential(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestCompleteClassifiesGatewayError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrGatewayError)
}

func TestCompleteClassifiesEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrGatewayError)
}

func TestCompleteClassifiesUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listens anymore

	_, err := newTestClient(server.URL).Complete(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrGatewayUnreachable)
}

func TestAttributionHeaders(t *testing.T) {
	var referer, title string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer server.Close()

	client := NewGatewayClient(Config{
		BaseURL:  server.URL,
		APIKey:   "k",
		Model:    "m",
		Referrer: "https://example.com",
		Title:    "GopherChat",
	})
	_, err := client.Complete(context.Background(), "hi")
	assert.NoError(t, err)
	assert.Equal(t, "https://example.com", referer)
	assert.Equal(t, "GopherChat", title)
}
