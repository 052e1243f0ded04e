package quote

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func newTestClient(url string) *Client {
	c := New(zap.NewNop())
	c.url = url
	return c
}

func TestRandomReturnsContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"content":"Stay curious."}}`))
	}))
	defer srv.Close()

	got := newTestClient(srv.URL).Random(context.Background())
	assert.Equal(t, "Stay curious.", got)
}

func TestRandomFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	assert.Equal(t, Fallback, newTestClient(srv.URL).Random(context.Background()))
}

func TestRandomFallsBackOnBadBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	assert.Equal(t, Fallback, newTestClient(srv.URL).Random(context.Background()))
}

func TestRandomFallsBackOnUnreachableEndpoint(t *testing.T) {
	assert.Equal(t, Fallback, newTestClient("http://127.0.0.1:1").Random(context.Background()))
}
