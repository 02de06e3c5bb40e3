package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixtureSourceReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "televizorji", "page-1.html")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("<html>ok</html>"), 0o644))

	src := NewFixtureSource(dir)

	html, err := src.Fetch(context.Background(), "/televizorji/page-1.html")
	require.NoError(t, err)
	assert.Equal(t, "<html>ok</html>", html)
}

func TestFixtureSourceMissingFile(t *testing.T) {
	src := NewFixtureSource(t.TempDir())

	_, err := src.Fetch(context.Background(), "nope.html")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPSourceFetch(t *testing.T) {
	var gotUA, gotReferer, gotCookie string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotReferer = r.Header.Get("Referer")
		gotCookie = r.Header.Get("Cookie")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte("<html>živjo</html>"))
	}))
	defer server.Close()

	src := NewHTTPSource(Headers{
		UserAgent: "test-agent",
		Referer:   "https://www.google.com/",
		Cookie:    "session=abc",
	})

	html, err := src.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "<html>živjo</html>", html)
	assert.Equal(t, "test-agent", gotUA)
	assert.Equal(t, "https://www.google.com/", gotReferer)
	assert.Equal(t, "session=abc", gotCookie)
}

func TestHTTPSourceRandomUserAgentWhenUnset(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
	}))
	defer server.Close()

	_, err := NewHTTPSource(Headers{}).Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.NotEmpty(t, gotUA)
}

func TestHTTPSourceBotBlocked(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	_, err := NewHTTPSource(Headers{UserAgent: "ua"}).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrBotBlocked)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestHTTPSourceServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewHTTPSource(Headers{UserAgent: "ua"}).Fetch(context.Background(), server.URL)
	assert.ErrorIs(t, err, ErrUnavailable)
}
