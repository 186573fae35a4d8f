package pdf

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGotenbergRender(t *testing.T) {
	var gotPath string
	var gotHTML string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, _, err := r.FormFile("files")
		require.NoError(t, err)
		defer f.Close()
		raw, err := io.ReadAll(f)
		require.NoError(t, err)
		gotHTML = string(raw)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	defer srv.Close()

	g := NewGotenberg(srv.URL, 5*time.Second)
	out, err := g.Render(context.Background(), sampleContract(), nil)
	require.NoError(t, err)

	assert.Equal(t, []byte("%PDF-1.4 fake"), out)
	assert.Equal(t, "/forms/chromium/convert/html", gotPath)
	assert.True(t, strings.Contains(gotHTML, "Website Redesign Agreement"))
}

func TestGotenbergRenderNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chromium crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGotenberg(srv.URL, 5*time.Second)
	_, err := g.Render(context.Background(), sampleContract(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "chromium crashed")
}

func TestGotenbergRenderTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	g := NewGotenberg(srv.URL, 50*time.Millisecond)
	_, err := g.Render(context.Background(), sampleContract(), nil)
	require.Error(t, err)
}

func TestGotenbergRenderUnreachable(t *testing.T) {
	g := NewGotenberg("http://127.0.0.1:1", time.Second)
	_, err := g.Render(context.Background(), sampleContract(), nil)
	require.Error(t, err)
}
