package fetch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *Fetcher {
	return New(5*time.Second, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetch_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "energy.csv")
	require.NoError(t, os.WriteFile(path, []byte("State,2022\nTX,1\n"), 0o600))

	data, err := testFetcher().Fetch(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "State,2022\nTX,1\n", string(data))
}

func TestFetch_LocalFileMissing(t *testing.T) {
	_, err := testFetcher().Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFetch_Remote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/us-states.json", r.URL.Path)
		_, _ = w.Write([]byte(`{"type":"FeatureCollection","features":[]}`))
	}))
	defer srv.Close()

	data, err := testFetcher().Fetch(context.Background(), srv.URL+"/us-states.json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"FeatureCollection","features":[]}`, string(data))
}

func TestFetch_RemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := testFetcher().Fetch(context.Background(), srv.URL+"/x.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetch_RemoteCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := testFetcher().Fetch(ctx, srv.URL)
	require.Error(t, err)
}

func TestExt(t *testing.T) {
	tests := []struct {
		location string
		expected string
	}{
		{"data/Energy_Production.CSV", ".csv"},
		{"consumption.xlsx", ".xlsx"},
		{"https://example.com/us-states.json?raw=true", ".json"},
		{"https://example.com/file.geojson#frag", ".geojson"},
		{"noext", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Ext(tt.location), tt.location)
	}
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("HTTPS://example.com/a.csv"))
	assert.True(t, IsRemote("http://localhost/a.csv"))
	assert.False(t, IsRemote("docs/a.csv"))
	assert.False(t, IsRemote("ftp://example.com/a.csv"))
}
