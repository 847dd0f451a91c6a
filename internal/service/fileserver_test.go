package service

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileServer(t *testing.T, content []byte) (*httptest.Server, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "nums.bin")
	require.NoError(t, os.WriteFile(path, content, 0644))

	fs, err := NewFileServer(dir)
	require.NoError(t, err)
	srv := httptest.NewServer(fs.Handler())
	t.Cleanup(srv.Close)
	return srv, path
}

func fetchSegment(t *testing.T, srv *httptest.Server, path string, start, length int64) *http.Response {
	t.Helper()
	q := url.Values{}
	q.Set("path", path)
	q.Set("start", fmt.Sprint(start))
	q.Set("length", fmt.Sprint(length))
	resp, err := http.Get(srv.URL + "/segment?" + q.Encode())
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFileServer_ServesSegment(t *testing.T) {
	content := []byte("0123456789abcdef")
	srv, path := newTestFileServer(t, content)

	resp := fetchSegment(t, srv, path, 4, 8)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("456789ab"), body)
}

func TestFileServer_TruncatesAtEOF(t *testing.T) {
	content := []byte("0123456789abcdef")
	srv, path := newTestFileServer(t, content)

	resp := fetchSegment(t, srv, path, 8, 100)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("89abcdef"), body)
}

func TestFileServer_StartBeyondEOF(t *testing.T) {
	srv, path := newTestFileServer(t, []byte("01234567"))

	resp := fetchSegment(t, srv, path, 8, 8)
	assert.Equal(t, http.StatusRequestedRangeNotSatisfiable, resp.StatusCode)
}

func TestFileServer_RejectsBadParameters(t *testing.T) {
	srv, path := newTestFileServer(t, []byte("01234567"))

	cases := []struct {
		name  string
		query string
	}{
		{"missing path", "start=0&length=8"},
		{"missing start", "path=" + url.QueryEscape(path) + "&length=8"},
		{"negative start", "path=" + url.QueryEscape(path) + "&start=-1&length=8"},
		{"zero length", "path=" + url.QueryEscape(path) + "&start=0&length=0"},
		{"traversal", "path=" + url.QueryEscape("../../etc/passwd") + "&start=0&length=8"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + "/segment?" + tc.query)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestFileServer_RejectsNonGet(t *testing.T) {
	srv, path := newTestFileServer(t, []byte("01234567"))

	resp, err := http.Post(srv.URL+"/segment?path="+url.QueryEscape(path)+"&start=0&length=8", "text/plain", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestFileServer_UnknownFile(t *testing.T) {
	srv, _ := newTestFileServer(t, []byte("01234567"))

	resp := fetchSegment(t, srv, "missing.bin", 0, 8)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFileServer_Healthz(t *testing.T) {
	srv, _ := newTestFileServer(t, []byte("01234567"))

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestNewFileServer_RequiresDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "file.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	_, err := NewFileServer(path)
	assert.Error(t, err)

	_, err = NewFileServer(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
