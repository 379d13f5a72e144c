package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local/pdfbooklet/internal/config"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		in   string
		want Ref
	}{
		{"in.pdf", Ref{Scheme: SchemeFile, Path: "in.pdf"}},
		{"/abs/in.pdf", Ref{Scheme: SchemeFile, Path: "/abs/in.pdf"}},
		{"file:///tmp/in.pdf", Ref{Scheme: SchemeFile, Path: "/tmp/in.pdf"}},
		{"https://host/x.pdf", Ref{Scheme: SchemeHTTP, URL: "https://host/x.pdf"}},
		{"s3://bucket/a/b.pdf", Ref{Scheme: SchemeS3, Bucket: "bucket", Key: "a/b.pdf"}},
	}
	for _, tt := range tests {
		got, err := ParseRef(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	for _, bad := range []string{"", "s3://", "s3://bucket", "s3://bucket/", "s3:///key"} {
		_, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}

	r, _ := ParseRef("s3://bucket/a/b.pdf")
	assert.Equal(t, "s3://bucket/a/b.pdf", r.String())
}

func newStore() *Store {
	return New(config.StorageConfig{FetchTimeout: 5 * time.Second, PartSizeMB: 5})
}

func TestFetchLocal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	for _, ref := range []string{path, "file://" + path} {
		r, err := ParseRef(ref)
		require.NoError(t, err)
		data, err := newStore().Fetch(context.Background(), r)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4", string(data))
	}
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/doc.pdf" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.7 body"))
	}))
	defer srv.Close()

	s := newStore()
	data, err := s.Fetch(context.Background(), Ref{Scheme: SchemeHTTP, URL: srv.URL + "/doc.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7 body", string(data))

	_, err = s.Fetch(context.Background(), Ref{Scheme: SchemeHTTP, URL: srv.URL + "/missing.pdf"})
	assert.ErrorContains(t, err, "http 404")
}

func TestPrepareLocal(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "nested", "out.pdf")
	s := newStore()
	target, err := s.Prepare(Ref{Scheme: SchemeFile, Path: dest})
	require.NoError(t, err)
	assert.Equal(t, dest, target.Path())
	assert.DirExists(t, filepath.Dir(dest))
	assert.NoError(t, s.Commit(context.Background(), target))
}

func TestPrepareS3StagesTempFile(t *testing.T) {
	s := newStore()
	dest := Ref{Scheme: SchemeS3, Bucket: "b", Key: "k.pdf"}
	target, err := s.Prepare(dest)
	require.NoError(t, err)
	assert.Equal(t, dest, target.Dest())
	assert.Equal(t, os.TempDir(), filepath.Dir(target.Path()))

	require.NoError(t, os.WriteFile(target.Path(), []byte("x"), 0o644))
	s.Discard(target)
	assert.NoFileExists(t, target.Path())
}

func TestPrepareHTTPRejected(t *testing.T) {
	_, err := newStore().Prepare(Ref{Scheme: SchemeHTTP, URL: "https://host/x.pdf"})
	assert.Error(t, err)
}
