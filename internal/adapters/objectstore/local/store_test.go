package local

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UploadOpenAndServe(t *testing.T) {
	s, err := NewStore(t.TempDir(), "/photos", nil)
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("fake png data")
	require.NoError(t, s.Upload(ctx, "1700000000000-abcd1234.png", "image/png", bytes.NewReader(data), int64(len(data))))

	assert.Equal(t, "/photos/1700000000000-abcd1234.png", s.PublicURL("1700000000000-abcd1234.png"))

	rc, mimeType, err := s.Open(ctx, "1700000000000-abcd1234.png")
	require.NoError(t, err)
	got, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, data, got)
	assert.Equal(t, "image/png", mimeType)

	h := http.StripPrefix("/photos", s.Handler())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/1700000000000-abcd1234.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, data, rec.Body.Bytes())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/photos/missing.jpg", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStore_NoOverwrite(t *testing.T) {
	s, err := NewStore(t.TempDir(), "", nil)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, s.Upload(ctx, "a.jpg", "image/jpeg", bytes.NewReader([]byte("1")), 1))
	assert.Error(t, s.Upload(ctx, "a.jpg", "image/jpeg", bytes.NewReader([]byte("2")), 1))
}

func TestStore_PathTraversal(t *testing.T) {
	s, err := NewStore(t.TempDir(), "", nil)
	require.NoError(t, err)

	err = s.Upload(context.Background(), "../escape.jpg", "image/jpeg", bytes.NewReader([]byte("x")), 1)
	assert.Error(t, err)

	_, _, err = s.Open(context.Background(), "../../etc/passwd")
	assert.Error(t, err)
}
