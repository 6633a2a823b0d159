package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadKey(t *testing.T) {
	now := time.Date(2026, 10, 7, 23, 30, 0, 0, time.FixedZone("X", -3*3600))
	assert.Equal(t, "documents/2026/10/08/abc/report.pdf", UploadKey(now, "abc", "report.pdf"))
	assert.Equal(t, "documents/2026/10/08/abc/passwd", UploadKey(now, "abc", "../../etc/passwd"))
	assert.Equal(t, "documents/2026/10/08/abc/x.docx", UploadKey(now, "abc", `C:\tmp\x.docx`))
	assert.Equal(t, "documents/2026/10/08/abc/document", UploadKey(now, "abc", ""))
}

func TestResultKey(t *testing.T) {
	assert.Equal(t, "results/abc.json", ResultKey("/results/", "abc"))
	assert.Equal(t, "abc.json", ResultKey("", "abc"))
}

// fakeS3 serves path-style GetObject and PutObject from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	meta    map[string]map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := strings.TrimPrefix(r.URL.Path, "/")
	switch r.Method {
	case http.MethodGet:
		data, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		for k, v := range f.meta[key] {
			w.Header().Set("x-amz-meta-"+k, v)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(data)
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[key] = data
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if strings.TrimSuffix(key, "/") != "docs" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestClient(t *testing.T, endpoint string) *S3Client {
	t.Helper()
	c, err := NewS3Client(context.Background(), Options{
		Bucket:          "docs",
		Region:          "us-east-1",
		Endpoint:        endpoint,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		PresignTTL:      time.Hour,
	})
	require.NoError(t, err)
	return c
}

func TestGetDocumentAndPutJSON(t *testing.T) {
	fake := &fakeS3{
		objects: map[string][]byte{"docs/documents/2026/01/01/id/scan.pdf": []byte("%PDF-1.4")},
		meta:    map[string]map[string]string{"docs/documents/2026/01/01/id/scan.pdf": {"name": "Original Scan.pdf"}},
	}
	srv := httptest.NewServer(fake)
	defer srv.Close()
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	data, meta, err := c.GetDocument(ctx, "documents/2026/01/01/id/scan.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))
	assert.Equal(t, "Original Scan.pdf", meta.OriginalName)
	assert.Equal(t, "application/pdf", meta.ContentType)

	_, _, err = c.GetDocument(ctx, "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, c.PutJSON(ctx, "results/id.json", map[string]any{"success": true}))
	fake.mu.Lock()
	assert.JSONEq(t, `{"success":true}`, string(fake.objects["docs/results/id.json"]))
	fake.mu.Unlock()
}

func TestPresignUpload(t *testing.T) {
	c := newTestClient(t, "http://localhost:9000")

	raw, err := c.PresignUpload(context.Background(), "documents/2026/01/01/id/a.pdf", "application/pdf")
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "/docs/documents/2026/01/01/id/a.pdf", u.Path)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "docs", c.Bucket())
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(&fakeS3{objects: map[string][]byte{}})
	defer srv.Close()

	require.NoError(t, newTestClient(t, srv.URL).Ping(context.Background()))

	other, err := NewS3Client(context.Background(), Options{
		Bucket:          "missing",
		Region:          "us-east-1",
		Endpoint:        srv.URL,
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)
	assert.Error(t, other.Ping(context.Background()))
}
