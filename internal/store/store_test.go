package store

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusHashRoundTrip(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(3 * time.Second)
	in := Status{
		Status:   StatusSuccess,
		Message:  "routed",
		Filename: "a.pdf",
		Service:  "docling-core",
		Score:    3,
		Start:    &start,
		End:      &end,
		Metadata: map[string]interface{}{"cached": false},
	}

	h := toHash(in)
	flat := make(map[string]string, len(h))
	for k, v := range h {
		switch x := v.(type) {
		case string:
			flat[k] = x
		case int:
			flat[k] = strconv.Itoa(x)
		}
	}
	out := fromHash(flat)

	assert.Equal(t, in.Status, out.Status)
	assert.Equal(t, in.Score, out.Score)
	assert.Equal(t, in.Service, out.Service)
	assert.True(t, start.Equal(*out.Start))
	assert.True(t, end.Equal(*out.End))
	assert.Equal(t, false, out.Metadata["cached"])
}

func TestFromHashToleratesGarbage(t *testing.T) {
	st := fromHash(map[string]string{"status": StatusFailed, "score": "x", "start": "yesterday", "metadata": "{"})
	assert.Equal(t, StatusFailed, st.Status)
	assert.Zero(t, st.Score)
	assert.Nil(t, st.Start)
	assert.Nil(t, st.Metadata)
}

func TestContentHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", ContentHash(nil))
	assert.NotEqual(t, ContentHash([]byte("a")), ContentHash([]byte("b")))
}

// The tests below need a live server: REDIS_TEST_URL=redis://localhost:6379/15
func testRedisURL(t *testing.T) string {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	return url
}

func TestRedisStatusLive(t *testing.T) {
	ctx := context.Background()
	c, err := Connect(ctx, testRedisURL(t))
	require.NoError(t, err)
	defer c.Close()

	s := NewRedisStatus(c, time.Minute)
	id := uuid.NewString()

	_, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, id, Status{Status: StatusProcessing, Filename: "x.docx"}))
	require.NoError(t, s.Set(ctx, id, Status{Status: StatusFailed, Message: "docling-core returned HTTP 503"}))

	st, ok, err := s.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StatusFailed, st.Status)
	assert.Empty(t, st.Filename, "Set replaces the whole record")

	ttl, err := c.TTL(ctx, s.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestResultCacheLive(t *testing.T) {
	ctx := context.Background()
	c, err := Connect(ctx, testRedisURL(t))
	require.NoError(t, err)
	defer c.Close()

	cache := NewResultCache(c, time.Minute)
	hash := ContentHash([]byte(uuid.NewString()))

	_, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Put(ctx, hash, map[string]any{"success": true, "text": "hi"}))
	got, ok, err := cache.Get(ctx, hash)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "hi", got["text"])
}

func TestConnectBadURL(t *testing.T) {
	_, err := Connect(context.Background(), "not-a-url://")
	assert.Error(t, err)
}
