package mediastore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/sketchmotion/sketchmotion/internal/signing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{
		CloudName:       "demo",
		APIKey:          "key123",
		APISecret:       "secret123",
		APIBaseURL:      srv.URL,
		DeliveryBaseURL: "https://cdn.example.com",
	})
	require.NoError(t, err)
	c.now = func() time.Time { return time.Unix(1700000000, 0) }
	return c, srv
}

func TestNewMissingCredentials(t *testing.T) {
	_, err := New(Config{CloudName: "demo", APIKey: "k"})
	assert.ErrorIs(t, err, common.ErrMisconfigured)
}

func TestSignedDeliveryURL(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})

	got, err := c.SignedDeliveryURL("users/u1/clip1", 10*time.Minute)
	require.NoError(t, err)

	token := signing.URLToken("f_mp4/users/u1/clip1.mp4|1700000600", "secret123")
	want := "https://cdn.example.com/demo/video/upload/s--" + token + "--/f_mp4/users/u1/clip1.mp4?expires_at=1700000600"
	assert.Equal(t, want, got)

	// Minted fresh each call, deterministic for a fixed clock.
	again, err := c.SignedDeliveryURL("users/u1/clip1", 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestSignedDeliveryURLEmptyObject(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.SignedDeliveryURL("", time.Minute)
	assert.ErrorIs(t, err, common.ErrInvalidRequest)
}

func TestDestroySignsRequest(t *testing.T) {
	var gotPath, gotSig, gotKey, gotPublicID, gotInvalidate string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotSig = r.PostForm.Get("signature")
		gotKey = r.PostForm.Get("api_key")
		gotPublicID = r.PostForm.Get("public_id")
		gotInvalidate = r.PostForm.Get("invalidate")
		w.Write([]byte(`{"result":"ok"}`))
	})

	err := c.Destroy(context.Background(), "users/u1/clip1", true)
	require.NoError(t, err)

	assert.Equal(t, "/v1/demo/resources/destroy", gotPath)
	assert.Equal(t, "key123", gotKey)
	assert.Equal(t, "users/u1/clip1", gotPublicID)
	assert.Equal(t, "true", gotInvalidate)

	wantSig, err := signing.Digest(map[string]string{
		"public_id":  "users/u1/clip1",
		"timestamp":  "1700000000",
		"invalidate": "true",
	}, "secret123")
	require.NoError(t, err)
	assert.Equal(t, wantSig, gotSig)
}

func TestDestroyNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"not found"}`))
	})
	err := c.Destroy(context.Background(), "users/u1/missing", false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDestroyUpstreamFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"quota exceeded"}}`))
	})
	err := c.Destroy(context.Background(), "users/u1/clip1", false)
	assert.ErrorIs(t, err, common.ErrUpstream)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestExists(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("public_id") == "users/u1/clip1" {
			w.Write([]byte(`{"result":"ok"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"result":"not found"}`))
	})

	ok, err := c.Exists(context.Background(), "users/u1/clip1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.Exists(context.Background(), "users/u1/gone")
	require.NoError(t, err)
	assert.False(t, ok)
}
