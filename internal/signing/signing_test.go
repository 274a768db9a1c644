package signing

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/sketchmotion/sketchmotion/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeSortsKeys(t *testing.T) {
	got := Canonicalize(map[string]string{
		"timestamp": "170000",
		"folder":    "users/u1",
		"public_id": "clip1",
	})
	assert.Equal(t, "folder=users/u1&public_id=clip1&timestamp=170000", got)
}

func TestCanonicalizeDropsEmptyValues(t *testing.T) {
	got := Canonicalize(map[string]string{
		"folder":    "users/u1",
		"public_id": "",
	})
	assert.Equal(t, "folder=users/u1", got)
}

func TestCanonicalizeEmpty(t *testing.T) {
	assert.Equal(t, "", Canonicalize(nil))
	assert.Equal(t, "", Canonicalize(map[string]string{}))
}

func TestDigestMatchesIndependentRecomputation(t *testing.T) {
	params := map[string]string{
		"folder":    "users/u1",
		"timestamp": "1700000000",
	}
	secret := "s3cret"

	got, err := Digest(params, secret)
	require.NoError(t, err)

	// Recompute the way the provider documents it.
	sum := sha256.Sum256([]byte("folder=users/u1&timestamp=1700000000" + secret))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestDigestDeterministic(t *testing.T) {
	params := map[string]string{"folder": "users/u1", "timestamp": "1"}

	a, err := Digest(params, "k")
	require.NoError(t, err)
	b, err := Digest(params, "k")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := Digest(params, "other")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestDigestEmptySecret(t *testing.T) {
	_, err := Digest(map[string]string{"folder": "users/u1"}, "")
	assert.ErrorIs(t, err, common.ErrMisconfigured)
}

func TestURLTokenStable(t *testing.T) {
	a := URLToken("users/u1/clip1.mp4|1700000000", "k")
	b := URLToken("users/u1/clip1.mp4|1700000000", "k")
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
	assert.NotEqual(t, a, URLToken("users/u1/clip1.mp4|1700000001", "k"))
}
