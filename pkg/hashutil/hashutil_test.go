package hashutil_test

import (
	"testing"

	"github.com/rohmanhakim/pypi-scraper/pkg/hashutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashBytes_SHA256(t *testing.T) {
	// Well-known SHA-256 of "abc"
	got, err := hashutil.HashBytes([]byte("abc"), hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", got)
}

func TestHashBytes_BLAKE3(t *testing.T) {
	got, err := hashutil.HashBytes([]byte("abc"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.Len(t, got, 64)

	again, err := hashutil.HashBytes([]byte("abc"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.Equal(t, got, again)

	different, err := hashutil.HashBytes([]byte("abd"), hashutil.HashAlgoBLAKE3)
	require.NoError(t, err)
	assert.NotEqual(t, got, different)
}

func TestHashBytes_EmptyInput(t *testing.T) {
	got, err := hashutil.HashBytes(nil, hashutil.HashAlgoSHA256)
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", got)
}

func TestHashBytes_UnsupportedAlgo(t *testing.T) {
	_, err := hashutil.HashBytes([]byte("abc"), "md5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported hash algorithm")
}
