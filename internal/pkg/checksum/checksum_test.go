package checksum

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("连接被重置")
}

func TestDigestDeterministic(t *testing.T) {
	first, err := Digest(strings.NewReader("hello world"), SHA256)
	require.NoError(t, err)

	second, err := Digest(strings.NewReader("hello world"), SHA256)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestDigestKnownValue(t *testing.T) {
	digest, err := Digest(strings.NewReader("hello world"), SHA256)
	require.NoError(t, err)
	assert.Equal(t, "b94d27b9934d3e08a52e52d7da7dabfac484efe37a5380ee9088f7ace2efcde9", digest)
}

func TestDigestInputSensitivity(t *testing.T) {
	first, err := Digest(strings.NewReader("hello world"), SHA256)
	require.NoError(t, err)

	second, err := Digest(strings.NewReader("hello worlD"), SHA256)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestDigestSHA512(t *testing.T) {
	digest, err := Digest(strings.NewReader("hello world"), SHA512)
	require.NoError(t, err)
	assert.Len(t, digest, 128)
}

func TestDigestStreamError(t *testing.T) {
	_, err := Digest(failingReader{}, SHA256)
	assert.Error(t, err)
}

func TestDigestUnknownAlgorithm(t *testing.T) {
	_, err := Digest(strings.NewReader("x"), Algorithm("md5"))
	assert.Error(t, err)
}
