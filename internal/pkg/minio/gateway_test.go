package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, ClampPageSize(0))
	assert.Equal(t, DefaultPageSize, ClampPageSize(-10))
	assert.Equal(t, 1, ClampPageSize(1))
	assert.Equal(t, 500, ClampPageSize(500))
	assert.Equal(t, MaxPageSize, ClampPageSize(MaxPageSize))
	assert.Equal(t, MaxPageSize, ClampPageSize(MaxPageSize+1))
	assert.Equal(t, MaxPageSize, ClampPageSize(1000000))
}
