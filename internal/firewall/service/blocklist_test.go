package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlocklist(t *testing.T) {
	b := NewBlocklist()

	assert.False(t, b.IsBlocked("1.2.3.4"))
	assert.True(t, b.Block("1.2.3.4"))
	assert.True(t, b.IsBlocked("1.2.3.4"))
	assert.Equal(t, 1, b.Len())

	// Blocking again is a no-op.
	assert.False(t, b.Block("1.2.3.4"))
	assert.Equal(t, 1, b.Len())

	assert.True(t, b.Unblock("1.2.3.4"))
	assert.False(t, b.IsBlocked("1.2.3.4"))
	assert.False(t, b.Unblock("1.2.3.4"))
}
