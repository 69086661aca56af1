package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePPid(t *testing.T) {
	status := []byte("Name:\tbash\nPid:\t123\nPPid:\t45\nState:\tS\n")
	ppid, ok := parsePPid(status)
	assert.True(t, ok)
	assert.Equal(t, 45, ppid)

	_, ok = parsePPid([]byte("Name:\tbash\n"))
	assert.False(t, ok)
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abcdefabcdef", truncateID("abcdefabcdef0123456789"))
	assert.Equal(t, "short", truncateID("short"))
}
