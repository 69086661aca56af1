package nsjoin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitPath(t *testing.T) {
	assert.Equal(t, []string{"/usr/bin", "/bin"}, splitPath("/usr/bin:/bin"))
	assert.Equal(t, []string{""}, splitPath(""))
	assert.Equal(t, []string{"/usr/bin"}, splitPath("/usr/bin"))
}

func TestLookPath(t *testing.T) {
	path, err := lookPath("/bin/bash")
	assert.NoError(t, err)
	assert.Equal(t, "/bin/bash", path)

	path, err = lookPath("./bash")
	assert.NoError(t, err)
	assert.Equal(t, "./bash", path)
}
