package identity

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCstring(t *testing.T) {
	assert.Equal(t, "x86_64", cstring([]byte("x86_64\x00\x00\x00")))
	assert.Equal(t, "nopad", cstring([]byte("nopad")))
}

func TestHomeFromPasswd(t *testing.T) {
	dir := t.TempDir()
	passwd := filepath.Join(dir, "passwd")
	content := "# comment\n\nroot:x:0:0:root:/root:/bin/bash\nalice:x:1000:1000:Alice:/home/alice:/bin/bash\n"
	assert.NoError(t, os.WriteFile(passwd, []byte(content), 0o644))

	previous := passwdPath
	passwdPath = passwd
	defer func() { passwdPath = previous }()

	home, err := homeFromPasswd("alice")
	assert.NoError(t, err)
	assert.Equal(t, "/home/alice", home)

	_, err = homeFromPasswd("nobody")
	assert.Error(t, err)
}
