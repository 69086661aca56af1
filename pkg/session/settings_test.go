package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizedShell(t *testing.T) {
	type scenario struct {
		shell    string
		expected Shell
		wantErr  bool
	}

	scenarios := []scenario{
		{"bash", ShellBash, false},
		{"/bin/bash", ShellBash, false},
		{"sh", ShellSh, false},
		{"/bin/sh", ShellSh, false},
		{"zsh", "", true},
	}

	for _, s := range scenarios {
		got, err := Settings{Shell: s.shell}.NormalizedShell()
		if s.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, s.expected, got)
	}
}

func TestWriteReadSettingsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	sess := NewSession(dir, "demo")
	assert.NoError(t, os.MkdirAll(sess.BaseDir, 0o755))

	in := Settings{DockerContainerID: "abc123", Shell: "bash", Commands: []string{"-l"}}
	assert.NoError(t, WriteSettings(sess, in))

	raw, err := os.ReadFile(filepath.Join(sess.BaseDir, "setting.yaml"))
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "docker_container_id: abc123")

	out, err := ReadSettings(sess)
	assert.NoError(t, err)
	assert.Equal(t, in, out)
}
