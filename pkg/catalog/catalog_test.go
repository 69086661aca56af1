package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLocalImage(t *testing.T) {
	local := NewLocalImage("/home/u/.injesh/images", "ubuntu", "22.04")

	assert.Equal(t, filepath.Join("/home/u/.injesh/images", "ubuntu", "22.04"), local.BaseDir)
	assert.Equal(t, filepath.Join(local.BaseDir, "rootfs"), local.RootfsDir)
	assert.Equal(t, filepath.Join(local.BaseDir, rootfsHashFile), local.HashFile)
}
