package main

import (
	"testing"

	"github.com/injesh/injesh/pkg/orchestrator"
	"github.com/stretchr/testify/assert"
)

func TestParseRootfsOption(t *testing.T) {
	type scenario struct {
		dir, distribution, versionStr, dockerRef, lxdRef string
		expected                                          orchestrator.RootFSOption
		wantErr                                           bool
	}

	scenarios := []scenario{
		{
			expected: orchestrator.RootFSOption{Kind: orchestrator.RootFSNone},
		},
		{
			dir:      "/srv/rootfs",
			expected: orchestrator.RootFSOption{Kind: orchestrator.RootFSLocalDir, Path: "/srv/rootfs"},
		},
		{
			distribution: "ubuntu",
			versionStr:   "22.04",
			expected:     orchestrator.RootFSOption{Kind: orchestrator.RootFSLxdImage, Distribution: "ubuntu", Version: "22.04"},
		},
		{
			dockerRef: "alpine:latest",
			expected:  orchestrator.RootFSOption{Kind: orchestrator.RootFSDockerImage, Ref: "alpine:latest"},
		},
		{
			dir:          "/srv/rootfs",
			distribution: "ubuntu",
			wantErr:      true,
		},
	}

	for _, s := range scenarios {
		opt, err := parseRootfsOption(s.dir, s.distribution, s.versionStr, s.dockerRef, s.lxdRef)
		if s.wantErr {
			assert.Error(t, err)
			continue
		}
		assert.NoError(t, err)
		assert.Equal(t, s.expected, opt)
	}
}

func TestSafeTruncate(t *testing.T) {
	assert.Equal(t, "abcde", safeTruncate("abcdefgh", 5))
	assert.Equal(t, "ab", safeTruncate("ab", 5))
}
