package app

import (
	"errors"
	"testing"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/stretchr/testify/assert"
)

func TestKnownError(t *testing.T) {
	assert.True(t, KnownError(ierrors.New(ierrors.KindNotInitialized, "run init first")))
	assert.True(t, KnownError(ierrors.New(ierrors.KindContainerNotFound, "no such container")))
	assert.False(t, KnownError(errors.New("some unrelated failure")))
}
