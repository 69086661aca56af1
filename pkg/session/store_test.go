package session

import (
	"testing"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/stretchr/testify/assert"
)

func TestDirStoreLifecycle(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.List()
	assert.True(t, ierrors.Is(err, ierrors.KindNoSessions))

	sess, err := store.Create("demo")
	assert.NoError(t, err)
	assert.DirExists(t, sess.PrivateUpper)
	assert.DirExists(t, sess.PrivateWork)
	assert.DirExists(t, sess.PrivateMerged)

	_, err = store.Create("demo")
	assert.True(t, ierrors.Is(err, ierrors.KindAlreadyExists))

	names, err := store.List()
	assert.NoError(t, err)
	assert.Equal(t, []string{"demo"}, names)

	opened, err := store.Open("demo")
	assert.NoError(t, err)
	assert.Equal(t, sess.BaseDir, opened.BaseDir)

	_, err = store.Open("missing")
	assert.True(t, ierrors.Is(err, ierrors.KindContainerNotFound))

	assert.NoError(t, store.Destroy(sess))
	assert.NoDirExists(t, sess.BaseDir)
}
