package session

import (
	"os"
	"sort"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/samber/lo"
)

// Store is the narrow interface the orchestrator depends on for session
// lifecycle (spec.md §4.6).
type Store interface {
	List() ([]string, error)
	Create(name string) (Session, error)
	Open(name string) (Session, error)
	Destroy(sess Session) error
}

// DirStore is the production Store: sessions_root/<name>/ directories on
// the local filesystem.
type DirStore struct {
	SessionsRoot string
}

func New(sessionsRoot string) *DirStore {
	return &DirStore{SessionsRoot: sessionsRoot}
}

// List enumerates immediate subdirectories of sessions_root. An empty
// result is reported as KindNoSessions, per spec.md §4.6.
func (s *DirStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.SessionsRoot)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.KindReadDirError, err, "reading "+s.SessionsRoot)
	}

	names := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		return e.Name(), e.IsDir()
	})
	sort.Strings(names)

	if len(names) == 0 {
		return nil, ierrors.New(ierrors.KindNoSessions, "no debug sessions")
	}
	return names, nil
}

// Create fails with KindAlreadyExists if sessions_root/<name> exists,
// otherwise builds the directory skeleton from spec.md §4.4.
func (s *DirStore) Create(name string) (Session, error) {
	sess := NewSession(s.SessionsRoot, name)

	if _, err := os.Stat(sess.BaseDir); err == nil {
		return Session{}, ierrors.New(ierrors.KindAlreadyExists, "session "+name+" already exists")
	}

	for _, dir := range []string{sess.BaseDir, sess.PrivateUpper, sess.PrivateWork, sess.PrivateMerged} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Session{}, ierrors.Wrap(ierrors.KindAlreadyExists, err, "creating "+dir)
		}
	}

	return sess, nil
}

// Open fails with KindContainerNotFound if sessions_root/<name> is
// missing.
func (s *DirStore) Open(name string) (Session, error) {
	sess := NewSession(s.SessionsRoot, name)
	if _, err := os.Stat(sess.BaseDir); err != nil {
		return Session{}, ierrors.New(ierrors.KindContainerNotFound, "no such debug session: "+name)
	}
	return sess, nil
}

// Destroy recursively removes sess.BaseDir.
func (s *DirStore) Destroy(sess Session) error {
	if err := os.RemoveAll(sess.BaseDir); err != nil {
		return ierrors.Wrap(ierrors.KindReadDirError, err, "removing "+sess.BaseDir)
	}
	return nil
}
