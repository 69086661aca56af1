// Package overlay is the Overlay Composer: it assembles and tears down
// the Linux overlay mounts that inject a debug rootfs beneath a running
// container's writable layer. Grounded on original_source/src/cmd/delete.rs
// (umount2 + recursive removal) and spec.md §4.4, whose six-step inject /
// five-step dissolve algorithm this package implements directly against
// golang.org/x/sys/unix rather than shelling out to mount(8).
package overlay

import (
	"github.com/injesh/injesh/pkg/engine"
	"github.com/sirupsen/logrus"
)

// Restarter is the slice of Engine that the composer needs mid-sequence:
// asking the engine to restart the target so its init picks up the new
// overlay view (spec.md §4.4 step 5) and re-resolving it to obtain a
// fresh init PID and (identical) overlay directories.
type Restarter interface {
	Restart(t engine.Target) (engine.Target, error)
	ResolveTarget(nameOrID string) (engine.Target, error)
}

// Composer is the narrow interface the orchestrator depends on
// (spec.md §9): {inject, dissolve}.
type Composer interface {
	Inject(eng Restarter, target engine.Target, rootfsDir string, sess SessionPaths) (engine.Target, error)
	Dissolve(eng Restarter, target engine.Target, sess SessionPaths) error
}

// SessionPaths is the subset of session.Session the composer needs; kept
// as its own type so pkg/overlay does not import pkg/session, avoiding a
// cyclic dependency between the two leaf-ish packages.
type SessionPaths struct {
	PrivateUpper  string
	PrivateWork   string
	PrivateMerged string
}

// MountComposer is the production Composer, backed by real overlay
// mounts.
type MountComposer struct {
	Log *logrus.Entry
}

func New(log *logrus.Entry) *MountComposer {
	return &MountComposer{Log: log}
}
