// Package engine is the Engine Adapter: it talks to a local container
// engine over a Unix-domain HTTP socket and walks /proc to discover a
// target container's init PID. Grounded on original_source/src/container.rs
// (wire protocol, PID-discovery rationale) restated as direct /proc walking
// per spec.md §4.2, and on lazydocker's pkg/commands/docker.go for the
// shape of a Go component wrapping a client with a logger field.
package engine

import "github.com/sirupsen/logrus"

// Target is an immutable snapshot of a resolved container's identity and
// overlay graph-driver paths. InitPID is refreshed explicitly after a
// restart rather than tracked as shared mutable state.
type Target struct {
	ID        string
	InitPID   int
	LowerDir  string
	UpperDir  string
	WorkDir   string
	MergedDir string
}

// Engine is the narrow interface the rest of injesh depends on, per
// spec.md §9's "narrow interface per component" guidance. DockerEngine is
// the only production implementation; tests can stub this out entirely.
type Engine interface {
	ResolveTarget(nameOrID string) (Target, error)
	Restart(t Target) (Target, error)
}

// DockerEngine is the production Engine backed by the Docker Engine API
// exposed over a local Unix-domain socket.
type DockerEngine struct {
	SocketPath string
	ProcRoot   string
	Log        *logrus.Entry
}

const defaultSocketPath = "/var/run/docker.sock"
const defaultProcRoot = "/proc"

// New constructs a DockerEngine with injesh's default socket path and
// /proc root, overridable for tests via the returned struct's fields.
func New(log *logrus.Entry) *DockerEngine {
	return &DockerEngine{
		SocketPath: defaultSocketPath,
		ProcRoot:   defaultProcRoot,
		Log:        log,
	}
}
