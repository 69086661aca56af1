package orchestrator

// RootFSKind is the sum type from spec.md §9:
// RootFSOption ∈ {LocalDir(path), LxdImage(distribution,version),
// DockerImage(ref), LxdRemote(ref), None}. Only LxdImage is implemented
// by the core; the CLI still parses the other three so `launch`'s
// at-most-one-of-four validation (original_source/src/parser.rs's
// check_rootfs) can run before the orchestrator rejects them.
type RootFSKind int

const (
	RootFSNone RootFSKind = iota
	RootFSLocalDir
	RootFSLxdImage
	RootFSDockerImage
	RootFSLxdRemote
)

// RootFSOption is the parsed form of launch's --rootfs* flags.
type RootFSOption struct {
	Kind         RootFSKind
	Path         string // LocalDir
	Distribution string // LxdImage
	Version      string // LxdImage
	Ref          string // DockerImage, LxdRemote
}
