// Package identity discovers the invoking user's home directory (even
// under sudo), derives the per-user injesh state root, and detects the
// host's CPU architecture for image selection. Grounded on
// original_source/src/user/linux.rs (sudo-aware /etc/passwd lookup) and
// original_source/src/config.rs (state_root/images_root/sessions_root
// layout), restated in the teacher's Go idiom (plain struct + free
// functions, cf. lazydocker's pkg/commands/os.go helpers).
package identity

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/injesh/injesh/pkg/ierrors"
	"golang.org/x/sys/unix"
)

// Arch is one of the three CPU architectures injesh understands.
type Arch string

const (
	ArchAmd64   Arch = "amd64"
	ArchAarch64 Arch = "aarch64"
	ArchArmhf   Arch = "armhf"
)

// Identity is the process-wide set of resolved paths and host facts.
type Identity struct {
	StateRoot    string
	ImagesRoot   string
	SessionsRoot string
	Arch         Arch
}

// Resolve builds an Identity for the current process. On Linux, under
// sudo, the real invoking user's passwd entry is consulted for HOME
// rather than the root HOME sudo exports; without sudo the current
// user's home is used as-is.
func Resolve() (Identity, error) {
	home, err := resolveHome()
	if err != nil {
		return Identity{}, err
	}

	arch, err := resolveArch()
	if err != nil {
		return Identity{}, err
	}

	stateRoot := filepath.Join(home, ".injesh")
	return Identity{
		StateRoot:    stateRoot,
		ImagesRoot:   filepath.Join(stateRoot, "images"),
		SessionsRoot: filepath.Join(stateRoot, "containers"),
		Arch:         arch,
	}, nil
}

func resolveHome() (string, error) {
	if sudoUser := os.Getenv("SUDO_USER"); sudoUser != "" {
		home, err := homeFromPasswd(sudoUser)
		if err == nil {
			return home, nil
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		return home, nil
	}

	if user := os.Getenv("USER"); user != "" {
		if home, err := homeFromPasswd(user); err == nil {
			return home, nil
		}
	}

	return "", ierrors.New(ierrors.KindHomeNotFound, "could not determine invoking user's home directory")
}

// passwdPath is a var, not a constant, so tests can point it at a fixture
// file instead of the host's real /etc/passwd.
var passwdPath = "/etc/passwd"

// homeFromPasswd scans /etc/passwd for username and returns its home
// directory field (field index 5, colon-delimited).
func homeFromPasswd(username string) (string, error) {
	f, err := os.Open(passwdPath)
	if err != nil {
		return "", ierrors.Wrap(ierrors.KindHomeNotFound, err, "opening /etc/passwd")
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) < 6 {
			continue
		}
		if fields[0] == username {
			return fields[5], nil
		}
	}

	return "", ierrors.New(ierrors.KindHomeNotFound, "no passwd entry for "+username)
}

// resolveArch maps utsname.machine onto the three supported targets.
func resolveArch() (Arch, error) {
	var uname unix.Utsname
	if err := unix.Uname(&uname); err != nil {
		return "", ierrors.Wrap(ierrors.KindUnsupportedArchitecture, err, "uname(2) failed")
	}

	machine := cstring(uname.Machine[:])
	switch machine {
	case "x86_64":
		return ArchAmd64, nil
	case "aarch64":
		return ArchAarch64, nil
	case "armv7l":
		return ArchArmhf, nil
	default:
		return "", ierrors.New(ierrors.KindUnsupportedArchitecture, "unsupported machine: "+machine)
	}
}

func cstring(b []byte) string {
	i := strings.IndexByte(string(b), 0)
	if i < 0 {
		return string(b)
	}
	return string(b[:i])
}

// VerifyInitialized fails with KindNotInitialized unless all three roots
// exist.
func VerifyInitialized(id Identity) error {
	for _, dir := range []string{id.StateRoot, id.ImagesRoot, id.SessionsRoot} {
		if !isDir(dir) {
			return ierrors.New(ierrors.KindNotInitialized, "run `injesh init` first")
		}
	}
	return nil
}

// Initialize creates any missing root directory. It fails with
// KindAlreadyInitialized only when all three already existed, i.e. a
// repeat invocation that would do no work.
func Initialize(id Identity) error {
	existed := 0
	for _, dir := range []string{id.StateRoot, id.ImagesRoot, id.SessionsRoot} {
		if isDir(dir) {
			existed++
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return ierrors.Wrap(ierrors.KindNotInitialized, err, "creating "+dir)
		}
	}

	if existed == 3 {
		return ierrors.New(ierrors.KindAlreadyInitialized, "injesh is already initialized")
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
