package nsjoin

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"syscall"

	"github.com/vishvananda/netns"
	"golang.org/x/sys/unix"
)

// cloneFlags maps a namespace file name to its CLONE_NEW* flag, in the
// order setns is called (spec.md §4.5 step 2).
var cloneFlags = map[string]uintptr{
	"net":    unix.CLONE_NEWNET,
	"cgroup": unix.CLONE_NEWCGROUP,
	"ipc":    unix.CLONE_NEWIPC,
	"pid":    unix.CLONE_NEWPID,
	"uts":    unix.CLONE_NEWUTS,
	"mnt":    unix.CLONE_NEWNS,
}

// RunChild is the reexec'd child entrypoint: cmd/injesh's main() calls
// this directly when os.Args[1] == ReexecArg, before any flag parsing.
// It never returns on success — a successful run ends in execve.
func RunChild(args []string) {
	// setns/chroot/execve must all observe the same thread-local kernel
	// state; the calling goroutine must never migrate OS threads mid
	// sequence.
	runtime.LockOSThread()

	if len(args) < 2 {
		fatalf("nsjoin child: missing mergedDir/command arguments")
	}
	mergedDir := args[0]
	mainProgram := args[1]
	detail := args[2:]

	// fd 3, 4, 5, ... correspond to namespaceOrder, inherited from the
	// parent's ExtraFiles.
	for i, name := range namespaceOrder {
		fd := 3 + i
		if name == "net" {
			// vishvananda/netns wraps setns(2) for CLONE_NEWNET
			// specifically, matching its typed NsHandle-over-fd API.
			if err := netns.Set(netns.NsHandle(fd)); err != nil {
				fatalf("setns(net) failed: %v", err)
			}
		} else if err := unix.Setns(fd, int(cloneFlags[name])); err != nil {
			fatalf("setns(%s) failed: %v", name, err)
		}
		_ = unix.Close(fd)
	}

	if os.Getenv(envUserns) == "1" {
		if err := enterNewUserNamespace(); err != nil {
			fatalf("entering new user namespace failed: %v", err)
		}
	}

	if err := unix.Chroot(mergedDir); err != nil {
		fatalf("chroot(%s) failed: %v", mergedDir, err)
	}
	if err := unix.Chdir("/"); err != nil {
		fatalf("chdir(/) failed: %v", err)
	}

	if err := unix.Mount("proc", "/proc", "proc", 0, ""); err != nil {
		fatalf("mounting /proc failed: %v", err)
	}

	path, err := lookPath(mainProgram)
	if err != nil {
		fatalf("resolving %s: %v", mainProgram, err)
	}

	argv := append([]string{mainProgram}, detail...)
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		fatalf("execve(%s) failed: %v", mainProgram, err)
	}
}

// enterNewUserNamespace implements spec.md §4.5's opt-in user-namespace
// handling for exec: unshare(CLONE_NEWUSER), then write uid_map/gid_map,
// denying setgroups first as the kernel requires.
func enterNewUserNamespace() error {
	if err := unix.Unshare(unix.CLONE_NEWUSER); err != nil {
		return err
	}

	uid, _ := strconv.Atoi(os.Getenv(envUID))
	gid, _ := strconv.Atoi(os.Getenv(envGID))

	if err := os.WriteFile("/proc/self/setgroups", []byte("deny"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile("/proc/self/uid_map", []byte(fmt.Sprintf("0 %d 1", uid)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile("/proc/self/gid_map", []byte(fmt.Sprintf("0 %d 1", gid)), 0o644); err != nil {
		return err
	}
	return nil
}

// lookPath resolves mainProgram against PATH if it isn't already an
// absolute or relative path containing a slash, matching exec(3)'s PATH
// search semantics for a bare program name.
func lookPath(mainProgram string) (string, error) {
	for _, c := range mainProgram {
		if c == '/' {
			return mainProgram, nil
		}
	}
	return execLookPath(mainProgram)
}

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "injesh: "+format+"\n", args...)
	os.Exit(1)
}

// execLookPath avoids pulling in os/exec (and its subprocess-spawning
// surface) into this low-level, post-chroot syscall path — the same
// rationale overthinkos-overthink's shell.go gives for its own
// hand-rolled PATH search.
var execLookPath = func(name string) (string, error) {
	return lookPathEnv(name)
}

func lookPathEnv(name string) (string, error) {
	for _, dir := range splitPath(os.Getenv("PATH")) {
		candidate := dir + "/" + name
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() && info.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return "", syscall.ENOENT
}

func splitPath(path string) []string {
	var dirs []string
	start := 0
	for i := 0; i < len(path); i++ {
		if path[i] == ':' {
			dirs = append(dirs, path[start:i])
			start = i + 1
		}
	}
	dirs = append(dirs, path[start:])
	return dirs
}
