package nsjoin

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/injesh/injesh/pkg/ierrors"
)

// ReexecArg is the hidden argv[1] that cmd/injesh's main() recognizes to
// dispatch into RunChild instead of the ordinary CLI parser.
//
// Go cannot safely fork() a running, multi-threaded runtime and then
// keep executing arbitrary Go code in the child the way
// original_source/src/cmd/exec.rs's unsafe fork()/match ForkResult::Child
// does — only raw, allocation-free syscalls are safe between fork and
// exec. AttachAndExec instead re-execs the injesh binary itself into a
// fresh, single-threaded child carrying the opened namespace file
// descriptors as inherited ExtraFiles; that child performs the setns
// sequence, chroot, and the final execve. The parent's exec.Cmd.Run
// plays the role of the source's fork+waitpid.
const ReexecArg = "__injesh_nsjoin_exec__"

const (
	envUserns = "INJESH_NSJOIN_USERNS"
	envUID    = "INJESH_NSJOIN_UID"
	envGID    = "INJESH_NSJOIN_GID"
)

// AttachAndExec implements spec.md §4.5's attach_and_exec: open the
// target's namespace file handles, join them in order, chroot into the
// debug merged view, remount /proc, and exec the command. Returns the
// child's exit status.
func (j *ProcessJoiner) AttachAndExec(initPID int, mergedDir string, cmd Command, opts Options) (int, error) {
	nsFiles, err := openNamespaceFiles(j.procRoot(), initPID)
	if err != nil {
		return 0, err
	}
	defer closeAll(nsFiles)

	main := cmd.Main
	if main == "" {
		main = DefaultCommand.Main
	}

	self, err := os.Executable()
	if err != nil {
		return 0, ierrors.Wrap(ierrors.KindExecFailed, err, "resolving injesh's own executable path")
	}

	args := append([]string{ReexecArg, mergedDir, main}, cmd.Detail...)
	child := exec.Command(self, args...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr
	child.Env = os.Environ()
	if opts.NewUserNamespace {
		child.Env = append(child.Env,
			envUserns+"=1",
			envUID+"="+strconv.Itoa(opts.UID),
			envGID+"="+strconv.Itoa(opts.GID),
		)
	}

	// ExtraFiles become fd 3, 4, 5, ... in the child, in namespaceOrder.
	for _, name := range namespaceOrder {
		child.ExtraFiles = append(child.ExtraFiles, nsFiles[name])
	}

	if err := child.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return exitErr.ExitCode(), nil
		}
		return 0, ierrors.Wrap(ierrors.KindForkFailed, err, "running nsjoin child")
	}
	return 0, nil
}

func (j *ProcessJoiner) procRoot() string {
	if j.ProcRoot == "" {
		return "/proc"
	}
	return j.ProcRoot
}

// openNamespaceFiles opens /proc/<pid>/ns/{net,cgroup,ipc,pid,uts,mnt}.
func openNamespaceFiles(procRoot string, pid int) (map[string]*os.File, error) {
	base := filepath.Join(procRoot, strconv.Itoa(pid), "ns")
	files := make(map[string]*os.File, len(namespaceOrder))

	for _, name := range namespaceOrder {
		f, err := os.Open(filepath.Join(base, name))
		if err != nil {
			closeAll(files)
			return nil, ierrors.Wrap(ierrors.KindNsOpenFailed, err, "opening ns handle "+name)
		}
		files[name] = f
	}
	return files, nil
}

func closeAll(files map[string]*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
