package engine

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/injesh/injesh/pkg/ierrors"
)

// FindContainerInitPID implements spec.md §4.2's find_container_init_pid:
// walk /proc newest-PID-first, find the engine's per-container supervisor
// by matching "-id\0<id>" in its cmdline, then take its first child from
// the task/<pid>/children file, and verify that child's parent's cmdline
// mentions "moby" to confirm it belongs to an engine-managed process tree.
func (e *DockerEngine) FindContainerInitPID(id string) (int, error) {
	root := e.ProcRoot
	if root == "" {
		root = defaultProcRoot
	}

	pids, err := listNumericEntries(root)
	if err != nil {
		return 0, ierrors.Wrap(ierrors.KindContainerProcessNotFound, err, "reading "+root)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(pids)))

	needle := []byte("-id\x00" + id)

	for _, pid := range pids {
		cmdline, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "cmdline"))
		if err != nil {
			// the process may have exited between readdir and read; skip it.
			continue
		}
		if !bytes.Contains(cmdline, needle) {
			continue
		}

		childPID, ok := firstChild(root, pid)
		if !ok {
			continue
		}

		if !parentCmdlineContainsMoby(root, childPID) {
			continue
		}

		return childPID, nil
	}

	return 0, ierrors.New(ierrors.KindContainerProcessNotFound, "no supervisor found for "+id)
}

func listNumericEntries(root string) ([]int, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}

	var pids []int
	for _, entry := range entries {
		if pid, err := strconv.Atoi(entry.Name()); err == nil {
			pids = append(pids, pid)
		}
	}
	return pids, nil
}

// firstChild reads /proc/<pid>/task/<pid>/children (space-delimited,
// trailing space legal) and returns its first entry.
func firstChild(root string, pid int) (int, bool) {
	path := filepath.Join(root, strconv.Itoa(pid), "task", strconv.Itoa(pid), "children")
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}

	fields := strings.Fields(string(raw))
	if len(fields) == 0 {
		return 0, false
	}

	child, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return child, true
}

// parentCmdlineContainsMoby reads pid's parent PID from /proc/<pid>/status
// and checks whether the parent's cmdline contains the substring "moby".
func parentCmdlineContainsMoby(root string, pid int) bool {
	status, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "status"))
	if err != nil {
		return false
	}

	ppid, ok := parsePPid(status)
	if !ok {
		return false
	}

	cmdline, err := os.ReadFile(filepath.Join(root, strconv.Itoa(ppid), "cmdline"))
	if err != nil {
		return false
	}

	return bytes.Contains(cmdline, []byte("moby"))
}

func parsePPid(status []byte) (int, bool) {
	for _, line := range strings.Split(string(status), "\n") {
		if !strings.HasPrefix(line, "PPid:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			return 0, false
		}
		ppid, err := strconv.Atoi(fields[1])
		if err != nil {
			return 0, false
		}
		return ppid, true
	}
	return 0, false
}
