package overlay

import (
	"errors"

	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/moby/sys/mountinfo"
	"golang.org/x/sys/unix"
)

// mountOverlay mounts an overlay filesystem at mergedDir with empty mount
// flags, per spec.md §4.4: "Each mount call uses the Linux overlay
// filesystem with empty mount flags."
func mountOverlay(lowerdir, upperdir, workdir, mergedDir string) error {
	options := "lowerdir=" + lowerdir + ",upperdir=" + upperdir + ",workdir=" + workdir
	if err := unix.Mount("overlay", mergedDir, "overlay", 0, options); err != nil {
		return ierrors.Wrap(ierrors.KindMountFailed, err, "mounting overlay at "+mergedDir)
	}
	return nil
}

// unmountTolerant unmounts path, tolerating EBUSY (the caller's
// subsequent engine restart will cause a remount regardless, per
// spec.md §4.4 step 3 and DESIGN.md open-question (a)). A path that
// isn't currently mounted is treated as already-unmounted.
func unmountTolerant(path string) error {
	if !isMounted(path) {
		return nil
	}

	err := unix.Unmount(path, 0)
	if err == nil || errors.Is(err, unix.EBUSY) {
		return nil
	}
	return ierrors.Wrap(ierrors.KindUnmountFailed, err, "unmounting "+path)
}

// isMounted reports whether path is currently a mountpoint, consulting
// /proc/self/mountinfo.
func isMounted(path string) bool {
	mounted, err := mountinfo.Mounted(path)
	return err == nil && mounted
}
