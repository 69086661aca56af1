package overlay

import (
	"github.com/injesh/injesh/pkg/engine"
)

// Inject implements spec.md §4.4's inject algorithm, steps 2-6 (step 1,
// "ensure the rootfs is current", belongs to the orchestrator: it is a
// catalog concern, not a mount concern, so the caller is expected to have
// already produced a ready rootfsDir before calling Inject; see
// DESIGN.md).
//
//  2. session directories already exist by the time Inject runs (created
//     by the Session Store at launch); Inject snapshots target.UpperDir
//     into sess.PrivateUpper.
//  3. unmount target.MergedDir, tolerating EBUSY.
//  4. mount the target's overlay with the injected rootfs as an extra
//     lower layer.
//  5. ask the engine to restart the target and re-resolve it for a fresh
//     init PID.
//  6. mount the session's private overlay, the view the debug process
//     will chroot into.
func (c *MountComposer) Inject(eng Restarter, target engine.Target, rootfsDir string, sess SessionPaths) (engine.Target, error) {
	if err := copyTree(target.UpperDir, sess.PrivateUpper); err != nil {
		return target, err
	}

	if err := unmountTolerant(target.MergedDir); err != nil {
		return target, err
	}

	if err := mountOverlay(rootfsDir+":"+target.LowerDir, target.UpperDir, target.WorkDir, target.MergedDir); err != nil {
		return target, err
	}

	if _, err := eng.Restart(target); err != nil {
		return target, err
	}

	refreshed, err := eng.ResolveTarget(target.ID)
	if err != nil {
		return target, err
	}

	if err := mountOverlay(rootfsDir+":"+refreshed.MergedDir, sess.PrivateUpper, sess.PrivateWork, sess.PrivateMerged); err != nil {
		return refreshed, err
	}

	return refreshed, nil
}
