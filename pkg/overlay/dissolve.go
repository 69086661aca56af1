package overlay

import "github.com/injesh/injesh/pkg/engine"

// Dissolve implements spec.md §4.4's dissolve algorithm, steps 1-4 (step
// 5, removing sessions_root/<name>, belongs to the Session Store, called
// by the orchestrator after Dissolve returns).
//
// Per DESIGN.md's resolution of open question (b): a failed best-effort
// unmount here is logged and does not prevent the restart in step 4 from
// running — the target must never be left attached to a stale namespace
// view merely because a directory-level unmount hiccuped. Restart failure
// itself remains fatal.
func (c *MountComposer) Dissolve(eng Restarter, target engine.Target, sess SessionPaths) error {
	if err := unmountTolerant(target.MergedDir); err != nil && c.Log != nil {
		c.Log.WithError(err).Warn("best-effort unmount of target mergeddir failed during dissolve")
	}
	if err := unmountTolerant(sess.PrivateMerged); err != nil && c.Log != nil {
		c.Log.WithError(err).Warn("best-effort unmount of session merged dir failed during dissolve")
	}

	if err := copyTree(sess.PrivateUpper, target.UpperDir); err != nil {
		return err
	}

	if err := mountOverlay(target.LowerDir, target.UpperDir, target.WorkDir, target.MergedDir); err != nil {
		return err
	}

	if _, err := eng.Restart(target); err != nil {
		return err
	}

	return nil
}
