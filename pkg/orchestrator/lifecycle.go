package orchestrator

import (
	"github.com/injesh/injesh/pkg/identity"
	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/injesh/injesh/pkg/nsjoin"
	"github.com/injesh/injesh/pkg/session"
)

// Launch implements spec.md §4.7's launch: allocate a fresh session
// (the existence guard per §8's boundary property), then resolve the
// target, select and (if needed) fetch a rootfs, inject the overlay,
// persist the session's settings, restart the target and refresh it, and
// attach and exec.
func (o *Orchestrator) Launch(targetTok string, rootfsOpt RootFSOption, name string, cmd nsjoin.Command) error {
	if err := identity.VerifyInitialized(o.Identity); err != nil {
		return err
	}

	sess, err := o.Store.Create(name)
	if err != nil {
		return err
	}

	target, err := o.Engine.ResolveTarget(targetTok)
	if err != nil {
		return err
	}

	rootfsDir, err := o.resolveRootfs(rootfsOpt)
	if err != nil {
		return err
	}

	refreshed, err := o.Composer.Inject(o.Engine, target, rootfsDir, o.composerSessionPaths(sess))
	if err != nil {
		return err
	}

	main := cmd.Main
	if main == "" {
		main = nsjoin.DefaultCommand.Main
	}
	settings := session.Settings{
		DockerContainerID: refreshed.ID,
		Shell:             main,
		Commands:          cmd.Detail,
	}
	if err := session.WriteSettings(sess, settings); err != nil {
		return err
	}

	if _, err := o.Engine.Restart(refreshed); err != nil {
		return err
	}
	refreshed, err = o.Engine.ResolveTarget(refreshed.ID)
	if err != nil {
		return err
	}

	_, err = o.Joiner.AttachAndExec(refreshed.InitPID, sess.PrivateMerged, cmd, nsjoin.Options{})
	return err
}

// Exec implements spec.md §4.7's exec: reopen an existing session's
// settings and attach to the container they recorded, using the shell
// the session was launched with unless the caller overrides it.
func (o *Orchestrator) Exec(name string, cmd nsjoin.Command) error {
	if err := identity.VerifyInitialized(o.Identity); err != nil {
		return err
	}

	sess, err := o.Store.Open(name)
	if err != nil {
		return err
	}

	settings, err := session.ReadSettings(sess)
	if err != nil {
		return err
	}

	target, err := o.Engine.ResolveTarget(settings.DockerContainerID)
	if err != nil {
		return err
	}

	if cmd.Main == "" {
		cmd.Main = settings.Shell
	}

	_, err = o.Joiner.AttachAndExec(target.InitPID, sess.PrivateMerged, cmd, nsjoin.Options{})
	return err
}

// Delete implements spec.md §4.7's delete: dissolve the overlay (best
// effort on the unmount half, per DESIGN.md's open-question (b)
// decision) and then remove the session's own directory tree.
func (o *Orchestrator) Delete(name string) error {
	if err := identity.VerifyInitialized(o.Identity); err != nil {
		return err
	}

	sess, err := o.Store.Open(name)
	if err != nil {
		return err
	}

	settings, err := session.ReadSettings(sess)
	if err != nil {
		return err
	}

	target, err := o.Engine.ResolveTarget(settings.DockerContainerID)
	if err != nil {
		return err
	}

	if err := o.Composer.Dissolve(o.Engine, target, o.composerSessionPaths(sess)); err != nil {
		return err
	}

	return o.Store.Destroy(sess)
}

// PullFile and PushFile are left unimplemented by the core per
// SPEC_FULL.md §7 (file transfer is scoped out of this port); they
// still exist as orchestrator entry points so cmd/injesh can surface a
// clear, typed error rather than an unrecognized subcommand.
func (o *Orchestrator) PullFile(name, remotePath, localPath string) error {
	return ierrors.New(ierrors.KindNotImplemented, "file pull is not implemented")
}

func (o *Orchestrator) PushFile(name, localPath, remotePath string) error {
	return ierrors.New(ierrors.KindNotImplemented, "file push is not implemented")
}
