// Package orchestrator wires the five verbs (init, launch, exec, delete,
// list) over the six leaf components, per spec.md §4.7 and §2's control
// flow for launch.
package orchestrator

import (
	"github.com/injesh/injesh/pkg/catalog"
	"github.com/injesh/injesh/pkg/engine"
	"github.com/injesh/injesh/pkg/identity"
	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/injesh/injesh/pkg/nsjoin"
	"github.com/injesh/injesh/pkg/overlay"
	"github.com/injesh/injesh/pkg/session"
	"github.com/sirupsen/logrus"
)

// Orchestrator composes the six leaf components behind the five verbs.
type Orchestrator struct {
	Identity identity.Identity
	Engine   engine.Engine
	Catalog  catalog.Catalog
	Composer overlay.Composer
	Joiner   nsjoin.Joiner
	Store    session.Store
	Log      *logrus.Entry
}

// New wires the production implementation of every component around a
// resolved Identity.
func New(id identity.Identity, log *logrus.Entry) *Orchestrator {
	return &Orchestrator{
		Identity: id,
		Engine:   engine.New(log.WithField("component", "engine")),
		Catalog:  catalog.New(log.WithField("component", "catalog")),
		Composer: overlay.New(log.WithField("component", "overlay")),
		Joiner:   nsjoin.New(log.WithField("component", "nsjoin")),
		Store:    session.New(id.SessionsRoot),
		Log:      log,
	}
}

// Init implements spec.md §4.7's init: Identity.resolve → Identity.initialize.
// Identity resolution has already happened by the time an Orchestrator
// exists (see config.NewAppConfig), so Init only performs the directory
// creation.
func (o *Orchestrator) Init() error {
	return identity.Initialize(o.Identity)
}

// List implements spec.md §4.7's list.
func (o *Orchestrator) List() ([]string, error) {
	if err := identity.VerifyInitialized(o.Identity); err != nil {
		return nil, err
	}
	return o.Store.List()
}

func (o *Orchestrator) composerSessionPaths(sess session.Session) overlay.SessionPaths {
	return overlay.SessionPaths{
		PrivateUpper:  sess.PrivateUpper,
		PrivateWork:   sess.PrivateWork,
		PrivateMerged: sess.PrivateMerged,
	}
}

// resolveRootfs implements the rootfs-selection step of launch, backed
// by the Image Catalog for the only implemented option, LxdImage.
func (o *Orchestrator) resolveRootfs(opt RootFSOption) (string, error) {
	if opt.Kind != RootFSLxdImage {
		return "", ierrors.New(ierrors.KindUnsupportedRootFS, "only --rootfs-distribution/--rootfs-version is implemented by the core")
	}

	local := catalog.NewLocalImage(o.Identity.ImagesRoot, opt.Distribution, opt.Version)

	entries, err := o.Catalog.Query(opt.Distribution, opt.Version, string(o.Identity.Arch))
	if err != nil {
		return "", err
	}

	newest, err := o.Catalog.Newest(entries)
	if err != nil {
		return "", err
	}

	current, err := o.Catalog.IsCurrent(local.HashFile, newest)
	if err != nil {
		return "", err
	}
	if !current {
		if err := o.Catalog.Fetch(newest, local); err != nil {
			return "", err
		}
	}

	return local.RootfsDir, nil
}
