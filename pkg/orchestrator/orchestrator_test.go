package orchestrator

import (
	"testing"

	"github.com/injesh/injesh/pkg/catalog"
	"github.com/injesh/injesh/pkg/engine"
	"github.com/injesh/injesh/pkg/identity"
	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/injesh/injesh/pkg/nsjoin"
	"github.com/injesh/injesh/pkg/overlay"
	"github.com/injesh/injesh/pkg/session"
	"github.com/stretchr/testify/assert"
)

// fakeEngine, fakeCatalog, fakeComposer, and fakeJoiner are narrow
// hand-written fakes, per spec.md §9's one-interface-per-component
// guidance: each leaf dependency is small enough to fake directly without
// a mocking framework. The session store is the real DirStore, rooted in
// a per-test temporary directory.

type fakeEngine struct {
	target  engine.Target
	restart int
}

func (f *fakeEngine) ResolveTarget(nameOrID string) (engine.Target, error) {
	return f.target, nil
}

func (f *fakeEngine) Restart(t engine.Target) (engine.Target, error) {
	f.restart++
	return t, nil
}

type fakeComposer struct {
	injectCalled, dissolveCalled bool
}

func (f *fakeComposer) Inject(eng overlay.Restarter, target engine.Target, rootfsDir string, sess overlay.SessionPaths) (engine.Target, error) {
	f.injectCalled = true
	return target, nil
}

func (f *fakeComposer) Dissolve(eng overlay.Restarter, target engine.Target, sess overlay.SessionPaths) error {
	f.dissolveCalled = true
	return nil
}

type fakeJoiner struct {
	lastInitPID int
}

func (f *fakeJoiner) AttachAndExec(initPID int, mergedDir string, cmd nsjoin.Command, opts nsjoin.Options) (int, error) {
	f.lastInitPID = initPID
	return 0, nil
}

type fakeCatalog struct {
	current bool
	fetched bool
}

func (f *fakeCatalog) Query(distribution, version, arch string) ([]catalog.ImageMeta, error) {
	return []catalog.ImageMeta{{Distribution: distribution, Version: version, Arch: arch}}, nil
}

func (f *fakeCatalog) Newest(entries []catalog.ImageMeta) (catalog.ImageMeta, error) {
	return entries[0], nil
}

func (f *fakeCatalog) IsCurrent(localHashFile string, newest catalog.ImageMeta) (bool, error) {
	return f.current, nil
}

func (f *fakeCatalog) Fetch(newest catalog.ImageMeta, local catalog.LocalImage) error {
	f.fetched = true
	return nil
}

func newTestOrchestrator(t *testing.T) (*Orchestrator, *fakeEngine, *fakeCatalog, *fakeComposer, *fakeJoiner) {
	t.Helper()
	root := t.TempDir()
	id := identity.Identity{
		StateRoot:    root,
		ImagesRoot:   root + "/images",
		SessionsRoot: root + "/containers",
	}
	assert.NoError(t, identity.Initialize(id))

	eng := &fakeEngine{target: engine.Target{ID: "abc123", InitPID: 42}}
	cat := &fakeCatalog{current: true}
	comp := &fakeComposer{}
	joiner := &fakeJoiner{}

	return &Orchestrator{
		Identity: id,
		Engine:   eng,
		Catalog:  cat,
		Composer: comp,
		Joiner:   joiner,
		Store:    session.New(id.SessionsRoot),
	}, eng, cat, comp, joiner
}

func TestLaunchHappyPath(t *testing.T) {
	o, eng, _, comp, joiner := newTestOrchestrator(t)

	opt := RootFSOption{Kind: RootFSLxdImage, Distribution: "ubuntu", Version: "22.04"}
	err := o.Launch("abc123", opt, "demo", nsjoin.Command{Main: "/bin/bash"})
	assert.NoError(t, err)

	assert.True(t, comp.injectCalled)
	assert.Equal(t, 1, eng.restart)
	assert.Equal(t, 42, joiner.lastInitPID)
}

func TestLaunchRejectsUnsupportedRootfs(t *testing.T) {
	o, _, _, _, _ := newTestOrchestrator(t)

	opt := RootFSOption{Kind: RootFSDockerImage, Ref: "alpine:latest"}
	err := o.Launch("abc123", opt, "demo", nsjoin.Command{})
	assert.True(t, ierrors.Is(err, ierrors.KindUnsupportedRootFS))
}

func TestLaunchFetchesWhenNotCurrent(t *testing.T) {
	o, _, cat, _, _ := newTestOrchestrator(t)
	cat.current = false

	opt := RootFSOption{Kind: RootFSLxdImage, Distribution: "ubuntu", Version: "22.04"}
	err := o.Launch("abc123", opt, "demo", nsjoin.Command{})
	assert.NoError(t, err)
	assert.True(t, cat.fetched)
}

func TestExecAndDelete(t *testing.T) {
	o, _, _, comp, joiner := newTestOrchestrator(t)

	opt := RootFSOption{Kind: RootFSLxdImage, Distribution: "ubuntu", Version: "22.04"}
	assert.NoError(t, o.Launch("abc123", opt, "demo", nsjoin.Command{}))

	assert.NoError(t, o.Exec("demo", nsjoin.Command{}))
	assert.Equal(t, 42, joiner.lastInitPID)

	assert.NoError(t, o.Delete("demo"))
	assert.True(t, comp.dissolveCalled)

	_, err := o.Store.Open("demo")
	assert.Error(t, err)
}

func TestPullPushUnimplemented(t *testing.T) {
	o, _, _, _, _ := newTestOrchestrator(t)
	assert.True(t, ierrors.Is(o.PullFile("demo", "/etc/hosts", "/tmp/hosts"), ierrors.KindNotImplemented))
	assert.True(t, ierrors.Is(o.PushFile("demo", "/tmp/hosts", "/etc/hosts"), ierrors.KindNotImplemented))
}
