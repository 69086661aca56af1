// Package catalog is the Image Catalog: it locates and materializes a root
// filesystem tarball for a (distribution, version) pair from the LXD image
// index, on the host's architecture. Grounded on
// original_source/src/image_downloader_lxd.rs (index URL, rootfs server
// domain, newest-selection) and original_source/src/image.rs (local cache
// layout, signature-based staleness check).
package catalog

import (
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	imageMetaURL     = "https://uk.lxd.images.canonical.com/meta/1.0/index-user"
	rootfsServerRoot = "https://us.lxd.images.canonical.com"
	rootfsFile       = "rootfs.tar.xz"
	rootfsHashFile   = "rootfs.tar.xz.asc"
)

// ImageMeta is one parsed entry of the LXD index, scoped to a single
// query's (distribution, version, arch). Ephemeral — it lives only for
// the duration of a query.
type ImageMeta struct {
	Distribution string
	Version      string
	Arch         string
	UploadTS     time.Time
	PathSuffix   string
}

// LocalImage is the persistent, on-disk cache entry for a
// (distribution, version) pair.
type LocalImage struct {
	Distribution string
	Version      string
	BaseDir      string
	RootfsDir    string
	HashFile     string
}

// NewLocalImage derives a LocalImage's paths under imagesRoot, per
// spec.md §3's LocalImage entity.
func NewLocalImage(imagesRoot, distribution, version string) LocalImage {
	base := filepath.Join(imagesRoot, distribution, version)
	return LocalImage{
		Distribution: distribution,
		Version:      version,
		BaseDir:      base,
		RootfsDir:    filepath.Join(base, "rootfs"),
		HashFile:     filepath.Join(base, rootfsHashFile),
	}
}

// Catalog is the narrow interface the orchestrator depends on
// (spec.md §9): {query, is_current, fetch}.
type Catalog interface {
	Query(distribution, version, arch string) ([]ImageMeta, error)
	Newest(entries []ImageMeta) (ImageMeta, error)
	IsCurrent(localHashFile string, newest ImageMeta) (bool, error)
	Fetch(newest ImageMeta, local LocalImage) error
}

// LxdCatalog is the production Catalog backed by Canonical's LXD image
// servers.
type LxdCatalog struct {
	IndexURL   string
	ServerRoot string
	Log        *logrus.Entry
}

// New constructs an LxdCatalog pointed at the production LXD image
// servers, overridable in tests.
func New(log *logrus.Entry) *LxdCatalog {
	return &LxdCatalog{
		IndexURL:   imageMetaURL,
		ServerRoot: rootfsServerRoot,
		Log:        log,
	}
}
