package catalog

import (
	"archive/tar"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/docker/go-units"
	"github.com/injesh/injesh/pkg/ierrors"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"
)

// Fetch implements spec.md §4.3's fetch: download rootfs.tar.xz and its
// detached signature into local.BaseDir, decompress and unpack the
// tarball into local.RootfsDir (recreated fresh), then delete the
// tarball and keep the signature as the cache sentinel.
func (c *LxdCatalog) Fetch(newest ImageMeta, local LocalImage) error {
	if err := os.MkdirAll(local.BaseDir, 0o755); err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "creating "+local.BaseDir)
	}

	tarballPath := filepath.Join(local.BaseDir, rootfsFile)
	if err := downloadTo(c.ServerRoot+newest.PathSuffix+rootfsFile, tarballPath, c.Log); err != nil {
		return err
	}
	defer os.Remove(tarballPath)

	if err := downloadTo(c.ServerRoot+newest.PathSuffix+rootfsHashFile, local.HashFile, c.Log); err != nil {
		return err
	}

	if err := os.RemoveAll(local.RootfsDir); err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "clearing "+local.RootfsDir)
	}
	if err := os.MkdirAll(local.RootfsDir, 0o755); err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "creating "+local.RootfsDir)
	}

	return extractTarXz(tarballPath, local.RootfsDir)
}

func downloadTo(url, destination string, log *logrus.Entry) error {
	resp, err := http.Get(url)
	if err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "fetching "+url)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ierrors.New(ierrors.KindImageNotFound, "unexpected status fetching "+url)
	}

	out, err := os.Create(destination)
	if err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "creating "+destination)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "streaming "+url)
	}

	if log != nil {
		log.Debugf("fetched %s (%s)", url, units.HumanSize(float64(written)))
	}
	return nil
}

// extractTarXz decompresses an xz stream and unpacks the tar archive it
// contains into destDir, joining every entry path through
// filepath-securejoin so a hostile or symlinked entry cannot escape
// destDir.
func extractTarXz(tarballPath, destDir string) error {
	f, err := os.Open(tarballPath)
	if err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "opening "+tarballPath)
	}
	defer f.Close()

	xzReader, err := xz.NewReader(f)
	if err != nil {
		return ierrors.Wrap(ierrors.KindImageNotFound, err, "decompressing "+tarballPath)
	}

	tr := tar.NewReader(xzReader)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ierrors.Wrap(ierrors.KindImageNotFound, err, "reading tar entry")
		}

		target, err := securejoin.SecureJoin(destDir, hdr.Name)
		if err != nil {
			return ierrors.Wrap(ierrors.KindInvalidPath, err, "joining tar entry "+hdr.Name)
		}

		if err := extractEntry(tr, hdr, target); err != nil {
			return err
		}
	}
	return nil
}

func extractEntry(tr *tar.Reader, hdr *tar.Header, target string) error {
	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, os.FileMode(hdr.Mode))
	case tar.TypeSymlink:
		_ = os.MkdirAll(filepath.Dir(target), 0o755)
		_ = os.Remove(target)
		if err := os.Symlink(hdr.Linkname, target); err != nil {
			return ierrors.Wrap(ierrors.KindCopyFailed, err, "symlinking "+target)
		}
		return nil
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return ierrors.Wrap(ierrors.KindCopyFailed, err, "creating parent of "+target)
		}
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, os.FileMode(hdr.Mode))
		if err != nil {
			return ierrors.Wrap(ierrors.KindCopyFailed, err, "creating "+target)
		}
		defer out.Close()
		if _, err := io.Copy(out, tr); err != nil {
			return ierrors.Wrap(ierrors.KindCopyFailed, err, "writing "+target)
		}
		return nil
	default:
		// device nodes, fifos, hardlinks: out of scope, same as the
		// upper-layer snapshot copy in pkg/overlay.
		return nil
	}
}

func readFileIfExists(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return b, nil
}
