package overlay

import (
	"io"
	"os"
	"path/filepath"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/injesh/injesh/pkg/ierrors"
)

// copyTree performs a deep recursive copy of src into dst, per spec.md
// §4.4: "regular files copied; directories re-created; other file types
// out of scope." Used both to snapshot a target's upperdir at launch and
// to restore it at dissolve.
func copyTree(src, dst string) error {
	if err := os.MkdirAll(dst, 0o755); err != nil {
		return ierrors.Wrap(ierrors.KindCopyFailed, err, "creating "+dst)
	}

	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return ierrors.Wrap(ierrors.KindCopyFailed, err, "walking "+path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return ierrors.Wrap(ierrors.KindInvalidPath, err, "relativizing "+path)
		}
		if rel == "." {
			return nil
		}

		target, err := securejoin.SecureJoin(dst, rel)
		if err != nil {
			return ierrors.Wrap(ierrors.KindInvalidPath, err, "joining "+rel)
		}

		switch {
		case info.IsDir():
			return os.MkdirAll(target, info.Mode())
		case info.Mode().IsRegular():
			return copyFile(path, target, info.Mode())
		default:
			// symlinks, device nodes, sockets, fifos: out of scope.
			return nil
		}
	})
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return ierrors.Wrap(ierrors.KindCopyFailed, err, "opening "+src)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return ierrors.Wrap(ierrors.KindCopyFailed, err, "creating "+dst)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return ierrors.Wrap(ierrors.KindCopyFailed, err, "copying "+src+" to "+dst)
	}
	return nil
}
