package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
)

const (
	dirPerm  os.FileMode = 0o700
	filePerm os.FileMode = 0o600
)

// writeAtomic replaces path with the bytes produced by write. The content goes
// to a temporary file in the same directory which is restricted to the owner
// before anything is written, then synced and renamed over path. On any error
// the temporary file is removed and path is left as it was.
//
// On platforms without POSIX permission bits the chmod is best effort.
func writeAtomic(path string, write func(w io.Writer) error) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return goerr.Wrap(err, "failed to create config directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temporary config file", goerr.V("dir", dir))
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(filePerm); err != nil {
		return goerr.Wrap(err, "failed to restrict temporary config file", goerr.V("path", tmpPath))
	}
	if err := write(tmp); err != nil {
		return goerr.Wrap(err, "failed to write config", goerr.V("path", tmpPath))
	}
	if err := tmp.Sync(); err != nil {
		return goerr.Wrap(err, "failed to sync config", goerr.V("path", tmpPath))
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close config", goerr.V("path", tmpPath))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return goerr.Wrap(err, "failed to replace config file", goerr.V("path", path))
	}
	return nil
}
