package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNetworkFilesystem is returned when the settings database would live on
// a share where SQLite file locking cannot be trusted.
var ErrNetworkFilesystem = errors.New("settings database is on a network filesystem")

// fsTypeFunc names the filesystem type holding path.
type fsTypeFunc func(path string) (string, error)

var remoteKinds = []string{"afpfs", "cifs", "nfs", "nfs4", "smbfs", "smb2", "webdav"}

func ensureLocalDisk(path string) error {
	return checkLocalDisk(path, filesystemType)
}

func checkLocalDisk(path string, fsType fsTypeFunc) error {
	if path == "" {
		return errors.New("sqlite path is empty")
	}
	dir, err := existingAncestor(path)
	if err != nil {
		return fmt.Errorf("resolve database path %q: %w", path, err)
	}
	kind, err := fsType(dir)
	if err != nil {
		// Lookup unsupported or failed. Only a positive match blocks startup.
		return nil
	}
	if isRemote(kind) {
		return fmt.Errorf("%w: %q is on %s; set runtime.data_dir to a local directory", ErrNetworkFilesystem, path, kind)
	}
	return nil
}

// existingAncestor walks up from path until it finds something that exists,
// so a data dir that has not been created yet is judged by its parent.
func existingAncestor(path string) (string, error) {
	p, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	for {
		_, err := os.Stat(p)
		switch {
		case err == nil:
			return p, nil
		case !errors.Is(err, os.ErrNotExist):
			return "", err
		}
		parent := filepath.Dir(p)
		if parent == p {
			return "", fmt.Errorf("no existing parent for %q", path)
		}
		p = parent
	}
}

func isRemote(kind string) bool {
	kind = strings.ToLower(strings.TrimSpace(kind))
	for _, r := range remoteKinds {
		if kind == r {
			return true
		}
	}
	return false
}
