package endpoints

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/mattjoyce/webshell/internal/config"
)

// ErrOutsideScope is returned for paths the fs scope does not cover.
var ErrOutsideScope = errors.New("path not allowed by fs scope")

// DiskEntry is one readDir result.
type DiskEntry struct {
	Path     string      `json:"path"`
	Name     string      `json:"name,omitempty"`
	Children []DiskEntry `json:"children,omitempty"`
}

type fsOptions struct {
	Recursive bool `json:"recursive"`
}

type fsArgs struct {
	Path        string     `json:"path"`
	Contents    string     `json:"contents"`
	Source      string     `json:"source"`
	Destination string     `json:"destination"`
	OldPath     string     `json:"oldPath"`
	NewPath     string     `json:"newPath"`
	Options     *fsOptions `json:"options"`
}

func (a fsArgs) recursive() bool { return a.Options != nil && a.Options.Recursive }

func (e *Endpoints) fs(_ context.Context, host Host, _ Caller, msg json.RawMessage) (any, error) {
	cmd, err := decodeCommand(ModuleFs, msg)
	if err != nil {
		return nil, err
	}
	if err := allowed(host, config.CategoryFs); err != nil {
		return nil, err
	}
	var args fsArgs
	if err := decode(ModuleFs, cmd, msg, &args); err != nil {
		return nil, err
	}
	scope := host.Config().Tauri.Allowlist.Fs.Scope
	fsys := e.deps.FS

	switch cmd {
	case "readTextFile":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		b, err := afero.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		return string(b), nil
	case "readBinaryFile":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		b, err := afero.ReadFile(fsys, p)
		if err != nil {
			return nil, err
		}
		return byteArray(b), nil
	case "writeFile":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		return nil, afero.WriteFile(fsys, p, []byte(args.Contents), 0o644)
	case "writeBinaryFile":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		b, err := base64.StdEncoding.DecodeString(args.Contents)
		if err != nil {
			return nil, fmt.Errorf("%w: Fs.writeBinaryFile: contents must be base64: %v", ErrInvalidMessage, err)
		}
		return nil, afero.WriteFile(fsys, p, b, 0o644)
	case "readDir":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		return readDir(fsys, p, args.recursive())
	case "copyFile":
		src, err := scoped(scope, args.Source)
		if err != nil {
			return nil, err
		}
		dst, err := scoped(scope, args.Destination)
		if err != nil {
			return nil, err
		}
		return nil, copyFile(fsys, src, dst)
	case "createDir":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		if args.recursive() {
			return nil, fsys.MkdirAll(p, 0o755)
		}
		return nil, fsys.Mkdir(p, 0o755)
	case "removeDir":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		if args.recursive() {
			return nil, fsys.RemoveAll(p)
		}
		return nil, fsys.Remove(p)
	case "removeFile":
		p, err := scoped(scope, args.Path)
		if err != nil {
			return nil, err
		}
		return nil, fsys.Remove(p)
	case "renameFile":
		from, err := scoped(scope, args.OldPath)
		if err != nil {
			return nil, err
		}
		to, err := scoped(scope, args.NewPath)
		if err != nil {
			return nil, err
		}
		return nil, fsys.Rename(from, to)
	}
	return nil, unknownCommand(ModuleFs, cmd)
}

// scoped cleans p and checks it against scope. An empty scope allows any
// path.
func scoped(scope []string, p string) (string, error) {
	if p == "" {
		return "", fmt.Errorf("%w: empty path", ErrInvalidMessage)
	}
	clean := filepath.Clean(p)
	if len(scope) == 0 {
		return clean, nil
	}
	abs, err := filepath.Abs(clean)
	if err != nil {
		return "", err
	}
	for _, root := range scope {
		rootAbs, err := filepath.Abs(root)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(rootAbs, abs)
		if err != nil {
			continue
		}
		if rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrOutsideScope, p)
}

// byteArray encodes as a JSON array of numbers rather than base64.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	ints := make([]int, len(b))
	for i, v := range b {
		ints[i] = int(v)
	}
	return json.Marshal(ints)
}

func readDir(fsys afero.Fs, p string, recursive bool) ([]DiskEntry, error) {
	infos, err := afero.ReadDir(fsys, p)
	if err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	entries := make([]DiskEntry, 0, len(infos))
	for _, info := range infos {
		entry := DiskEntry{Path: filepath.Join(p, info.Name()), Name: info.Name()}
		if info.IsDir() && recursive {
			children, err := readDir(fsys, entry.Path, true)
			if err != nil {
				return nil, err
			}
			entry.Children = children
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func copyFile(fsys afero.Fs, src, dst string) error {
	info, err := fsys.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("copy %s: %w", src, os.ErrInvalid)
	}
	b, err := afero.ReadFile(fsys, src)
	if err != nil {
		return err
	}
	return afero.WriteFile(fsys, dst, b, info.Mode().Perm())
}
