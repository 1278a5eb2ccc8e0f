package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// FSResolver stores each owner's records under <root>/<owner>/mindmaps/.
// Production uses afero.NewOsFs(); tests use afero.NewMemMapFs().
type FSResolver struct {
	fs   afero.Fs
	root string
}

func NewFSResolver(fs afero.Fs, root string) *FSResolver {
	return &FSResolver{fs: fs, root: root}
}

func (r *FSResolver) Namespace(_ context.Context, ownerID string) (Namespace, error) {
	if !ValidKey(ownerID) {
		return nil, fmt.Errorf("%w: owner %q", ErrInvalidKey, ownerID)
	}
	return &fsNamespace{afs: r.fs, dir: filepath.Join(r.root, ownerID, Folder)}, nil
}

type fsNamespace struct {
	afs afero.Fs
	dir string
}

func (n *fsNamespace) Exists(context.Context) (bool, error) {
	return afero.DirExists(n.afs, n.dir)
}

func (n *fsNamespace) Create(context.Context) error {
	return n.afs.MkdirAll(n.dir, 0o750)
}

func (n *fsNamespace) Read(_ context.Context, name string) ([]byte, error) {
	if !ValidKey(name) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	b, err := afero.ReadFile(n.afs, n.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	return b, err
}

// Write goes through a temp file in the same directory and a rename, so a
// reader never sees a partially written record.
func (n *fsNamespace) Write(_ context.Context, name string, data []byte) error {
	if !ValidKey(name) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	tmp, err := afero.TempFile(n.afs, n.dir, "."+name+".tmp-")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = n.afs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = n.afs.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = n.afs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := n.afs.Rename(tmpName, n.Path(name)); err != nil {
		_ = n.afs.Remove(tmpName)
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func (n *fsNamespace) Remove(_ context.Context, name string) error {
	if !ValidKey(name) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	err := n.afs.Remove(n.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return ErrNotExist
	}
	return err
}

func (n *fsNamespace) List(context.Context) ([]Entry, error) {
	infos, err := afero.ReadDir(n.afs, n.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotExist
	}
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(infos))
	for _, fi := range infos {
		out = append(out, Entry{Name: fi.Name(), Path: n.Path(fi.Name()), Dir: fi.IsDir()})
	}
	return out, nil
}

func (n *fsNamespace) Path(name string) string {
	return filepath.Join(n.dir, name)
}

// Ping reports whether the data root is a usable directory.
func (r *FSResolver) Ping(context.Context) error {
	ok, err := afero.DirExists(r.fs, r.root)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("data dir %q does not exist", r.root)
	}
	return nil
}
