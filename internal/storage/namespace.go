package storage

import (
	"context"
	"errors"
	"strings"
)

// Folder is the per-owner directory holding mind map records.
const Folder = "mindmaps"

var (
	ErrNotExist   = errors.New("storage: record does not exist")
	ErrInvalidKey = errors.New("storage: invalid key")
)

// Entry is one child of a namespace as reported by List.
type Entry struct {
	Name string
	Path string
	Dir  bool
}

// Resolver yields a handle to an owner's private storage root.
type Resolver interface {
	Namespace(ctx context.Context, ownerID string) (Namespace, error)
}

// Backend is a Resolver that can report whether its store is reachable.
type Backend interface {
	Resolver
	Ping(ctx context.Context) error
}

// Namespace is a flat key-value folder. Write must replace a child
// atomically: concurrent readers observe the old or the new bytes, never a
// mix. Read, Remove and List return ErrNotExist for missing targets.
type Namespace interface {
	Exists(ctx context.Context) (bool, error)
	Create(ctx context.Context) error
	Read(ctx context.Context, name string) ([]byte, error)
	Write(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	List(ctx context.Context) ([]Entry, error)
	Path(name string) string
}

// ValidKey rejects empty keys and anything that could escape a folder.
func ValidKey(k string) bool {
	if k == "" || k == "." || k == ".." {
		return false
	}
	return !strings.ContainsAny(k, "/\\\x00")
}
