package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryResolver is an in-memory backend used for tests and the
// STORAGE_BACKEND=memory mode. A nil inner map means the namespace does not exist.
type MemoryResolver struct {
	mu     sync.RWMutex
	spaces map[string]map[string][]byte
}

func NewMemoryResolver() *MemoryResolver {
	return &MemoryResolver{spaces: make(map[string]map[string][]byte)}
}

func (m *MemoryResolver) Namespace(_ context.Context, ownerID string) (Namespace, error) {
	if !ValidKey(ownerID) {
		return nil, fmt.Errorf("%w: owner %q", ErrInvalidKey, ownerID)
	}
	return &memoryNamespace{r: m, owner: ownerID}, nil
}

type memoryNamespace struct {
	r     *MemoryResolver
	owner string
}

func (n *memoryNamespace) Exists(context.Context) (bool, error) {
	n.r.mu.RLock()
	defer n.r.mu.RUnlock()
	_, ok := n.r.spaces[n.owner]
	return ok, nil
}

func (n *memoryNamespace) Create(context.Context) error {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	if _, ok := n.r.spaces[n.owner]; !ok {
		n.r.spaces[n.owner] = make(map[string][]byte)
	}
	return nil
}

func (n *memoryNamespace) Read(_ context.Context, name string) ([]byte, error) {
	n.r.mu.RLock()
	defer n.r.mu.RUnlock()
	b, ok := n.r.spaces[n.owner][name]
	if !ok {
		return nil, ErrNotExist
	}
	return append([]byte(nil), b...), nil
}

func (n *memoryNamespace) Write(_ context.Context, name string, data []byte) error {
	if !ValidKey(name) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, name)
	}
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	space, ok := n.r.spaces[n.owner]
	if !ok {
		return fmt.Errorf("namespace %q: %w", n.owner, ErrNotExist)
	}
	space[name] = append([]byte(nil), data...)
	return nil
}

func (n *memoryNamespace) Remove(_ context.Context, name string) error {
	n.r.mu.Lock()
	defer n.r.mu.Unlock()
	space := n.r.spaces[n.owner]
	if _, ok := space[name]; !ok {
		return ErrNotExist
	}
	delete(space, name)
	return nil
}

func (n *memoryNamespace) List(context.Context) ([]Entry, error) {
	n.r.mu.RLock()
	defer n.r.mu.RUnlock()
	space, ok := n.r.spaces[n.owner]
	if !ok {
		return nil, ErrNotExist
	}
	out := make([]Entry, 0, len(space))
	for name := range space {
		out = append(out, Entry{Name: name, Path: n.Path(name)})
	}
	return out, nil
}

func (n *memoryNamespace) Path(name string) string {
	return "memory://" + n.owner + "/" + Folder + "/" + name
}

func (m *MemoryResolver) Ping(context.Context) error { return nil }
