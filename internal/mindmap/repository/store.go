package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/mindmap/mindmap-server/internal/storage"
	"github.com/mindmap/mindmap-server/pkg/logger"
	"go.uber.org/zap"
)

const recordExt = ".json"

// Store maps (owner, name) to a mind map persisted as {name}.json inside
// the owner's namespace. It holds no locks: concurrent saves of one name are
// last-write-wins, and the backend's atomic replace keeps records whole.
// Racing first saves may each stamp their own createdAt; the last one wins.
type Store struct {
	resolver storage.Resolver
	now      func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func NewStore(r storage.Resolver, opts ...Option) *Store {
	s := &Store{resolver: r, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func fileName(name string) string { return name + recordExt }

func (s *Store) check(ownerID, name string) error {
	if ownerID == "" {
		return mindmap.ErrUnauthenticated
	}
	if !mindmap.ValidName(name) {
		return fmt.Errorf("%w: %q", mindmap.ErrInvalidName, name)
	}
	return nil
}

// namespace returns the owner's namespace, creating it when absent.
// created reports whether it had to be created (and is therefore empty).
func (s *Store) namespace(ctx context.Context, ownerID string) (ns storage.Namespace, created bool, err error) {
	ns, err = s.resolver.Namespace(ctx, ownerID)
	if err != nil {
		return nil, false, err
	}
	ok, err := ns.Exists(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("check namespace: %w", err)
	}
	if ok {
		return ns, false, nil
	}
	if err := ns.Create(ctx); err != nil {
		return nil, false, fmt.Errorf("create namespace: %w", err)
	}
	return ns, true, nil
}

func decode(b []byte) (mindmap.Record, error) {
	var rec mindmap.Record
	err := json.Unmarshal(b, &rec)
	return rec, err
}

// Get returns the named mind map or mindmap.ErrNotFound. Storage failures
// are logged and reported as not found.
func (s *Store) Get(ctx context.Context, ownerID, name string) (*mindmap.MindMap, error) {
	if err := s.check(ownerID, name); err != nil {
		return nil, err
	}
	log := logger.L().With(zap.String("op", "get"), zap.String("owner", ownerID), zap.String("name", name))

	ns, created, err := s.namespace(ctx, ownerID)
	if err != nil {
		log.Error("error getting mind map", zap.Error(err))
		return nil, mindmap.ErrNotFound
	}
	if created {
		return nil, mindmap.ErrNotFound
	}
	b, err := ns.Read(ctx, fileName(name))
	if errors.Is(err, storage.ErrNotExist) {
		return nil, mindmap.ErrNotFound
	}
	if err != nil {
		log.Error("error getting mind map", zap.Error(err))
		return nil, mindmap.ErrNotFound
	}
	rec, err := decode(b)
	if err != nil {
		log.Error("error decoding mind map", zap.Error(err))
		return nil, mindmap.ErrNotFound
	}
	stored := name
	if rec.Name != nil && *rec.Name != "" {
		stored = *rec.Name
	}
	return rec.ToMindMap(stored, ownerID, ns.Path(fileName(name)), s.now().UTC()), nil
}

// Save writes the full document. The first save fixes createdAt; later saves
// keep it and refresh updatedAt. Failures are returned, never swallowed.
func (s *Store) Save(ctx context.Context, ownerID, name, content string) (*mindmap.MindMap, error) {
	if err := s.check(ownerID, name); err != nil {
		return nil, err
	}
	log := logger.L().With(zap.String("op", "save"), zap.String("owner", ownerID), zap.String("name", name))

	ns, _, err := s.namespace(ctx, ownerID)
	if err != nil {
		log.Error("error saving mind map", zap.Error(err))
		return nil, fmt.Errorf("save mind map %q: %w", name, err)
	}

	now := s.now().UTC()
	m := &mindmap.MindMap{Name: name, Content: content, OwnerID: ownerID, CreatedAt: now, UpdatedAt: now}

	// read even when the namespace was just created: a concurrent first save
	// may already have written the record
	b, err := ns.Read(ctx, fileName(name))
	switch {
	case errors.Is(err, storage.ErrNotExist):
	case err != nil:
		log.Error("error saving mind map", zap.Error(err))
		return nil, fmt.Errorf("save mind map %q: read existing: %w", name, err)
	default:
		if old, derr := decode(b); derr != nil {
			log.Warn("existing record is not valid JSON; treating save as creation", zap.Error(derr))
		} else if old.CreatedAt != nil && !old.CreatedAt.IsZero() {
			m.CreatedAt = old.CreatedAt.UTC()
		}
	}

	b, err = json.Marshal(mindmap.NewRecord(m))
	if err != nil {
		return nil, fmt.Errorf("save mind map %q: encode: %w", name, err)
	}
	if err := ns.Write(ctx, fileName(name), b); err != nil {
		log.Error("error saving mind map", zap.Error(err))
		return nil, fmt.Errorf("save mind map %q: %w", name, err)
	}
	m.StoragePath = ns.Path(fileName(name))
	return m, nil
}

// List returns every decodable record in the owner's namespace, in backend
// order. Names come from the record key, not the stored payload.
func (s *Store) List(ctx context.Context, ownerID string) ([]mindmap.MindMap, error) {
	if ownerID == "" {
		return nil, mindmap.ErrUnauthenticated
	}
	log := logger.L().With(zap.String("op", "list"), zap.String("owner", ownerID))
	out := []mindmap.MindMap{}

	ns, created, err := s.namespace(ctx, ownerID)
	if err != nil {
		log.Error("error getting all mind maps", zap.Error(err))
		return out, nil
	}
	if created {
		return out, nil
	}
	entries, err := ns.List(ctx)
	if err != nil {
		log.Error("error getting all mind maps", zap.Error(err))
		return out, nil
	}
	now := s.now().UTC()
	for _, e := range entries {
		if e.Dir || path.Ext(e.Name) != recordExt {
			continue
		}
		b, err := ns.Read(ctx, e.Name)
		if err != nil {
			log.Warn("skipping unreadable mind map", zap.String("entry", e.Name), zap.Error(err))
			continue
		}
		rec, err := decode(b)
		if err != nil {
			log.Warn("skipping malformed mind map", zap.String("entry", e.Name), zap.Error(err))
			continue
		}
		name := strings.TrimSuffix(e.Name, recordExt)
		out = append(out, *rec.ToMindMap(name, ownerID, e.Path, now))
	}
	return out, nil
}

// Delete removes the record. Absence, and storage failures, yield false.
func (s *Store) Delete(ctx context.Context, ownerID, name string) (bool, error) {
	if err := s.check(ownerID, name); err != nil {
		return false, err
	}
	log := logger.L().With(zap.String("op", "delete"), zap.String("owner", ownerID), zap.String("name", name))

	ns, err := s.resolver.Namespace(ctx, ownerID)
	if err != nil {
		log.Error("error deleting mind map", zap.Error(err))
		return false, nil
	}
	ok, err := ns.Exists(ctx)
	if err != nil {
		log.Error("error deleting mind map", zap.Error(err))
		return false, nil
	}
	if !ok {
		return false, nil
	}
	err = ns.Remove(ctx, fileName(name))
	if errors.Is(err, storage.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		log.Error("error deleting mind map", zap.Error(err))
		return false, nil
	}
	return true, nil
}
