package mindmap

import (
	"errors"
	"time"

	"github.com/mindmap/mindmap-server/internal/storage"
)

var (
	ErrNotFound        = errors.New("mind map not found")
	ErrUnauthenticated = errors.New("user not logged in")
	ErrInvalidName     = errors.New("invalid mind map name")
)

// MindMap is a named document owned by a single user. Content is opaque
// (typically serialized diagram JSON) and is never inspected.
type MindMap struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Content     string    `json:"content"`
	OwnerID     string    `json:"ownerId"`
	StoragePath string    `json:"storagePath"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Record is the persisted form of a mind map, one per {name}.json file.
// Pointers distinguish absent fields from zero values in older records.
type Record struct {
	Name      *string    `json:"name,omitempty"`
	Content   *string    `json:"content,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// EmptyContent is substituted when a stored record carries no content.
const EmptyContent = "{}"

// NewRecord builds the persisted form of m.
func NewRecord(m *MindMap) Record {
	created, updated := m.CreatedAt.UTC(), m.UpdatedAt.UTC()
	return Record{Name: &m.Name, Content: &m.Content, CreatedAt: &created, UpdatedAt: &updated}
}

// ToMindMap fills a MindMap from the record. Missing timestamps become now.
func (r Record) ToMindMap(name, owner, path string, now time.Time) *MindMap {
	m := &MindMap{Name: name, Content: EmptyContent, OwnerID: owner, StoragePath: path, CreatedAt: now, UpdatedAt: now}
	if r.Content != nil {
		m.Content = *r.Content
	}
	if r.CreatedAt != nil {
		m.CreatedAt = *r.CreatedAt
	}
	if r.UpdatedAt != nil {
		m.UpdatedAt = *r.UpdatedAt
	}
	return m
}

// SocketInfo is the handshake payload for the realtime collaboration server.
// Token = sha256(userId + mindMapName + timestamp + secret). Expiry is not
// checked here; the realtime server rejects stale timestamps.
type SocketInfo struct {
	Token       string `json:"token"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
	MindMapName string `json:"mindMapName"`
	Timestamp   int64  `json:"timestamp"`
	WSURL       string `json:"wsUrl"`
}

// ValidName reports whether name can be used as a storage key.
func ValidName(name string) bool {
	return storage.ValidKey(name)
}
