package service

import (
	"context"
	"errors"

	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/mindmap/mindmap-server/internal/mindmap/repository"
	"github.com/mindmap/mindmap-server/internal/socket"
	"github.com/mindmap/mindmap-server/pkg/metrics"
)

// Service defines the mind map operations used by the handler layer. Every
// call acts on behalf of the user resolved from ctx.
type Service interface {
	Get(ctx context.Context, name string) (*mindmap.MindMap, error)
	Save(ctx context.Context, name, content string) (*mindmap.MindMap, error)
	List(ctx context.Context) ([]mindmap.MindMap, error)
	Delete(ctx context.Context, name string) (bool, error)
	SocketInfo(ctx context.Context, name, host string) (*mindmap.SocketInfo, error)
}

func New(users identity.Provider, store *repository.Store, issuer *socket.Issuer) Service {
	return &mindMapService{users: users, store: store, issuer: issuer}
}

type mindMapService struct {
	users  identity.Provider
	store  *repository.Store
	issuer *socket.Issuer
}

func (s *mindMapService) owner(ctx context.Context) string {
	u, ok := s.users.CurrentUser(ctx)
	if !ok {
		return ""
	}
	return u.ID
}

func (s *mindMapService) Get(ctx context.Context, name string) (*mindmap.MindMap, error) {
	m, err := s.store.Get(ctx, s.owner(ctx), name)
	observe("get", err)
	return m, err
}

func (s *mindMapService) Save(ctx context.Context, name, content string) (*mindmap.MindMap, error) {
	m, err := s.store.Save(ctx, s.owner(ctx), name, content)
	observe("save", err)
	return m, err
}

func (s *mindMapService) List(ctx context.Context) ([]mindmap.MindMap, error) {
	list, err := s.store.List(ctx, s.owner(ctx))
	observe("list", err)
	return list, err
}

func (s *mindMapService) Delete(ctx context.Context, name string) (bool, error) {
	ok, err := s.store.Delete(ctx, s.owner(ctx), name)
	if err == nil && !ok {
		observe("delete", mindmap.ErrNotFound)
	} else {
		observe("delete", err)
	}
	return ok, err
}

func (s *mindMapService) SocketInfo(ctx context.Context, name, host string) (*mindmap.SocketInfo, error) {
	u, _ := s.users.CurrentUser(ctx)
	info, err := s.issuer.Issue(ctx, u, name, host)
	observe("socket", err)
	return info, err
}

func observe(op string, err error) {
	metrics.Operations.WithLabelValues(op, result(err)).Inc()
}

func result(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, mindmap.ErrNotFound):
		return "not_found"
	case errors.Is(err, mindmap.ErrInvalidName):
		return "invalid"
	case errors.Is(err, mindmap.ErrUnauthenticated):
		return "unauthenticated"
	default:
		return "error"
	}
}
