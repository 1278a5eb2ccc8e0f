package service

import (
	"context"
	"testing"

	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/mindmap/mindmap-server/internal/mindmap/repository"
	"github.com/mindmap/mindmap-server/internal/socket"
	"github.com/mindmap/mindmap-server/internal/storage"
	"github.com/mindmap/mindmap-server/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type staticSource struct{ secret string }

func (s staticSource) AppValue(_, _, def string) string { return def }
func (s staticSource) Secret() string                   { return s.secret }

func newService() Service {
	return New(identity.ContextProvider{},
		repository.NewStore(storage.NewMemoryResolver()),
		socket.NewIssuer(staticSource{secret: "s"}))
}

func as(id string) context.Context {
	return identity.WithUser(context.Background(), identity.User{ID: id, DisplayName: id})
}

func TestService_ActsAsCurrentUser(t *testing.T) {
	svc := newService()

	_, err := svc.Save(as("alice"), "Trip Plan", `{"a":1}`)
	require.NoError(t, err)

	_, err = svc.Get(as("bob"), "Trip Plan")
	require.ErrorIs(t, err, mindmap.ErrNotFound)

	m, err := svc.Get(as("alice"), "Trip Plan")
	require.NoError(t, err)
	require.Equal(t, "alice", m.OwnerID)

	list, err := svc.List(as("alice"))
	require.NoError(t, err)
	require.Len(t, list, 1)

	ok, err := svc.Delete(as("alice"), "Trip Plan")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestService_Anonymous(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.List(ctx)
	require.ErrorIs(t, err, mindmap.ErrUnauthenticated)
	_, err = svc.Save(ctx, "x", "c")
	require.ErrorIs(t, err, mindmap.ErrUnauthenticated)
	_, err = svc.SocketInfo(ctx, "x", "host")
	require.ErrorIs(t, err, mindmap.ErrUnauthenticated)
}

func TestService_SocketInfo(t *testing.T) {
	info, err := newService().SocketInfo(as("alice"), "Trip Plan", "maps.local")
	require.NoError(t, err)
	require.Equal(t, "alice", info.UserID)
	require.Equal(t, "wss://maps.local/mindmap-ws", info.WSURL)
	require.True(t, socket.Verify(info, "s"))
}

func TestService_RecordsOperationMetrics(t *testing.T) {
	svc := newService()
	before := testutil.ToFloat64(metrics.Operations.WithLabelValues("delete", "not_found"))
	_, err := svc.Delete(as("carol"), "missing")
	require.NoError(t, err)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Operations.WithLabelValues("delete", "not_found")))

	before = testutil.ToFloat64(metrics.Operations.WithLabelValues("save", "invalid"))
	_, err = svc.Save(as("carol"), "../x", "c")
	require.ErrorIs(t, err, mindmap.ErrInvalidName)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Operations.WithLabelValues("save", "invalid")))
}
