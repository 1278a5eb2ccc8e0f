package socket

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/mindmap/mindmap-server/internal/config"
	"github.com/mindmap/mindmap-server/internal/identity"
	"github.com/mindmap/mindmap-server/internal/mindmap"
	"github.com/mindmap/mindmap-server/pkg/metrics"
)

const (
	App         = "mindmap"
	URLKey      = "websocket_url"
	defaultPath = "/mindmap-ws"
)

// ErrMissingSecret is returned when no shared secret is configured.
var ErrMissingSecret = errors.New("socket secret is not configured")

// Registry records issued tokens so the realtime server can look them up.
type Registry interface {
	Record(ctx context.Context, info *mindmap.SocketInfo) error
}

// Issuer mints handshake tokens for the realtime collaboration server.
type Issuer struct {
	src      config.Source
	now      func() time.Time
	registry Registry
}

type Option func(*Issuer)

func WithClock(now func() time.Time) Option { return func(i *Issuer) { i.now = now } }

// WithRegistry records every issued token in r. Nil disables recording.
func WithRegistry(r Registry) Option { return func(i *Issuer) { i.registry = r } }

func NewIssuer(src config.Source, opts ...Option) *Issuer {
	i := &Issuer{src: src, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	return i
}

// Token computes hex(sha256(userID + name + timestamp + secret)).
func Token(userID, name string, ts int64, secret string) string {
	sum := sha256.Sum256([]byte(userID + name + strconv.FormatInt(ts, 10) + secret))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether info.Token matches the token derived from its fields.
// Timestamps are not checked for age.
func Verify(info *mindmap.SocketInfo, secret string) bool {
	if info == nil || secret == "" {
		return false
	}
	want := Token(info.UserID, info.MindMapName, info.Timestamp, secret)
	return subtle.ConstantTimeCompare([]byte(want), []byte(info.Token)) == 1
}

// Issue builds the connection info for user on the named mind map. host is
// the request host, used when no websocket URL is configured.
func (i *Issuer) Issue(ctx context.Context, user identity.User, name, host string) (*mindmap.SocketInfo, error) {
	if user.ID == "" {
		return nil, mindmap.ErrUnauthenticated
	}
	secret := i.src.Secret()
	if secret == "" {
		return nil, ErrMissingSecret
	}
	ts := i.now().Unix()
	info := &mindmap.SocketInfo{
		Token:       Token(user.ID, name, ts, secret),
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		MindMapName: name,
		Timestamp:   ts,
		WSURL:       i.src.AppValue(App, URLKey, "wss://"+host+defaultPath),
	}
	if i.registry != nil {
		if err := i.registry.Record(ctx, info); err != nil {
			return nil, fmt.Errorf("record socket token: %w", err)
		}
	}
	metrics.SocketTokensIssued.Inc()
	return info, nil
}
