package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Source is the read-only view of configuration consumed by the socket issuer.
type Source interface {
	// AppValue returns the setting stored for app/key, or def when unset.
	AppValue(app, key, def string) string
	// Secret returns the installation-wide shared secret.
	Secret() string
}

// ViperSource resolves app values from "<APP>_<KEY>" keys,
// e.g. AppValue("mindmap", "websocket_url", ...) reads MINDMAP_WEBSOCKET_URL.
type ViperSource struct {
	v      *viper.Viper
	secret string
}

// NewSource wraps a viper instance. A nil instance uses the global viper.
func NewSource(v *viper.Viper, cfg *Config) *ViperSource {
	if v == nil {
		v = viper.GetViper()
	}
	s := &ViperSource{v: v}
	if cfg != nil {
		s.secret = cfg.Secret
	}
	return s
}

func (s *ViperSource) AppValue(app, key, def string) string {
	k := strings.ToUpper(app + "_" + key)
	_ = s.v.BindEnv(k)
	if val := strings.TrimSpace(s.v.GetString(k)); val != "" {
		return val
	}
	return def
}

func (s *ViperSource) Secret() string { return s.secret }
