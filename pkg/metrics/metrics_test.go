package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRegisterCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterCollectors(reg)

	Operations.WithLabelValues("save", "ok").Inc()
	SocketTokensIssued.Inc()

	n, err := testutil.GatherAndCount(reg, "mindmap_operations_total", "mindmap_socket_tokens_issued_total")
	require.NoError(t, err)
	require.Equal(t, 2, n)

	require.Panics(t, func() { RegisterCollectors(reg) }, "double registration must fail loudly")
}
