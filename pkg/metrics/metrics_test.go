package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func TestCollectorsRecordTicksErrorsAndBuiltins(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.TicksTotal.WithLabelValues("Update").Inc()
	c.ErrorsTotal.WithLabelValues("AccessError").Inc()
	c.BuiltinCallsTotal.WithLabelValues("LogInfo").Inc()
	c.ObserveEval(5 * time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	require.True(t, names["apica_ticks_total"])
	require.True(t, names["apica_errors_total"])
	require.True(t, names["apica_builtin_calls_total"])
	require.True(t, names["apica_eval_duration_seconds"])
}

func TestServerExposesMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.TicksTotal.WithLabelValues("Init").Inc()

	srv := NewServer("127.0.0.1:0", reg)
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	srv.httpServer.Addr = l.Addr().String()
	errCh := make(chan error, 1)
	go func() { errCh <- srv.httpServer.Serve(l) }()
	defer func() {
		require.NoError(t, srv.Shutdown(context.Background()))
	}()

	time.Sleep(20 * time.Millisecond)
	resp, err := http.Get("http://" + l.Addr().String() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), "apica_ticks_total")
}
