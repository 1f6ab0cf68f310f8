package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wsproxy_go/internal/config"
	"wsproxy_go/internal/telemetry"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port
}

func TestAppServer_RelayAndMetrics(t *testing.T) {
	target, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer target.Close()
	go func() {
		conn, err := target.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		_, _ = io.Copy(conn, conn)
	}()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.FrKey = "dest"
	cfg.MetricsAddr = "127.0.0.1:" + strconv.Itoa(freePort(t))

	reg := prometheus.NewRegistry()
	records := make(chan telemetry.Record, 1)
	sink := telemetry.Multi{telemetry.NewMetrics(reg), telemetry.SinkFunc(func(rec telemetry.Record) { records <- rec })}

	s := New(cfg, sink, reg)
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	u := "ws://" + s.Addr().String() + "/?dest=" + target.Addr().String()
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	require.NoError(t, err)

	require.NoError(t, ws.WriteMessage(websocket.BinaryMessage, []byte("echo")))
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("echo"), data)
	require.NoError(t, ws.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	defer ws.Close()

	select {
	case rec := <-records:
		assert.Equal(t, telemetry.OutcomeOK, rec.Outcome)
	case <-time.After(5 * time.Second):
		t.Fatal("no record emitted")
	}

	resp, err := http.Get("http://" + cfg.MetricsAddr + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "wsproxy_sessions_total")

	resp, err = http.Get("http://" + cfg.MetricsAddr + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAppServer_StopEndsSessions(t *testing.T) {
	target, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer target.Close()
	held := make(chan net.Conn, 1)
	go func() {
		conn, err := target.Accept()
		if err == nil {
			held <- conn
		}
	}()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.FrKey = "dest"

	s := New(cfg, nil, nil)
	require.NoError(t, s.Start())

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+s.Addr().String()+"/?dest="+target.Addr().String(), nil)
	require.NoError(t, err)
	defer ws.Close()

	var conn net.Conn
	select {
	case conn = <-held:
		defer conn.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("target never dialed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Stop(ctx)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestAppServer_StartFailsOnBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := config.Default()
	cfg.Addr = "127.0.0.1"
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	assert.Error(t, New(cfg, nil, nil).Start())
}
