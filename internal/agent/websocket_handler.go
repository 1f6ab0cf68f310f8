package agent

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"wsproxy_go/internal/core/haproxy"
	"wsproxy_go/internal/telemetry"
)

// handleUpgrade 处理一次升级请求: 解析客户端与目标, 拨号, 可选写入 PROXY 头, 然后转发
func (a *WebSocketAgent) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// 1. 生成 Trace ID 并创建带上下文的 logger
	traceID := uuid.NewString()
	l := log.With().Str("trace_id", traceID).Logger()
	ctx := l.WithContext(r.Context())

	// 2. 升级 HTTP 连接到 WebSocket, 失败时 upgrader 已回写 HTTP 错误
	wsConn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.Debug().Err(err).Str("remote_addr", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	clientIP := ResolveClientIP(r.Header, r.RemoteAddr, a.config.RealIPHeader)

	// 3. 解析目标, 没有目标时直接关闭, 不产生记录
	target, err := ResolveTarget(r.URL.Query(), a.config.TargetKey)
	if err != nil {
		l.Warn().Err(err).Str("client_ip", clientIP).Msg("Missing target address query parameter")
		_ = wsConn.Close()
		return
	}
	l.Debug().Str("client_ip", clientIP).Str("target", target).Msg("Session accepted")

	// 4. 会话
	stats, err := a.serveSession(ctx, wsConn, clientIP, r.RemoteAddr, target)
	outcome := telemetry.OutcomeOK
	if err != nil {
		outcome = outcomeOf(err)
		l.Error().Err(err).Str("client_ip", clientIP).Str("target", target).Msg("Session ended with error")
	}

	// 5. 记录
	port := peerPort(r.RemoteAddr)
	a.sink.Emit(telemetry.Record{
		Time:         time.Now(),
		Elapsed:      time.Since(start),
		ClientIP:     clientIP,
		Src:          clientIP + ":" + strconv.Itoa(int(port)),
		Dest:         target,
		Method:       r.Method,
		Path:         r.URL.Path,
		Status:       http.StatusOK,
		Referer:      headerOr(r.Header, "Referer", "-"),
		ForwardedFor: clientIP,
		UserAgent:    strings.ReplaceAll(headerOr(r.Header, "User-Agent", "-"), `"`, `\"`),
		UserID:       r.Header.Get("User-Id"),
		Outcome:      outcome,
		BytesIn:      stats.WsToTcp,
		BytesOut:     stats.TcpToWs,
	})
}

// serveSession 拥有 wsConn, 返回时它已关闭
func (a *WebSocketAgent) serveSession(ctx context.Context, wsConn *websocket.Conn, clientIP, remoteAddr, target string) (RelayStats, error) {
	defer wsConn.Close()

	var header []byte
	if a.config.ProxyProtocol {
		srcPort := peerPort(remoteAddr)
		if srcPort == 0 {
			srcPort = haproxy.DefaultSourcePort
		}
		var err error
		header, err = haproxy.BuildV2(clientIP, srcPort, target)
		if err != nil {
			return RelayStats{}, fmt.Errorf("%w: %v", ErrHeaderEncode, err)
		}
	}

	tcpConn, err := dialTarget(ctx, target, a.config.DialTimeout)
	if err != nil {
		return RelayStats{}, err
	}
	zerolog.Ctx(ctx).Debug().Str("target", target).Str("local_addr", tcpConn.LocalAddr().String()).Msg("Connected to target")

	if header != nil {
		if _, err := tcpConn.Write(header); err != nil {
			_ = tcpConn.Close()
			return RelayStats{}, fmt.Errorf("%w: write proxy header: %v", ErrRelay, err)
		}
	}

	return WebSocketRelay(ctx, tcpConn, wsConn, a.config.BufferSize)
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ErrHeaderEncode):
		return telemetry.OutcomeHeaderError
	case errors.Is(err, ErrDial):
		return telemetry.OutcomeDialError
	default:
		return telemetry.OutcomeRelayError
	}
}

func headerOr(h http.Header, name, def string) string {
	if v := h.Get(name); v != "" {
		return v
	}
	return def
}
