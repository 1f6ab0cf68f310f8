package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wsproxy_go/internal/agent"
	"wsproxy_go/internal/shared/logger"
	"wsproxy_go/internal/telemetry"
	"wsproxy_go/internal/types"
)

// AppServer 持有网关监听器与可选的运维监听器
type AppServer struct {
	cfg      *types.Config
	gatherer prometheus.Gatherer
	wsAgent  *agent.WebSocketAgent

	ctx    context.Context
	cancel context.CancelFunc

	listener   net.Listener
	httpServer *http.Server
	opsServer  *http.Server

	waitGroup sync.WaitGroup
	stopOnce  sync.Once
}

// New 创建一个新的 AppServer 实例。gatherer 为 nil 时不提供 /metrics。
func New(cfg *types.Config, sink telemetry.Sink, gatherer prometheus.Gatherer) *AppServer {
	ctx, cancel := context.WithCancel(context.Background())
	return &AppServer{
		cfg:      cfg,
		gatherer: gatherer,
		wsAgent:  agent.NewWebSocketAgent(agent.NewConfig(cfg), sink),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start 绑定端口并在后台开始服务, 端口被占用等错误同步返回
func (s *AppServer) Start() error {
	listener, err := net.Listen("tcp", s.cfg.ListenAddr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.ListenAddr(), err)
	}
	s.listener = listener

	// 所有路径都接受升级
	s.httpServer = &http.Server{
		Handler:           s.wsAgent,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return s.ctx },
	}
	s.serve("gateway", s.httpServer, listener)
	logger.Info().Str("listen_addr", listener.Addr().String()).Msg(">>> WebSocket gateway is listening")
	logListenAddrs(listener.Addr())

	if s.cfg.MetricsAddr != "" {
		opsListener, err := net.Listen("tcp", s.cfg.MetricsAddr)
		if err != nil {
			s.Stop(context.Background())
			return fmt.Errorf("failed to listen on metrics address %s: %w", s.cfg.MetricsAddr, err)
		}
		s.opsServer = &http.Server{Handler: s.opsMux(), ReadHeaderTimeout: 10 * time.Second}
		s.serve("ops", s.opsServer, opsListener)
		logger.Info().Str("listen_addr", opsListener.Addr().String()).Msg(">>> Metrics endpoint is listening")
	}
	return nil
}

func (s *AppServer) serve(name string, srv *http.Server, ln net.Listener) {
	s.waitGroup.Add(1)
	go func() {
		defer s.waitGroup.Done()
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("server", name).Msg("HTTP server stopped unexpectedly")
		}
	}()
}

func (s *AppServer) opsMux() *http.ServeMux {
	mux := http.NewServeMux()
	if s.gatherer != nil {
		mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return mux
}

// Addr 返回网关实际监听的地址, 未启动时为 nil
func (s *AppServer) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop 关闭监听器并取消所有进行中的会话
func (s *AppServer) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.cancel()
		for _, srv := range []*http.Server{s.httpServer, s.opsServer} {
			if srv == nil {
				continue
			}
			if err := srv.Shutdown(ctx); err != nil {
				logger.Warn().Err(err).Msg("HTTP server shutdown incomplete")
			}
		}
		s.waitGroup.Wait()
		logger.Info().Msg("Gateway has been shut down")
	})
}
