package agent

import (
	"net/http"

	"github.com/gorilla/websocket"

	"wsproxy_go/internal/telemetry"
)

// WebSocketAgent 把每个 WebSocket 升级请求转成一条到目标的 TCP 会话
type WebSocketAgent struct {
	config   Config
	sink     telemetry.Sink
	upgrader websocket.Upgrader
}

// NewWebSocketAgent 创建一个新的 WebSocketAgent 实例, sink 可以为 nil
func NewWebSocketAgent(cfg Config, sink telemetry.Sink) *WebSocketAgent {
	if sink == nil {
		sink = telemetry.Multi{}
	}
	return &WebSocketAgent{
		config: cfg,
		sink:   sink,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.BufferSize,
			WriteBufferSize: cfg.BufferSize,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// ServeHTTP 让 agent 可以直接挂到 http.ServeMux 上, 所有路径都接受升级
func (a *WebSocketAgent) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.HandleUpgrade(w, r)
}

// HandleUpgrade 阻塞直到会话结束
func (a *WebSocketAgent) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	a.handleUpgrade(w, r)
}
