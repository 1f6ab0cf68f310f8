package agent

import (
	"errors"
	"time"

	"wsproxy_go/internal/types"
)

// 会话级错误, 只影响当前连接
var (
	ErrNoTarget     = errors.New("no target address in query")
	ErrDial         = errors.New("dial target failed")
	ErrHeaderEncode = errors.New("proxy header encode failed")
	ErrRelay        = errors.New("relay failed")
)

// Config 是 agent 需要的只读参数, 由 types.Config 派生
type Config struct {
	TargetKey     string
	RealIPHeader  string
	DialTimeout   time.Duration
	BufferSize    int
	ProxyProtocol bool
}

// NewConfig 从全局配置提取 agent 参数
func NewConfig(cfg *types.Config) Config {
	return Config{
		TargetKey:     cfg.FrKey,
		RealIPHeader:  cfg.RealIPHeader,
		DialTimeout:   cfg.DialTimeout(),
		BufferSize:    cfg.BufferSize,
		ProxyProtocol: cfg.ProxyProtocol,
	}
}
