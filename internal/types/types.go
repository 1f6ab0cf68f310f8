package types

import (
	"net"
	"strconv"
	"time"
)

// CommonConf 包含转发层共用的参数
type CommonConf struct {
	BufferSize int `ini:"buffer"`
	Timeout    int `ini:"timeout"` // 连接超时, 单位秒
}

// GatewayConf 描述 WebSocket 网关的监听与目标选择
type GatewayConf struct {
	Addr          string `ini:"addr"`
	Port          int    `ini:"port"`
	FrKey         string `ini:"frkey"`
	ProxyProtocol bool   `ini:"haproxy_protocol"`
	RealIPHeader  string `ini:"realip_header"`
	MetricsAddr   string `ini:"metrics_addr"`
}

// SecurityConf 中的字段目前只被接受和校验, 转发路径不会读取它们。
type SecurityConf struct {
	Secret  string `ini:"secret"`
	AESOnly bool   `ini:"aes_only"`
	Stream  string `ini:"stream"`
}

// LogConf 控制 zerolog 的输出
type LogConf struct {
	Level  string `ini:"level"`
	Format string `ini:"format"` // console | json
	File   string `ini:"file"`
}

// Config 是整个网关的统一配置, 启动时构建一次, 之后只读。
type Config struct {
	CommonConf   `ini:"common"`
	GatewayConf  `ini:"gateway"`
	SecurityConf `ini:"security"`
	LogConf      `ini:"log"`
}

// DialTimeout 返回拨号超时
func (c *Config) DialTimeout() time.Duration {
	return time.Duration(c.Timeout) * time.Second
}

// ListenAddr 返回 host:port 形式的监听地址
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}
