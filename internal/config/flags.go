package config

import (
	"github.com/spf13/pflag"

	"wsproxy_go/internal/types"
)

// Flags 保存命令行参数。只有显式给出的参数才会覆盖 ini 与环境变量。
type Flags struct {
	ConfigPath string
	Version    bool

	values types.Config
	fs     *pflag.FlagSet
}

// NewFlags 在 fs 上注册全部参数, 参数名沿用旧版命令行
func NewFlags(fs *pflag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVar(&f.ConfigPath, "config", "", "Path to an optional ini config file")
	fs.BoolVar(&f.Version, "version", false, "Print version and exit")

	fs.StringVar(&f.values.Addr, "addr", d.Addr, "Listen address")
	fs.IntVar(&f.values.Port, "port", d.Port, "Listen port")
	fs.StringVar(&f.values.FrKey, "frkey", d.FrKey, "Query parameter naming the target address")
	fs.BoolVar(&f.values.ProxyProtocol, "haproxy-protocol", d.ProxyProtocol, "Send a PROXY protocol v2 header to the target")
	fs.StringVar(&f.values.RealIPHeader, "realip-header", d.RealIPHeader, "Header consulted after X-Forwarded-For for the client IP")
	fs.StringVar(&f.values.MetricsAddr, "metrics-addr", d.MetricsAddr, "Address for /metrics and /healthz, empty disables")

	fs.IntVar(&f.values.BufferSize, "buffer", d.BufferSize, "Relay buffer size in bytes")
	fs.IntVar(&f.values.Timeout, "timeout", d.Timeout, "Dial timeout in seconds")

	fs.StringVar(&f.values.Secret, "secret", d.Secret, "Shared secret (reserved)")
	fs.BoolVar(&f.values.AESOnly, "aes-only", d.AESOnly, "AES only mode (reserved, requires --secret)")
	fs.StringVar(&f.values.Stream, "stream", d.Stream, "Stream mode (reserved)")

	fs.StringVar(&f.values.Level, "log-level", d.Level, "Log level: debug, info, warn, error")
	fs.StringVar(&f.values.Format, "log-format", d.Format, "Log format: console or json")
	fs.StringVar(&f.values.File, "log-file", d.File, "Append logs to this file instead of stdout")
	return f
}

// Apply 把显式设置过的参数写入 cfg
func (f *Flags) Apply(cfg *types.Config) {
	f.fs.Visit(func(fl *pflag.Flag) {
		switch fl.Name {
		case "addr":
			cfg.Addr = f.values.Addr
		case "port":
			cfg.Port = f.values.Port
		case "frkey":
			cfg.FrKey = f.values.FrKey
		case "haproxy-protocol":
			cfg.ProxyProtocol = f.values.ProxyProtocol
		case "realip-header":
			cfg.RealIPHeader = f.values.RealIPHeader
		case "metrics-addr":
			cfg.MetricsAddr = f.values.MetricsAddr
		case "buffer":
			cfg.BufferSize = f.values.BufferSize
		case "timeout":
			cfg.Timeout = f.values.Timeout
		case "secret":
			cfg.Secret = f.values.Secret
		case "aes-only":
			cfg.AESOnly = f.values.AESOnly
		case "stream":
			cfg.Stream = f.values.Stream
		case "log-level":
			cfg.Level = f.values.Level
		case "log-format":
			cfg.Format = f.values.Format
		case "log-file":
			cfg.File = f.values.File
		}
	})
}
