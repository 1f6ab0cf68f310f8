package main

import (
	"fmt"
	"io"
	"time"

	"wsproxy_go/internal/types"
)

// printBanner 打印启动信息
func printBanner(w io.Writer, cfg *types.Config, pid int, now time.Time) {
	proxyProto := "disabled"
	if cfg.ProxyProtocol {
		proxyProto = "enabled"
	}
	passphrase := cfg.Secret
	if passphrase == "" {
		passphrase = "none"
	}
	urlRequest := "/?"
	if cfg.FrKey != "" {
		urlRequest = fmt.Sprintf("/?%s=", cfg.FrKey)
	}

	fmt.Fprintf(w, `============= WSproxy running: OK , [%s] =============
PID:            %d
Version:        %s
Address:        %s
SSL/TLS:        unsupported
Proxy protocol: %s
Dial timeout:   %ds
Buffer size:    %d
Passphrase:     %s
Real-IP header: %s
URL request:    %s
=============
`, now.Format("2006-01-02 15:04:05 -0700"), pid, version, cfg.ListenAddr(), proxyProto,
		cfg.Timeout, cfg.BufferSize, passphrase, cfg.RealIPHeader, urlRequest)
}
