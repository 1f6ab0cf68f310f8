package server

import (
	"net"
	"strconv"

	"wsproxy_go/internal/shared/logger"
)

// logListenAddrs 在监听通配地址时列出本机可用的非回环地址, 方便客户端配置
func logListenAddrs(addr net.Addr) {
	tcpAddr, ok := addr.(*net.TCPAddr)
	if !ok || !tcpAddr.IP.IsUnspecified() {
		return
	}
	for _, ip := range localIPs() {
		logger.Info().Str("url", "ws://"+net.JoinHostPort(ip.String(), strconv.Itoa(tcpAddr.Port))+"/").Msg("  -> reachable at")
	}
}

// localIPs 返回所有非回环的 IPv4 地址
func localIPs() []net.IP {
	interfaces, err := net.Interfaces()
	if err != nil {
		logger.Warn().Err(err).Msg("Could not get network interfaces")
		return nil
	}

	var ips []net.IP
	for _, i := range interfaces {
		addrs, err := i.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip = ip.To4(); ip != nil {
				ips = append(ips, ip)
			}
		}
	}
	return ips
}
