// Package haproxy builds the PROXY protocol v2 header written ahead of the
// relayed TCP stream.
//
// Addresses are always carried as INET6: IPv4 endpoints are mapped to
// ::ffff:a.b.c.d so every header has the same 52 byte layout.
package haproxy

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	proxyproto "github.com/pires/go-proxyproto"
)

// HeaderLen 是 16 字节固定头加 36 字节地址块
const HeaderLen = 52

// DefaultSourcePort 在无法得知客户端端口时使用
const DefaultSourcePort = 12345

var ErrInvalidAddress = errors.New("invalid address for proxy header")

// MapToV6 返回 addr 的 16 字节形式, IPv4 地址映射为 ::ffff:a.b.c.d
func MapToV6(addr netip.Addr) netip.Addr {
	return netip.AddrFrom16(addr.As16())
}

// ParseDestination 解析 ip:port 或 [ip6]:port, 不接受主机名
func ParseDestination(dest string) (netip.AddrPort, error) {
	ap, err := netip.ParseAddrPort(dest)
	if err != nil {
		return netip.AddrPort{}, fmt.Errorf("%w: destination %q: %v", ErrInvalidAddress, dest, err)
	}
	return ap, nil
}

// BuildV2 生成 PROXY v2 头。clientIP 必须是 IP 字面量。
func BuildV2(clientIP string, srcPort uint16, dest string) ([]byte, error) {
	dst, err := ParseDestination(dest)
	if err != nil {
		return nil, err
	}
	src, err := netip.ParseAddr(clientIP)
	if err != nil {
		return nil, fmt.Errorf("%w: source %q: %v", ErrInvalidAddress, clientIP, err)
	}

	header := &proxyproto.Header{
		Version:           2,
		Command:           proxyproto.PROXY,
		TransportProtocol: proxyproto.TCPv6,
		SourceAddr:        tcpAddr(MapToV6(src), srcPort),
		DestinationAddr:   tcpAddr(MapToV6(dst.Addr()), dst.Port()),
	}
	b, err := header.Format()
	if err != nil {
		return nil, fmt.Errorf("failed to format proxy header: %w", err)
	}
	if len(b) != HeaderLen {
		return nil, fmt.Errorf("unexpected proxy header length %d", len(b))
	}
	return b, nil
}

func tcpAddr(addr netip.Addr, port uint16) *net.TCPAddr {
	b := addr.As16()
	return &net.TCPAddr{IP: net.IP(b[:]), Port: int(port)}
}
