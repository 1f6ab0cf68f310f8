package agent

import (
	"fmt"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
)

const (
	headerForwardedFor = "X-Forwarded-For"
	headerRealIP       = "X-Real-IP"
	headerRemoteHost   = "remote_host"
	fallbackClientIP   = "127.0.0.1"
)

// ResolveClientIP 按 X-Forwarded-For, realIPHeader, remote_host, 对端地址 的顺序取客户端 IP。
// 空值视为缺失。头部中的值不做校验, 直连客户端可以伪造它们。
func ResolveClientIP(h http.Header, remoteAddr, realIPHeader string) string {
	if realIPHeader == "" {
		realIPHeader = headerRealIP
	}
	if v, ok := lookupHeader(h, headerForwardedFor); ok {
		first, _, _ := strings.Cut(v, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	for _, name := range []string{realIPHeader, headerRemoteHost} {
		if v, ok := lookupHeader(h, name); ok {
			if ip := strings.TrimSpace(v); ip != "" {
				return ip
			}
		}
	}
	if remoteAddr != "" {
		if host, _, err := net.SplitHostPort(remoteAddr); err == nil {
			return host
		}
		return remoteAddr
	}
	return fallbackClientIP
}

// lookupHeader 做大小写无关的查找。remote_host 含下划线, 不是规范形式, 需要逐个比较。
func lookupHeader(h http.Header, name string) (string, bool) {
	if vs, ok := h[http.CanonicalHeaderKey(name)]; ok && len(vs) > 0 {
		return vs[0], true
	}
	for k, vs := range h {
		if strings.EqualFold(k, name) && len(vs) > 0 {
			return vs[0], true
		}
	}
	return "", false
}

// ResolveTarget 从查询参数取目标地址。
// key 为空时取字典序最小的参数名对应的值。
func ResolveTarget(query url.Values, key string) (string, error) {
	if key == "" {
		if len(query) == 0 {
			return "", ErrNoTarget
		}
		keys := make([]string, 0, len(query))
		for k := range query {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		key = keys[0]
	}
	target := query.Get(key)
	if target == "" {
		return "", fmt.Errorf("%w: %q", ErrNoTarget, key)
	}
	return target, nil
}

// peerPort 返回对端端口, 未知时为 0
func peerPort(remoteAddr string) uint16 {
	_, port, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return 0
	}
	p, err := strconv.ParseUint(port, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(p)
}
