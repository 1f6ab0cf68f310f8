package agent

import (
	"context"
	"fmt"
	"net"
	"time"
)

// dialTarget 在 timeout 内建立到 target 的 TCP 连接, 失败不重试
func dialTarget(ctx context.Context, target string, timeout time.Duration) (net.Conn, error) {
	if _, _, err := net.SplitHostPort(target); err != nil {
		return nil, fmt.Errorf("%w: malformed target %q: %v", ErrDial, target, err)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	d := &net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", target)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDial, target, err)
	}
	return conn, nil
}
