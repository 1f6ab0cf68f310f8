package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

const closeGracePeriod = time.Second

// RelayStats 统计两个方向转发的字节数
type RelayStats struct {
	WsToTcp int64
	TcpToWs int64
}

// WebSocketRelay 在 wsConn 与 tcpConn 之间双向转发, 任一方向结束即拆除整个会话。
// 返回时两个连接都已关闭。对端正常关闭时返回 nil。
func WebSocketRelay(ctx context.Context, tcpConn net.Conn, wsConn *websocket.Conn, bufferSize int) (RelayStats, error) {
	var wsToTcp, tcpToWs atomic.Int64

	relayCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, relayCtx := errgroup.WithContext(relayCtx)

	// ws -> tcp
	g.Go(func() error {
		defer cancel()
		for {
			_, data, err := wsConn.ReadMessage()
			if err != nil {
				if relayCtx.Err() != nil || isClosedByPeer(err) {
					return nil
				}
				return fmt.Errorf("%w: websocket read: %v", ErrRelay, err)
			}
			if len(data) == 0 {
				continue
			}
			if _, err := tcpConn.Write(data); err != nil {
				if relayCtx.Err() != nil {
					return nil
				}
				return fmt.Errorf("%w: tcp write: %v", ErrRelay, err)
			}
			wsToTcp.Add(int64(len(data)))
		}
	})

	// tcp -> ws
	g.Go(func() error {
		defer cancel()
		buf := make([]byte, bufferSize)
		for {
			n, err := tcpConn.Read(buf)
			if n > 0 {
				if werr := wsConn.WriteMessage(websocket.BinaryMessage, buf[:n]); werr != nil {
					if relayCtx.Err() != nil {
						return nil
					}
					return fmt.Errorf("%w: websocket write: %v", ErrRelay, werr)
				}
				tcpToWs.Add(int64(n))
			}
			if err != nil {
				if relayCtx.Err() != nil || errors.Is(err, io.EOF) {
					return nil
				}
				return fmt.Errorf("%w: tcp read: %v", ErrRelay, err)
			}
		}
	})

	// 拆除: 先结束的方向取消 relayCtx, 关闭两端使另一方向的阻塞读写返回
	g.Go(func() error {
		<-relayCtx.Done()
		_ = wsConn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeGracePeriod))
		_ = wsConn.Close()
		_ = tcpConn.Close()
		return nil
	})

	err := g.Wait()
	return RelayStats{WsToTcp: wsToTcp.Load(), TcpToWs: tcpToWs.Load()}, err
}

func isClosedByPeer(err error) bool {
	var closeErr *websocket.CloseError
	return errors.As(err, &closeErr) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
