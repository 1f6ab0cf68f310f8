// Package telemetry receives one Record per finished relay session.
package telemetry

import (
	"fmt"
	"time"
)

// 会话结束的原因。Record.Status 固定为 200, Outcome 才反映真实结果。
const (
	OutcomeOK          = "ok"
	OutcomeDialError   = "dial_error"
	OutcomeHeaderError = "header_error"
	OutcomeRelayError  = "relay_error"
)

// Record 描述一次结束的会话
type Record struct {
	Time         time.Time
	Elapsed      time.Duration
	ClientIP     string
	Src          string // clientIP:peerPort
	Dest         string
	Method       string
	Path         string
	Status       int
	Referer      string
	ForwardedFor string
	UserAgent    string // 引号已转义
	UserID       string // 空表示请求未携带 user-id

	Outcome  string
	BytesIn  int64 // ws -> tcp
	BytesOut int64 // tcp -> ws
}

// ElapsedMicros 返回从收到升级请求到会话结束的微秒数
func (r Record) ElapsedMicros() int64 {
	return r.Elapsed.Microseconds()
}

// AccessLine 生成单行访问日志, 不含时间和级别
func (r Record) AccessLine() string {
	userID := `""`
	if r.UserID != "" {
		userID = fmt.Sprintf(`"User-Id:%s"`, r.UserID)
	}
	forwardedFor := r.ForwardedFor
	if forwardedFor == "" {
		forwardedFor = "-"
	}
	return fmt.Sprintf(`%dµs %s "path:%s->%s" "%s %s" %d "%s" "%s" "%s" %s`,
		r.ElapsedMicros(), r.ClientIP, r.Src, r.Dest, r.Method, r.Path, r.Status,
		r.Referer, forwardedFor, r.UserAgent, userID)
}

// Sink 消费会话记录, 实现必须可被多个 goroutine 并发调用
type Sink interface {
	Emit(rec Record)
}

// SinkFunc 把普通函数适配为 Sink
type SinkFunc func(rec Record)

func (f SinkFunc) Emit(rec Record) { f(rec) }

// Multi 依次转发给每个 Sink
type Multi []Sink

func (m Multi) Emit(rec Record) {
	for _, s := range m {
		if s != nil {
			s.Emit(rec)
		}
	}
}
