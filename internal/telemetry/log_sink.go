package telemetry

import "github.com/rs/zerolog"

// LogSink 把每条记录写成一行 info 级别的访问日志
type LogSink struct {
	logger zerolog.Logger
}

func NewLogSink(l zerolog.Logger) *LogSink {
	return &LogSink{logger: l.With().Str("component", "access").Logger()}
}

func (s *LogSink) Emit(rec Record) {
	ev := s.logger.Info().
		Int64("elapsed_us", rec.ElapsedMicros()).
		Str("client_ip", rec.ClientIP).
		Str("src", rec.Src).
		Str("dest", rec.Dest).
		Str("outcome", rec.Outcome).
		Int64("bytes_in", rec.BytesIn).
		Int64("bytes_out", rec.BytesOut)
	if rec.UserID != "" {
		ev = ev.Str("user_id", rec.UserID)
	}
	ev.Msg(rec.AccessLine())
}
