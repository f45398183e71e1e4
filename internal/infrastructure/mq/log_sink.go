package mq

import (
	"go.uber.org/zap"
)

// LogSink writes audit events to the service log. It is used when no broker
// is configured.
type LogSink struct {
	log *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink { return &LogSink{log: logger} }

func (s *LogSink) Publish(e Event) bool {
	s.log.Info("audit event",
		zap.String("event_id", e.Id.String()),
		zap.Time("time_stamp", e.TS),
		zap.String("operation", e.Operation),
		zap.Int64("client_id", e.ClientID),
		zap.String("outcome", e.Outcome),
	)
	return true
}
