package services

import (
	"github.com/studiolane/studiolane-backend/internal/logger"
)

// LogNotifier is the default comment notifier. Delivery is best-effort and
// observable only through the log stream; callers never wait on it.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(baseLog *logger.Logger) *LogNotifier {
	return &LogNotifier{log: baseLog.With("service", "LogNotifier")}
}

func (n *LogNotifier) Dispatch(event string, fields map[string]interface{}) {
	if n == nil {
		return
	}
	kv := make([]interface{}, 0, len(fields)*2+2)
	kv = append(kv, "event", event)
	for k, v := range fields {
		kv = append(kv, k, v)
	}
	n.log.Info("notification dispatched", kv...)
}
