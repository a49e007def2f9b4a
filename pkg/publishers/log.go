package publishers

import "context"

// logPublisher writes events to the application log. Useful when no broker is available.
type logPublisher struct {
	id    string
	typ   string
	level string
	log   Logger
}

func newLogPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	level := logLevelInfo
	if cfg.Log != nil && cfg.Log.Level != "" {
		level = cfg.Log.Level
	}
	return &logPublisher{
		id:    cfg.ID,
		typ:   TypeLog,
		level: level,
		log:   ensureLogger(log),
	}, nil
}

func (l *logPublisher) ID() string   { return l.id }
func (l *logPublisher) Type() string { return l.typ }

func (l *logPublisher) Publish(_ context.Context, evt Event) error {
	if l.level == logLevelDebug {
		l.log.DebugObj("post event", "post_event", evt)
		return nil
	}
	l.log.InfoObj("post event", "post_event", evt)
	return nil
}
