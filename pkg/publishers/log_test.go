package publishers

import (
	"context"
	"testing"

	"github.com/samvad-hq/postboard/internal/domain"
)

type recordingLogger struct {
	noopLogger
	infos  []string
	debugs []string
}

func (r *recordingLogger) InfoObj(msg, _ string, _ interface{})  { r.infos = append(r.infos, msg) }
func (r *recordingLogger) DebugObj(msg, _ string, _ interface{}) { r.debugs = append(r.debugs, msg) }

func TestLogPublisherLevels(t *testing.T) {
	rec := &recordingLogger{}
	info, _ := newLogPublisher(context.Background(), PublisherConfig{ID: "a", Type: TypeLog}, rec)
	debug, _ := newLogPublisher(context.Background(), PublisherConfig{ID: "b", Type: TypeLog, Log: &LogPublisherConfig{Level: logLevelDebug}}, rec)

	evt := NewEvent(ActionCreated, domain.Post{ID: "1"})
	if err := info.Publish(context.Background(), evt); err != nil {
		t.Fatalf("info publish: %v", err)
	}
	if err := debug.Publish(context.Background(), evt); err != nil {
		t.Fatalf("debug publish: %v", err)
	}
	if len(rec.infos) != 1 || len(rec.debugs) != 1 {
		t.Fatalf("expected one info and one debug entry, got %v / %v", rec.infos, rec.debugs)
	}
}
