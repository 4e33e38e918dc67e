package service

import (
	"context"
	"log"

	"github.com/relaymind/knowledgecore/internal/domain"
)

// ProgressSink receives ingestion progress events. The room identifies the
// recipient: the owner when one is known, otherwise the container.
type ProgressSink interface {
	Notify(ctx context.Context, room string, event domain.ProgressEvent)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Notify(context.Context, string, domain.ProgressEvent) {}

// LogSink writes events to the process log.
type LogSink struct{}

func (LogSink) Notify(_ context.Context, room string, event domain.ProgressEvent) {
	if event.Error != "" {
		log.Printf("ingest[%s]: %s %d%% error=%s", room, event.Status, event.Progress, event.Error)
		return
	}
	log.Printf("ingest[%s]: %s %d%% %s", room, event.Status, event.Progress, event.Message)
}

// SinkFunc adapts a function to the ProgressSink interface.
type SinkFunc func(ctx context.Context, room string, event domain.ProgressEvent)

func (f SinkFunc) Notify(ctx context.Context, room string, event domain.ProgressEvent) {
	f(ctx, room, event)
}
