package redisstream

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/example/atelier/internal/core/effects"
	"github.com/example/atelier/internal/ports/secondary"
)

// AuditSink mirrors audit events to a Redis stream. Each entry carries a few
// routing fields plus the full event as JSON under "data".
type AuditSink struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewAuditSink creates a sink writing to stream. maxLen caps the stream
// approximately; zero leaves it unbounded.
func NewAuditSink(client *redis.Client, stream string, maxLen int64) *AuditSink {
	return &AuditSink{client: client, stream: stream, maxLen: maxLen}
}

var _ secondary.AuditSink = (*AuditSink)(nil)

// Record appends the event to the stream.
func (s *AuditSink) Record(ctx context.Context, event effects.AuditEffect) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode audit event %s: %w", event.EventID, err)
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"event_id": event.EventID,
			"action":   event.Action,
			"table":    event.Table,
			"row_id":   event.RowID,
			"data":     string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	if err := s.client.XAdd(ctx, args).Err(); err != nil {
		return fmt.Errorf("failed to publish audit event %s: %w", event.EventID, err)
	}
	return nil
}
