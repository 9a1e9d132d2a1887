package redisstream

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/example/atelier/internal/core/calendar"
	"github.com/example/atelier/internal/ctxutil"
	"github.com/example/atelier/internal/ports/primary"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// ErrMalformed marks a stream entry that can never be processed.
var ErrMalformed = errors.New("malformed absence message")

// AbsenceConsumerConfig configures the consumer group read loop.
type AbsenceConsumerConfig struct {
	Stream   string
	Group    string
	Consumer string
	Block    time.Duration
	Count    int64
}

// AbsenceConsumer reads attendance reports from a Redis stream and feeds
// them to the absence service.
//
// Entries fields:
//
//	operator_id  required, integer
//	date         required, YYYY-MM-DD
//	absent       optional, defaults to true
//	reason       optional
//	actor        optional, recorded in the audit trail
type AbsenceConsumer struct {
	client  *redis.Client
	service primary.AbsenceService
	cfg     AbsenceConsumerConfig
	logger  *zap.Logger
}

// NewAbsenceConsumer creates a consumer.
func NewAbsenceConsumer(client *redis.Client, service primary.AbsenceService, cfg AbsenceConsumerConfig, logger *zap.Logger) *AbsenceConsumer {
	if cfg.Count <= 0 {
		cfg.Count = 16
	}
	if cfg.Block <= 0 {
		cfg.Block = 5 * time.Second
	}
	return &AbsenceConsumer{client: client, service: service, cfg: cfg, logger: logger}
}

// Run consumes until ctx is cancelled. Read errors back off exponentially
// from one second up to thirty.
func (c *AbsenceConsumer) Run(ctx context.Context) error {
	if err := EnsureGroup(ctx, c.client, c.cfg.Stream, c.cfg.Group); err != nil {
		return err
	}

	c.logger.Info("absence consumer started",
		zap.String("stream", c.cfg.Stream),
		zap.String("consumer_group", c.cfg.Group),
		zap.String("consumer_name", c.cfg.Consumer),
	)

	backoff := initialBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		_, err := c.ConsumeOnce(ctx)
		if err == nil {
			backoff = initialBackoff
			continue
		}
		if ctx.Err() != nil {
			return nil
		}

		c.logger.Error("failed to consume absence stream", zap.Error(err), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(backoff):
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}
}

// ConsumeOnce first retries entries this consumer already owns but never
// acknowledged, then reads one batch of new entries. It returns the number of
// entries acknowledged. Entries that fail for a transient reason stay pending
// and are retried on the next call; malformed entries are acknowledged and
// dropped.
func (c *AbsenceConsumer) ConsumeOnce(ctx context.Context) (int, error) {
	acked, err := c.consume(ctx, "0", -1)
	if err != nil {
		return acked, err
	}
	fresh, err := c.consume(ctx, ">", c.cfg.Block)
	return acked + fresh, err
}

// consume reads from the group starting at id. ">" delivers new entries; any
// other id replays this consumer's pending list and never blocks.
func (c *AbsenceConsumer) consume(ctx context.Context, id string, block time.Duration) (int, error) {
	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.cfg.Group,
		Consumer: c.cfg.Consumer,
		Streams:  []string{c.cfg.Stream, id},
		Count:    c.cfg.Count,
		Block:    block,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read from stream %s: %w", c.cfg.Stream, err)
	}

	acked := 0
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			// a pending entry trimmed from the stream comes back without fields
			if len(msg.Values) == 0 && id != ">" {
				if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
					return acked, fmt.Errorf("failed to ack %s: %w", msg.ID, err)
				}
				continue
			}
			err := c.process(ctx, msg)
			if err != nil && !errors.Is(err, ErrMalformed) {
				c.logger.Error("failed to process absence message",
					zap.String("message_id", msg.ID),
					zap.Bool("redelivery", id != ">"),
					zap.Error(err),
				)
				continue
			}
			if err != nil {
				c.logger.Warn("dropping absence message", zap.String("message_id", msg.ID), zap.Error(err))
			}
			if err := c.client.XAck(ctx, c.cfg.Stream, c.cfg.Group, msg.ID).Err(); err != nil {
				return acked, fmt.Errorf("failed to ack %s: %w", msg.ID, err)
			}
			acked++
		}
	}
	return acked, nil
}

func (c *AbsenceConsumer) process(ctx context.Context, msg redis.XMessage) error {
	req, actor, err := ParseAbsenceMessage(msg.Values)
	if err != nil {
		return err
	}
	if actor != "" {
		ctx = ctxutil.WithActorID(ctx, actor)
	}
	ctx = ctxutil.WithOrigin(ctx, ctxutil.Origin{UserAgent: "redis-stream/" + c.cfg.Stream})

	resp, err := c.service.ReportAttendance(ctx, req)
	if err != nil {
		return err
	}

	fields := []zap.Field{
		zap.String("message_id", msg.ID),
		zap.Int64("operator_id", req.OperatorID),
		zap.Int64("attendance_id", resp.AttendanceID),
	}
	if resp.Absence != nil {
		fields = append(fields,
			zap.Int("closed", resp.Absence.Closed()),
			zap.Int("failed", len(resp.Absence.Failures)),
		)
	}
	c.logger.Info("attendance reported from stream", fields...)
	return nil
}

// ParseAbsenceMessage decodes stream fields into a request and an optional actor.
func ParseAbsenceMessage(values map[string]interface{}) (primary.ReportAttendanceRequest, string, error) {
	var req primary.ReportAttendanceRequest

	operator, ok := field(values, "operator_id")
	if !ok {
		return req, "", fmt.Errorf("%w: operator_id missing", ErrMalformed)
	}
	operatorID, err := strconv.ParseInt(operator, 10, 64)
	if err != nil || operatorID <= 0 {
		return req, "", fmt.Errorf("%w: invalid operator_id %q", ErrMalformed, operator)
	}

	rawDate, ok := field(values, "date")
	if !ok {
		return req, "", fmt.Errorf("%w: date missing", ErrMalformed)
	}
	date, err := calendar.ParseDate(rawDate)
	if err != nil {
		return req, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	absent := true
	if raw, ok := field(values, "absent"); ok {
		absent, err = strconv.ParseBool(raw)
		if err != nil {
			return req, "", fmt.Errorf("%w: invalid absent flag %q", ErrMalformed, raw)
		}
	}

	reason, _ := field(values, "reason")
	actor, _ := field(values, "actor")

	req = primary.ReportAttendanceRequest{
		OperatorID: operatorID,
		Date:       date,
		Absent:     absent,
		Reason:     reason,
	}
	return req, actor, nil
}

func field(values map[string]interface{}, key string) (string, bool) {
	v, ok := values[key]
	if !ok {
		return "", false
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	return s, s != ""
}
