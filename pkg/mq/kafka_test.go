package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/smilepricing/pkg/logger"
)

type recordingWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestSendMessageEncodesJSON(t *testing.T) {
	w := &recordingWriter{}
	p := newProducer(w, KafkaConfig{})

	ctx := logger.ContextWithTraceID(context.Background(), "trace-9")
	err := p.SendMessage(ctx, "pricing.marketdata", "7", map[string]any{"version": 7}, map[string]string{"event_type": "MarketDataReplaced"})
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}

	msg := w.msgs[0]
	if msg.Topic != "pricing.marketdata" || string(msg.Key) != "7" {
		t.Fatalf("unexpected topic/key: %s/%s", msg.Topic, msg.Key)
	}
	var body map[string]int
	if err := json.Unmarshal(msg.Value, &body); err != nil || body["version"] != 7 {
		t.Fatalf("unexpected body %s: %v", msg.Value, err)
	}

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	if headers["event_type"] != "MarketDataReplaced" || headers["trace_id"] != "trace-9" {
		t.Fatalf("unexpected headers: %v", headers)
	}
}

func TestSendMessageErrors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := newProducer(w, KafkaConfig{})

	if err := p.SendMessage(context.Background(), "t", "k", 1, nil); err == nil {
		t.Fatalf("expected write error")
	}
	if err := p.SendMessage(context.Background(), "t", "k", func() {}, nil); err == nil {
		t.Fatalf("expected marshal error")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("Close did not close writer")
	}
}

func TestNewProducerRequiresBrokers(t *testing.T) {
	if _, err := NewProducer(KafkaConfig{}); err == nil {
		t.Fatalf("expected error for empty brokers")
	}
}
