package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"intraday-terminal/internal/interfaces"
	"intraday-terminal/internal/types"
)

// SignalEvent is the Kafka payload: one signal plus the scan that produced it.
type SignalEvent struct {
	Watchlist string       `json:"watchlist"`
	Bias      types.Bias   `json:"bias"`
	Session   string       `json:"session"`
	At        time.Time    `json:"at"`
	Signal    types.Signal `json:"signal"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// KafkaSink publishes every signal of a report, keyed by symbol so a symbol's
// signals land on one partition in order.
type KafkaSink struct {
	w     messageWriter
	topic string
}

var _ interfaces.SignalSink = (*KafkaSink)(nil)

func NewKafkaSink(cfg KafkaConfig) (*KafkaSink, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("brokers are required")
	}
	if cfg.Topic == "" {
		return nil, fmt.Errorf("topic is required")
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 10 * time.Second
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Gzip,
		MaxAttempts:  3,
		WriteTimeout: cfg.WriteTimeout,
		BatchTimeout: 100 * time.Millisecond,
	}
	return &KafkaSink{w: w, topic: cfg.Topic}, nil
}

func (k *KafkaSink) Name() string { return "kafka" }

func (k *KafkaSink) Publish(ctx context.Context, report *types.ScanReport) error {
	msgs, err := buildMessages(report)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := k.w.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write %s: %w", k.topic, err)
	}
	return nil
}

func (k *KafkaSink) Close() error {
	if k.w != nil {
		return k.w.Close()
	}
	return nil
}

func buildMessages(report *types.ScanReport) ([]kafka.Message, error) {
	if report == nil {
		return nil, nil
	}
	msgs := make([]kafka.Message, 0, len(report.Signals))
	for _, s := range report.Signals {
		v, err := json.Marshal(SignalEvent{
			Watchlist: report.Watchlist,
			Bias:      report.Bias,
			Session:   report.Session,
			At:        report.At,
			Signal:    s,
		})
		if err != nil {
			return nil, fmt.Errorf("marshal signal %s: %w", s.Symbol, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(s.Symbol),
			Value: v,
			Time:  report.At,
		})
	}
	return msgs, nil
}
