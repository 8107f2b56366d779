package kafka

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/putrairawan992/tradoora-b2b/internal/domain/model"
	repo "github.com/putrairawan992/tradoora-b2b/internal/repository"

	"github.com/segmentio/kafka-go"
)

// kafka.Writer の必要な部分だけ
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// トピックはメッセージ側で指定する。キー(order_ref)で同じパーティションに寄せる
func NewWriter(brokers []string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// Relay は outbox の未送信イベントを Kafka へ送る。
type Relay struct {
	tx        repo.TransactionManager
	writer    MessageWriter
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewRelay(tx repo.TransactionManager, writer MessageWriter, batchSize int, logger *slog.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		tx:        tx,
		writer:    writer,
		batchSize: batchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// RunOnce は1バッチ送る。送信に失敗したらTxごと戻し、次の周期でやり直す。
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	sent := 0
	err := r.tx.WithinTx(ctx, func(tx repo.TxRepos) error {
		events, err := tx.Outbox().FetchPending(ctx, r.batchSize)
		if err != nil {
			return fmt.Errorf("fetch pending outbox: %w", err)
		}
		if len(events) == 0 {
			return nil
		}

		msgs := make([]kafka.Message, 0, len(events))
		for _, ev := range events {
			msgs = append(msgs, toMessage(ev))
		}
		if err := r.writer.WriteMessages(ctx, msgs...); err != nil {
			return fmt.Errorf("write kafka messages: %w", err)
		}

		at := r.now().UTC()
		for _, ev := range events {
			if err := tx.Outbox().MarkSent(ctx, ev.ID, at); err != nil {
				return fmt.Errorf("mark outbox %d sent: %w", ev.ID, err)
			}
		}
		sent = len(events)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}

// Run は ctx が終わるまで interval ごとに RunOnce する。
func (r *Relay) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.Error("outbox relay failed", "err", err)
				continue
			}
			if n > 0 {
				r.logger.Info("outbox relayed", "count", n)
			}
		}
	}
}

func toMessage(ev model.OutboxEvent) kafka.Message {
	return kafka.Message{
		Topic: ev.Topic,
		Key:   []byte(ev.Key),
		Value: []byte(ev.Payload),
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(ev.EventID)},
		},
		Time: ev.CreatedAt,
	}
}
