package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	kafka "github.com/segmentio/kafka-go"
	"telemetry-service/internal/config"
	"telemetry-service/internal/ingest"
	"telemetry-service/internal/logging"
)

// Consumer reads telemetry records from a Kafka topic and feeds them into the
// same ingest service as the HTTP path. Malformed messages are logged and
// skipped; retry of valid-but-unstored readings stays with the sender.
type Consumer struct {
	reader *kafka.Reader
	svc    *ingest.Service
	logger *logging.Logger
}

// NewConsumer constructs a Consumer from the Kafka section of the config.
func NewConsumer(cfg config.Config, svc *ingest.Service, logger *logging.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  []string{cfg.Kafka.Broker},
		Topic:    cfg.Kafka.Topic,
		GroupID:  cfg.Kafka.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})
	return &Consumer{reader: reader, svc: svc, logger: logger}
}

// Start launches the consume loop until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, wg *sync.WaitGroup) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.logger.Infof("Kafka consumer started: topic=%s", c.reader.Config().Topic)

		for {
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					c.logger.Infof("Kafka consumer stopped")
					return
				}
				c.logger.Errorf("Read message failed: %v", err)
				continue
			}

			var in ingest.ReadingInput
			if err := json.Unmarshal(msg.Value, &in); err != nil {
				c.logger.Errorf("Unmarshal message failed: %v", err)
				continue
			}

			if _, err := c.svc.Ingest(ctx, in); err != nil {
				c.logger.Errorf("Ingest from Kafka failed: %v", err)
				continue
			}
		}
	}()
}

// Close releases the underlying reader.
func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Errorf("Kafka reader close failed: %v", err)
	}
}
