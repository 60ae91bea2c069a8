package stream

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"carnival-tracker/internal/models"
)

// Event is the envelope published for transaction lifecycle changes.
type Event struct {
	Type        string             `json:"type"` // transaction_recorded | transaction_deleted
	Transaction models.Transaction `json:"transaction"`
	OccurredAt  time.Time          `json:"occurred_at"`
}

// Producer streams transaction events for downstream consumers (reporting,
// audit). Optional; the service runs without it.
type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

func (p *Producer) PublishTransactionRecorded(txn models.Transaction) error {
	return p.publish("transaction_recorded", txn)
}

func (p *Producer) PublishTransactionDeleted(txn models.Transaction) error {
	return p.publish("transaction_deleted", txn)
}

func (p *Producer) publish(eventType string, txn models.Transaction) error {
	msgBytes, err := json.Marshal(Event{
		Type:        eventType,
		Transaction: txn,
		OccurredAt:  time.Now(),
	})
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(txn.TransactionID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
