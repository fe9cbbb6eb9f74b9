package adapters

import (
	"context"
	"encoding/json"
	"log/slog"

	platformkafka "nexolend/internal/platform/kafka"
	"nexolend/internal/scoring/ports"
)

// KafkaNotifier publishes score change notifications for downstream loan and
// notification services. Delivery is fire-and-forget; a broker outage never
// blocks or fails a scoring operation.
type KafkaNotifier struct {
	publisher *platformkafka.Publisher
	logger    *slog.Logger
}

// NewKafkaNotifier creates the notifier. A nil publisher (Kafka not
// configured) yields a no-op notifier.
func NewKafkaNotifier(publisher *platformkafka.Publisher, logger *slog.Logger) *KafkaNotifier {
	return &KafkaNotifier{publisher: publisher, logger: logger}
}

// ScoreChanged publishes the notification keyed by subject so per-subject
// ordering is preserved.
func (n *KafkaNotifier) ScoreChanged(ctx context.Context, notification ports.ScoreNotification) {
	if n == nil || n.publisher == nil {
		return
	}
	payload, err := json.Marshal(notification)
	if err != nil {
		if n.logger != nil {
			n.logger.ErrorContext(ctx, "failed to marshal score notification",
				"subject_id", notification.SubjectID,
				"error", err,
			)
		}
		return
	}
	n.publisher.Publish(ctx, notification.SubjectID, payload)
}
