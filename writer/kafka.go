package writer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafka "github.com/segmentio/kafka-go"

	appconfig "arbscan/config"
	"arbscan/engine"
	"arbscan/logger"
)

// opportunityMessage is the JSON payload published per opportunity row,
// keyed by canonical symbol so one partition sees a symbol's history in
// order.
type opportunityMessage struct {
	ScanID    string    `json:"scan_id"`
	ScannedAt time.Time `json:"scanned_at"`
	VenueA    string    `json:"venue_a"`
	VenueB    string    `json:"venue_b"`
	Policy    string    `json:"policy"`
	Row       any       `json:"row"`
}

// KafkaPublisher streams enriched opportunity rows to a Kafka topic so
// downstream consumers can react to scans without polling report files.
type KafkaPublisher struct {
	writer *kafka.Writer
	log    *logger.Entry
}

// NewKafkaPublisher creates a publisher for the configured brokers and topic.
func NewKafkaPublisher(cfg appconfig.KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers not configured")
	}
	kp := &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(cfg.Brokers...),
			Topic:    cfg.Topic,
			Balancer: &kafka.LeastBytes{},
		},
		log: logger.GetLogger().WithComponent("kafka_publisher"),
	}
	kp.log.WithFields(logger.Fields{
		"brokers": cfg.Brokers,
		"topic":   cfg.Topic,
	}).Debug("kafka publisher initialized")
	return kp, nil
}

// Publish sends every opportunity of one scan as an individual message.
// Failures are logged per message; the scan itself is never failed by a
// publishing problem.
func (kp *KafkaPublisher) Publish(ctx context.Context, res *engine.Result) {
	if len(res.Opportunities) == 0 {
		return
	}

	msgs := make([]kafka.Message, 0, len(res.Opportunities))
	for _, op := range res.Opportunities {
		payload := opportunityMessage{
			ScanID:    res.ScanID,
			ScannedAt: res.StartedAt,
			VenueA:    res.VenueA,
			VenueB:    res.VenueB,
			Policy:    res.Policy,
			Row:       op,
		}
		data, err := json.Marshal(payload)
		if err != nil {
			kp.log.WithError(err).Warn("failed to marshal opportunity")
			continue
		}
		msgs = append(msgs, kafka.Message{Key: []byte(op.Symbol), Value: data})
	}

	if err := kp.writer.WriteMessages(ctx, msgs...); err != nil {
		kp.log.WithError(err).WithFields(logger.Fields{"scan_id": res.ScanID}).Warn("failed to publish opportunities")
		return
	}
	logger.LogDataFlowEntry(kp.log.WithFields(logger.Fields{"scan_id": res.ScanID}),
		res.VenueA+"_"+res.VenueB, kp.writer.Topic, len(msgs), "opportunities")
}

// Close flushes and closes the underlying writer.
func (kp *KafkaPublisher) Close() error {
	return kp.writer.Close()
}
