package writer

import (
	"testing"

	appconfig "arbscan/config"
)

func TestNewKafkaPublisherRequiresBrokers(t *testing.T) {
	if _, err := NewKafkaPublisher(appconfig.KafkaConfig{Topic: "arbscan.opportunities"}); err == nil {
		t.Fatal("expected error without brokers")
	}
}

func TestNewKafkaPublisher(t *testing.T) {
	kp, err := NewKafkaPublisher(appconfig.KafkaConfig{
		Brokers: []string{"localhost:9092"},
		Topic:   "arbscan.opportunities",
	})
	if err != nil {
		t.Fatalf("NewKafkaPublisher failed: %v", err)
	}
	defer kp.Close()
	if kp.writer.Topic != "arbscan.opportunities" {
		t.Errorf("unexpected topic: %s", kp.writer.Topic)
	}
}
