package handlers

import (
	"github.com/IBM/sarama"
)

// mockProducer satisfies sarama.SyncProducer via embedding; only the methods
// the handlers call are overridden.
type mockProducer struct {
	sarama.SyncProducer
}

func (m *mockProducer) SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error) {
	return 0, 0, nil
}

func (m *mockProducer) SendMessages(msgs []*sarama.ProducerMessage) error {
	return nil
}

func (m *mockProducer) Close() error {
	return nil
}
