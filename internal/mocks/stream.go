package mocks

import (
	"sync"
)

// MockProducer records every published message so tests can assert what
// went out on which topic without a running broker.
type MockProducer struct {
	mu       sync.Mutex
	Messages map[string][]string
}

func NewMockProducer() *MockProducer {
	return &MockProducer{
		Messages: make(map[string][]string),
	}
}

func (m *MockProducer) ProduceMessage(topic, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Messages[topic] = append(m.Messages[topic], message)
	return nil
}

func (m *MockProducer) MessagesFor(topic string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.Messages[topic]
}
