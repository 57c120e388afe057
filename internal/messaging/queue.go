package messaging

import "errors"

// KafkaQueue bundles a Publisher and a Poller over the same topic into the
// full shipping queue contract. Producer-only deployments simply never call
// PollShippings; the underlying reader stays idle until the first fetch.
type KafkaQueue struct {
	*Publisher
	*Poller
}

func NewKafkaQueue(brokers []string, topic, groupID string, opts ...PollerOption) *KafkaQueue {
	return &KafkaQueue{
		Publisher: NewPublisher(brokers, topic),
		Poller:    NewPoller(brokers, topic, groupID, opts...),
	}
}

func (q *KafkaQueue) Close() error {
	return errors.Join(q.Publisher.Close(), q.Poller.Close())
}
