package kafka

import "time"

// Message is a consumed or decoded Kafka record, independent of the
// segmentio/kafka-go wire representation.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Timestamp time.Time
	Headers   map[string]string
}

// ProducerMessage is a record to be published. Key and Headers are
// optional; Topic and Value are required.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
	Partition int
}

// BatchItemError reports the failure of a single message within a
// PublishBatch call. Index is the message's position in the submitted
// slice, or -1 when the writer rejected the whole batch and individual
// outcomes could not be attributed.
type BatchItemError struct {
	Index int
	Topic string
	Error error
}

// BatchPublishResult summarizes the outcome of a PublishBatch call.
type BatchPublishResult struct {
	Succeeded int
	Failed    int
	Errors    []BatchItemError
}

// TopicConfig describes the desired configuration of a topic for
// creation via TopicManager.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
	CleanupPolicy     string
	MaxMessageBytes   int
	Configs           map[string]string
}
