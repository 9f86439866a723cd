//go:build integration

// Package evalbus_test provides integration tests that publish through a
// real Kafka broker. Tests require Docker and are gated behind the
// "integration" build tag.
package evalbus_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	segmentiokafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/turtacn/gaussgrid/internal/infrastructure/messaging/evalbus"
	"github.com/turtacn/gaussgrid/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/gaussgrid/internal/infrastructure/monitoring/logging"
)

// startKafka launches a single-node, KRaft-mode Kafka broker and returns
// its externally reachable bootstrap address.
func startKafka(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	const clusterID = "gaussgrid-test-cluster-000000000"
	req := testcontainers.ContainerRequest{
		Image:        "bitnami/kafka:3.7",
		ExposedPorts: []string{"9092/tcp"},
		Env: map[string]string{
			"KAFKA_CFG_NODE_ID":                                  "0",
			"KAFKA_CFG_PROCESS_ROLES":                            "controller,broker",
			"KAFKA_CFG_LISTENERS":                                "PLAINTEXT://:9092,CONTROLLER://:9093",
			"KAFKA_CFG_ADVERTISED_LISTENERS":                     "PLAINTEXT://:9092",
			"KAFKA_CFG_CONTROLLER_LISTENER_NAMES":                "CONTROLLER",
			"KAFKA_CFG_LISTENER_SECURITY_PROTOCOL_MAP":           "CONTROLLER:PLAINTEXT,PLAINTEXT:PLAINTEXT",
			"KAFKA_CFG_CONTROLLER_QUORUM_VOTERS":                 "0@localhost:9093",
			"KAFKA_KRAFT_CLUSTER_ID":                             clusterID,
			"ALLOW_PLAINTEXT_LISTENER":                           "yes",
			"KAFKA_CFG_OFFSETS_TOPIC_REPLICATION_FACTOR":         "1",
			"KAFKA_CFG_TRANSACTION_STATE_LOG_REPLICATION_FACTOR": "1",
		},
		WaitingFor: wait.ForListeningPort("9092/tcp").WithStartupTimeout(90 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "9092")
	require.NoError(t, err)

	return fmt.Sprintf("%s:%s", host, port.Port())
}

// TestBus_PublishCubeReady_RealBroker wires kafka.NewProducer into
// evalbus.New and verifies a published "cube ready" event is actually
// readable back off the broker.
func TestBus_PublishCubeReady_RealBroker(t *testing.T) {
	broker := startKafka(t)
	logger := logging.NewNopLogger()

	manager, err := kafka.NewTopicManager([]string{broker}, logger)
	require.NoError(t, err)
	defer manager.Close()
	require.NoError(t, manager.CreateTopic(context.Background(), kafka.TopicConfig{
		Name:              kafka.TopicCubeReady,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: []string{broker},
		Acks:    "all",
	}, logger)
	require.NoError(t, err)
	defer producer.Close()

	bus := evalbus.New(producer, logger, "integration-test-worker")
	require.NoError(t, bus.PublishCubeReady("mo"))

	reader := segmentiokafka.NewReader(segmentiokafka.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     kafka.TopicCubeReady,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	defer reader.Close()
	require.NoError(t, reader.SetOffset(0))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	raw, err := reader.ReadMessage(ctx)
	require.NoError(t, err)

	env, err := kafka.MessageToEventEnvelope(&kafka.Message{Value: raw.Value})
	require.NoError(t, err)
	assert.Equal(t, "cube.ready", env.EventType)
	assert.Equal(t, "integration-test-worker", env.Source)

	var payload kafka.CubeReadyPayload
	require.NoError(t, env.DecodePayload(&payload))
	assert.Equal(t, "mo", payload.Kind)
}
