// Package evalbus publishes "cube ready" completion events to Kafka once an
// Evaluator releases a Cube's write lock. It is the distributed-systems
// generalization of the in-process completion callback: a nil Bus means no
// event is published and evaluation proceeds exactly as spec'd without it.
package evalbus

import (
	"context"
	"time"

	"github.com/turtacn/gaussgrid/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/gaussgrid/internal/infrastructure/monitoring/logging"
)

// publisher is the minimal slice of kafka.Producer this package depends on.
type publisher interface {
	Publish(ctx context.Context, msg *kafka.ProducerMessage) error
}

// Bus publishes cube-ready events, satisfying evalgrid.CompletionBus.
type Bus struct {
	producer publisher
	logger   logging.Logger
	source   string
}

// New wraps a kafka.Producer. source identifies this process in the
// published EventEnvelope (e.g. "gaussgrid-worker-3").
func New(producer publisher, logger logging.Logger, source string) *Bus {
	return &Bus{producer: producer, logger: logger, source: source}
}

// PublishCubeReady publishes a TopicCubeReady event for the given kind
// ("mo" or "density"). Errors are returned to the caller, which per
// spec.md §4.5/§9 only logs them: a publish failure never blocks or
// invalidates the completed evaluation.
func (b *Bus) PublishCubeReady(kind string) error {
	env, err := kafka.NewEventEnvelope("cube.ready", b.source, kafka.CubeReadyPayload{
		Kind:       kind,
		FinishedAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg, err := env.ToMessage(kafka.TopicCubeReady)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.producer.Publish(ctx, msg); err != nil {
		b.logger.Warn("evalbus: publish failed", logging.String("kind", kind), logging.Err(err))
		return err
	}
	return nil
}
