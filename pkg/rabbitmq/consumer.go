package rabbitmq

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"crazzzytube/config"
)

// Binding describes the durable topology a consumer reads from. Messages that
// exhaust their retries are dead-lettered to DLQ through DLX.
type Binding struct {
	Exchange      string
	Queue         string
	RoutingKey    string
	DLX           string
	DLQ           string
	DLQRoutingKey string
}

type Consumer[T any] interface {
	Consume(ctx context.Context, dependencies T) error
}

type Handler[T any] func(ctx context.Context, msg amqp.Delivery, dependencies T) error

type consumer[T any] struct {
	conn       *amqp.Connection
	cfg        *config.RabbitMQ
	binding    Binding
	handler    Handler[T]
	numWorkers int
	maxTries   uint
}

func (c consumer[T]) Consume(ctx context.Context, dependencies T) error {
	logger := zerolog.Ctx(ctx).With().Str("queue", c.binding.Queue).Logger()

	ch, err := c.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if err := declare(ch, c.cfg.Kind, c.binding); err != nil {
		logger.Error().Err(err).Msg("failed to declare topology")
		return err
	}

	err = ch.Qos(c.numWorkers, 0, false)
	if err != nil {
		logger.Error().Err(err).Msg("failed to set QoS")
		return err
	}

	deliveries, err := ch.Consume(c.binding.Queue, "", false, false, false, false, nil)
	if err != nil {
		logger.Error().Err(err).Msg("failed to consume queue")
		return err
	}

	logger.Info().
		Str("exchange", c.binding.Exchange).
		Str("routing_key", c.binding.RoutingKey).
		Int("workers", c.numWorkers).
		Msg("consumer started")

	jobs := make(chan amqp.Delivery, c.numWorkers)
	var wg sync.WaitGroup
	for i := 1; i <= c.numWorkers; i++ {
		wg.Add(1)
		go func(workerId int) {
			defer wg.Done()
			workerCtx := logger.With().Int("worker_id", workerId).Logger().WithContext(ctx)
			for msg := range jobs {
				c.handle(workerCtx, msg, dependencies)
			}
		}(i)
	}

	for {
		select {
		case delivery, ok := <-deliveries:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}

			jobs <- delivery
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()
		}
	}
}

// handle retries the handler with exponential backoff, then acks or
// dead-letters the delivery. Handlers return backoff.Permanent to skip retries.
// A transient failure interrupted by shutdown is requeued instead.
func (c consumer[T]) handle(ctx context.Context, msg amqp.Delivery, dependencies T) {
	permanent := false
	operation := func() (struct{}, error) {
		err := c.handler(ctx, msg, dependencies)
		var permErr *backoff.PermanentError
		permanent = errors.As(err, &permErr)
		return struct{}{}, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = 10 * time.Second

	_, err := backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
	if err != nil && ctx.Err() != nil && !permanent {
		zerolog.Ctx(ctx).Warn().Err(err).Str("message_id", msg.MessageId).Msg("shutting down, requeueing message")
		if nackErr := msg.Nack(false, true); nackErr != nil {
			zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to requeue message")
		}
		return
	}
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Str("message_id", msg.MessageId).Msg("failed to handle message after all retries")
		if nackErr := msg.Nack(false, false); nackErr != nil {
			zerolog.Ctx(ctx).Error().Err(nackErr).Msg("failed to nack message to send to DLQ")
		}
		return
	}

	if ackErr := msg.Ack(false); ackErr != nil {
		zerolog.Ctx(ctx).Error().Err(ackErr).Msg("failed to acknowledge message")
	}
}

func declare(ch *amqp.Channel, kind string, b Binding) error {
	if err := ch.ExchangeDeclare(b.Exchange, kind, true, false, false, false, nil); err != nil {
		return err
	}

	var args amqp.Table
	if b.DLX != "" {
		if err := ch.ExchangeDeclare(b.DLX, kind, true, false, false, false, nil); err != nil {
			return err
		}
		dlq, err := ch.QueueDeclare(b.DLQ, true, false, false, false, nil)
		if err != nil {
			return err
		}
		if err := ch.QueueBind(dlq.Name, b.DLQRoutingKey, b.DLX, false, nil); err != nil {
			return err
		}
		args = amqp.Table{
			"x-dead-letter-exchange":    b.DLX,
			"x-dead-letter-routing-key": b.DLQRoutingKey,
		}
	}

	q, err := ch.QueueDeclare(b.Queue, true, false, false, false, args)
	if err != nil {
		return err
	}
	return ch.QueueBind(q.Name, b.RoutingKey, b.Exchange, false, nil)
}

func NewConsumer[T any](
	conn *amqp.Connection,
	cfg *config.RabbitMQ,
	binding Binding,
	numWorkers int,
	handler Handler[T],
) Consumer[T] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &consumer[T]{
		conn:       conn,
		cfg:        cfg,
		binding:    binding,
		handler:    handler,
		numWorkers: numWorkers,
		maxTries:   5,
	}
}
