package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"profilehub/internal/model"
	rabbitmqClient "profilehub/internal/platform/rabbitmq"
)

type AvatarProber interface {
	Exists(ctx context.Context, email string) (bool, error)
	AvatarURL(email string) string
}

type GravatarStore interface {
	SetGravatar(ctx context.Context, id, gravatarURL string) error
}

// GravatarWorker consumes user.registered events and replaces the identicon
// fallback with the real avatar URL when the address has one.
type GravatarWorker struct {
	conn      *amqp.Connection
	store     GravatarStore
	avatars   AvatarProber
	exchange  string
	queueName string
	logger    *slog.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewGravatarWorker(
	conn *amqp.Connection,
	store GravatarStore,
	avatars AvatarProber,
	exchange, queueName string,
	logger *slog.Logger,
) *GravatarWorker {
	return &GravatarWorker{
		conn:      conn,
		store:     store,
		avatars:   avatars,
		exchange:  exchange,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *GravatarWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	deliveries, err := w.subscribe(ch)
	if err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.logger.WarnContext(workerCtx, "gravatar worker dropped event", "error", err)
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *GravatarWorker) subscribe(ch *amqp.Channel) (<-chan amqp.Delivery, error) {
	if err := rabbitmqClient.DeclareExchange(ch, w.exchange); err != nil {
		return nil, err
	}

	if _, err := ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare worker queue failed: %w", err)
	}

	if err := ch.QueueBind(w.queueName, model.EventUserRegistered, w.exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind worker queue failed: %w", err)
	}

	if err := ch.Qos(8, 0, false); err != nil {
		return nil, fmt.Errorf("set worker qos failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("consume queue failed: %w", err)
	}
	return deliveries, nil
}

// handle processes one event body. Events other than user.registered are
// acknowledged without side effects.
func (w *GravatarWorker) handle(ctx context.Context, body []byte) error {
	var event model.UserEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode user event failed: %w", err)
	}
	if event.Type != model.EventUserRegistered || event.UserID == "" || event.Email == "" {
		return nil
	}

	exists, err := w.avatars.Exists(ctx, event.Email)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	if err := w.store.SetGravatar(ctx, event.UserID, w.avatars.AvatarURL(event.Email)); err != nil {
		return fmt.Errorf("store gravatar failed: %w", err)
	}
	w.logger.InfoContext(ctx, "gravatar resolved", "user_id", event.UserID)
	return nil
}

func (w *GravatarWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
