package app

import (
	"context"
	"log/slog"
	"time"

	"profilehub/internal/model"
)

type EventPublisher interface {
	Publish(ctx context.Context, event model.UserEvent) error
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.UserEvent) error { return nil }

// eventEmitter publishes best effort: a broker outage never fails a request.
type eventEmitter struct {
	publisher EventPublisher
	logger    *slog.Logger
}

func (e eventEmitter) emit(ctx context.Context, eventType string, user *model.User) {
	if e.publisher == nil || user == nil {
		return
	}
	event := model.UserEvent{
		Type:       eventType,
		UserID:     user.ID,
		Email:      user.Email,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.WarnContext(ctx, "publish user event failed",
			"event", eventType, "user_id", user.ID, "error", err)
	}
}
