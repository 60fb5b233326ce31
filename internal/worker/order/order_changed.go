package order

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/meatline/meatline/internal/config"
	"github.com/meatline/meatline/internal/messaging"
	"github.com/meatline/meatline/internal/notify"
	"github.com/meatline/meatline/internal/worker"
)

var workerTracer = otel.Tracer("github.com/meatline/meatline/worker/order")

// Module registers order-related worker handlers.
var Module = fx.Module("worker_order",
	fx.Provide(
		fx.Annotate(
			NewOrderChangedHandler,
			fx.ResultTags(`group:"worker.handlers"`),
		),
	),
)

// NewOrderChangedHandler consumes order change events from the bus and
// replays them into the notification hub, so dashboards attached to this
// instance see changes made by any other instance.
func NewOrderChangedHandler(logger *zap.Logger, cfg config.Config, hub *notify.Hub) worker.HandlerRegistration {
	handler := func(ctx context.Context, msg messaging.Message) error {
		_, span := workerTracer.Start(ctx, "worker.orders.process", trace.WithAttributes(
			attribute.String("messaging.topic", msg.Topic),
		))
		defer span.End()

		var event notify.Event
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			logger.Error("failed to decode order change", zap.Error(err))

			span.RecordError(err)
			span.SetStatus(codes.Error, "decode error")
			return err
		}

		hub.Publish(event)
		logger.Info("order change event processed",
			zap.String("type", string(event.Type)),
			zap.Int64("id", event.Order.ID),
			zap.String("number", event.Order.Number),
			zap.String("status", event.Order.Status),
		)

		return nil
	}

	return worker.HandlerRegistration{
		Topic:   cfg.Messaging.Kafka.Topic,
		Handler: handler,
	}
}
