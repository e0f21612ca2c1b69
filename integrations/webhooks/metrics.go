package webhooks

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	meterName          = "rewardledger/integrations/webhooks"
	deliveriesInstName = "rewards.webhooks.deliveries"

	outcomeDelivered = "delivered"
	outcomeFailed    = "failed"
	outcomeDropped   = "dropped"
)

type deliveryMetrics struct {
	deliveries metric.Int64Counter
}

func newDeliveryMetrics(provider metric.MeterProvider) *deliveryMetrics {
	if provider == nil {
		provider = otel.GetMeterProvider()
	}
	counter, err := provider.Meter(meterName).Int64Counter(deliveriesInstName,
		metric.WithDescription("Webhook deliveries by final outcome."))
	if err != nil {
		counter, _ = noop.NewMeterProvider().Meter(meterName).Int64Counter(deliveriesInstName)
	}
	return &deliveryMetrics{deliveries: counter}
}

func (m *deliveryMetrics) record(outcome, eventType string) {
	if m == nil || m.deliveries == nil {
		return
	}
	m.deliveries.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("type", eventType),
	))
}
