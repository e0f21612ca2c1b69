package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	"rewardledger/core/events"
)

const (
	defaultMaxAttempts = 5
	defaultMinBackoff  = 2 * time.Second
	defaultMaxBackoff  = 30 * time.Second
	defaultQueueSize   = 256
	defaultTimeout     = 15 * time.Second

	// HeaderEvent carries the event type of a delivery.
	HeaderEvent = "X-Rewards-Event"
	// HeaderSignature carries the hex HMAC-SHA256 of the body.
	HeaderSignature = "X-Rewards-Signature"
	// HeaderDelivery carries the unique delivery identifier.
	HeaderDelivery = "X-Rewards-Delivery"
)

// DefaultTopics are delivered when no topics are configured.
var DefaultTopics = []string{
	events.TypeRewardsClaimed,
	events.TypeRewardsScheduleUpdated,
	events.TypeEpochRegistered,
}

// Payload is the webhook body.
type Payload struct {
	DeliveryID string            `json:"deliveryId"`
	Type       string            `json:"type"`
	Sequence   uint64            `json:"sequence"`
	Attributes map[string]string `json:"attributes"`
	EmittedAt  time.Time         `json:"emittedAt"`
}

// Dispatcher delivers committed ledger events to an HTTP endpoint with retry
// and exponential backoff. It implements events.Emitter; Emit never blocks
// and drops deliveries when the queue is full.
type Dispatcher struct {
	endpoint    string
	secret      []byte
	client      *http.Client
	topics      map[string]struct{}
	maxAttempts int
	minBackoff  time.Duration
	maxBackoff  time.Duration
	logger      *slog.Logger
	now         func() time.Time
	meters      metric.MeterProvider
	metrics     *deliveryMetrics

	ctx    context.Context
	cancel context.CancelFunc
	queue  chan delivery
	wg     sync.WaitGroup
}

type delivery struct {
	id        string
	eventType string
	body      []byte
}

// Option mutates dispatcher configuration.
type Option func(*Dispatcher)

// WithHTTPClient overrides the HTTP client used for deliveries.
func WithHTTPClient(client *http.Client) Option {
	return func(d *Dispatcher) {
		if client != nil {
			d.client = client
		}
	}
}

// WithRetryPolicy overrides the retry configuration.
func WithRetryPolicy(maxAttempts int, minBackoff, maxBackoff time.Duration) Option {
	return func(d *Dispatcher) {
		if maxAttempts > 0 {
			d.maxAttempts = maxAttempts
		}
		if minBackoff > 0 {
			d.minBackoff = minBackoff
		}
		if maxBackoff >= minBackoff && maxBackoff > 0 {
			d.maxBackoff = maxBackoff
		}
	}
}

// WithTopics restricts deliveries to the listed event types.
func WithTopics(topics ...string) Option {
	return func(d *Dispatcher) {
		if len(topics) == 0 {
			return
		}
		d.topics = make(map[string]struct{}, len(topics))
		for _, topic := range topics {
			if topic = strings.TrimSpace(topic); topic != "" {
				d.topics[topic] = struct{}{}
			}
		}
	}
}

// WithLogger overrides the logger used for failed deliveries.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithMeterProvider overrides the provider used for delivery counters. The
// global provider is used otherwise.
func WithMeterProvider(provider metric.MeterProvider) Option {
	return func(d *Dispatcher) {
		if provider != nil {
			d.meters = provider
		}
	}
}

// NewDispatcher constructs a dispatcher and spawns the worker goroutine.
func NewDispatcher(endpoint string, secret []byte, opts ...Option) (*Dispatcher, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("webhook: endpoint required")
	}
	if len(secret) == 0 {
		return nil, errors.New("webhook: secret required")
	}
	ctx, cancel := context.WithCancel(context.Background())
	dispatcher := &Dispatcher{
		endpoint:    endpoint,
		secret:      append([]byte(nil), secret...),
		client:      &http.Client{Timeout: defaultTimeout},
		maxAttempts: defaultMaxAttempts,
		minBackoff:  defaultMinBackoff,
		maxBackoff:  defaultMaxBackoff,
		logger:      slog.Default(),
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
		queue:       make(chan delivery, defaultQueueSize),
	}
	WithTopics(DefaultTopics...)(dispatcher)
	for _, opt := range opts {
		opt(dispatcher)
	}
	dispatcher.metrics = newDeliveryMetrics(dispatcher.meters)
	dispatcher.wg.Add(1)
	go dispatcher.worker()
	return dispatcher, nil
}

// Close stops the dispatcher and waits for inflight deliveries to complete.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.cancel()
	d.wg.Wait()
}

// Emit implements events.Emitter.
func (d *Dispatcher) Emit(evt events.Event) {
	if d == nil || evt == nil {
		return
	}
	if _, ok := d.topics[evt.EventType()]; !ok {
		return
	}
	record, ok := evt.(events.Record)
	if !ok || record.Payload == nil {
		return
	}
	payload := Payload{
		DeliveryID: uuid.NewString(),
		Type:       record.Payload.Type,
		Sequence:   record.Payload.Sequence,
		Attributes: record.Payload.Attributes,
		EmittedAt:  d.now().UTC(),
	}
	if err := d.enqueue(payload); err != nil {
		d.metrics.record(outcomeDropped, payload.Type)
		d.logger.Warn("webhook delivery dropped",
			slog.String("type", payload.Type),
			slog.Uint64("sequence", payload.Sequence),
			slog.Any("error", err))
	}
}

func (d *Dispatcher) enqueue(payload Payload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := delivery{id: payload.DeliveryID, eventType: payload.Type, body: data}
	select {
	case <-d.ctx.Done():
		return errors.New("webhook: dispatcher closed")
	default:
	}
	select {
	case d.queue <- job:
		return nil
	default:
		return errors.New("webhook: queue full")
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case job := <-d.queue:
			d.process(job)
		case <-d.ctx.Done():
			return
		}
	}
}

func (d *Dispatcher) process(job delivery) {
	attempt := 0
	backoff := d.minBackoff
	for {
		attempt++
		ctx, cancel := context.WithTimeout(d.ctx, d.attemptTimeout())
		err := d.send(ctx, job)
		cancel()
		if err == nil {
			d.metrics.record(outcomeDelivered, job.eventType)
			return
		}
		if attempt >= d.maxAttempts {
			d.metrics.record(outcomeFailed, job.eventType)
			d.logger.Error("webhook delivery failed",
				slog.String("delivery", job.id),
				slog.String("type", job.eventType),
				slog.Int("attempts", attempt),
				slog.Any("error", err))
			return
		}
		select {
		case <-time.After(backoff):
		case <-d.ctx.Done():
			return
		}
		backoff = nextBackoff(backoff, d.maxBackoff)
	}
}

// attemptTimeout bounds a single delivery. Clients without a timeout get the
// default one.
func (d *Dispatcher) attemptTimeout() time.Duration {
	if d.client.Timeout > 0 {
		return d.client.Timeout
	}
	return defaultTimeout
}

func (d *Dispatcher) send(ctx context.Context, job delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(job.body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(HeaderEvent, job.eventType)
	req.Header.Set(HeaderDelivery, job.id)
	req.Header.Set(HeaderSignature, Sign(d.secret, job.body))
	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	return fmt.Errorf("webhook: delivery failed with status %d", resp.StatusCode)
}

// Sign returns the signature header value for body.
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	_, _ = mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches body under secret.
func Verify(secret, body []byte, signature string) bool {
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

func nextBackoff(current, max time.Duration) time.Duration {
	next := current * 2
	if next > max || next < current {
		return max
	}
	return next
}
