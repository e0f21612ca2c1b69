package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"rewardledger/core/events"
	"rewardledger/core/types"
)

func claimRecord(seq uint64) events.Record {
	evt := events.RewardsClaimed{Epoch: 16, User: [20]byte{1}, Amount: 10, Points: 5, Route: "escrow"}.Event()
	evt.Sequence = seq
	return events.Record{Payload: evt}
}

func TestDispatcherSignsPayload(t *testing.T) {
	secret := []byte("secret")
	var (
		mu        sync.Mutex
		body      []byte
		signature string
		eventType string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		mu.Lock()
		body, signature, eventType = data, r.Header.Get(HeaderSignature), r.Header.Get(HeaderEvent)
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	dispatcher, err := NewDispatcher(server.URL, secret)
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	defer dispatcher.Close()

	dispatcher.Emit(claimRecord(7))
	waitFor(func() bool {
		mu.Lock()
		defer mu.Unlock()
		return signature != ""
	}, time.Second)

	mu.Lock()
	defer mu.Unlock()
	if !Verify(secret, body, signature) {
		t.Fatalf("signature %s does not verify", signature)
	}
	if eventType != events.TypeRewardsClaimed {
		t.Fatalf("unexpected event header %q", eventType)
	}
	var payload Payload
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Sequence != 7 || payload.Attributes["route"] != "escrow" || payload.DeliveryID == "" {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestDispatcherFiltersTopics(t *testing.T) {
	hits := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	dispatcher, err := NewDispatcher(server.URL, []byte("secret"), WithTopics(events.TypeEpochRegistered))
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	dispatcher.Emit(claimRecord(1))
	dispatcher.Emit(events.Record{Payload: &types.Event{Type: events.TypeEpochRegistered, Sequence: 2}})
	waitFor(func() bool { return atomic.LoadInt32(&hits) >= 1 }, time.Second)
	dispatcher.Close()
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one delivery, got %d", got)
	}
}

func TestDispatcherRetries(t *testing.T) {
	attempts := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	dispatcher, err := NewDispatcher(server.URL, []byte("secret"), WithRetryPolicy(5, time.Millisecond*10, time.Millisecond*20))
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	defer dispatcher.Close()
	dispatcher.Emit(claimRecord(3))
	waitFor(func() bool { return atomic.LoadInt32(&attempts) >= 3 }, time.Second)
	if atomic.LoadInt32(&attempts) < 3 {
		t.Fatalf("expected retries, got %d", attempts)
	}
}

func TestDispatcherWithClientWithoutTimeout(t *testing.T) {
	hits := int32(0)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()
	client := server.Client()
	client.Timeout = 0
	dispatcher, err := NewDispatcher(server.URL, []byte("secret"),
		WithHTTPClient(client),
		WithRetryPolicy(1, time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	defer dispatcher.Close()
	dispatcher.Emit(claimRecord(4))
	waitFor(func() bool { return atomic.LoadInt32(&hits) >= 1 }, time.Second)
	if got := atomic.LoadInt32(&hits); got != 1 {
		t.Fatalf("expected one delivery through the supplied client, got %d", got)
	}
}

func TestDispatcherCountsOutcomes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(HeaderEvent) == events.TypeEpochRegistered {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	dispatcher, err := NewDispatcher(server.URL, []byte("secret"),
		WithMeterProvider(provider),
		WithRetryPolicy(2, time.Millisecond, time.Millisecond))
	if err != nil {
		t.Fatalf("dispatcher: %v", err)
	}
	defer dispatcher.Close()

	dispatcher.Emit(claimRecord(5))
	dispatcher.Emit(events.Record{Payload: &types.Event{Type: events.TypeEpochRegistered, Sequence: 6}})
	waitFor(func() bool {
		return countOutcome(t, reader, outcomeDelivered) == 1 && countOutcome(t, reader, outcomeFailed) == 1
	}, 2*time.Second)
	if got := countOutcome(t, reader, outcomeDelivered); got != 1 {
		t.Fatalf("expected one delivered, got %d", got)
	}
	if got := countOutcome(t, reader, outcomeFailed); got != 1 {
		t.Fatalf("expected one failed, got %d", got)
	}
}

func countOutcome(t *testing.T, reader *sdkmetric.ManualReader, outcome string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name != deliveriesInstName {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				if v, ok := dp.Attributes.Value("outcome"); ok && v.AsString() == outcome {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func TestNewDispatcherValidates(t *testing.T) {
	if _, err := NewDispatcher(" ", []byte("s")); err == nil {
		t.Fatalf("expected endpoint error")
	}
	if _, err := NewDispatcher("http://example.invalid", nil); err == nil {
		t.Fatalf("expected secret error")
	}
}

func waitFor(cond func() bool, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond * 10)
	}
}
