package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestSubscriberDeliversPublishedEvents(t *testing.T) {
	client := newTestClient(t)
	publisher := NewPublisher(client, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := publisher.Publish(ctx, TransactionEventsStream, TransactionProcessed, TransactionProcessedEvent{
		AccountID:       "acc-1",
		TransactionID:   "txn-1",
		Amount:          decimal.NewFromInt(40),
		TransactionType: "DEPOSIT",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	received := make(chan Event, 1)
	sub := NewSubscriber(client, testLogger(), SubscriberConfig{
		Group:         "settlement-group",
		Consumer:      "test-consumer",
		Stream:        TransactionEventsStream,
		BlockDuration: 50 * time.Millisecond,
		Handler: func(ctx context.Context, event Event) error {
			select {
			case received <- event:
			default:
			}
			return nil
		},
	})

	subCtx, subCancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sub.Start(subCtx) }()

	select {
	case event := <-received:
		if event.Type != TransactionProcessed {
			t.Errorf("expected %s, got %s", TransactionProcessed, event.Type)
		}
		dataBytes, _ := json.Marshal(event.Data)
		var data TransactionProcessedEvent
		if err := json.Unmarshal(dataBytes, &data); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if data.TransactionID != "txn-1" {
			t.Errorf("expected txn-1, got %s", data.TransactionID)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("handler never received the event")
	}

	subCancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber did not stop after cancel")
	}

	// The message was acked: no pending entries remain for the group.
	pending, err := client.XPending(context.Background(), TransactionEventsStream, "settlement-group").Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 0 {
		t.Errorf("expected no pending messages, got %d", pending.Count)
	}
}

func TestSubscriberLeavesFailedMessagesPending(t *testing.T) {
	client := newTestClient(t)
	publisher := NewPublisher(client, testLogger())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := publisher.Publish(ctx, TransactionEventsStream, TransactionProcessed, TransactionProcessedEvent{
		AccountID:       "acc-1",
		TransactionID:   "txn-1",
		Amount:          decimal.NewFromInt(40),
		TransactionType: "DEPOSIT",
	}); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var handled atomic.Int32
	sub := NewSubscriber(client, testLogger(), SubscriberConfig{
		Group:         "settlement-group",
		Consumer:      "test-consumer",
		Stream:        TransactionEventsStream,
		BlockDuration: 50 * time.Millisecond,
		Handler: func(ctx context.Context, event Event) error {
			handled.Add(1)
			return errors.New("transient failure")
		},
	})

	subCtx, subCancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- sub.Start(subCtx) }()

	deadline := time.Now().Add(3 * time.Second)
	for handled.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	subCancel()
	<-done

	if handled.Load() == 0 {
		t.Fatal("handler never invoked")
	}
	pending, err := client.XPending(context.Background(), TransactionEventsStream, "settlement-group").Result()
	if err != nil {
		t.Fatalf("xpending: %v", err)
	}
	if pending.Count != 1 {
		t.Errorf("failed message must stay pending for redelivery, got %d", pending.Count)
	}
}
