package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "card.created", Data: map[string]string{"id": "c1"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: card.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"c1"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishCardEvent_DeckThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event triggers deck.updated; the second, immediately after,
	// must be throttled.
	b.PublishCardEvent("created", "a")
	b.PublishCardEvent("updated", "b")

	deadline := time.After(time.Second)
	var deckCount int
	var cardCount int
	for cardCount < 2 {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "event: deck.updated") {
				deckCount++
			}
			if strings.Contains(s, "event: card.created") || strings.Contains(s, "event: card.updated") {
				cardCount++
			}
		case <-deadline:
			t.Fatal("timeout waiting for card events")
		}
	}

	// Drain anything already queued.
	drain := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), "event: deck.updated") {
				deckCount++
			}
			continue
		case <-drain:
		}
		break
	}

	if deckCount != 1 {
		t.Errorf("deck.updated count = %d, want 1", deckCount)
	}
}

func TestPublishCardEvent_StoreReloaded(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishCardEvent("store.reloaded", "")

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "event: store.reloaded") {
			t.Errorf("unexpected message %q", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for store.reloaded")
	}
}

func TestClose_ClosesClientChannels(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected closed channel after broker Close")
		}
	case <-time.After(time.Second):
		t.Fatal("channel not closed")
	}

	// Operations after Close are no-ops.
	b.Publish(Event{Type: "x"})
	if b.ClientCount() != 0 {
		t.Error("ClientCount after Close should be 0")
	}
}

func TestServeHTTP_StreamsEvents(t *testing.T) {
	b := NewBroker(time.Hour)
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Wait for the subscription to register, then publish.
	deadline := time.Now().Add(time.Second)
	for b.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	b.Publish(Event{Type: "card.created", Data: map[string]string{"id": "x"}})

	// Give the handler time to flush, then stop it before reading the body.
	time.Sleep(200 * time.Millisecond)
	cancel()
	<-done

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Errorf("content type = %q", got)
	}
	if !strings.Contains(w.Body.String(), "event: card.created") {
		t.Errorf("body = %q", w.Body.String())
	}
}
