package hub

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/traceview/traceview/event"
)

func ev(n int) event.Event {
	return event.Event{Sequence: uint64(n), Message: fmt.Sprintf("e%d", n)}
}

func TestSubscriberReceivesInOrder(t *testing.T) {
	// Subscribe, publish three events: the subscriber receives exactly
	// those three, in publish order.
	h := New(8, 4)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for i := 1; i <= 3; i++ {
		h.Publish(ev(i))
	}

	for i := 1; i <= 3; i++ {
		select {
		case got := <-sub.C():
			if got.Sequence != uint64(i) {
				t.Fatalf("received sequence %d, want %d", got.Sequence, i)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}

	select {
	case extra := <-sub.C():
		t.Fatalf("unexpected extra event: %+v", extra)
	default:
	}
}

func TestNoHistoryBeforeSubscription(t *testing.T) {
	h := New(8, 4)
	h.Publish(ev(1))

	sub := h.Subscribe()
	defer h.Unsubscribe(sub)
	h.Publish(ev(2))

	got := <-sub.C()
	if got.Sequence != 2 {
		t.Fatalf("first delivered event has sequence %d, want 2", got.Sequence)
	}
}

func TestFullQueueDropsOldest(t *testing.T) {
	h := New(2, 100)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	for i := 1; i <= 4; i++ {
		h.Publish(ev(i))
	}

	// Queue bound 2: e1 and e2 were dropped in favor of e3 and e4.
	first := <-sub.C()
	second := <-sub.C()
	if first.Sequence != 3 || second.Sequence != 4 {
		t.Fatalf("received [%d %d], want [3 4]", first.Sequence, second.Sequence)
	}
	if sub.Lagged() != 2 {
		t.Fatalf("Lagged() = %d, want 2", sub.Lagged())
	}
}

func TestConsecutiveDropsRecoverOnDelivery(t *testing.T) {
	h := New(1, 3)
	sub := h.Subscribe()
	defer h.Unsubscribe(sub)

	// Two overflows, then the consumer catches up; the drop streak
	// resets and the subscriber survives further overflows.
	h.Publish(ev(1))
	h.Publish(ev(2))
	h.Publish(ev(3))
	<-sub.C()
	h.Publish(ev(4))
	h.Publish(ev(5))
	h.Publish(ev(6))

	if h.Len() != 1 {
		t.Fatalf("subscriber should have survived, Len() = %d", h.Len())
	}
}

func TestSlowConsumerEviction(t *testing.T) {
	h := New(1, 3)
	slow := h.Subscribe()
	healthy := h.Subscribe()

	// Drain the healthy subscriber from a goroutine so it never lags.
	var received int
	done := make(chan struct{})
	go func() {
		defer close(done)
		for range healthy.C() {
			received++
		}
	}()

	// 1 fill + 3 consecutive overflows trips the threshold.
	for i := 1; i <= 8; i++ {
		h.Publish(ev(i))
		time.Sleep(5 * time.Millisecond)
	}

	if h.Len() != 1 {
		t.Fatalf("slow subscriber should be evicted, Len() = %d", h.Len())
	}

	// The evicted subscriber's channel is closed.
	select {
	case _, ok := <-slow.C():
		if ok {
			// Buffered leftovers drain first; keep reading.
			for range slow.C() {
			}
		}
	case <-time.After(time.Second):
		t.Fatal("evicted subscriber's channel never closed")
	}

	h.Close()
	<-done
	if received == 0 {
		t.Fatal("healthy subscriber received nothing")
	}
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	h := New(4, 4)
	sub := h.Subscribe()
	h.Unsubscribe(sub)
	h.Unsubscribe(sub)
	h.Unsubscribe(nil)

	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}

	// Publishing after unsubscribe must not panic or deliver.
	h.Publish(ev(1))
	if _, ok := <-sub.C(); ok {
		t.Fatal("unsubscribed channel delivered an event")
	}
}

func TestSubscribeAfterClose(t *testing.T) {
	h := New(4, 4)
	h.Close()
	h.Close()

	sub := h.Subscribe()
	if _, ok := <-sub.C(); ok {
		t.Fatal("subscription on a closed hub should be closed")
	}
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
}

func TestConcurrentPublishAndSubscribe(t *testing.T) {
	h := New(16, 8)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	// Publishers hammer the hub while subscribers churn.
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
					h.Publish(ev(i))
				}
			}
		}()
	}
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				sub := h.Subscribe()
				select {
				case <-sub.C():
				case <-time.After(10 * time.Millisecond):
				}
				h.Unsubscribe(sub)
			}
		}()
	}

	time.Sleep(100 * time.Millisecond)
	close(stop)
	wg.Wait()
}
