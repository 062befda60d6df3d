package events

import "testing"

func TestHubFansOutAndDrops(t *testing.T) {
	h := NewHub()
	a, cancelA := h.Subscribe(1)
	b, cancelB := h.Subscribe(4)
	defer cancelB()

	h.Publish(Event{Type: TypeDeposited, Subject: "x"})
	h.Publish(Event{Type: TypeWithdrawn, Subject: "x"})

	if ev := <-a; ev.Type != TypeDeposited || ev.ID == "" || ev.At.IsZero() {
		t.Fatalf("event=%+v", ev)
	}
	if h.Dropped() != 1 {
		t.Fatalf("dropped=%d want=1", h.Dropped())
	}
	if len(b) != 2 {
		t.Fatalf("b buffered=%d want=2", len(b))
	}

	cancelA()
	cancelA()
	if h.Subscribers() != 1 {
		t.Fatalf("subscribers=%d want=1", h.Subscribers())
	}
	if _, ok := <-a; ok {
		t.Fatalf("cancelled channel still open")
	}
}

func TestNilHubIsInert(t *testing.T) {
	var h *Hub
	h.Publish(Event{Type: TypeDeposited})
	if h.Dropped() != 0 || h.Subscribers() != 0 {
		t.Fatalf("nil hub reported state")
	}
}

func TestFilters(t *testing.T) {
	f := parseFilters(" listing., ,yield.redeemed")
	if len(f) != 2 {
		t.Fatalf("filters=%v", f)
	}
	if !matches(f, TypeListingSold) || !matches(f, TypeRedeemed) || matches(f, TypeDeposited) {
		t.Fatalf("unexpected match result")
	}
	if !matches(nil, TypeDeposited) {
		t.Fatalf("empty filter must match all")
	}
}
