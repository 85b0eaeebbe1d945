package deck

import (
	"testing"

	"github.com/driftwood-collective/driftdeck/internal/event"
)

func card(id string) event.CandidateEvent {
	return event.CandidateEvent{ID: id, Title: "Event " + id}
}

func TestDeckPushAndTop(t *testing.T) {
	d := NewDeck()

	if _, ok := d.Top(); ok {
		t.Fatal("empty deck should have no top")
	}

	d.Push(card("a"))
	d.Push(card("b"))
	d.Push(card("c"))

	// The most recently pushed card is the top.
	top, ok := d.Top()
	if !ok || top.ID != "c" {
		t.Fatalf("Top = %v, %v, want card c", top.ID, ok)
	}
	next, ok := d.Next()
	if !ok || next.ID != "b" {
		t.Fatalf("Next = %v, %v, want card b", next.ID, ok)
	}
	if d.Len() != 3 {
		t.Fatalf("Len = %d, want 3", d.Len())
	}
}

func TestDeckPushRejectsDuplicates(t *testing.T) {
	d := NewDeck()

	if !d.Push(card("a")) {
		t.Fatal("first push of a should succeed")
	}
	if d.Push(card("a")) {
		t.Fatal("second push of a should be rejected")
	}
	if d.Len() != 1 {
		t.Fatalf("Len = %d, want 1", d.Len())
	}
}

func TestDeckRemoveTop(t *testing.T) {
	d := NewDeck()
	d.Push(card("a"))
	d.Push(card("b"))

	removed, ok := d.RemoveTop()
	if !ok || removed.ID != "b" {
		t.Fatalf("RemoveTop = %v, %v, want card b", removed.ID, ok)
	}
	if d.Len() != 1 {
		t.Fatalf("Len after removal = %d, want 1", d.Len())
	}
	top, _ := d.Top()
	if top.ID != "a" {
		t.Fatalf("new top = %v, want a", top.ID)
	}

	if d.Contains("b") {
		t.Error("removed card should no longer be contained")
	}

	d.RemoveTop()
	if _, ok := d.RemoveTop(); ok {
		t.Fatal("RemoveTop on empty deck should report false")
	}
}

func TestDeckClear(t *testing.T) {
	d := NewDeck()
	d.Push(card("a"))
	d.Push(card("b"))

	d.Clear()
	if d.Len() != 0 {
		t.Fatalf("Len after Clear = %d, want 0", d.Len())
	}
	if d.Contains("a") {
		t.Error("cleared deck should not contain a")
	}
	if !d.Push(card("a")) {
		t.Error("push after Clear should succeed")
	}
}

func TestDeckCardsReturnsCopy(t *testing.T) {
	d := NewDeck()
	d.Push(card("a"))
	d.Push(card("b"))

	cards := d.Cards()
	if len(cards) != 2 || cards[0].ID != "a" || cards[1].ID != "b" {
		t.Fatalf("Cards = %v, want [a b] bottom to top", cards)
	}

	cards[0] = card("x")
	reread := d.Cards()
	if reread[0].ID != "a" {
		t.Error("mutating the returned slice must not affect the deck")
	}
}
