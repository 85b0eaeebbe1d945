package deck

import "github.com/driftwood-collective/driftdeck/internal/event"

// Deck is the ordered stack of candidate events awaiting a decision. The
// last element is the top (interactive) card; the second-to-last peeks
// behind it. A candidate ID never appears twice.
//
// Deck is not safe for concurrent use; the engine owns all mutation.
type Deck struct {
	cards []event.CandidateEvent
	ids   map[string]struct{}
}

// NewDeck creates an empty deck.
func NewDeck() *Deck {
	return &Deck{
		ids: make(map[string]struct{}),
	}
}

// Push places a candidate on top of the deck. Duplicates are rejected and
// reported with a false return.
func (d *Deck) Push(card event.CandidateEvent) bool {
	if _, dup := d.ids[card.ID]; dup {
		return false
	}
	d.cards = append(d.cards, card)
	d.ids[card.ID] = struct{}{}
	return true
}

// Top returns the top (interactive) card, if any.
func (d *Deck) Top() (event.CandidateEvent, bool) {
	if len(d.cards) == 0 {
		return event.CandidateEvent{}, false
	}
	return d.cards[len(d.cards)-1], true
}

// Next returns the card peeking behind the top, if any.
func (d *Deck) Next() (event.CandidateEvent, bool) {
	if len(d.cards) < 2 {
		return event.CandidateEvent{}, false
	}
	return d.cards[len(d.cards)-2], true
}

// RemoveTop removes and returns the top card. Exactly one element leaves
// the deck per call.
func (d *Deck) RemoveTop() (event.CandidateEvent, bool) {
	if len(d.cards) == 0 {
		return event.CandidateEvent{}, false
	}
	top := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	delete(d.ids, top.ID)
	return top, true
}

// Contains reports whether the deck holds a candidate with the given ID.
func (d *Deck) Contains(id string) bool {
	_, ok := d.ids[id]
	return ok
}

// Len returns the number of cards in the deck.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Clear empties the deck.
func (d *Deck) Clear() {
	d.cards = nil
	d.ids = make(map[string]struct{})
}

// Cards returns a copy of the deck from bottom to top.
func (d *Deck) Cards() []event.CandidateEvent {
	out := make([]event.CandidateEvent, len(d.cards))
	copy(out, d.cards)
	return out
}
