package domain

import (
	"errors"
	"testing"
)

func TestDealRoundRobin(t *testing.T) {
	stock := NewStock(NewDeck())
	players := []*Player{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	if err := Deal(stock, players, HandSize); err != nil {
		t.Fatalf("Deal error: %v", err)
	}
	if stock.Len() != DeckSize-3*HandSize {
		t.Fatalf("stock = %d, want %d", stock.Len(), DeckSize-3*HandSize)
	}

	deck := NewDeck()
	for i, pl := range players {
		if len(pl.Hand) != HandSize {
			t.Fatalf("%s hand size = %d, want %d", pl.ID, len(pl.Hand), HandSize)
		}
		for k, c := range pl.Hand {
			if want := deck[k*len(players)+i]; c != want {
				t.Fatalf("%s card %d = %s, want %s", pl.ID, k, c, want)
			}
		}
	}
}

func TestDealInsufficientCards(t *testing.T) {
	stock := NewStock(NewDeck()[:11])
	players := []*Player{{ID: "a"}, {ID: "b"}}

	err := Deal(stock, players, HandSize)
	if !errors.Is(err, ErrInsufficientCards) {
		t.Fatalf("Deal error = %v, want %v", err, ErrInsufficientCards)
	}
	if stock.Len() != 11 || len(players[0].Hand) != 0 {
		t.Fatalf("Deal mutated state on failure")
	}
}

func TestTakeAndGiveCard(t *testing.T) {
	pl := &Player{ID: "a", Hand: []Card{{Seven, Hearts}, {Ace, Spades}}}

	if err := pl.TakeCard(Card{Seven, Hearts}); err != nil {
		t.Fatalf("TakeCard error: %v", err)
	}
	if pl.Holds(Card{Seven, Hearts}) || pl.HandSize() != 1 {
		t.Fatalf("card still held after TakeCard: %v", pl.Hand)
	}

	err := pl.TakeCard(Card{Seven, Hearts})
	if !errors.Is(err, ErrCardNotHeld) {
		t.Fatalf("TakeCard error = %v, want %v", err, ErrCardNotHeld)
	}

	pl.GiveCard(Card{Seven, Hearts})
	pl.GiveCard(Card{Seven, Hearts})
	if pl.HandSize() != 2 {
		t.Fatalf("hand size = %d, want 2 (hands hold each card once)", pl.HandSize())
	}
}
