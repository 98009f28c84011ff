package domain

import (
	"math/rand"
	"testing"
)

// identitySource makes Shuffle a no-op: j is always i.
type identitySource struct{}

func (identitySource) Intn(n int) int { return n - 1 }

func TestNewDeck(t *testing.T) {
	deck := NewDeck()
	if len(deck) != DeckSize {
		t.Fatalf("deck size = %d, want %d", len(deck), DeckSize)
	}

	seen := make(map[Card]bool)
	for _, c := range deck {
		if seen[c] {
			t.Fatalf("duplicate card found: %s", c)
		}
		seen[c] = true
		if !c.Rank.Valid() || !c.Suit.Valid() {
			t.Fatalf("card out of range: %+v", c)
		}
	}

	// Rank-major: the first four cards are the twos, the last four the aces.
	for i := 0; i < 4; i++ {
		if deck[i].Rank != Two || deck[DeckSize-1-i].Rank != Ace {
			t.Fatalf("deck not rank-major: %s ... %s", deck[i], deck[DeckSize-1-i])
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	deck := NewDeck()
	Shuffle(deck, rand.New(rand.NewSource(7)))

	seen := make(map[Card]bool)
	for _, c := range deck {
		seen[c] = true
	}
	if len(seen) != DeckSize {
		t.Fatalf("shuffled deck has %d distinct cards, want %d", len(seen), DeckSize)
	}
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	a, b := NewDeck(), NewDeck()
	Shuffle(a, rand.New(rand.NewSource(42)))
	Shuffle(b, rand.New(rand.NewSource(42)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("position %d: %s != %s", i, a[i], b[i])
		}
	}
}

func TestShuffleIdentitySource(t *testing.T) {
	deck := NewDeck()
	Shuffle(deck, identitySource{})
	for i, c := range NewDeck() {
		if deck[i] != c {
			t.Fatalf("position %d = %s, want %s", i, deck[i], c)
		}
	}
}

func TestShufflePermutationsEquallyLikely(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	const trials = 60000
	counts := make(map[[3]Card]int)
	base := []Card{{Two, Hearts}, {Three, Hearts}, {Four, Hearts}}
	for i := 0; i < trials; i++ {
		cards := append([]Card(nil), base...)
		Shuffle(cards, rng)
		counts[[3]Card{cards[0], cards[1], cards[2]}]++
	}
	if len(counts) != 6 {
		t.Fatalf("saw %d permutations, want 6", len(counts))
	}
	want := trials / 6
	for perm, n := range counts {
		if n < want*9/10 || n > want*11/10 {
			t.Fatalf("permutation %v seen %d times, want about %d", perm, n, want)
		}
	}
}

func TestShuffleNoPositionalBias(t *testing.T) {
	rng := rand.New(rand.NewSource(99))
	const trials = 20000
	index := make(map[Card]int, DeckSize)
	for i, c := range NewDeck() {
		index[c] = i
	}
	var counts [DeckSize][DeckSize]int
	for i := 0; i < trials; i++ {
		deck := NewDeck()
		Shuffle(deck, rng)
		for pos, c := range deck {
			counts[index[c]][pos]++
		}
	}
	want := trials / DeckSize
	for card := range counts {
		for pos, n := range counts[card] {
			if n < want*6/10 || n > want*14/10 {
				t.Fatalf("card %d at position %d seen %d times, want about %d", card, pos, n, want)
			}
		}
	}
}

func TestDeckDraw(t *testing.T) {
	stock := NewStock(NewDeck()[:5])

	got := stock.Draw(2)
	if len(got) != 2 || got[0] != (Card{Two, Hearts}) || got[1] != (Card{Two, Diamonds}) {
		t.Fatalf("Draw(2) = %v", got)
	}
	if stock.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", stock.Len())
	}

	got = stock.Draw(10)
	if len(got) != 3 {
		t.Fatalf("Draw(10) returned %d cards, want the remaining 3", len(got))
	}
	if got := stock.Draw(1); len(got) != 0 {
		t.Fatalf("Draw on empty stock returned %v", got)
	}
	if _, ok := stock.Peek(); ok {
		t.Fatalf("Peek on empty stock should report false")
	}
}

func TestDeckPutBottom(t *testing.T) {
	stock := NewStock([]Card{{Two, Hearts}, {Three, Hearts}})
	head := stock.Draw(1)[0]
	stock.PutBottom(head)

	cards := stock.Cards()
	if len(cards) != 2 || cards[0] != (Card{Three, Hearts}) || cards[1] != head {
		t.Fatalf("Cards() = %v", cards)
	}
}

func TestSortHandPutsTrumpsLast(t *testing.T) {
	hand := []Card{{Two, Spades}, {Ace, Hearts}, {Six, Hearts}, {King, Clubs}}
	SortHand(hand, Spades)
	if hand[len(hand)-1] != (Card{Two, Spades}) {
		t.Fatalf("trump not last: %v", hand)
	}
	if hand[0] != (Card{Six, Hearts}) || hand[1] != (Card{Ace, Hearts}) {
		t.Fatalf("hearts not ordered by rank: %v", hand)
	}
}
