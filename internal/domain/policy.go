package domain

import "fmt"

// FirstPlayerPolicy picks the seat of the first round's leader from the dealt hands.
type FirstPlayerPolicy func(players []Player, trump Suit) int

// Policy names accepted by PolicyByName.
const (
	PolicyLowestTrump = "lowest_trump"
	PolicyFirstSeat   = "first_seat"
)

// LowestTrumpPolicy lets the holder of the lowest trump attack first. Seat 0 leads if nobody holds a trump.
func LowestTrumpPolicy(players []Player, trump Suit) int {
	seat := 0
	lowest := Ace + 1
	for _, pl := range players {
		for _, c := range pl.Hand {
			if c.Suit == trump && c.Rank < lowest {
				lowest = c.Rank
				seat = pl.Seat
			}
		}
	}
	return seat
}

// FixedSeatPolicy always lets the given seat lead.
func FixedSeatPolicy(seat int) FirstPlayerPolicy {
	return func([]Player, Suit) int { return seat }
}

// PolicyByName resolves a configured policy name. Empty selects the lowest-trump rule.
func PolicyByName(name string) (FirstPlayerPolicy, error) {
	switch name {
	case "", PolicyLowestTrump:
		return LowestTrumpPolicy, nil
	case PolicyFirstSeat:
		return FixedSeatPolicy(0), nil
	default:
		return nil, fmt.Errorf("unknown first player policy %q", name)
	}
}
