package domain

import "fmt"

// MaxTableSize is the most attacks a single round may hold.
const MaxTableSize = 6

// TableState is the round's table top lifecycle stage.
type TableState string

const (
	TableEmpty      TableState = "empty"
	TableAttacking  TableState = "attacking"
	TableAllCovered TableState = "all_covered"
)

// Pair is one attack and its cover, if any.
type Pair struct {
	Attack Card
	Cover  *Card
}

// Covered reports whether the attack has been beaten.
func (p Pair) Covered() bool {
	return p.Cover != nil
}

// TableTop is the attack/defense area of the current round. Pairs keep insertion order.
type TableTop struct {
	pairs []Pair
}

// State derives the lifecycle stage from the pairs on the table.
func (t *TableTop) State() TableState {
	switch {
	case len(t.pairs) == 0:
		return TableEmpty
	case t.AllCovered():
		return TableAllCovered
	default:
		return TableAttacking
	}
}

// Len returns the number of attacks on the table.
func (t *TableTop) Len() int {
	return len(t.pairs)
}

// Full reports whether no further attack fits.
func (t *TableTop) Full() bool {
	return len(t.pairs) >= MaxTableSize
}

// UncoveredCount returns the number of attacks still waiting for a cover.
func (t *TableTop) UncoveredCount() int {
	n := 0
	for _, p := range t.pairs {
		if !p.Covered() {
			n++
		}
	}
	return n
}

// AllCovered is true when the table is non-empty and every attack is covered.
func (t *TableTop) AllCovered() bool {
	return len(t.pairs) > 0 && t.UncoveredCount() == 0
}

// HasRank reports whether any attack or cover card on the table has rank r.
func (t *TableTop) HasRank(r Rank) bool {
	for _, p := range t.pairs {
		if p.Attack.Rank == r || (p.Cover != nil && p.Cover.Rank == r) {
			return true
		}
	}
	return false
}

// Pairs returns a copy of the table in insertion order.
func (t *TableTop) Pairs() []Pair {
	out := make([]Pair, len(t.pairs))
	for i, p := range t.pairs {
		out[i] = Pair{Attack: p.Attack}
		if p.Cover != nil {
			c := *p.Cover
			out[i].Cover = &c
		}
	}
	return out
}

// Uncovered returns the attacks still waiting for a cover.
func (t *TableTop) Uncovered() []Card {
	var out []Card
	for _, p := range t.pairs {
		if !p.Covered() {
			out = append(out, p.Attack)
		}
	}
	return out
}

// Cards returns every card on the table, attacks and covers.
func (t *TableTop) Cards() []Card {
	out := make([]Card, 0, 2*len(t.pairs))
	for _, p := range t.pairs {
		out = append(out, p.Attack)
		if p.Cover != nil {
			out = append(out, *p.Cover)
		}
	}
	return out
}

func (t *TableTop) place(c Card) error {
	if t.Full() {
		return fmt.Errorf("%w: %d attacks", ErrTableFull, len(t.pairs))
	}
	t.pairs = append(t.pairs, Pair{Attack: c})
	return nil
}

// checkCover validates a cover without mutating the table.
func (t *TableTop) checkCover(attacked, covering Card, trump Suit) (int, error) {
	idx := -1
	for i, p := range t.pairs {
		if p.Attack == attacked && !p.Covered() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNoSuchAttack, attacked)
	}
	if !Beats(covering, attacked, trump) {
		return -1, fmt.Errorf("%w: %s on %s", ErrIllegalCover, covering, attacked)
	}
	return idx, nil
}

func (t *TableTop) cover(attacked, covering Card, trump Suit) error {
	idx, err := t.checkCover(attacked, covering, trump)
	if err != nil {
		return err
	}
	c := covering
	t.pairs[idx].Cover = &c
	return nil
}

func (t *TableTop) clear() []Card {
	cards := t.Cards()
	t.pairs = nil
	return cards
}
