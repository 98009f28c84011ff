package domain

// RecordKind identifies a history entry.
type RecordKind string

const (
	RecordAttack        RecordKind = "attack"
	RecordDefend        RecordKind = "defend"
	RecordPass          RecordKind = "pass"
	RecordConcede       RecordKind = "concede"
	RecordRoundResolved RecordKind = "round_resolved"
)

// Outcome is how a round ended.
type Outcome string

const (
	// OutcomeDefended discards the table; the defender leads next.
	OutcomeDefended Outcome = "defended"
	// OutcomeTookCards moves the table into the defender's hand.
	OutcomeTookCards Outcome = "took_cards"
)

// Record is one entry of the append-only audit log. Seq starts at 1.
type Record struct {
	Seq     int        `json:"seq"`
	Actor   string     `json:"actor"`
	Kind    RecordKind `json:"kind"`
	Cards   []string   `json:"cards,omitempty"`
	Outcome Outcome    `json:"outcome,omitempty"`
}

func (g *Game) record(actor string, kind RecordKind, outcome Outcome, cards ...Card) {
	rec := Record{
		Seq:     len(g.history) + 1,
		Actor:   actor,
		Kind:    kind,
		Outcome: outcome,
	}
	if len(cards) > 0 {
		rec.Cards = CardStrings(cards)
	}
	g.history = append(g.history, rec)
}

// History returns a copy of the log.
func (g *Game) History() []Record {
	out := make([]Record, len(g.history))
	for i, rec := range g.history {
		out[i] = rec
		out[i].Cards = append([]string(nil), rec.Cards...)
	}
	return out
}
