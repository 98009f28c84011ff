package domain

// Snapshot is a transport-ready view of a game. Hands other than the viewer's are size-only.
type Snapshot struct {
	Phase        Phase        `json:"phase"`
	Round        int          `json:"round"`
	Trump        string       `json:"trump"`
	TrumpCard    string       `json:"trump_card"`
	StockCount   int          `json:"stock_count"`
	DiscardCount int          `json:"discard_count"`
	Table        []PairView   `json:"table"`
	Players      []PlayerView `json:"players"`
	Loser        string       `json:"loser,omitempty"`
	Draw         bool         `json:"draw"`
	History      []Record     `json:"history"`
}

// PairView is a table pair in wire form. Cover is nil while the attack is unmatched.
type PairView struct {
	Attack string  `json:"attack"`
	Cover  *string `json:"cover"`
}

// PlayerView is one player as seen by the snapshot's viewer.
type PlayerView struct {
	ID          string   `json:"id"`
	Seat        int      `json:"seat"`
	HandSize    int      `json:"hand_size"`
	Hand        []string `json:"hand,omitempty"`
	IsAttacker  bool     `json:"is_attacker"`
	IsDefender  bool     `json:"is_defender"`
	StartsRound bool     `json:"starts_round"`
	Passed      bool     `json:"passed"`
	Out         bool     `json:"out"`
}

// Serialize builds a snapshot for viewerID. Only the viewer's own hand is included;
// an empty viewerID hides every hand.
func (g *Game) Serialize(viewerID string) Snapshot {
	snap := Snapshot{
		Phase:        g.phase,
		Round:        g.round,
		Trump:        g.trump.String(),
		TrumpCard:    g.trumpCard.String(),
		StockCount:   g.stock.Len(),
		DiscardCount: len(g.discard),
		Table:        make([]PairView, 0, g.table.Len()),
		Players:      make([]PlayerView, 0, len(g.players)),
		Loser:        g.loser,
		Draw:         g.draw,
		History:      g.History(),
	}
	for _, p := range g.table.pairs {
		pv := PairView{Attack: p.Attack.String()}
		if p.Cover != nil {
			s := p.Cover.String()
			pv.Cover = &s
		}
		snap.Table = append(snap.Table, pv)
	}
	for _, pl := range g.players {
		view := PlayerView{
			ID:          pl.ID,
			Seat:        pl.Seat,
			HandSize:    pl.HandSize(),
			IsAttacker:  pl.IsAttacker,
			IsDefender:  pl.IsDefender,
			StartsRound: pl.StartsRound,
			Passed:      g.passed[pl.ID],
			Out:         pl.Out,
		}
		if viewerID != "" && pl.ID == viewerID {
			view.Hand = CardStrings(pl.SortedHand(g.trump))
		}
		snap.Players = append(snap.Players, view)
	}
	return snap
}
