package domain

import "fmt"

// Player count bounds.
const (
	MinPlayers = 1
	MaxPlayers = 8
)

// Phase represents the lifecycle stage of a game. Dealing happens inside NewGame.
type Phase string

const (
	// PhaseRoundInProgress accepts attack, defend, pass and concede.
	PhaseRoundInProgress Phase = "round_in_progress"
	// PhaseGameOver is terminal.
	PhaseGameOver Phase = "game_over"
)

// Option configures NewGame.
type Option func(*gameOptions)

type gameOptions struct {
	src    RandomSource
	policy FirstPlayerPolicy
}

// WithRandomSource sets the shuffle source. Without it a time-seeded generator is used.
func WithRandomSource(src RandomSource) Option {
	return func(o *gameOptions) { o.src = src }
}

// WithFirstPlayerPolicy overrides the lowest-trump first leader rule.
func WithFirstPlayerPolicy(p FirstPlayerPolicy) Option {
	return func(o *gameOptions) {
		if p != nil {
			o.policy = p
		}
	}
}

// Game is the authoritative state of one Durak game. It is not safe for
// concurrent use; the host serializes calls.
type Game struct {
	phase     Phase
	players   []*Player
	byID      map[string]*Player
	stock     *Deck
	table     TableTop
	trump     Suit
	trumpCard Card
	discard   []Card
	history   []Record
	passed    map[string]bool
	round     int
	loser     string
	draw      bool
}

// NewGame deals a new game for the given players in seat order.
func NewGame(playerIDs []string, opts ...Option) (*Game, error) {
	if len(playerIDs) < MinPlayers || len(playerIDs) > MaxPlayers {
		return nil, fmt.Errorf("%w: %d (want %d..%d)", ErrInvalidPlayerCount, len(playerIDs), MinPlayers, MaxPlayers)
	}
	o := gameOptions{policy: LowestTrumpPolicy}
	for _, opt := range opts {
		opt(&o)
	}

	g := &Game{
		phase:   PhaseRoundInProgress,
		byID:    make(map[string]*Player, len(playerIDs)),
		passed:  make(map[string]bool),
		round:   1,
		players: make([]*Player, 0, len(playerIDs)),
	}
	for i, id := range playerIDs {
		if _, dup := g.byID[id]; dup || id == "" {
			return nil, fmt.Errorf("%w: %q", ErrDuplicatePlayer, id)
		}
		pl := &Player{ID: id, Seat: i}
		g.players = append(g.players, pl)
		g.byID[id] = pl
	}

	cards := NewDeck()
	Shuffle(cards, o.src)
	g.stock = NewStock(cards)
	if err := Deal(g.stock, g.players, HandSize); err != nil {
		return nil, err
	}

	// The head of the stock names the trump and is then cycled to the bottom.
	if head, ok := g.stock.Peek(); ok {
		g.stock.Draw(1)
		g.stock.PutBottom(head)
		g.trumpCard = head
		g.trump = head.Suit
	}

	if len(g.players) == 1 {
		g.players[0].IsDefender = true
		g.finish()
		return g, nil
	}

	leader := o.policy(g.Players(), g.trump)
	if leader < 0 || leader >= len(g.players) {
		leader = 0
	}
	g.assignRoles(leader)
	return g, nil
}

// Phase returns the current lifecycle stage.
func (g *Game) Phase() Phase { return g.phase }

// Trump returns the trump suit.
func (g *Game) Trump() Suit { return g.trump }

// TrumpCard returns the card that named the trump suit.
func (g *Game) TrumpCard() Card { return g.trumpCard }

// StockCount returns the number of undealt cards.
func (g *Game) StockCount() int { return g.stock.Len() }

// DiscardCount returns the number of cards permanently out of play.
func (g *Game) DiscardCount() int { return len(g.discard) }

// Round returns the 1-based round number.
func (g *Game) Round() int { return g.round }

// Loser returns the durak once the game is over; empty on a draw or while playing.
func (g *Game) Loser() string { return g.loser }

// IsDraw reports whether the game ended with every player out at once.
func (g *Game) IsDraw() bool { return g.draw }

// Table returns a read-only copy of the table top.
func (g *Game) Table() *TableTop {
	return &TableTop{pairs: g.table.Pairs()}
}

// HasPassed reports whether the attacker has passed in the current round.
func (g *Game) HasPassed(playerID string) bool { return g.passed[playerID] }

// Player returns a copy of the player with the given id.
func (g *Game) Player(id string) (Player, bool) {
	pl, ok := g.byID[id]
	if !ok {
		return Player{}, false
	}
	return copyPlayer(pl), true
}

// Players returns copies of all players in seat order.
func (g *Game) Players() []Player {
	out := make([]Player, len(g.players))
	for i, pl := range g.players {
		out[i] = copyPlayer(pl)
	}
	return out
}

// Defender returns the current defender.
func (g *Game) Defender() (Player, bool) {
	if pl := g.defender(); pl != nil {
		return copyPlayer(pl), true
	}
	return Player{}, false
}

// Leader returns the attacker who opens the current round.
func (g *Game) Leader() (Player, bool) {
	if pl := g.leader(); pl != nil {
		return copyPlayer(pl), true
	}
	return Player{}, false
}

// Attack places card from an attacker's hand onto the table.
func (g *Game) Attack(playerID, card string) error {
	if g.phase == PhaseGameOver {
		return ErrGameOver
	}
	if g.table.Full() {
		return fmt.Errorf("%w: %d attacks", ErrTableFull, g.table.Len())
	}
	pl, err := g.lookup(playerID)
	if err != nil {
		return err
	}
	if !pl.IsAttacker {
		return fmt.Errorf("%w: %s is not attacking", ErrNotYourTurn, playerID)
	}
	if g.table.Len() == 0 && !pl.StartsRound {
		return fmt.Errorf("%w: %s cannot open the round", ErrNotYourTurn, playerID)
	}
	def := g.defender()
	if g.table.UncoveredCount()+1 > def.HandSize() {
		return fmt.Errorf("%w: %d uncovered, defender holds %d", ErrInsufficientDefenderCards, g.table.UncoveredCount(), def.HandSize())
	}
	c, err := parseMove(card)
	if err != nil {
		return err
	}
	if !pl.Holds(c) {
		return fmt.Errorf("%w: %s does not hold %s", ErrCardNotHeld, playerID, c)
	}
	if g.table.Len() > 0 && !g.table.HasRank(c.Rank) {
		return fmt.Errorf("%w: %s", ErrRankNotOnTable, c.Rank)
	}

	if err := pl.TakeCard(c); err != nil {
		return err
	}
	if err := g.table.place(c); err != nil {
		pl.GiveCard(c)
		return err
	}
	g.record(playerID, RecordAttack, "", c)
	g.passed = make(map[string]bool)
	return nil
}

// Defend covers an uncovered attack with a card from the defender's hand.
func (g *Game) Defend(playerID, attacked, covering string) error {
	if g.phase == PhaseGameOver {
		return ErrGameOver
	}
	pl, err := g.lookup(playerID)
	if err != nil {
		return err
	}
	if !pl.IsDefender {
		return fmt.Errorf("%w: %s is not defending", ErrNotYourTurn, playerID)
	}
	a, err := parseMove(attacked)
	if err != nil {
		return err
	}
	c, err := parseMove(covering)
	if err != nil {
		return err
	}
	if !pl.Holds(c) {
		return fmt.Errorf("%w: %s does not hold %s", ErrCardNotHeld, playerID, c)
	}
	if _, err := g.table.checkCover(a, c, g.trump); err != nil {
		return err
	}

	if err := pl.TakeCard(c); err != nil {
		return err
	}
	if err := g.table.cover(a, c, g.trump); err != nil {
		pl.GiveCard(c)
		return err
	}
	g.record(playerID, RecordDefend, "", a, c)
	g.passed = make(map[string]bool)
	g.resolveIfDefended()
	return nil
}

// Pass declares that an attacker adds nothing more this round.
func (g *Game) Pass(playerID string) error {
	if g.phase == PhaseGameOver {
		return ErrGameOver
	}
	pl, err := g.lookup(playerID)
	if err != nil {
		return err
	}
	if !pl.IsAttacker {
		return fmt.Errorf("%w: %s is not attacking", ErrNotYourTurn, playerID)
	}
	if g.table.Len() == 0 {
		return fmt.Errorf("%w: the round has not been opened", ErrNotYourTurn)
	}
	if g.passed[playerID] {
		return nil
	}
	g.passed[playerID] = true
	g.record(playerID, RecordPass, "")
	g.resolveIfDefended()
	return nil
}

// Concede makes the defender take every card on the table.
func (g *Game) Concede(playerID string) error {
	if g.phase == PhaseGameOver {
		return ErrGameOver
	}
	pl, err := g.lookup(playerID)
	if err != nil {
		return err
	}
	if !pl.IsDefender {
		return fmt.Errorf("%w: %s is not defending", ErrNotYourTurn, playerID)
	}
	if g.table.Len() == 0 {
		return fmt.Errorf("%w: nothing to take", ErrNotYourTurn)
	}
	g.record(playerID, RecordConcede, "")
	g.resolveRound(OutcomeTookCards)
	return nil
}

// resolveIfDefended ends the round once the table is covered and no attack can follow.
func (g *Game) resolveIfDefended() {
	if !g.table.AllCovered() {
		return
	}
	def := g.defender()
	if g.table.Full() || def.HandSize() == 0 || g.attackersDone() {
		g.resolveRound(OutcomeDefended)
	}
}

func (g *Game) attackersDone() bool {
	for _, pl := range g.players {
		if pl.IsAttacker && pl.HandSize() > 0 && !g.passed[pl.ID] {
			return false
		}
	}
	return true
}

func (g *Game) resolveRound(outcome Outcome) {
	def := g.defender()
	leaderSeat := def.Seat
	if l := g.leader(); l != nil {
		leaderSeat = l.Seat
	}

	cards := g.table.clear()
	switch outcome {
	case OutcomeDefended:
		g.discard = append(g.discard, cards...)
	case OutcomeTookCards:
		for _, c := range cards {
			def.GiveCard(c)
		}
	}
	g.record(def.ID, RecordRoundResolved, outcome, cards...)
	g.refill(leaderSeat)
	g.round++
	g.passed = make(map[string]bool)

	for _, pl := range g.players {
		if !pl.Out && pl.HandSize() == 0 && g.stock.Len() == 0 {
			pl.Out = true
		}
	}
	if g.activeCount() <= 1 {
		g.finish()
		return
	}

	next := g.nextActive(def.Seat)
	if outcome == OutcomeDefended && def.Active() {
		next = def.Seat
	}
	g.assignRoles(next)
}

// refill tops hands up to HandSize in seat order starting at startSeat.
func (g *Game) refill(startSeat int) {
	n := len(g.players)
	for k := 0; k < n; k++ {
		pl := g.players[(startSeat+k)%n]
		if pl.Out {
			continue
		}
		if need := HandSize - pl.HandSize(); need > 0 {
			pl.Hand = append(pl.Hand, g.stock.Draw(need)...)
		}
	}
}

func (g *Game) assignRoles(leaderSeat int) {
	defSeat := g.nextActive(leaderSeat)
	for _, pl := range g.players {
		pl.StartsRound = pl.Seat == leaderSeat
		pl.IsDefender = pl.Seat == defSeat
		pl.IsAttacker = pl.Active() && !pl.IsDefender
	}
}

func (g *Game) finish() {
	g.phase = PhaseGameOver
	var remaining []*Player
	for _, pl := range g.players {
		pl.IsAttacker, pl.IsDefender, pl.StartsRound = false, false, false
		if pl.Active() {
			remaining = append(remaining, pl)
		}
	}
	switch len(remaining) {
	case 0:
		g.draw = true
	case 1:
		g.loser = remaining[0].ID
	}
}

// nextActive returns the first active seat to the left of seat, or -1.
func (g *Game) nextActive(seat int) int {
	n := len(g.players)
	for k := 1; k < n; k++ {
		s := (seat + k) % n
		if g.players[s].Active() {
			return s
		}
	}
	return -1
}

func (g *Game) activeCount() int {
	n := 0
	for _, pl := range g.players {
		if pl.Active() {
			n++
		}
	}
	return n
}

func (g *Game) defender() *Player {
	for _, pl := range g.players {
		if pl.IsDefender {
			return pl
		}
	}
	return nil
}

func (g *Game) leader() *Player {
	for _, pl := range g.players {
		if pl.StartsRound {
			return pl
		}
	}
	return nil
}

func (g *Game) lookup(id string) (*Player, error) {
	pl, ok := g.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlayer, id)
	}
	return pl, nil
}

func parseMove(s string) (Card, error) {
	c, err := ParseCard(s)
	if err != nil {
		return Card{}, fmt.Errorf("%w: %w", ErrInvalidCard, err)
	}
	return c, nil
}

func copyPlayer(pl *Player) Player {
	out := *pl
	out.Hand = append([]Card(nil), pl.Hand...)
	return out
}
