package main

import (
	"strings"

	"durak/internal/domain"

	"github.com/pterm/pterm"
)

func cardLabel(c domain.Card, trump domain.Suit) string {
	label := c.String()
	if c.Suit == domain.Hearts || c.Suit == domain.Diamonds {
		label = pterm.LightRed(label)
	} else {
		label = pterm.LightWhite(label)
	}
	if c.Suit == trump {
		label = pterm.Bold.Sprint(label) + pterm.LightYellow("*")
	}
	return label
}

func handLabel(cards []domain.Card, trump domain.Suit) string {
	labels := make([]string, 0, len(cards))
	for _, c := range cards {
		labels = append(labels, cardLabel(c, trump))
	}
	return strings.Join(labels, "  ")
}

func roleLabel(game *domain.Game, pl domain.Player) string {
	switch {
	case pl.Out:
		return pterm.LightGreen("Out")
	case pl.IsDefender:
		return pterm.LightRed("Defending")
	case game.HasPassed(pl.ID):
		return pterm.Gray("Passed")
	case pl.StartsRound:
		return pterm.LightCyan("Leading")
	default:
		return pterm.LightBlue("Attacking")
	}
}

func playerPanel(game *domain.Game, pl domain.Player, name string, reveal bool) pterm.Panel {
	hpadding := 4
	if reveal {
		hpadding = 8
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(hpadding).WithTopPadding(1).WithBottomPadding(1)
	body := pterm.Sprintf("%s\nCards: %d", roleLabel(game, pl), pl.HandSize())
	if reveal {
		body += "\n\n" + handLabel(pl.SortedHand(game.Trump()), game.Trump())
	}
	return pterm.Panel{Data: pbox.WithTitle(name).WithTitleTopLeft().Sprint(body)}
}

func tablePanel(game *domain.Game) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	trump := game.Trump()

	lines := []string{
		pterm.Sprintf("Trump: %s   Stock: %d   Discard: %d   Round: %d",
			cardLabel(game.TrumpCard(), trump), game.StockCount(), game.DiscardCount(), game.Round()),
		"",
	}
	pairs := game.Table().Pairs()
	if len(pairs) == 0 {
		lines = append(lines, pterm.Gray("(empty table)"))
	}
	for _, p := range pairs {
		cover := pterm.Gray("...")
		if p.Cover != nil {
			cover = cardLabel(*p.Cover, trump)
		}
		lines = append(lines, pterm.Sprintf("%s  <-  %s", cardLabel(p.Attack, trump), cover))
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightYellow("|TABLE|")).WithTitleTopCenter().Sprint(strings.Join(lines, "\n"))}
}

// printState renders opponents, the table and the viewer's own hand.
func printState(game *domain.Game, viewer string, names map[string]string) {
	var others, mine []pterm.Panel
	for _, pl := range game.Players() {
		if pl.ID == viewer {
			mine = append(mine, playerPanel(game, pl, names[pl.ID], true))
			continue
		}
		others = append(others, playerPanel(game, pl, names[pl.ID], viewer == ""))
	}

	rows := [][]pterm.Panel{others, {tablePanel(game)}}
	if len(mine) > 0 {
		rows = append(rows, mine)
	}
	pterm.DefaultPanel.WithPanels(rows).Render()
}

func resultPanel(game *domain.Game, names map[string]string) pterm.Panel {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	var text string
	if game.IsDraw() {
		text = pterm.Sprintfln("Nobody holds cards. The game is a draw after %d rounds.", game.Round()-1)
	} else {
		text = pterm.Sprintfln("%s is the durak after %d rounds.", pterm.LightRed(names[game.Loser()]), game.Round()-1)
	}
	return pterm.Panel{Data: pbox.WithTitle(pterm.LightGreen("|GAME OVER|")).WithTitleTopCenter().Sprint(text)}
}
