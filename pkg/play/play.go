// Package play simulates a PlaidPlay round: faux player submissions and a random vote tally.
package play

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/plaidlibs/pkg/menu"
)

// Round tuning.
const (
	MinRounds      = 6
	MaxRounds      = 10
	BallotSize     = 4
	FirstPlacePts  = 2
	SecondPlacePts = 1
	NounsPerEntry  = 3
	AdjsPerEntry   = 2
)

// Words are the lists submissions are drawn from.
type Words struct {
	Nouns      []string
	Adjectives []string
	Wilds      []string
}

// Submission is one simulated player's answer to the master prompt.
type Submission struct {
	Player     string   `json:"player"`
	Nouns      []string `json:"nouns"`
	Adjectives []string `json:"adjectives"`
	Wild       string   `json:"wild"`
}

func (s Submission) String() string {
	return fmt.Sprintf("%s: %s / %s / %s", s.Player,
		strings.Join(s.Nouns, ", "), strings.Join(s.Adjectives, ", "), s.Wild)
}

// Score is a player's points after voting.
type Score struct {
	Player string `json:"player"`
	Points int    `json:"points"`
}

// Simulate produces n submissions named "Player 1".."Player n".
func Simulate(rng menu.Rand, words Words, n int) []Submission {
	subs := make([]Submission, 0, n)
	for i := range n {
		wild, _ := menu.Pick(rng, words.Wilds)
		subs = append(subs, Submission{
			Player:     fmt.Sprintf("Player %d", i+1),
			Nouns:      menu.Sample(rng, words.Nouns, NounsPerEntry),
			Adjectives: menu.Sample(rng, words.Adjectives, AdjsPerEntry),
			Wild:       wild,
		})
	}
	return subs
}

// Tally runs between MinRounds and MaxRounds voting rounds. Each round ranks a random
// ballot of up to BallotSize players; first place earns 2 points, second earns 1.
// Scores are returned in submission order.
func Tally(rng menu.Rand, subs []Submission) []Score {
	scores := make([]Score, len(subs))
	players := make([]int, len(subs))
	for i, s := range subs {
		scores[i] = Score{Player: s.Player}
		players[i] = i
	}
	if len(subs) == 0 {
		return scores
	}

	rounds := MinRounds + rng.IntN(MaxRounds-MinRounds+1)
	for range rounds {
		ranked := menu.Sample(rng, players, BallotSize)
		scores[ranked[0]].Points += FirstPlacePts
		if len(ranked) > 1 {
			scores[ranked[1]].Points += SecondPlacePts
		}
	}
	return scores
}

// Winner returns the highest scorer. Ties go to the earlier player.
func Winner(scores []Score) (Score, bool) {
	if len(scores) == 0 {
		return Score{}, false
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.Points > best.Points {
			best = s
		}
	}
	return best, true
}

// Encore renders a short results card for the round.
func Encore(prompt string, subs []Submission, scores []Score) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Master prompt: %s\n\nSubmissions:\n", prompt)
	for _, s := range subs {
		fmt.Fprintf(&b, "- %s\n", s)
	}
	b.WriteString("\nVotes:\n")
	for _, s := range scores {
		fmt.Fprintf(&b, "- %s: %d\n", s.Player, s.Points)
	}
	if w, ok := Winner(scores); ok {
		fmt.Fprintf(&b, "\nWinner: %s with %d points", w.Player, w.Points)
	}
	return b.String()
}
