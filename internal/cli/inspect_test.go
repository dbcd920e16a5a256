package cli

import (
	"testing"

	"github.com/spireforge/evolver/internal/profile"
)

func TestDeckSummary(t *testing.T) {
	p := profile.New("testmod")
	p.RegisterCard(&profile.CardSpec{Identifier: "strike"})
	p.RegisterCard(&profile.CardSpec{Identifier: "defend"})
	p.RegisterUnlockable(&profile.CardSpec{Identifier: "bonus"})
	p.GeneratedCards = 3

	got := deckSummary(p)
	want := "deck: 2 cards, 3 generated, 1 unlockables"
	if got != want {
		t.Errorf("deckSummary() = %q, want %q", got, want)
	}
}
