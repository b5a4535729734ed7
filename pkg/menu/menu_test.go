package menu

import (
	"errors"
	"math/rand/v2"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRand() *rand.Rand {
	return rand.New(rand.NewPCG(7, 11))
}

func opts(names ...string) []Option {
	out := make([]Option, len(names))
	for i, n := range names {
		out[i] = Option{Name: n, Description: n + " desc"}
	}
	return out
}

var sixStyles = opts("Flash Fiction", "Ballads", "Satire", "Breaking News", "Noir", "Mythic")

func TestBuild_KeysContiguous(t *testing.T) {
	pool := Pool{
		Core:  opts("Mystery", "Adventure", "Horror", "Romance", "Sci-Fi", "Fantasy"),
		Flex:  opts("Fable", "Fairy Tale", "Comedy", "Slice of Life"),
		Bonus: opts("Plaidverse Caper", "Cosmic Plaid"),
	}

	tests := []struct {
		name     string
		counts   Counts
		controls Controls
		wantLen  int
	}{
		{"full counts", Counts{Core: 3, Flex: 2, Bonus: 1}, WildCardAndReshuffle, 8},
		{"core only", Counts{Core: 3}, WildCardAndReshuffle, 5},
		{"oversized counts degrade", Counts{Core: 10, Flex: 10, Bonus: 10}, WildCardAndReshuffle, 14},
		{"wild card only", Counts{Core: 2}, WildCardOnly, 3},
		{"no controls", Counts{Core: 2, Flex: 1}, NoControls, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Build(newRand(), pool, tt.counts, tt.controls)
			if m.Len() != tt.wantLen {
				t.Fatalf("expected %d entries, got %d", tt.wantLen, m.Len())
			}
			for i := 1; i <= tt.wantLen; i++ {
				if _, ok := m.Options[strconv.Itoa(i)]; !ok {
					t.Errorf("missing key %d", i)
				}
			}
		})
	}
}

func TestBuild_ControlsAreLast(t *testing.T) {
	m := Build(newRand(), Pool{Core: sixStyles}, Counts{Core: 3}, WildCardAndReshuffle)

	assert.Equal(t, KindWildCard, m.Options["4"].Kind)
	assert.Equal(t, KindReshuffle, m.Options["5"].Kind)
	assert.Contains(t, m.Text, "4. Wild Card - Surprise pick!")
	assert.Contains(t, m.Text, "5. Reshuffle - Show different options")
}

func TestBuild_GroupOrderAndNoDuplicates(t *testing.T) {
	pool := Pool{
		Core:  opts("a", "b", "c", "d"),
		Flex:  opts("e", "f", "g"),
		Bonus: opts("h", "i"),
	}
	for seed := range uint64(20) {
		rng := rand.New(rand.NewPCG(seed, seed+1))
		m := Build(rng, pool, Counts{Core: 2, Flex: 2, Bonus: 1}, NoControls)
		shown := m.Displayed()
		require.Len(t, shown, 5)

		seen := map[string]bool{}
		for i, o := range shown {
			if seen[o.Name] {
				t.Fatalf("seed %d: duplicate option %q", seed, o.Name)
			}
			seen[o.Name] = true
			var group []Option
			switch {
			case i < 2:
				group = pool.Core
			case i < 4:
				group = pool.Flex
			default:
				group = pool.Bonus
			}
			assert.Contains(t, group, o, "seed %d position %d", seed, i)
		}
	}
}

func TestBuild_EmptyPool(t *testing.T) {
	m := Build(newRand(), Pool{}, Counts{Core: 3}, WildCardAndReshuffle)
	assert.Equal(t, 2, m.Len())
	assert.Empty(t, m.Displayed())
}

func TestFixed_KeepsOrder(t *testing.T) {
	levels := opts("Mild", "Moderate", "Plaidemonium")
	m := Fixed(levels, WildCardOnly)

	require.Equal(t, 4, m.Len())
	assert.Equal(t, levels, m.Displayed())
	assert.Equal(t, KindWildCard, m.Options["4"].Kind)
}

// Six styles, three shown: "5" reshuffles, "4" draws from all six, "2" picks the second shown.
func TestInterpret_StyleScenario(t *testing.T) {
	rng := newRand()
	m := Build(rng, Pool{Core: sixStyles}, Counts{Core: 3}, WildCardAndReshuffle)
	require.Equal(t, 5, m.Len())

	sel, err := Interpret(rng, "5", m, sixStyles, false)
	require.NoError(t, err)
	assert.True(t, sel.Reshuffle)
	assert.Empty(t, sel.Option.Name)

	sel, err = Interpret(rng, " 2 ", m, sixStyles, false)
	require.NoError(t, err)
	assert.Equal(t, m.Displayed()[1], sel.Option)

	for range 50 {
		sel, err = Interpret(rng, "4", m, sixStyles, false)
		require.NoError(t, err)
		assert.True(t, sel.WildCard)
		assert.Contains(t, sixStyles, sel.Option)
	}
}

func TestInterpret_WildCardReachesHiddenOptions(t *testing.T) {
	rng := newRand()
	m := Build(rng, Pool{Core: sixStyles}, Counts{Core: 3}, WildCardAndReshuffle)
	displayed := map[string]bool{}
	for _, o := range m.Displayed() {
		displayed[o.Name] = true
	}

	hidden := false
	for range 200 {
		sel, err := Interpret(rng, "4", m, sixStyles, false)
		require.NoError(t, err)
		if !displayed[sel.Option.Name] {
			hidden = true
			break
		}
	}
	assert.True(t, hidden, "wild card never drew an option outside the displayed subset")
}

func TestInterpret_WildCardEmptyPoolUsesDisplayed(t *testing.T) {
	rng := newRand()
	m := Fixed(opts("Mild", "Moderate"), WildCardOnly)

	sel, err := Interpret(rng, "3", m, nil, false)
	require.NoError(t, err)
	assert.Contains(t, m.Displayed(), sel.Option)
}

func TestInterpret_Matching(t *testing.T) {
	m := Fixed(opts("Flash Fiction", "Ballads", "Breaking News", "Noir"), WildCardAndReshuffle)

	tests := []struct {
		name      string
		raw       string
		freeText  bool
		want      string
		reshuffle bool
		custom    bool
		wantErr   error
	}{
		{name: "exact case-insensitive", raw: "noir", want: "Noir"},
		{name: "exact with spaces", raw: "  BALLADS ", want: "Ballads"},
		{name: "unique prefix", raw: "fla", want: "Flash Fiction"},
		{name: "ambiguous prefix", raw: "b", wantErr: ErrInvalidChoice},
		{name: "ambiguous prefix with free text", raw: "b", freeText: true, want: "b", custom: true},
		{name: "control by name", raw: "reshuffle", reshuffle: true},
		{name: "unknown", raw: "limerick", wantErr: ErrInvalidChoice},
		{name: "out of range key", raw: "9", wantErr: ErrInvalidChoice},
		{name: "blank", raw: "   ", freeText: true, wantErr: ErrInvalidChoice},
		{name: "free text verbatim", raw: " Cosmic Opera ", freeText: true, want: "Cosmic Opera", custom: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel, err := Interpret(newRand(), tt.raw, m, nil, tt.freeText)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sel.Option.Name != tt.want {
				t.Errorf("expected %q, got %q", tt.want, sel.Option.Name)
			}
			if sel.Reshuffle != tt.reshuffle {
				t.Errorf("reshuffle: expected %v, got %v", tt.reshuffle, sel.Reshuffle)
			}
			if sel.Custom != tt.custom {
				t.Errorf("custom: expected %v, got %v", tt.custom, sel.Custom)
			}
		})
	}
}

func TestSample(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	rng := newRand()

	got := Sample(rng, items, 3)
	assert.Len(t, got, 3)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, items, "input must not be reordered")

	assert.Len(t, Sample(rng, items, 10), 5)
	assert.Nil(t, Sample(rng, items, 0))
	assert.Nil(t, Sample[int](rng, nil, 2))
}
