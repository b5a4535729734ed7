package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, 10, c.Styles.Size())
	assert.Len(t, c.Genres.Core, 6)
	assert.Len(t, c.Genres.Flex, 4)
	assert.Len(t, c.Genres.Bonus, 2)
	assert.Len(t, c.Absurdity, 3)
	assert.Len(t, c.Formats, 5)
	assert.Len(t, c.ImageTags, 7)
	assert.Len(t, c.SeedSlots, 12)
	assert.Equal(t, "MacQuip", c.DefaultNarrator)
	assert.Len(t, c.Narrators, 6)

	for _, s := range c.Styles.All() {
		assert.NotEmpty(t, c.StyleRules[s.Name], "style %q has no rule", s.Name)
	}
	for _, a := range c.Absurdity {
		assert.NotEmpty(t, c.AbsurdityGuidance[a.Name], "absurdity %q has no guidance", a.Name)
	}
}

func TestPool(t *testing.T) {
	c := Default()

	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{PoolStyles, 10, true},
		{PoolGenres, 12, true},
		{PoolAbsurdity, 3, true},
		{PoolFormats, 5, true},
		{PoolImageTags, 7, true},
		{"weather", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := c.Pool(tt.name)
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if p.Size() != tt.want {
				t.Errorf("expected %d options, got %d", tt.want, p.Size())
			}
		})
	}
}

func TestNarrator_CaseInsensitive(t *testing.T) {
	c := Default()

	n, ok := c.Narrator("  dj q'wip ")
	require.True(t, ok)
	assert.Equal(t, "DJ Q'Wip", n.Name)

	_, ok = c.Narrator("NoQuip")
	assert.False(t, ok)
}

func TestSlotCandidates_FallsBackToSurprises(t *testing.T) {
	c := Default()

	assert.Contains(t, c.SlotCandidates("trait"), "grit")
	assert.Equal(t, c.Surprises, c.SlotCandidates("unknown"))
}

func TestParse_ValidationErrors(t *testing.T) {
	data := []byte(`
styles:
  core:
    - {name: Noir}
    - {name: noir}
genres:
  core: []
absurdity:
  - {name: Mild}
formats:
  - {name: Poster}
seed_slots:
  - key: name
  - key: name
narrators:
  - name: MacQuip
default_narrator: Nobody
`)
	_, err := Parse(data)
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, `duplicate option "noir"`)
	assert.Contains(t, msg, "genres: at least one genre is required")
	assert.Contains(t, msg, `duplicate key "name"`)
	assert.Contains(t, msg, "no candidates and no shared surprises")
	assert.Contains(t, msg, `"Nobody" is not a narrator`)
}

func TestParse_DefaultNarratorFallsBackToFirst(t *testing.T) {
	data := []byte(`
styles: {core: [{name: Noir}]}
genres: {core: [{name: Mystery}]}
absurdity: [{name: Mild}]
formats: [{name: Poster}]
narrators: [{name: ErrQuip}]
`)
	c, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "ErrQuip", c.DefaultNarrator)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, defaultYAML, 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default().Styles, c.Styles)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
