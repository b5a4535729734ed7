package workflow

import (
	"testing"

	"github.com/jwebster45206/plaidlibs/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_SevenWorkflows(t *testing.T) {
	ids := []string{}
	for _, w := range All() {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{LibAte, CreateDirect, Storyline, PlaidPic, PlaidMagGen, PlaidPlay, PlaidChat}, ids)
}

func TestGet(t *testing.T) {
	w, ok := Get(LibAte)
	require.True(t, ok)
	assert.Equal(t, SeedsCollected, w.Seeds)

	_, ok = Get("mad-libs")
	assert.False(t, ok)
}

func TestStep(t *testing.T) {
	w, _ := Get(Storyline)

	s, ok := w.Step(1)
	require.True(t, ok)
	assert.Equal(t, StepText, s.Kind)
	assert.True(t, s.Required)

	_, ok = w.Step(0)
	assert.False(t, ok)
	_, ok = w.Step(len(w.Steps) + 1)
	assert.False(t, ok)
}

func TestSteps_PoolsExistInCatalog(t *testing.T) {
	cat := catalog.Default()
	for _, w := range All() {
		for i, s := range w.Steps {
			if s.Kind != StepChoice && s.Kind != StepTags {
				continue
			}
			_, ok := cat.Pool(s.Pool)
			assert.True(t, ok, "%s step %d: unknown pool %q", w.ID, i+1, s.Pool)
			assert.NotEmpty(t, s.Point, "%s step %d: no decision point", w.ID, i+1)
		}
	}
}
