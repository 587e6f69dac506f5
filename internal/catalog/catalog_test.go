package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bouquet-studio-backend/internal/canvas"
	"bouquet-studio-backend/internal/catalog"
)

func TestDefault_IsValid(t *testing.T) {
	c, err := catalog.Default()
	require.NoError(t, err)

	assert.NoError(t, c.Validate())
	assert.NotEmpty(t, c.Entries(canvas.KindSleeve))
	assert.NotEmpty(t, c.Entries(canvas.KindBackground))

	e, err := c.Lookup("/img/sleeves/sleeve1_v2.webp", canvas.KindSleeve)
	require.NoError(t, err)
	assert.Equal(t, "Braun", e.Label)
}

func TestValidate_FlagsProblems(t *testing.T) {
	c := catalog.New([]catalog.Category{{
		Name: "Rosen",
		Entries: []catalog.Entry{
			{Label: "A", Src: "/a.png", Kind: canvas.KindFlower},
			{Label: "A2", Src: "/a.png", Kind: canvas.KindFlower},
			{Label: "B", Src: "", Kind: canvas.KindFlower},
			{Label: "C", Src: "/c.png", Kind: "tulip"},
		},
	}})

	err := c.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrAmbiguous)
	assert.Contains(t, err.Error(), "has no src")
	assert.Contains(t, err.Error(), "invalid type")
}

func TestLookup(t *testing.T) {
	c := catalog.New([]catalog.Category{{
		Name: "Mixed",
		Entries: []catalog.Entry{
			{Label: "A", Src: "/a.png", Kind: canvas.KindFlower},
			{Label: "A leaf", Src: "/a.png", Kind: canvas.KindFoliage},
		},
	}})

	e, err := c.Lookup("/a.png", canvas.KindFoliage)
	require.NoError(t, err)
	assert.Equal(t, "A leaf", e.Label)

	_, err = c.Lookup("/a.png", canvas.KindFiller)
	assert.ErrorIs(t, err, catalog.ErrNoMatch)
}

func TestRehydrate(t *testing.T) {
	no := false
	c := catalog.New([]catalog.Category{
		{Name: "Rosen", Entries: []catalog.Entry{
			{Label: "Rose rot", Src: "/img/rose-rot.png", Kind: canvas.KindFlower, PromptAddition: "open petals"},
		}},
		{Name: "Spezielles", Entries: []catalog.Entry{
			{Label: "Federn", Src: "/img/federn.png", Kind: canvas.KindPlug, PromptAddition: "feathers", Stackable: &no},
			{Label: "Federn alt", Src: "/img/federn.png", Kind: canvas.KindPlug, PromptAddition: "old feathers"},
		}},
	})

	items := []canvas.Item{
		{ID: "1", Src: "/img/rose-rot.png", Kind: canvas.KindFlower},
		{ID: "2", Src: "/img/federn.png", Kind: canvas.KindPlug, Label: "Mine"},
		{ID: "3", Src: "/img/unknown.png", Kind: canvas.KindFiller, PromptAddition: "kept"},
		{ID: "4", Src: "/img/rose-rot.png", Kind: canvas.KindFoliage},
	}

	out, ambiguous := c.Rehydrate(items)
	require.Len(t, out, 4)

	assert.Equal(t, "open petals", out[0].PromptAddition)
	assert.Equal(t, "Rose rot", out[0].Label)
	assert.True(t, out[0].IsStackable())

	assert.Empty(t, out[1].PromptAddition, "ambiguous match is not guessed")
	assert.Equal(t, "Mine", out[1].Label)

	assert.Equal(t, "kept", out[2].PromptAddition)
	assert.Empty(t, out[3].PromptAddition, "kind is part of the key")

	require.Len(t, ambiguous, 1)
	assert.Equal(t, "2", ambiguous[0].ItemID)
	assert.Equal(t, 2, ambiguous[0].Candidates)

	assert.Empty(t, items[0].PromptAddition, "input is not modified")
}

func TestEntry_Asset(t *testing.T) {
	no := false
	e := catalog.Entry{Label: "Federn", Src: "/img/federn.png", Kind: canvas.KindPlug, PromptAddition: "feathers", Stackable: &no}

	a := e.Asset()
	assert.Equal(t, e.Src, a.Src)
	assert.Equal(t, e.Kind, a.Kind)
	require.NotNil(t, a.Stackable)
	assert.False(t, *a.Stackable)
}

func TestKnownAndKindOf(t *testing.T) {
	c := catalog.New([]catalog.Category{
		{Name: "Blumen", Entries: []catalog.Entry{
			{Label: "Rose", Src: "/img/rose.png", Kind: canvas.KindFlower},
			{Label: "Mix", Src: "/img/mix.png", Kind: canvas.KindFlower},
			{Label: "Mix", Src: "/img/mix.png", Kind: canvas.KindFiller},
		}},
	})

	assert.True(t, c.Known("/img/rose.png"))
	assert.False(t, c.Known("http://10.0.0.1/x.png"))

	k, ok := c.KindOf("/img/rose.png")
	assert.True(t, ok)
	assert.Equal(t, canvas.KindFlower, k)

	_, ok = c.KindOf("/img/mix.png")
	assert.False(t, ok)
	_, ok = c.KindOf("/img/unknown.png")
	assert.False(t, ok)
}
