package models

import (
	"testing"

	"github.com/dmitrijs2005/dediary/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCID(t *testing.T) {
	c, err := ParseCID("  QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG \n")
	require.NoError(t, err)
	assert.Equal(t, CID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG"), c)
	assert.Equal(t, "ipfs://QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG", c.AssetRef())

	for _, bad := range []string{"", "   ", "a b", "a/b", "a?x=1", "a#frag"} {
		_, err := ParseCID(bad)
		require.ErrorIs(t, err, common.ErrInvalidCID, bad)
	}
}

func TestUniqueCIDs_FirstOccurrenceWins(t *testing.T) {
	got := UniqueCIDs([]PinRecord{{CID: "x"}, {CID: "y"}, {CID: "x"}, {CID: "z"}, {CID: "y"}})
	assert.Equal(t, []CID{"x", "y", "z"}, got)
	assert.Empty(t, UniqueCIDs(nil))
}

func TestParseMood(t *testing.T) {
	m, ok := ParseMood(" Happy ")
	assert.True(t, ok)
	assert.Equal(t, MoodHappy, m)

	m, ok = ParseMood("")
	assert.True(t, ok)
	assert.Equal(t, Mood(""), m)

	_, ok = ParseMood("meh")
	assert.False(t, ok)
}

func TestMoodPresentation_CoversAllMoods(t *testing.T) {
	for _, m := range Moods {
		p, ok := MoodPresentation[m]
		require.True(t, ok, m)
		assert.NotEmpty(t, p.Emoji)
		assert.NotEmpty(t, p.Label)
	}
	assert.Equal(t, MoodPresentation[MoodNeutral], Mood("unknown").Present())
}
