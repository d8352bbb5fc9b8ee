package podds_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/richard-senior/podds/pkg/podds"
)

func TestNormalizeGroupsIsPerGroup(t *testing.T) {
	probs := podds.ProbabilitySet{
		podds.KeyHomeWin: 0.8,
		podds.KeyDraw:    0.6,
		podds.KeyAwayWin: 0.6,
		podds.KeyOver25:  0.3,
		podds.KeyUnder25: 0.3,
	}
	probs.NormalizeGroups()

	assert.InDelta(t, 0.4, probs[podds.KeyHomeWin], 1e-12)
	assert.InDelta(t, 0.3, probs[podds.KeyDraw], 1e-12)
	assert.InDelta(t, 0.3, probs[podds.KeyAwayWin], 1e-12)
	// The totals group normalizes against its own sum, not the 1X2 mass.
	assert.InDelta(t, 0.5, probs[podds.KeyOver25], 1e-12)
	assert.InDelta(t, 0.5, probs[podds.KeyUnder25], 1e-12)
}

func TestNormalizeGroupsSkipsZeroSum(t *testing.T) {
	probs := podds.ProbabilitySet{
		podds.KeyBTTSYes: 0,
		podds.KeyBTTSNo:  0,
	}
	probs.NormalizeGroups()

	assert.Zero(t, probs[podds.KeyBTTSYes])
	assert.Zero(t, probs[podds.KeyBTTSNo])
}

func TestNormalizeGroupsPartialKeys(t *testing.T) {
	probs := podds.ProbabilitySet{
		podds.KeyHomeWin: 0.3,
		podds.KeyAwayWin: 0.3,
	}
	probs.NormalizeGroups()

	assert.InDelta(t, 0.5, probs[podds.KeyHomeWin], 1e-12)
	assert.InDelta(t, 0.5, probs[podds.KeyAwayWin], 1e-12)
	_, ok := probs[podds.KeyDraw]
	assert.False(t, ok, "absent keys must stay absent")
}

func TestCloneIsIndependent(t *testing.T) {
	original := podds.ProbabilitySet{podds.KeyHomeWin: 0.5}
	clone := original.Clone()
	clone[podds.KeyHomeWin] = 0.9

	assert.Equal(t, 0.5, original[podds.KeyHomeWin])
}

func TestGroupFor(t *testing.T) {
	assert.Equal(t, []string{podds.KeyHomeWin, podds.KeyDraw, podds.KeyAwayWin}, podds.GroupFor(podds.KeyDraw))
	assert.Equal(t, []string{podds.KeyOver25, podds.KeyUnder25}, podds.GroupFor(podds.KeyOver25))
	assert.Nil(t, podds.GroupFor("correct_score"))
}
