package danton

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunSummaryObserveAccumulates(t *testing.T) {
	var s RunSummary
	s.Observe(TauPairRecord{Decay: State{Weight: 2, Grammage: 10}})
	s.Observe(TauPairRecord{Decay: State{Weight: 4, Grammage: 20}})

	assert.EqualValues(t, 2, s.EventsProcessed)
	assert.EqualValues(t, 2, s.TausDetected)
	assert.InDelta(t, 3.0, s.MeanWeight(), 1e-9)
	assert.InDelta(t, 15.0, s.MeanGrammage(), 1e-9)
}

func TestRunSummaryMeanIsZeroWithNoTaus(t *testing.T) {
	var s RunSummary
	assert.Zero(t, s.MeanWeight())
	assert.Zero(t, s.MeanGrammage())
}

func TestRunSummaryPushToNoopWithoutURL(t *testing.T) {
	var s RunSummary
	assert.NoError(t, s.PushTo("", "test"))
}

func TestRunSummaryGaugeVecIsBuilt(t *testing.T) {
	var s RunSummary
	s.Observe(TauPairRecord{Decay: State{Weight: 1}})
	gv := s.gaugeVec("test")
	assert.NotNil(t, gv)
}
